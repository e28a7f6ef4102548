package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// ============================================================
// Catalog store — services and contents tables
// ============================================================

// ListServices reads the service catalog, newest first.
func (c *Client) ListServices(ctx context.Context) ([]domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListServices")
	defer span.End()

	var services []domain.Service
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "services?order=created_at.desc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			services = []domain.Service{}
			return nil
		}
		if err := json.Unmarshal(body, &services); err != nil {
			return fmt.Errorf("decode services: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/services", Err: err}
	}
	return services, nil
}

// CreateService inserts a catalog item. New services start active.
func (c *Client) CreateService(ctx context.Context, input *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateService")
	defer span.End()

	data := map[string]any{
		"id":        uuid.New().String(),
		"title":     input.Title,
		"price":     input.Price,
		"category":  input.Category,
		"is_active": true,
	}
	if input.Description != "" {
		data["description"] = input.Description
	}

	body, err := c.doPost(ctx, "services", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/services", Err: err}
	}

	var rows []domain.Service
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/services", Err: fmt.Errorf("insert returned no row")}
	}
	return &rows[0], nil
}

// UpdateService patches a catalog item and returns the updated row.
func (c *Client) UpdateService(ctx context.Context, id string, input *domain.ServiceInput) (*domain.Service, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	data := map[string]any{
		"title":       input.Title,
		"price":       input.Price,
		"category":    input.Category,
		"description": input.Description,
	}

	path := fmt.Sprintf("services?id=eq.%s", url.QueryEscape(id))
	body, err := c.doPatch(ctx, path, data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/services", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "service", ID: id}
	}

	var rows []domain.Service
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "service", ID: id}
	}
	return &rows[0], nil
}

// DeleteService removes a catalog item.
func (c *Client) DeleteService(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteService")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	path := fmt.Sprintf("services?id=eq.%s", url.QueryEscape(id))
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/services", Err: err}
	}
	return nil
}

// ListContents reads the training contents, newest first.
func (c *Client) ListContents(ctx context.Context) ([]domain.Content, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListContents")
	defer span.End()

	var contents []domain.Content
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "contents?order=created_at.desc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			contents = []domain.Content{}
			return nil
		}
		if err := json.Unmarshal(body, &contents); err != nil {
			return fmt.Errorf("decode contents: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contents", Err: err}
	}
	return contents, nil
}

// CreateContent inserts a training content entry.
func (c *Client) CreateContent(ctx context.Context, input *domain.ContentInput) (*domain.Content, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateContent")
	defer span.End()

	data := map[string]any{
		"id":    uuid.New().String(),
		"title": input.Title,
		"type":  input.Type,
		"url":   input.URL,
	}
	if input.Description != "" {
		data["description"] = input.Description
	}
	if input.ThumbnailURL != "" {
		data["thumbnail_url"] = input.ThumbnailURL
	}
	if input.Duration != "" {
		data["duration"] = input.Duration
	}
	if input.Modules > 0 {
		data["modules"] = input.Modules
	}

	body, err := c.doPost(ctx, "contents", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contents", Err: err}
	}

	var rows []domain.Content
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/contents", Err: fmt.Errorf("insert returned no row")}
	}
	return &rows[0], nil
}

// UpdateContent patches a content entry and returns the updated row.
func (c *Client) UpdateContent(ctx context.Context, id string, input *domain.ContentInput) (*domain.Content, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateContent")
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	data := map[string]any{
		"title":         input.Title,
		"type":          input.Type,
		"url":           input.URL,
		"description":   input.Description,
		"thumbnail_url": input.ThumbnailURL,
		"duration":      input.Duration,
		"modules":       input.Modules,
	}

	path := fmt.Sprintf("contents?id=eq.%s", url.QueryEscape(id))
	body, err := c.doPatch(ctx, path, data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/contents", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "content", ID: id}
	}

	var rows []domain.Content
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "content", ID: id}
	}
	return &rows[0], nil
}

// DeleteContent removes a content entry.
func (c *Client) DeleteContent(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteContent")
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	path := fmt.Sprintf("contents?id=eq.%s", url.QueryEscape(id))
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/contents", Err: err}
	}
	return nil
}
