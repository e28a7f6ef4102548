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
	"github.com/brickgo/crm-bfa-go/internal/port"
)

// ============================================================
// Prospect store — list, create, update, delete
// ============================================================

// prospectSelect embeds the assignee's name via PostgREST resource
// embedding so the clients never need a second query.
const prospectSelect = "select=*,assigned_profile:profiles!assigned_to(first_name,last_name)"

// ListProspects reads prospects newest first, optionally filtered by raw
// status and assignee.
func (c *Client) ListProspects(ctx context.Context, filter port.ProspectFilter) ([]domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProspects")
	defer span.End()
	span.SetAttributes(attribute.String("filter.status", filter.Status))

	path := fmt.Sprintf("prospects?%s&order=created_at.desc", prospectSelect)
	if filter.Status != "" {
		path += "&status=eq." + url.QueryEscape(filter.Status)
	}
	if filter.AssignedTo != "" {
		path += "&assigned_to=eq." + url.QueryEscape(filter.AssignedTo)
	}
	if filter.Limit > 0 {
		path += fmt.Sprintf("&limit=%d", filter.Limit)
	}

	var prospects []domain.Prospect
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			prospects = []domain.Prospect{}
			return nil
		}
		if err := json.Unmarshal(body, &prospects); err != nil {
			return fmt.Errorf("decode prospects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/prospects", Err: err}
	}
	return prospects, nil
}

// CreateProspect inserts a new lead with the given initial status.
func (c *Client) CreateProspect(ctx context.Context, req *domain.CreateProspectRequest, status string) (*domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProspect")
	defer span.End()

	data := map[string]any{
		"id":         uuid.New().String(),
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"phone":      req.Phone,
		"status":     status,
	}
	if req.Company != "" {
		data["company"] = req.Company
	}
	if req.Email != "" {
		data["email"] = req.Email
	}
	if req.Address != "" {
		data["address"] = req.Address
	}
	if req.Need != "" {
		data["need"] = req.Need
	}
	if req.Comments != "" {
		data["comments"] = req.Comments
	}
	if req.GoogleMapLink != "" {
		data["google_map_link"] = req.GoogleMapLink
	}
	if req.AssignedTo != "" {
		data["assigned_to"] = req.AssignedTo
	}

	body, err := c.doPost(ctx, "prospects", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/prospects", Err: err}
	}

	var rows []domain.Prospect
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode prospects: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrExternalService{Service: "supabase/prospects", Err: fmt.Errorf("insert returned no row")}
	}
	return &rows[0], nil
}

// UpdateProspect patches the given columns and returns the updated row.
func (c *Client) UpdateProspect(ctx context.Context, id string, updates map[string]any) (*domain.Prospect, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProspect")
	defer span.End()
	span.SetAttributes(attribute.String("prospect.id", id))

	path := fmt.Sprintf("prospects?id=eq.%s", url.QueryEscape(id))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/prospects", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "prospect", ID: id}
	}

	var rows []domain.Prospect
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode prospects: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "prospect", ID: id}
	}
	return &rows[0], nil
}

// DeleteProspect removes a lead.
func (c *Client) DeleteProspect(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProspect")
	defer span.End()
	span.SetAttributes(attribute.String("prospect.id", id))

	path := fmt.Sprintf("prospects?id=eq.%s", url.QueryEscape(id))
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/prospects", Err: err}
	}
	return nil
}
