package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// ============================================================
// Profile store — list, get, upsert, role changes
// ============================================================

// ListProfiles reads all application users, newest first.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	var profiles []domain.Profile
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "profiles?order=created_at.desc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			profiles = []domain.Profile{}
			return nil
		}
		if err := json.Unmarshal(body, &profiles); err != nil {
			return fmt.Errorf("decode profiles: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return profiles, nil
}

// GetProfile fetches one profile by auth subject id.
func (c *Client) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id))

	var profile *domain.Profile
	err := c.doResilient(ctx, func() error {
		path := fmt.Sprintf("profiles?id=eq.%s&limit=1", url.QueryEscape(id))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "profile", ID: id}
		}

		var rows []domain.Profile
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode profiles: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "profile", ID: id}
		}
		profile = &rows[0]
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return profile, nil
}

// UpsertProfile writes the profile row keyed on id. Used right after auth
// user creation, so insert-or-merge semantics matter.
func (c *Client) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProfile")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", profile.ID))

	data := map[string]any{
		"id":         profile.ID,
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
		"email":      profile.Email,
		"role":       profile.Role,
		"created_at": profileCreatedAt(profile),
	}
	if profile.Phone != "" {
		data["phone"] = profile.Phone
	}

	if _, err := c.doUpsert(ctx, "profiles?on_conflict=id", data); err != nil {
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return nil
}

// SetRole patches a single profile's role. Blocking and unblocking go
// through here.
func (c *Client) SetRole(ctx context.Context, id, role string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetRole")
	defer span.End()
	span.SetAttributes(
		attribute.String("profile.id", id),
		attribute.String("profile.role", role),
	)

	path := fmt.Sprintf("profiles?id=eq.%s", url.QueryEscape(id))
	body, err := c.doPatch(ctx, path, map[string]any{"role": role})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return &domain.ErrNotFound{Resource: "profile", ID: id}
	}
	return nil
}

// CountActiveReps counts profiles whose role is anything but blocked.
func (c *Client) CountActiveReps(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountActiveReps")
	defer span.End()

	count := 0
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "profiles?select=id&role=neq.blocked")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			count = 0
			return nil
		}
		var rows []struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode profiles count: %w", err)
		}
		count = len(rows)
		return nil
	})
	if err != nil {
		return 0, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return count, nil
}

func profileCreatedAt(p *domain.Profile) string {
	if p.CreatedAt.IsZero() {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return p.CreatedAt.UTC().Format(time.RFC3339)
}
