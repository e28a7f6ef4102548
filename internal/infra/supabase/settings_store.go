package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// ============================================================
// Settings store — the app_settings singleton row (id=1)
// ============================================================

// GetSettings reads the settings row. A missing row yields the defaults
// rather than an error so fresh installs work out of the box.
func (c *Client) GetSettings(ctx context.Context) (*domain.AppSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSettings")
	defer span.End()

	var settings domain.AppSettings
	err := c.doResilient(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "app_settings?id=eq.1&limit=1")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			settings = domain.DefaultSettings()
			return nil
		}

		var rows []domain.AppSettings
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode app_settings: %w", err)
		}
		if len(rows) == 0 {
			settings = domain.DefaultSettings()
			return nil
		}
		settings = rows[0]
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/app_settings", Err: err}
	}
	return &settings, nil
}

// SaveSettings updates the singleton row, inserting it when the update
// matched nothing (first write on a fresh install).
func (c *Client) SaveSettings(ctx context.Context, settings domain.AppSettings) error {
	ctx, span := tracer.Start(ctx, "Supabase.SaveSettings")
	defer span.End()

	data := map[string]any{
		"currency_code":   settings.CurrencyCode,
		"currency_symbol": settings.CurrencySymbol,
	}

	body, err := c.doPatch(ctx, "app_settings?id=eq.1", data)
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/app_settings", Err: err}
	}
	if body != nil && string(body) != "[]" {
		return nil
	}

	data["id"] = 1
	if _, err := c.doPost(ctx, "app_settings", data); err != nil {
		return &domain.ErrExternalService{Service: "supabase/app_settings", Err: err}
	}
	return nil
}
