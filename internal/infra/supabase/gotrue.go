package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
)

// ============================================================
// GoTrue — hosted auth: password grant and admin user creation
// ============================================================

// gotrueSession mirrors the GoTrue token response shape.
type gotrueSession struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// PasswordGrant exchanges email/password for a session at the hosted auth
// endpoint. Wrong credentials surface as ErrUnauthorized.
func (c *Client) PasswordGrant(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Supabase.PasswordGrant")
	defer span.End()

	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/auth/v1/token?grant_type=password", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gotrue: token request failed", zap.Error(err))
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		c.logger.Info("gotrue: sign-in rejected", zap.Int("status", resp.StatusCode))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("gotrue: token non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &domain.ErrExternalService{
			Service: "supabase/auth",
			Err:     fmt.Errorf("gotrue returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var gs gotrueSession
	if err := json.Unmarshal(body, &gs); err != nil {
		return nil, fmt.Errorf("decode gotrue session: %w", err)
	}

	return &domain.Session{
		AccessToken:  gs.AccessToken,
		RefreshToken: gs.RefreshToken,
		ExpiresIn:    gs.ExpiresIn,
		UserID:       gs.User.ID,
		Email:        gs.User.Email,
	}, nil
}

// CreateAuthUser provisions an auth user through the admin API with the
// email pre-confirmed, so the rep can sign in immediately.
func (c *Client) CreateAuthUser(ctx context.Context, reqBody *domain.CreateUserRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAuthUser")
	defer span.End()

	payload, err := json.Marshal(map[string]any{
		"email":         reqBody.Email,
		"password":      reqBody.Password,
		"email_confirm": true,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gotrue: admin create user failed", zap.Error(err))
		return "", &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return "", &domain.ErrExternalService{Service: "supabase/auth", Err: err}
	}

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusConflict {
		return "", &domain.ErrConflict{Message: fmt.Sprintf("user already exists: %s", reqBody.Email)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("gotrue: admin create user non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", &domain.ErrExternalService{
			Service: "supabase/auth",
			Err:     fmt.Errorf("gotrue returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("decode gotrue user: %w", err)
	}
	if created.ID == "" {
		return "", &domain.ErrExternalService{Service: "supabase/auth", Err: fmt.Errorf("admin create returned no user id")}
	}

	c.logger.Info("gotrue: auth user created", zap.String("user_id", created.ID))
	return created.ID, nil
}

// GetDevLogin reads the dev_logins row backing the local bcrypt fallback.
func (c *Client) GetDevLogin(ctx context.Context, email string) (*domain.DevLogin, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDevLogin")
	defer span.End()

	path := fmt.Sprintf("dev_logins?email=eq.%s&limit=1", url.QueryEscape(email))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/dev_logins", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "dev_login", ID: email}
	}

	var rows []domain.DevLogin
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode dev_logins: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "dev_login", ID: email}
	}
	return &rows[0], nil
}
