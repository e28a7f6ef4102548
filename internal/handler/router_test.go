package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/handler"
	"github.com/brickgo/crm-bfa-go/internal/infra/cache"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/port"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

// --- In-memory stores backing the full stack under test ---

type fakeProspects struct {
	rows []domain.Prospect
}

func (f *fakeProspects) ListProspects(_ context.Context, filter port.ProspectFilter) ([]domain.Prospect, error) {
	if filter.AssignedTo == "" {
		return f.rows, nil
	}
	var out []domain.Prospect
	for _, p := range f.rows {
		if p.AssignedTo != nil && *p.AssignedTo == filter.AssignedTo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProspects) CreateProspect(_ context.Context, req *domain.CreateProspectRequest, status string) (*domain.Prospect, error) {
	p := domain.Prospect{
		ID: "p-new", FirstName: req.FirstName, LastName: req.LastName,
		Phone: req.Phone, Status: status, CreatedAt: time.Now(),
	}
	f.rows = append(f.rows, p)
	return &p, nil
}

func (f *fakeProspects) UpdateProspect(_ context.Context, id string, _ map[string]any) (*domain.Prospect, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "prospect", ID: id}
}

func (f *fakeProspects) DeleteProspect(_ context.Context, id string) error {
	return nil
}

type fakeProfiles struct {
	rows []domain.Profile
}

func (f *fakeProfiles) ListProfiles(_ context.Context) ([]domain.Profile, error) {
	return f.rows, nil
}

func (f *fakeProfiles) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "profile", ID: id}
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, p *domain.Profile) error {
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakeProfiles) SetRole(_ context.Context, id, role string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Role = role
		}
	}
	return nil
}

func (f *fakeProfiles) CountActiveReps(_ context.Context) (int, error) {
	n := 0
	for _, p := range f.rows {
		if p.IsActive() {
			n++
		}
	}
	return n, nil
}

type fakeSettings struct{}

func (fakeSettings) GetSettings(_ context.Context) (*domain.AppSettings, error) {
	s := domain.DefaultSettings()
	return &s, nil
}

func (fakeSettings) SaveSettings(_ context.Context, _ domain.AppSettings) error { return nil }

type fakeCatalog struct{}

func (fakeCatalog) ListServices(_ context.Context) ([]domain.Service, error) { return nil, nil }
func (fakeCatalog) CreateService(_ context.Context, in *domain.ServiceInput) (*domain.Service, error) {
	return &domain.Service{ID: "s-1", Title: in.Title, IsActive: true}, nil
}
func (fakeCatalog) UpdateService(_ context.Context, id string, in *domain.ServiceInput) (*domain.Service, error) {
	return &domain.Service{ID: id, Title: in.Title}, nil
}
func (fakeCatalog) DeleteService(_ context.Context, _ string) error            { return nil }
func (fakeCatalog) ListContents(_ context.Context) ([]domain.Content, error)  { return nil, nil }
func (fakeCatalog) CreateContent(_ context.Context, in *domain.ContentInput) (*domain.Content, error) {
	return &domain.Content{ID: "c-1", Title: in.Title}, nil
}
func (fakeCatalog) UpdateContent(_ context.Context, id string, in *domain.ContentInput) (*domain.Content, error) {
	return &domain.Content{ID: id, Title: in.Title}, nil
}
func (fakeCatalog) DeleteContent(_ context.Context, _ string) error { return nil }

type fakeObjects struct{}

func (fakeObjects) UploadThumbnail(_ context.Context, path, _ string, _ []byte) (string, error) {
	return "https://cdn.example/thumbnails/" + path, nil
}

type fakeAuth struct {
	devLogins map[string]*domain.DevLogin
}

func (f *fakeAuth) CreateAuthUser(_ context.Context, _ *domain.CreateUserRequest) (string, error) {
	return "u-created", nil
}

func (f *fakeAuth) PasswordGrant(_ context.Context, _, _ string) (*domain.Session, error) {
	return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
}

func (f *fakeAuth) GetDevLogin(_ context.Context, email string) (*domain.DevLogin, error) {
	if d, ok := f.devLogins[email]; ok {
		return d, nil
	}
	return nil, &domain.ErrNotFound{Resource: "dev_login", ID: email}
}

// --- Harness ---

type env struct {
	router    http.Handler
	prospects *fakeProspects
	profiles  *fakeProfiles
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	profiles := &fakeProfiles{rows: []domain.Profile{
		{ID: "u-admin", Email: "admin@brick.ci", FirstName: "Ada", LastName: "Admin", Role: domain.RoleAdmin},
		{ID: "u-rep", Email: "rep@brick.ci", FirstName: "Rémi", LastName: "Rep", Role: domain.RoleCommercial},
	}}
	prospects := &fakeProspects{rows: []domain.Prospect{
		{ID: "p-1", FirstName: "Jean", LastName: "Dupont", Status: "new", CreatedAt: time.Now()},
	}}

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	auth := &fakeAuth{devLogins: map[string]*domain.DevLogin{
		"admin@brick.ci": {Email: "admin@brick.ci", PasswordHash: string(hash), ProfileID: "u-admin"},
		"rep@brick.ci":   {Email: "rep@brick.ci", PasswordHash: string(hash), ProfileID: "u-rep"},
	}}

	settingsSvc := service.NewSettingsService(fakeSettings{}, cache.New[domain.AppSettings](time.Minute), metrics, logger)
	prospectSvc := service.NewProspectService(prospects, profiles, settingsSvc, cache.New[[]domain.Prospect](time.Minute), metrics, logger, nil)
	directorySvc := service.NewDirectoryService(profiles, auth, metrics, logger)
	catalogSvc := service.NewCatalogService(fakeCatalog{}, fakeObjects{}, logger)
	authSvc := service.NewAuthService(auth, profiles, "router-test-secret", time.Hour, true, logger)

	router := handler.NewRouter(handler.Deps{
		Prospects: prospectSvc,
		Directory: directorySvc,
		Catalog:   catalogSvc,
		Settings:  settingsSvc,
		Auth:      authSvc,
		Metrics:   metrics,
		Logger:    logger,
	})
	return &env{router: router, prospects: prospects, profiles: profiles}
}

func (e *env) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *env) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"`+email+`","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	var sess domain.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.AccessToken == "" {
		t.Fatal("login returned no token")
	}
	return sess.AccessToken
}

// --- Tests ---

func TestHealthz(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/readyz", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProspects_RequireAuth(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/v1/prospects", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestLoginAndListProspects(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "rep@brick.ci")

	rec := e.do(t, http.MethodGet, "/v1/prospects", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var list []domain.Prospect
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "p-1" {
		t.Errorf("list = %+v", list)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"rep@brick.ci","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthSession(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")

	rec := e.do(t, http.MethodGet, "/v1/auth/session", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "admin@brick.ci") {
		t.Errorf("session body = %s", rec.Body.String())
	}
}

func TestAdminRoutes_ForbiddenForRep(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "rep@brick.ci")

	for _, path := range []string{"/v1/stats/dashboard", "/v1/users", "/v1/prospects/export"} {
		rec := e.do(t, http.MethodGet, path, token, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403 for commercial, got %d", path, rec.Code)
		}
	}
}

func TestDashboard_Admin(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")

	rec := e.do(t, http.MethodGet, "/v1/stats/dashboard", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var stats domain.DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.TotalCount != 1 {
		t.Errorf("TotalCount = %d, want 1", stats.TotalCount)
	}
	if stats.ActiveReps != 2 {
		t.Errorf("ActiveReps = %d, want 2", stats.ActiveReps)
	}
}

func TestActivity_PerRep(t *testing.T) {
	e := newEnv(t)
	assignee := "u-rep"
	e.prospects.rows = append(e.prospects.rows, domain.Prospect{
		ID: "p-2", FirstName: "Fatou", LastName: "Diallo", Status: "Qualifié",
		AssignedTo: &assignee, CreatedAt: time.Now(),
	})
	token := e.login(t, "rep@brick.ci")

	rec := e.do(t, http.MethodGet, "/v1/stats/activity", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var feed domain.ActivityFeed
	if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
		t.Fatal(err)
	}
	if feed.Total != 1 || feed.Qualified != 1 {
		t.Errorf("feed = %+v, want only the rep's qualified lead", feed)
	}
}

func TestCreateProspect(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "rep@brick.ci")

	rec := e.do(t, http.MethodPost, "/v1/prospects", token,
		`{"first_name":"Awa","last_name":"Koné","phone":"0102030405"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var p domain.Prospect
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Status != "new" {
		t.Errorf("status = %q, want new", p.Status)
	}
}

func TestCreateProspect_InvalidBody(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "rep@brick.ci")

	rec := e.do(t, http.MethodPost, "/v1/prospects", token, `{"first_name":"OnlyFirst"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestExportCSV_Headers(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")

	rec := e.do(t, http.MethodGet, "/v1/prospects/export", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "prospects_export_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "Prénom") {
		t.Errorf("CSV body missing French header: %s", rec.Body.String())
	}
}

func TestBlockedUserLosesAccess(t *testing.T) {
	e := newEnv(t)
	admin := e.login(t, "admin@brick.ci")
	rep := e.login(t, "rep@brick.ci")

	rec := e.do(t, http.MethodPost, "/v1/users/u-rep/block", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("block: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodGet, "/v1/auth/session", rep, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("blocked rep session: expected 403, got %d", rec.Code)
	}
}

func TestCreateUser_Admin(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")

	rec := e.do(t, http.MethodPost, "/v1/users", token,
		`{"email":"new@brick.ci","password":"secret1","first_name":"Nadia","last_name":"Neuve"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(e.profiles.rows) != 3 {
		t.Errorf("profiles = %d rows, want 3", len(e.profiles.rows))
	}
}

func TestUpdateCurrency_Admin(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")

	rec := e.do(t, http.MethodPut, "/v1/settings/currency", token,
		`{"currency_code":"EUR","currency_symbol":"€"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "EUR") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestOpsMetrics_CountsRequests(t *testing.T) {
	e := newEnv(t)
	token := e.login(t, "admin@brick.ci")
	e.do(t, http.MethodGet, "/v1/prospects", token, "")

	rec := e.do(t, http.MethodGet, "/v1/metrics/ops", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var ops domain.OpsMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &ops); err != nil {
		t.Fatal(err)
	}
	if ops.TotalRequests == 0 {
		t.Error("TotalRequests = 0, requests are not being counted")
	}
}

func TestGarbageToken(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/v1/prospects", "not.a.token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
