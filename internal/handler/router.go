package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router needs.
type Deps struct {
	Prospects *service.ProspectService
	Directory *service.DirectoryService
	Catalog   *service.CatalogService
	Settings  *service.SettingsService
	Auth      *service.AuthService
	Metrics   *observability.Metrics
	Logger    *zap.Logger

	// MaxConcurrency caps in-flight requests; zero disables the bulkhead.
	MaxConcurrency int
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the contract both frontends (web admin and field app) use.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(RequestMetrics(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if d.MaxConcurrency > 0 {
		r.Use(ConcurrencyLimit(d.MaxConcurrency))
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Settings, d.Logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Auth
		// =============================================
		r.Post("/auth/login", authLoginHandler(d.Auth, d.Logger))
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, d.Logger))
			r.Get("/auth/session", authSessionHandler(d.Auth, d.Logger))
		})

		// =============================================
		// Authenticated (any active user)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, d.Logger))

			r.Get("/prospects", listProspectsHandler(d.Prospects, d.Logger))
			r.Get("/prospects/mine", myProspectsHandler(d.Prospects, d.Logger))
			r.Post("/prospects", createProspectHandler(d.Prospects, d.Logger))
			r.Patch("/prospects/{prospectId}", updateProspectHandler(d.Prospects, d.Logger))

			r.Get("/stats/activity", activityHandler(d.Prospects, d.Logger))

			r.Get("/services", listServicesHandler(d.Catalog, d.Logger))
			r.Get("/contents", listContentsHandler(d.Catalog, d.Logger))
			r.Get("/settings", getSettingsHandler(d.Settings, d.Logger))
		})

		// =============================================
		// Admin only
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, d.Logger))
			r.Use(AdminOnly(d.Auth, d.Logger))

			r.Delete("/prospects/{prospectId}", deleteProspectHandler(d.Prospects, d.Logger))
			r.Get("/prospects/recent", recentProspectsHandler(d.Prospects, d.Logger))
			r.Get("/prospects/export", exportProspectsHandler(d.Prospects, d.Logger))

			r.Get("/stats/dashboard", dashboardHandler(d.Prospects, d.Logger))
			r.Get("/metrics/ops", opsMetricsHandler(d.Metrics, d.Logger))

			r.Get("/users", listUsersHandler(d.Directory, d.Logger))
			r.Post("/users", createUserHandler(d.Directory, d.Logger))
			r.Post("/users/{userId}/block", blockUserHandler(d.Directory, d.Logger))
			r.Post("/users/{userId}/unblock", unblockUserHandler(d.Directory, d.Logger))

			r.Post("/services", createServiceHandler(d.Catalog, d.Logger))
			r.Put("/services/{serviceId}", updateServiceHandler(d.Catalog, d.Logger))
			r.Delete("/services/{serviceId}", deleteServiceHandler(d.Catalog, d.Logger))

			r.Post("/contents", createContentHandler(d.Catalog, d.Logger))
			r.Put("/contents/{contentId}", updateContentHandler(d.Catalog, d.Logger))
			r.Delete("/contents/{contentId}", deleteContentHandler(d.Catalog, d.Logger))
			r.Post("/contents/thumbnail", uploadThumbnailHandler(d.Catalog, d.Logger))

			r.Put("/settings/currency", updateCurrencyHandler(d.Settings, d.Logger))
		})
	})

	return r
}

// healthzHandler probes the data backend through the cheapest read we have.
func healthzHandler(settings *service.SettingsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "crm-bfa", Status: "healthy", LastChecked: now},
		}

		start := time.Now()
		_, err := settings.Get(r.Context())
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
			logger.Warn("healthz: settings probe failed", zap.Error(err))
		}
		services = append(services, domain.ServiceHealth{
			Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		code := http.StatusOK
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}

		writeJSON(w, code, map[string]any{
			"status":   overall,
			"services": services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
