package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/config"
	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/handler"
	"github.com/brickgo/crm-bfa-go/internal/infra/cache"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/infra/resilience"
	"github.com/brickgo/crm-bfa-go/internal/infra/supabase"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Bool("dev_auth", cfg.DevAuth),
	)

	if cfg.SupabaseURL == "" {
		logger.Fatal("SUPABASE_URL is required")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "crm-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	prospectCache := cache.New[[]domain.Prospect](cfg.CacheTTL)
	settingsCache := cache.New[domain.AppSettings](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")

	// --- Supabase client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	sb := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)

	// --- Services ---
	settingsSvc := service.NewSettingsService(sb, settingsCache, metrics, logger)
	prospectSvc := service.NewProspectService(sb, sb, settingsSvc, prospectCache, metrics, logger, nil)
	directorySvc := service.NewDirectoryService(sb, sb, metrics, logger)
	catalogSvc := service.NewCatalogService(sb, sb, logger)
	authSvc := service.NewAuthService(sb, sb, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.DevAuth, logger)

	// --- Change feed → cache invalidation ---
	feed := supabase.NewPollingFeed(sb, cfg.PollInterval, logger)
	coordinator := service.NewRefreshCoordinator(feed, cfg.RefetchDebounce, metrics, logger)
	coordinator.Watch("prospects", prospectSvc.InvalidateCache)
	// Profile edits change the embedded assignee names and the rep count.
	coordinator.Watch("profiles", prospectSvc.InvalidateCache)
	coordinator.Watch("app_settings", settingsSvc.InvalidateCache)

	// --- Router ---
	router := handler.NewRouter(handler.Deps{
		Prospects:      prospectSvc,
		Directory:      directorySvc,
		Catalog:        catalogSvc,
		Settings:       settingsSvc,
		Auth:           authSvc,
		Metrics:        metrics,
		Logger:         logger,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	coordinator.Stop()
	feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
