package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/format"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

const settingsCacheKey = "settings:app"

// SettingsService serves the app_settings singleton and keeps the shared
// currency formatter in sync with it.
type SettingsService struct {
	store   port.SettingsStore
	cache   port.Cache[domain.AppSettings]
	metrics *observability.Metrics
	logger  *zap.Logger

	mu   sync.RWMutex
	fmtr *format.Formatter
}

// NewSettingsService creates the settings service. The formatter starts on
// the defaults and is replaced on the first read.
func NewSettingsService(
	store port.SettingsStore,
	cache port.Cache[domain.AppSettings],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SettingsService {
	def := domain.DefaultSettings()
	return &SettingsService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		fmtr:    format.New(def.CurrencyCode, def.CurrencySymbol),
	}
}

// InvalidateCache drops the cached settings row.
func (s *SettingsService) InvalidateCache() {
	s.cache.Delete(settingsCacheKey)
}

// Get returns the current settings, from cache when fresh. A store failure
// falls back to the last known formatter's currency so display keeps
// working.
func (s *SettingsService) Get(ctx context.Context) (*domain.AppSettings, error) {
	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		s.metrics.IncrCacheHit("settings")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("settings")

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.metrics.IncrExternalError("app_settings")
		return nil, err
	}

	s.cache.Set(settingsCacheKey, *settings)
	s.setFormatter(settings)
	return settings, nil
}

// UpdateCurrency switches the display currency and rebuilds the formatter.
func (s *SettingsService) UpdateCurrency(ctx context.Context, req *domain.UpdateCurrencyRequest) (*domain.AppSettings, error) {
	code := strings.TrimSpace(req.CurrencyCode)
	symbol := strings.TrimSpace(req.CurrencySymbol)
	if code == "" {
		return nil, &domain.ErrValidation{Field: "currency_code", Message: "required"}
	}
	if symbol == "" {
		return nil, &domain.ErrValidation{Field: "currency_symbol", Message: "required"}
	}

	settings := domain.AppSettings{ID: 1, CurrencyCode: code, CurrencySymbol: symbol}
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		s.metrics.IncrExternalError("app_settings")
		return nil, err
	}

	s.cache.Set(settingsCacheKey, settings)
	s.setFormatter(&settings)

	s.logger.Info("currency updated",
		zap.String("code", code),
		zap.String("symbol", symbol),
	)
	return &settings, nil
}

// Formatter returns a formatter for the current settings, refreshing from
// the store when the cache is cold. A failed refresh keeps the last one.
func (s *SettingsService) Formatter(ctx context.Context) *format.Formatter {
	if _, err := s.Get(ctx); err != nil {
		s.logger.Warn("settings refresh failed, keeping last formatter", zap.Error(err))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fmtr
}

func (s *SettingsService) setFormatter(settings *domain.AppSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fmtr.Code() != settings.CurrencyCode || s.fmtr.Symbol() != settings.CurrencySymbol {
		s.fmtr = format.New(settings.CurrencyCode, settings.CurrencySymbol)
	}
}
