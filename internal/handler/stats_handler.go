package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

// ============================================================
// Stats — dashboard aggregation and activity feed
// ============================================================

func dashboardHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stats/dashboard")
		defer span.End()

		stats, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, stats)
	}
}

func activityHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/stats/activity")
		defer span.End()

		claims := ClaimsFromContext(ctx)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		feed, err := svc.Activity(ctx, claims.Sub)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, feed)
	}
}

func opsMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/metrics/ops")
		defer span.End()

		writeJSON(w, http.StatusOK, metrics.OpsSnapshot())
	}
}
