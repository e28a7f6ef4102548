package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/service"
)

// ============================================================
// Prospects — list, create, update, delete, export
// ============================================================

func listProspectsHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/prospects")
		defer span.End()

		query := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")
		span.SetAttributes(attribute.String("filter.status", status))

		prospects, err := svc.List(ctx, query, status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, prospects)
	}
}

func myProspectsHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/prospects/mine")
		defer span.End()

		claims := ClaimsFromContext(ctx)
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		prospects, err := svc.ListForRep(ctx, claims.Sub)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, prospects)
	}
}

func createProspectHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/prospects")
		defer span.End()

		var req domain.CreateProspectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := svc.Create(ctx, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func updateProspectHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/prospects/{prospectId}")
		defer span.End()

		id := chi.URLParam(r, "prospectId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "prospect id is required")
			return
		}
		span.SetAttributes(attribute.String("prospect.id", id))

		var req domain.UpdateProspectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		p, err := svc.Update(ctx, id, &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func deleteProspectHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/prospects/{prospectId}")
		defer span.End()

		id := chi.URLParam(r, "prospectId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "prospect id is required")
			return
		}
		span.SetAttributes(attribute.String("prospect.id", id))

		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func recentProspectsHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/prospects/recent")
		defer span.End()

		prospects, err := svc.Recent(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, prospects)
	}
}

func exportProspectsHandler(svc *service.ProspectService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/prospects/export")
		defer span.End()

		query := r.URL.Query().Get("q")
		status := r.URL.Query().Get("status")

		filename, data, err := svc.ExportCSV(ctx, query, status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
