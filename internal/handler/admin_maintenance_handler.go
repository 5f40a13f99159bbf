package handler

import (
	"context"
	"net/http"
	"strconv"

	"mediacore/internal/models"

	"github.com/go-chi/chi/v5"
)

type MediaMaintainer interface {
	GetMediaSummary(ctx context.Context) (*models.MediaCacheSummary, error)
	GetPendingMedia(ctx context.Context, limit int64) (*models.PendingMediaList, error)
	RefreshPendingMedia(ctx context.Context, req *models.RefreshMediaRequest) (*models.RefreshMediaResult, error)
}

// AdminMaintenanceHandler expone endpoints de mantenimiento del cache de media.
type AdminMaintenanceHandler struct {
	svc MediaMaintainer
}

func NewAdminMaintenanceHandler(svc MediaMaintainer) *AdminMaintenanceHandler {
	return &AdminMaintenanceHandler{svc: svc}
}

// @Summary Resumen del cache de media
// @Description Conteos por tipo y completitud, y cantidad de Complete vencidos.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.MediaCacheSummary
// @Failure 500 {object} apiResponse
// @Router /admin/maintenance/media/summary [get]
func (h *AdminMaintenanceHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetMediaSummary(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "media summary", summary)
}

// @Summary Media pendiente de refresco
// @Description Lista Partial y Complete vencidos, los más viejos primero.
// @Tags admin-maintenance
// @Security BearerAuth
// @Produce json
// @Param limit query int false "límite (default 50, tope 500)"
// @Success 200 {object} models.PendingMediaList
// @Router /admin/maintenance/media/stale [get]
func (h *AdminMaintenanceHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	var limit int64
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}

	resp, err := h.svc.GetPendingMedia(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "pending media", resp)
}

// @Summary Refrescar media pendiente
// @Description Re-resuelve los pendientes contra el catálogo en batches paralelos.
// @Tags admin-maintenance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.RefreshMediaRequest false "limit y parallelism"
// @Success 200 {object} models.RefreshMediaResult
// @Failure 400 {object} apiResponse
// @Router /admin/maintenance/media/refresh [post]
func (h *AdminMaintenanceHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshMediaRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "body inválido", err)
			return
		}
	}

	res, err := h.svc.RefreshPendingMedia(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "refresh finished", res)
}

// Helper para montar rutas en main.go
func MountAdminMaintenanceRoutes(r chi.Router, h *AdminMaintenanceHandler) {
	r.Route("/admin/maintenance", func(r chi.Router) {
		r.Get("/media/summary", h.GetSummary)
		r.Get("/media/stale", h.GetPending)
		r.Post("/media/refresh", h.PostRefresh)
	})
}
