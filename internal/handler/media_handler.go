package handler

import (
	"context"
	"net/http"

	"mediacore/internal/models"

	"github.com/go-chi/chi/v5"
)

// MediaReader lo implementa MediaService; MediaLister, DiscoveryService.
type MediaReader interface {
	GetDetail(ctx context.Context, kind models.MediaKind, externalID int) (*models.MediaDetail, error)
}

type MediaLister interface {
	Category(ctx context.Context, kind models.MediaKind, category string, page int) (*models.MediaPage, error)
	Trending(ctx context.Context, kind models.MediaKind, window string, page int) (*models.MediaPage, error)
	Search(ctx context.Context, query string, page int) (*models.MediaPage, error)
}

type MediaHandler struct {
	media MediaReader
	lists MediaLister
}

func NewMediaHandler(media MediaReader, lists MediaLister) *MediaHandler {
	return &MediaHandler{media: media, lists: lists}
}

// @Summary Detalle de película o serie
// @Description Resuelve el item (cache Mongo + catálogo) y agrega sus reseñas.
// @Tags media
// @Produce json
// @Param kind path string true "movie | tv"
// @Param id path int true "tmdbId"
// @Success 200 {object} models.MediaDetail
// @Failure 404 {object} apiResponse
// @Failure 502 {object} apiResponse
// @Router /media/{kind}/{id} [get]
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "id inválido", nil)
		return
	}

	detail, err := h.media.GetDetail(r.Context(), kind, id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "media fetched", detail)
}

// @Summary Lista por categoría
// @Tags media
// @Produce json
// @Param kind path string true "movie | tv"
// @Param category path string true "popular | top_rated | upcoming | now_playing | on_the_air | airing_today"
// @Param page query int false "página (default 1)"
// @Success 200 {object} models.MediaPage
// @Router /media/{kind}/category/{category} [get]
func (h *MediaHandler) Category(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}

	page, err := h.lists.Category(r.Context(), kind, chi.URLParam(r, "category"), queryInt(r, "page", 1))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "list fetched", page)
}

// @Summary Trending
// @Tags media
// @Produce json
// @Param kind path string true "movie | tv"
// @Param timeWindow query string false "day | week (default day)"
// @Param page query int false "página (default 1)"
// @Success 200 {object} models.MediaPage
// @Router /media/{kind}/trending [get]
func (h *MediaHandler) Trending(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}

	page, err := h.lists.Trending(r.Context(), kind, r.URL.Query().Get("timeWindow"), queryInt(r, "page", 1))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "trending fetched", page)
}

// @Summary Búsqueda (películas, series y personas)
// @Tags media
// @Produce json
// @Param q query string true "texto a buscar"
// @Param page query int false "página (default 1)"
// @Success 200 {object} models.MediaPage
// @Router /media/search [get]
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := h.lists.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "page", 1))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "search results", page)
}
