package handler

import (
	"context"
	"net/http"

	"mediacore/internal/models"
)

type PersonReader interface {
	Get(ctx context.Context, externalID int) (*models.PersonView, error)
}

type PersonHandler struct {
	svc PersonReader
}

func NewPersonHandler(s PersonReader) *PersonHandler { return &PersonHandler{svc: s} }

// @Summary Persona con filmografía
// @Tags person
// @Produce json
// @Param id path int true "tmdb person id"
// @Success 200 {object} models.PersonView
// @Failure 404 {object} apiResponse
// @Router /person/{id} [get]
func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondError(w, r, http.StatusBadRequest, "id inválido", nil)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "person fetched", p)
}
