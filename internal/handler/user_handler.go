package handler

import (
	"context"
	"net/http"

	"mediacore/internal/models"
	"mediacore/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserAccount interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in service.ProfileUpdate) (*models.UserDoc, error)
	DeleteProfile(ctx context.Context, userID primitive.ObjectID) error
	UpdatePreferences(ctx context.Context, userID primitive.ObjectID, in service.PreferencesUpdate) (*models.ResolvedPreferences, error)
	UpdateReviews(ctx context.Context, userID primitive.ObjectID, in models.ReviewsUpdate) (*models.ReviewsUpdateResult, error)
}

type UserHandler struct {
	svc UserAccount
}

func NewUserHandler(s UserAccount) *UserHandler { return &UserHandler{svc: s} }

// @Summary Perfil del usuario
// @Description Incluye preferencias resueltas (favoritos y watchlist en el orden guardado) y reseñas.
// @Tags user
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserProfile
// @Router /user/profile/view [get]
func (h *UserHandler) ViewProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profile(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "profile fetched", p)
}

// @Summary Actualizar perfil
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.ProfileUpdate true "campos a actualizar"
// @Success 200 {object} apiResponse
// @Router /user/profile/update [patch]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in service.ProfileUpdate
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "profile updated", toUserResponse(u))
}

// @Summary Borrar cuenta
// @Description Borra el usuario y sus reseñas.
// @Tags user
// @Security BearerAuth
// @Success 200 {object} apiResponse
// @Router /user/profile/delete [delete]
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProfile(r.Context(), UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	respondOK(w, http.StatusOK, "account deleted", nil)
}

// @Summary Actualizar preferencias
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.PreferencesUpdate true "listas a reemplazar"
// @Success 200 {object} models.ResolvedPreferences
// @Router /user/preferences/update [patch]
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var in service.PreferencesUpdate
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	prefs, err := h.svc.UpdatePreferences(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "preferences updated", prefs)
}

// @Summary Agregar / borrar reseñas
// @Description Las entradas inválidas de add se saltean y se cuentan en skipped.
// @Tags user
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body models.ReviewsUpdate true "add y remove"
// @Success 200 {object} models.ReviewsUpdateResult
// @Router /user/reviews/update [patch]
func (h *UserHandler) UpdateReviews(w http.ResponseWriter, r *http.Request) {
	var in models.ReviewsUpdate
	// sin validate: cada entrada se valida en el servicio
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	res, err := h.svc.UpdateReviews(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "reviews updated", res)
}
