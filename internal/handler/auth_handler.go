package handler

import (
	"context"
	"net/http"
	"time"

	"mediacore/internal/models"
	"mediacore/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Authenticator interface {
	Register(ctx context.Context, data service.RegisterUserData) (*models.UserDoc, error)
	Login(ctx context.Context, username, password string) (string, *models.UserDoc, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*models.UserDoc, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	TokenTTL() time.Duration
}

// CookieConfig controla la cookie de sesión.
type CookieConfig struct {
	Domain string
	Secure bool
}

type AuthHandler struct {
	svc    Authenticator
	cookie CookieConfig
}

func NewAuthHandler(s Authenticator, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: s, cookie: cookie}
}

type userResponse struct {
	ID        string          `json:"id"`
	Info      models.UserInfo `json:"info"`
	Role      string          `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toUserResponse(u *models.UserDoc) userResponse {
	return userResponse{
		ID:        u.ID.Hex(),
		Info:      u.Info,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerRequest struct {
	Username    string     `json:"username" validate:"required,min=3,max=50"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	FirstName   string     `json:"firstName" validate:"max=100"`
	LastName    string     `json:"lastName" validate:"max=100"`
	Gender      string     `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

// @Summary Register
// @Description Crea un usuario nuevo con role user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body registerRequest true "datos"
// @Success 201 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterUserData{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusCreated, "user registered", toUserResponse(u))
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// @Summary Login
// @Description Devuelve el JWT en el body y como cookie httpOnly "jwt".
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "credenciales"
// @Success 200 {object} apiResponse
// @Failure 401 {object} apiResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, token, int(h.svc.TokenTTL().Seconds()))
	respondOK(w, http.StatusOK, "logged in", map[string]any{
		"token": token,
		"user":  toUserResponse(u),
	})
}

// @Summary Logout
// @Tags auth
// @Success 200 {object} apiResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	respondOK(w, http.StatusOK, "logged out", nil)
}

// @Summary Usuario de la sesión
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} apiResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Me(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "current user", toUserResponse(u))
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// @Summary Cambiar contraseña
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body changePasswordRequest true "contraseñas"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /auth/password/change [patch]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), UserIDFromContext(r.Context()), req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "password updated", nil)
}
