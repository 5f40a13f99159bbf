package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"mediacore/internal/logging"
	"mediacore/internal/models"
	"mediacore/internal/recommender"
	"mediacore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// ====== Envelope ======

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("[http] no se pudo serializar la respuesta")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, apiResponse{Status: "success", Message: message, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
		ev := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("[http] " + message)
	}
	writeJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Error:   &apiError{Code: status, Details: details},
	})
}

// respondServiceError traduce un error de servicio a su status HTTP.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	respondError(w, r, status, msg, err)
}

// statusFor es el único lugar donde los errores se mapean a HTTP.
func statusFor(err error) (int, string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "media not found"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "upstream catalog unavailable"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrInvalidReview),
		errors.Is(err, service.ErrInvalidInput),
		errors.As(err, &verrs):
		return http.StatusBadRequest, "invalid request"
	}

	switch recommender.KindOf(err) {
	case recommender.ServiceUnavailable:
		return http.StatusServiceUnavailable, "recommender unavailable"
	case recommender.Timeout:
		return http.StatusGatewayTimeout, "recommender timed out"
	case recommender.InvalidResponse:
		return http.StatusBadGateway, "recommender returned an invalid response"
	case recommender.InvalidRequest:
		return http.StatusBadRequest, "unknown recommendation strategy"
	}
	return http.StatusInternalServerError, "internal error"
}

// ====== Request helpers ======

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("body vacío")
		}
		return err
	}
	return nil
}

// decodeBody lee el JSON del body y valida los tags `validate`.
func decodeBody(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// kindParam lee {kind} (movie | tv | series).
func kindParam(r *http.Request) (models.MediaKind, bool) {
	return models.ParseKind(chi.URLParam(r, "kind"))
}

// idParam lee un id numérico positivo de la ruta.
func idParam(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
