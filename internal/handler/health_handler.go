package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger lo implementan el cliente Mongo (vía adaptador) y el cache Redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	mongo Pinger
	redis Pinger
}

func NewHealthHandler(mongo, redis Pinger) *HealthHandler {
	return &HealthHandler{mongo: mongo, redis: redis}
}

// @Summary Healthcheck
// @Description Mongo caído responde 503; Redis caído solo marca degraded.
// @Tags health
// @Produce json
// @Success 200 {object} apiResponse
// @Failure 503 {object} apiResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"mongo": "ok", "redis": "ok"}
	status := "ok"

	if h.mongo != nil {
		if err := h.mongo.Ping(ctx); err != nil {
			respondError(w, r, http.StatusServiceUnavailable, "unhealthy", err)
			return
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			status = "degraded"
		}
	} else {
		checks["redis"] = "disabled"
		status = "degraded"
	}

	respondOK(w, http.StatusOK, status, checks)
}
