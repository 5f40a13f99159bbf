package handler

import (
	"context"
	"net/http"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/models"
	"mediacore/internal/recommender"
	"mediacore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recommender es la parte de RecommendService que usan los handlers.
type Recommender interface {
	Similar(ctx context.Context, kind models.MediaKind, in service.SimilarInput, opts service.RunOptions) (*models.Recommendations, error)
	Discover(ctx context.Context, kind models.MediaKind, in service.DiscoverInput, opts service.RunOptions) (*models.Recommendations, error)
	SimilarTo(ctx context.Context, kind models.MediaKind, externalID int, opts service.RunOptions) (*models.Recommendations, error)
	ItemBased(ctx context.Context, kind models.MediaKind, in service.ItemBasedInput, opts service.RunOptions) (*models.Recommendations, error)
	UserBased(ctx context.Context, kind models.MediaKind, in service.UserBasedInput, opts service.RunOptions) (*models.Recommendations, error)
	Hybrid(ctx context.Context, kind models.MediaKind, strategy recommender.Strategy, in service.HybridInput, opts service.RunOptions) (*models.Recommendations, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecommendationRun, error)
}

type RecommendHandler struct {
	svc Recommender
}

func NewRecommendHandler(s Recommender) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

func runOptions(r *http.Request) service.RunOptions {
	return service.RunOptions{
		UserID:  optionalUserID(r.Context()),
		Refresh: r.URL.Query().Get("refresh") == "true",
	}
}

func respondRecommendations(w http.ResponseWriter, recs *models.Recommendations) {
	msg := "recommendations ready"
	switch recs.Outcome {
	case models.OutcomeNoCandidates:
		msg = "no candidates"
	case models.OutcomeNoMatches:
		msg = "no candidates matched the filters"
	}
	respondOK(w, http.StatusOK, msg, recs)
}

// ====== Content-based ======

// @Summary Similares a una lista de semillas
// @Tags recommender
// @Accept json
// @Produce json
// @Param kind path string true "movie | tv"
// @Param refresh query bool false "ignora el cache de candidatos"
// @Param body body service.SimilarInput true "semillas y filtros"
// @Success 200 {object} models.Recommendations
// @Failure 503 {object} apiResponse
// @Router /recommender/{kind}/similar [post]
func (h *RecommendHandler) Similar(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}
	var in service.SimilarInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	recs, err := h.svc.Similar(r.Context(), kind, in, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// @Summary Descubrir por features
// @Description Si no vienen filtros, los features de metadata hacen de post-filtro.
// @Tags recommender
// @Accept json
// @Produce json
// @Param kind path string true "movie | tv"
// @Param body body service.DiscoverInput true "features y filtros"
// @Success 200 {object} models.Recommendations
// @Router /recommender/{kind}/discover [post]
func (h *RecommendHandler) Discover(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}
	var in service.DiscoverInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	recs, err := h.svc.Discover(r.Context(), kind, in, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// @Summary Similares a un item
// @Tags recommender
// @Produce json
// @Param kind path string true "movie | tv"
// @Param id path int true "tmdbId"
// @Success 200 {object} models.Recommendations
// @Router /recommender/{kind}/{id}/similar [get]
func (h *RecommendHandler) SimilarTo(w http.ResponseWriter, r *http.Request) {
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

	recs, err := h.svc.SimilarTo(r.Context(), kind, id, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// ====== Collaborative ======

// @Summary Collaborative item-based
// @Tags recommender
// @Accept json
// @Produce json
// @Param kind path string true "movie | tv"
// @Param body body service.ItemBasedInput true "tmdbIds"
// @Success 200 {object} models.Recommendations
// @Router /recommender/{kind}/collaborative/item [post]
func (h *RecommendHandler) ItemBased(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}
	var in service.ItemBasedInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	recs, err := h.svc.ItemBased(r.Context(), kind, in, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// @Summary Collaborative user-based
// @Tags recommender
// @Accept json
// @Produce json
// @Param kind path string true "movie | tv"
// @Param body body service.UserBasedInput true "ratings {tmdbId: 1..5}"
// @Success 200 {object} models.Recommendations
// @Router /recommender/{kind}/collaborative/user [post]
func (h *RecommendHandler) UserBased(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}
	var in service.UserBasedInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	recs, err := h.svc.UserBased(r.Context(), kind, in, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// ====== Hybrid ======

// @Summary Hybrid (weighted | switching)
// @Tags recommender
// @Accept json
// @Produce json
// @Param kind path string true "movie | tv"
// @Param mode path string true "weighted | switching"
// @Param body body service.HybridInput true "ratings [{tmdb_id, rating}]"
// @Success 200 {object} models.Recommendations
// @Router /recommender/{kind}/hybrid/{mode} [post]
func (h *RecommendHandler) Hybrid(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}

	var strategy recommender.Strategy
	switch chi.URLParam(r, "mode") {
	case "weighted":
		strategy = recommender.HybridWeighted
	case "switching":
		strategy = recommender.HybridSwitching
	default:
		respondError(w, r, http.StatusNotFound, "modo híbrido desconocido", nil)
		return
	}

	var in service.HybridInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, r, http.StatusBadRequest, "body inválido", err)
		return
	}

	recs, err := h.svc.Hybrid(r.Context(), kind, strategy, in, runOptions(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondRecommendations(w, recs)
}

// ====== Historial ======

// @Summary Historial de recomendaciones del usuario
// @Tags recommender
// @Security BearerAuth
// @Produce json
// @Param limit query int false "máximo (default 20, tope 100)"
// @Success 200 {array} models.RecommendationRun
// @Router /user/recommendations/history [get]
func (h *RecommendHandler) History(w http.ResponseWriter, r *http.Request) {
	runs, err := h.svc.History(r.Context(), UserIDFromContext(r.Context()), int64(queryInt(r, "limit", 0)))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "history fetched", runs)
}

// ====== WebSocket ======

// upgrader global (no afecta a swagger)
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type        string                  `json:"type"`
	Msg         string                  `json:"msg,omitempty"`
	Progress    *service.ProgressEvent  `json:"progress,omitempty"`
	Result      *models.Recommendations `json:"result,omitempty"`
	Error       string                  `json:"error,omitempty"`
	GeneratedAt *time.Time              `json:"generatedAt,omitempty"`
}

// @Summary Discover en tiempo real (WebSocket)
// @Description Lee un DiscoverInput y emite start, un progress por candidato resuelto y recommendations (o error).
// @Tags recommender
// @Param kind path string true "movie | tv"
// @Success 101
// @Router /recommender/{kind}/ws/discover [get]
func (h *RecommendHandler) DiscoverWS(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "kind debe ser movie o tv", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("[ws] no se pudo abrir WebSocket")
		return
	}
	defer conn.Close()

	log := logging.Ctx(r.Context())
	send := func(m wsMessage) {
		if err := conn.WriteJSON(m); err != nil {
			log.Debug().Err(err).Str("type", m.Type).Msg("[ws] escritura falló")
		}
	}

	var in service.DiscoverInput
	if err := conn.ReadJSON(&in); err != nil {
		send(wsMessage{Type: "error", Error: "request inválido: " + err.Error()})
		return
	}
	if err := validate.Struct(in); err != nil {
		send(wsMessage{Type: "error", Error: err.Error()})
		return
	}

	send(wsMessage{Type: "start", Msg: "conexión abierta, resolviendo candidatos"})

	opts := runOptions(r)
	// se llama serializado desde el assembler
	opts.Progress = func(ev service.ProgressEvent) {
		send(wsMessage{Type: "progress", Progress: &ev})
	}

	recs, err := h.svc.Discover(r.Context(), kind, in, opts)
	if err != nil {
		_, msg := statusFor(err)
		send(wsMessage{Type: "error", Error: msg})
		return
	}

	now := time.Now().UTC()
	send(wsMessage{Type: "recommendations", Result: recs, GeneratedAt: &now})
}
