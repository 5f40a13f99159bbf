// Package recommender es el cliente HTTP del microservicio de recomendaciones.
package recommender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/metrics"
	"mediacore/internal/models"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Strategy elige el endpoint del recomendador.
type Strategy string

const (
	ContentSimilar  Strategy = "content-based-similar"
	ContentDiscover Strategy = "content-based-discover"
	CollabItem      Strategy = "collaborative-item"
	CollabUser      Strategy = "collaborative-user"
	HybridWeighted  Strategy = "hybrid-weighted"
	HybridSwitching Strategy = "hybrid-switching"
)

var strategyPaths = map[Strategy]string{
	ContentSimilar:  "/content-based/v2/similar-items",
	ContentDiscover: "/content-based/v2/discover",
	CollabItem:      "/collaborative/v2/recommendations/item-based",
	CollabUser:      "/collaborative/v2/recommendations/user-based",
	HybridWeighted:  "/hybrid/v1/recommendations/weighed",
	HybridSwitching: "/hybrid/v1/recommendations/switching",
}

func (s Strategy) Valid() bool {
	_, ok := strategyPaths[s]
	return ok
}

var errUnknownStrategy = errors.New("estrategia desconocida")

type ErrorKind string

const (
	Timeout            ErrorKind = "timeout"
	ServiceUnavailable ErrorKind = "service_unavailable"
	InvalidResponse    ErrorKind = "invalid_response"
	// la estrategia no existe; no se llamó al servicio
	InvalidRequest     ErrorKind = "invalid_request"
)

// Error es la falla tipada de una llamada al recomendador.
type Error struct {
	Kind     ErrorKind
	Strategy Strategy
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("recommender %s: %s", e.Strategy, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf devuelve el ErrorKind de err, o "" si no es un *Error.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

type Config struct {
	BaseURL string
	// timeout por defecto del lado del llamador
	Timeout time.Duration
	// overrides por estrategia
	Timeouts map[Strategy]time.Duration
	// fallas consecutivas para abrir el circuito (default 5)
	BreakerThreshold uint32
	// tiempo en open antes de pasar a half-open (default 30s)
	BreakerCooldown time.Duration
	HTTPClient      *http.Client
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	hc := cfg.HTTPClient
	if hc == nil {
		// el límite real lo pone el contexto de cada llamada
		hc = &http.Client{}
	}

	c := &Client{cfg: cfg, http: hc}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "recommender",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		// un 4xx/5xx "normal" no indica que el servicio esté caído
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) == InvalidResponse || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecommenderCircuitState.Set(float64(to))
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[recommender] cambio de estado del circuito")
		},
	})
	return c
}

func (c *Client) timeoutFor(s Strategy) time.Duration {
	if d, ok := c.cfg.Timeouts[s]; ok && d > 0 {
		return d
	}
	return c.cfg.Timeout
}

// Recommend postea payload al endpoint de la estrategia y devuelve los
// candidatos en el orden del ranking. Entradas mal formadas se descartan.
func (c *Client) Recommend(ctx context.Context, strategy Strategy, payload any) ([]models.RecommendationCandidate, error) {
	path, ok := strategyPaths[strategy]
	if !ok {
		return nil, &Error{Kind: InvalidRequest, Strategy: strategy, Err: errUnknownStrategy}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("recommender: payload: %w", err)
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		return c.post(ctx, strategy, path, body)
	})
	metrics.RecommenderDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &Error{Kind: ServiceUnavailable, Strategy: strategy, Err: err}
	}
	if err != nil {
		result := string(KindOf(err))
		if result == "" {
			result = "error"
		}
		metrics.RecommenderRequests.WithLabelValues(string(strategy), result).Inc()
		logging.Ctx(ctx).Warn().Str("strategy", string(strategy)).Err(err).Msg("[recommender] llamada falló")
		return nil, err
	}

	cands, err := parseCandidates(raw)
	if err != nil {
		metrics.RecommenderRequests.WithLabelValues(string(strategy), string(InvalidResponse)).Inc()
		return nil, &Error{Kind: InvalidResponse, Strategy: strategy, Status: http.StatusOK, Err: err}
	}
	metrics.RecommenderRequests.WithLabelValues(string(strategy), "ok").Inc()
	return cands, nil
}

func (c *Client) post(ctx context.Context, strategy Strategy, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeoutFor(strategy))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, strategy, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(ctx, strategy, err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, &Error{Kind: ServiceUnavailable, Strategy: strategy, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: InvalidResponse, Strategy: strategy, Status: resp.StatusCode}
	}
	return raw, nil
}

func classifyTransport(ctx context.Context, strategy Strategy, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: Timeout, Strategy: strategy, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: Timeout, Strategy: strategy, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// conexión rechazada, host sin resolver, reset...
	return &Error{Kind: ServiceUnavailable, Strategy: strategy, Err: err}
}

// ====== parseo de respuesta ======

type rawEntry struct {
	TMDBID json.RawMessage `json:"tmdb_id"`
	Score  json.RawMessage `json:"score"`
}

// parseCandidates acepta un array o un objeto {similarMedia:[...]} / {recommendations:[...]}.
func parseCandidates(raw []byte) ([]models.RecommendationCandidate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("body vacío")
	}

	var list []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	case '{':
		var env struct {
			SimilarMedia    []json.RawMessage `json:"similarMedia"`
			Recommendations []json.RawMessage `json:"recommendations"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, err
		}
		switch {
		case env.SimilarMedia != nil:
			list = env.SimilarMedia
		case env.Recommendations != nil:
			list = env.Recommendations
		default:
			return nil, errors.New("objeto sin similarMedia ni recommendations")
		}
	default:
		return nil, errors.New("se esperaba un array o un objeto")
	}

	out := make([]models.RecommendationCandidate, 0, len(list))
	for _, item := range list {
		var e rawEntry
		if err := json.Unmarshal(item, &e); err != nil {
			continue
		}
		id, ok := parseID(e.TMDBID)
		if !ok {
			continue
		}
		cand := models.RecommendationCandidate{ExternalID: id}
		var score float64
		if len(e.Score) > 0 && json.Unmarshal(e.Score, &score) == nil {
			cand.RawScore = &score
		}
		out = append(out, cand)
	}
	return out, nil
}

// parseID acepta número entero o string numérico.
func parseID(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n <= 0 || n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}
