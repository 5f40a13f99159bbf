package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/models"
	"mediacore/internal/recommender"

	"github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultMaxBatch = 20
	// similar-items siempre pidió 10
	DefaultSimilarCount = 10
	candidateCacheTTL   = time.Hour
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type RecommendService struct {
	source   CandidateSource
	resolver MediaResolver
	history  HistoryStore
	cache    JSONCache
	maxBatch int
}

func NewRecommendService(
	source CandidateSource,
	resolver MediaResolver,
	history HistoryStore,
	cache JSONCache,
	maxBatch int,
) *RecommendService {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatch
	}
	return &RecommendService{
		source:   source,
		resolver: resolver,
		history:  history,
		cache:    cache,
		maxBatch: maxBatch,
	}
}

// ProgressEvent se emite cada vez que termina la resolución de un candidato.
type ProgressEvent struct {
	Index    int  `json:"index"`
	TMDBID   int  `json:"tmdb_id"`
	Resolved bool `json:"resolved"`
	Done     int  `json:"done"`
	Total    int  `json:"total"`
}

// ProgressFunc nunca se llama en paralelo. Corre con el lock del armado
// tomado: no debe bloquear.
type ProgressFunc func(ProgressEvent)

// ====== Petición de recomendaciones ======

type RecRequest struct {
	Kind     models.MediaKind
	Strategy recommender.Strategy
	Payload  any
	Filters  models.Filters
	// tope de candidatos a resolver (0 = todos)
	Limit    int
	UserID   *primitive.ObjectID
	Refresh  bool
	Progress ProgressFunc
}

func candidateCacheKey(strategy recommender.Strategy, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("rec:%s:%s", strategy, hex.EncodeToString(sum[:])), nil
}

// Recommend pide candidatos al recomendador (o al cache) y arma el resultado.
// Los errores del recomendador se devuelven tal cual (*recommender.Error).
func (s *RecommendService) Recommend(ctx context.Context, req RecRequest) (*models.Recommendations, error) {
	cands, err := s.candidates(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(cands) > req.Limit {
		cands = cands[:req.Limit]
	}

	out := s.Assemble(ctx, req.Kind, cands, req.Filters, req.Progress)

	// el historial no rompe la respuesta si falla
	if s.history != nil {
		run := &models.RecommendationRun{
			UserID:     req.UserID,
			Strategy:   string(req.Strategy),
			Kind:       req.Kind,
			Candidates: candidateIDs(cands),
			Results:    recordIDs(out.Items),
			Outcome:    out.Outcome,
			Filters:    req.Filters,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.history.Insert(ctx, run); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("strategy", string(req.Strategy)).
				Msg("[recommend] error guardando historial en Mongo")
		}
	}

	return out, nil
}

// History devuelve las últimas corridas del usuario.
func (s *RecommendService) History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.RecommendationRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	} else if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if s.history == nil {
		return []models.RecommendationRun{}, nil
	}
	return s.history.FindByUser(ctx, userID, limit)
}

func (s *RecommendService) candidates(ctx context.Context, req RecRequest) ([]models.RecommendationCandidate, error) {
	log := logging.Ctx(ctx)

	key, keyErr := candidateCacheKey(req.Strategy, req.Payload)
	if keyErr == nil && s.cache != nil && !req.Refresh {
		var cached []models.RecommendationCandidate
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("[recommend] lectura de cache Redis falló")
		} else if ok {
			return cached, nil
		}
	}

	cands, err := s.source.Recommend(ctx, req.Strategy, req.Payload)
	if err != nil {
		return nil, err
	}

	if keyErr == nil && s.cache != nil && len(cands) > 0 {
		if err := s.cache.SetJSON(ctx, key, cands, candidateCacheTTL); err != nil {
			log.Warn().Err(err).Msg("[recommend] error cacheando candidatos en Redis")
		}
	}
	return cands, nil
}

// Assemble resuelve los candidatos en paralelo (hasta maxBatch a la vez),
// descarta los que fallan y aplica los filtros. El orden de salida es el del
// ranking del recomendador, nunca el de finalización.
func (s *RecommendService) Assemble(
	ctx context.Context,
	kind models.MediaKind,
	cands []models.RecommendationCandidate,
	filters models.Filters,
	progress ProgressFunc,
) *models.Recommendations {
	if len(cands) == 0 {
		return &models.Recommendations{Outcome: models.OutcomeNoCandidates, Items: []models.MediaRecord{}}
	}

	slots := make([]*models.MediaRecord, len(cands))
	var (
		mu   sync.Mutex
		done int
	)

	p := pool.New().WithMaxGoroutines(s.maxBatch)
	for i, c := range cands {
		p.Go(func() {
			res, err := s.resolver.Resolve(ctx, kind, c.ExternalID)
			ok := err == nil && res != nil && res.Record != nil
			if ok {
				slots[i] = res.Record
			} else {
				logging.Ctx(ctx).Debug().Err(err).Int("tmdb_id", c.ExternalID).
					Msg("[recommend] candidato descartado")
			}

			if progress != nil {
				mu.Lock()
				done++
				progress(ProgressEvent{Index: i, TMDBID: c.ExternalID, Resolved: ok, Done: done, Total: len(cands)})
				mu.Unlock()
			}
		})
	}
	p.Wait()

	resolved := make([]models.MediaRecord, 0, len(cands))
	for _, rec := range slots {
		if rec != nil {
			resolved = append(resolved, *rec)
		}
	}
	if len(resolved) == 0 {
		return &models.Recommendations{Outcome: models.OutcomeNoCandidates, Items: []models.MediaRecord{}}
	}

	items := ApplyFilters(resolved, filters)
	if len(items) == 0 {
		return &models.Recommendations{Outcome: models.OutcomeNoMatches, Items: []models.MediaRecord{}}
	}
	return &models.Recommendations{Outcome: models.OutcomeOK, Items: items}
}

// ====== Post-filtros ======

// ApplyFilters aplica, en este orden: rating mínimo, año mínimo, director y
// cast. Un filtro vacío se saltea. Mantiene el orden relativo.
func ApplyFilters(items []models.MediaRecord, f models.Filters) []models.MediaRecord {
	out := items

	if f.MinRating != nil {
		min := *f.MinRating
		out = keep(out, func(m *models.MediaRecord) bool {
			return m.VoteAverage != nil && *m.VoteAverage >= min
		})
	}

	if f.MinYear != nil {
		min := *f.MinYear
		out = keep(out, func(m *models.MediaRecord) bool {
			y, ok := m.ReleaseYear()
			return ok && y >= min
		})
	}

	if terms := normalizeTerms(f.Directors); len(terms) > 0 {
		out = keep(out, func(m *models.MediaRecord) bool { return anyContains(m.DirectorNames(), terms) })
	}

	if terms := normalizeTerms(f.Cast); len(terms) > 0 {
		out = keep(out, func(m *models.MediaRecord) bool { return anyContains(m.CastNames(), terms) })
	}

	return out
}

func keep(items []models.MediaRecord, pred func(*models.MediaRecord) bool) []models.MediaRecord {
	out := make([]models.MediaRecord, 0, len(items))
	for i := range items {
		if pred(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func normalizeTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// anyContains: algún nombre contiene algún término (sin mayúsculas).
func anyContains(names, terms []string) bool {
	for _, n := range names {
		n = strings.ToLower(n)
		for _, t := range terms {
			if strings.Contains(n, t) {
				return true
			}
		}
	}
	return false
}

func candidateIDs(c []models.RecommendationCandidate) []int {
	out := make([]int, len(c))
	for i := range c {
		out[i] = c[i].ExternalID
	}
	return out
}

func recordIDs(items []models.MediaRecord) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = items[i].ExternalID
	}
	return out
}
