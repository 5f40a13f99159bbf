package service

import (
	"context"
	"errors"
	"time"

	"mediacore/internal/logging"
	"mediacore/internal/metrics"
	"mediacore/internal/models"
	"mediacore/internal/normalizer"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResolutionState es el estado alcanzado al resolver un item.
type ResolutionState string

const (
	StateCacheHitFresh          ResolutionState = "cache_hit_fresh"
	StateCacheHitStaleOrPartial ResolutionState = "cache_hit_stale_or_partial"
	StateCacheMiss              ResolutionState = "cache_miss"
	StateUpstreamFetching       ResolutionState = "upstream_fetching"
	StateUpstreamSucceeded      ResolutionState = "upstream_succeeded"
	StateUpstreamFailed         ResolutionState = "upstream_failed"
	StateResolved               ResolutionState = "resolved"
	StateResolvedFromFallback   ResolutionState = "resolved_from_fallback"
	StateFailed                 ResolutionState = "failed"
)

// Resolution es el resultado de Resolve. Path guarda los estados recorridos;
// State es el terminal. Cause es la falla que provocó un fallback (nunca se
// devuelve al llamador como error).
type Resolution struct {
	Record *models.MediaRecord
	State  ResolutionState
	Path   []ResolutionState
	Cause  error
}

func (r *Resolution) enter(s ResolutionState) {
	r.Path = append(r.Path, s)
	r.State = s
}

type ReviewLister interface {
	ListByMedia(ctx context.Context, mediaID primitive.ObjectID) ([]models.ReviewView, error)
}

// MediaService decide, por item, si sirve el cache, refresca desde el
// catálogo o cae al registro guardado.
type MediaService struct {
	media      MediaStore
	catalog    ItemCatalog
	reviews    ReviewLister
	staleAfter time.Duration
	now        func() time.Time
}

func NewMediaService(media MediaStore, cat ItemCatalog, reviews ReviewLister, staleAfter time.Duration) *MediaService {
	if staleAfter <= 0 {
		staleAfter = models.DefaultStaleAfter
	}
	return &MediaService{
		media:      media,
		catalog:    cat,
		reviews:    reviews,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Resolve devuelve el registro de (kind, id).
//
// Errores posibles: ErrNotFound (404 confirmado y sin cache) y
// ErrUpstreamUnavailable (falla transitoria, de normalización o de escritura,
// sin cache). Si hay algo guardado, cualquier falla termina en fallback.
func (s *MediaService) Resolve(ctx context.Context, kind models.MediaKind, externalID int) (*Resolution, error) {
	res := &Resolution{}
	log := logging.Ctx(ctx).With().Str("kind", string(kind)).Int("tmdb_id", externalID).Logger()

	cached, err := s.media.FindByExternalID(ctx, kind, externalID)
	if err != nil {
		// un error de lectura cuenta como miss
		log.Warn().Err(err).Msg("[media] lectura de cache falló, se trata como miss")
		cached = nil
	}

	switch {
	case cached == nil:
		res.enter(StateCacheMiss)
	case cached.NeedsRefresh(s.now(), s.staleAfter):
		res.enter(StateCacheHitStaleOrPartial)
	default:
		res.enter(StateCacheHitFresh)
		res.Record = cached
		return s.finish(kind, res), nil
	}

	res.enter(StateUpstreamFetching)
	bundle := s.catalog.FetchItemBundle(ctx, kind, externalID)

	if bundle.NotFound() {
		res.enter(StateUpstreamFailed)
		return s.fallback(&log, kind, res, cached, bundle.Err(), ErrNotFound)
	}
	if !bundle.Complete() {
		// merge todo-o-nada: un bundle parcial es una falla transitoria
		res.enter(StateUpstreamFailed)
		return s.fallback(&log, kind, res, cached, bundle.Err(), ErrUpstreamUnavailable)
	}

	rec, err := normalizer.FromBundle(kind, bundle)
	if err != nil {
		res.enter(StateUpstreamFailed)
		return s.fallback(&log, kind, res, cached, err, ErrUpstreamUnavailable)
	}
	res.enter(StateUpstreamSucceeded)

	stored, err := s.media.Upsert(ctx, rec)
	if err != nil {
		return s.fallback(&log, kind, res, cached, err, ErrUpstreamUnavailable)
	}

	res.enter(StateResolved)
	res.Record = stored
	return s.finish(kind, res), nil
}

func (s *MediaService) fallback(
	log *zerolog.Logger,
	kind models.MediaKind,
	res *Resolution,
	cached *models.MediaRecord,
	cause error,
	terminal error,
) (*Resolution, error) {
	res.Cause = cause
	if cached != nil {
		log.Warn().Err(cause).Str("data_status", string(cached.Completeness)).
			Msg("[media] refresco falló, se sirve el registro guardado")
		res.enter(StateResolvedFromFallback)
		res.Record = cached
		return s.finish(kind, res), nil
	}

	log.Warn().Err(cause).Msg("[media] refresco falló sin registro guardado")
	res.enter(StateFailed)
	s.finish(kind, res)
	return res, errors.Join(terminal, cause)
}

func (s *MediaService) finish(kind models.MediaKind, res *Resolution) *Resolution {
	metrics.MediaResolutions.WithLabelValues(string(kind), string(res.State)).Inc()
	return res
}

// GetDetail resuelve el item y le agrega sus reseñas (más nuevas primero).
// Si la lectura de reseñas falla el detalle sale igual, sin reseñas.
func (s *MediaService) GetDetail(ctx context.Context, kind models.MediaKind, externalID int) (*models.MediaDetail, error) {
	res, err := s.Resolve(ctx, kind, externalID)
	if err != nil {
		return nil, err
	}

	detail := &models.MediaDetail{MediaRecord: res.Record, Reviews: []models.ReviewView{}}
	if s.reviews == nil || res.Record.ID.IsZero() {
		return detail, nil
	}

	reviews, err := s.reviews.ListByMedia(ctx, res.Record.ID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("tmdb_id", externalID).Msg("[media] no se pudieron leer las reseñas")
		return detail, nil
	}
	if reviews != nil {
		detail.Reviews = reviews
	}
	return detail, nil
}

// ResolveRef resuelve una referencia {tmdbId, mediaType} de un request.
func (s *MediaService) ResolveRef(ctx context.Context, ref models.MediaRef) (*models.MediaRecord, error) {
	kind, ok := models.ParseKind(ref.MediaType)
	if !ok || ref.ExternalID <= 0 {
		return nil, ErrInvalidInput
	}
	res, err := s.Resolve(ctx, kind, ref.ExternalID)
	if err != nil {
		return nil, err
	}
	return res.Record, nil
}
