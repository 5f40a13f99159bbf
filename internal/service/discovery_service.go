package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mediacore/internal/catalog"
	"mediacore/internal/logging"
	"mediacore/internal/metrics"
	"mediacore/internal/models"
	"mediacore/internal/normalizer"
)

const DefaultListCacheTTL = 30 * time.Minute

var movieCategories = map[string]bool{
	"popular": true, "top_rated": true, "upcoming": true, "now_playing": true,
}

var tvCategories = map[string]bool{
	"popular": true, "top_rated": true, "on_the_air": true, "airing_today": true,
}

// ValidCategory indica si category existe para kind.
func ValidCategory(kind models.MediaKind, category string) bool {
	if kind == models.KindSeries {
		return tvCategories[category]
	}
	return movieCategories[category]
}

// DiscoveryService sirve listas del catálogo (categorías, trending, búsqueda)
// cacheadas en Redis. Cada item listado queda guardado como Partial.
type DiscoveryService struct {
	catalog ListCatalog
	media   MediaStore
	cache   JSONCache
	ttl     time.Duration
}

func NewDiscoveryService(cat ListCatalog, media MediaStore, cache JSONCache, ttl time.Duration) *DiscoveryService {
	if ttl <= 0 {
		ttl = DefaultListCacheTTL
	}
	return &DiscoveryService{catalog: cat, media: media, cache: cache, ttl: ttl}
}

func (s *DiscoveryService) Category(ctx context.Context, kind models.MediaKind, category string, page int) (*models.MediaPage, error) {
	if !ValidCategory(kind, category) {
		return nil, fmt.Errorf("%w: categoría %q no existe para %s", ErrInvalidInput, category, kind)
	}
	key := fmt.Sprintf("list:%s:%s:%d", kind, category, normPage(page))
	return s.cached(ctx, key, func() (*models.MediaPage, error) {
		lp, err := s.catalog.Category(ctx, kind, category, page)
		if err != nil {
			return nil, err
		}
		return s.build(ctx, kind, lp, false), nil
	})
}

func (s *DiscoveryService) Trending(ctx context.Context, kind models.MediaKind, window string, page int) (*models.MediaPage, error) {
	if window == "" {
		window = "day"
	}
	if window != "day" && window != "week" {
		return nil, fmt.Errorf("%w: timeWindow debe ser day o week", ErrInvalidInput)
	}
	key := fmt.Sprintf("trending:%s:%s:%d", kind, window, normPage(page))
	return s.cached(ctx, key, func() (*models.MediaPage, error) {
		lp, err := s.catalog.Trending(ctx, kind, window, page)
		if err != nil {
			return nil, err
		}
		return s.build(ctx, kind, lp, false), nil
	})
}

// Search busca películas, series y personas.
func (s *DiscoveryService) Search(ctx context.Context, query string, page int) (*models.MediaPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q vacío", ErrInvalidInput)
	}
	key := fmt.Sprintf("search:%s:%d", url.QueryEscape(strings.ToLower(query)), normPage(page))
	return s.cached(ctx, key, func() (*models.MediaPage, error) {
		lp, err := s.catalog.Search(ctx, query, page)
		if err != nil {
			return nil, err
		}
		return s.build(ctx, models.KindMovie, lp, true), nil
	})
}

func normPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func (s *DiscoveryService) cached(ctx context.Context, key string, load func() (*models.MediaPage, error)) (*models.MediaPage, error) {
	log := logging.Ctx(ctx)

	if s.cache != nil {
		var page models.MediaPage
		ok, err := s.cache.GetJSON(ctx, key, &page)
		switch {
		case err != nil:
			metrics.ListCacheLookups.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str("key", key).Msg("[redis] lectura falló")
		case ok:
			metrics.ListCacheLookups.WithLabelValues("hit").Inc()
			return &page, nil
		default:
			metrics.ListCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	page, err := load()
	if err != nil {
		return nil, listError(err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, page, s.ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("[redis] no se pudo cachear la lista")
		}
	}
	return page, nil
}

// listError traduce las fallas del catálogo a los errores del servicio.
func listError(err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}

// build guarda cada item como Partial (sin pisar registros existentes).
// Si Mongo falla, el item sale igual, sin _id.
func (s *DiscoveryService) build(ctx context.Context, kind models.MediaKind, lp *catalog.ListPage, withPeople bool) *models.MediaPage {
	out := &models.MediaPage{
		Page:         lp.Page,
		TotalPages:   lp.TotalPages,
		TotalResults: lp.TotalResults,
		Results:      make([]models.MediaRecord, 0, len(lp.Results)),
	}

	for _, it := range lp.Results {
		if it.MediaType == "person" {
			if withPeople {
				out.People = append(out.People, personHit(it))
			}
			continue
		}
		stub, ok := normalizer.StubFromListItem(kind, it)
		if !ok {
			continue
		}
		rec, err := s.media.EnsurePartial(ctx, stub)
		if err != nil || rec == nil {
			logging.Ctx(ctx).Warn().Err(err).Int("tmdb_id", stub.ExternalID).Msg("[media] no se pudo guardar el stub")
			out.Results = append(out.Results, stub.Record())
			continue
		}
		out.Results = append(out.Results, *rec)
	}
	return out
}

func personHit(it catalog.ListItem) models.PersonHit {
	name := ""
	if it.Name != nil {
		name = *it.Name
	}
	return models.PersonHit{
		ExternalID: it.ID,
		Name:       name,
		ProfileURL: normalizer.ImageURL("w500", it.ProfilePath),
		Popularity: it.Popularity,
	}
}
