package service

import (
	"context"
	"fmt"
	"strconv"

	"mediacore/internal/models"
	"mediacore/internal/recommender"

	"github.com/sourcegraph/conc/pool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RunOptions acompaña a cada estrategia.
type RunOptions struct {
	UserID   *primitive.ObjectID
	Refresh  bool
	Progress ProgressFunc
}

type SimilarInput struct {
	TMDBIDs []int           `json:"tmdbIds" validate:"required,min=1,max=50,dive,gt=0"`
	Filters *models.Filters `json:"filters"`
}

type DiscoverInput struct {
	TMDBID   *int                 `json:"tmdbId" validate:"omitempty,gt=0"`
	Metadata recommender.Metadata `json:"metadata"`
	Filters  *models.Filters      `json:"filters"`
}

type ItemBasedInput struct {
	TMDBIDs []int           `json:"tmdbIds" validate:"required,min=1,max=100,dive,gt=0"`
	Filters *models.Filters `json:"filters"`
}

type UserBasedInput struct {
	// tmdbId -> rating 1..5
	Ratings map[string]float64 `json:"ratings" validate:"required,min=1,dive,gte=1,lte=5"`
	Filters *models.Filters    `json:"filters"`
}

type RatedItem struct {
	TMDBID int     `json:"tmdb_id" validate:"required,gt=0"`
	Rating float64 `json:"rating" validate:"gte=0,lte=10"`
}

type HybridInput struct {
	Ratings []RatedItem     `json:"ratings" validate:"required,min=1,dive"`
	Filters *models.Filters `json:"filters"`
}

func filtersOrEmpty(f *models.Filters) models.Filters {
	if f == nil {
		return models.Filters{}
	}
	return *f
}

// Features resuelve ids y arma sus features de contenido, en el orden
// pedido. Los que no se pueden resolver se omiten.
func (s *RecommendService) Features(ctx context.Context, kind models.MediaKind, ids []int) []recommender.ItemFeatures {
	slots := make([]*recommender.ItemFeatures, len(ids))

	p := pool.New().WithMaxGoroutines(s.maxBatch)
	for i, id := range ids {
		p.Go(func() {
			res, err := s.resolver.Resolve(ctx, kind, id)
			if err != nil || res == nil || res.Record == nil {
				return
			}
			slots[i] = &recommender.ItemFeatures{
				TMDBID:   res.Record.ExternalID,
				Metadata: recommender.MetadataFromRecord(res.Record),
			}
		})
	}
	p.Wait()

	out := make([]recommender.ItemFeatures, 0, len(ids))
	for _, f := range slots {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func seedsError(n int) error {
	return fmt.Errorf("%w: ninguno de los %d ids semilla pudo resolverse", ErrNotFound, n)
}

// Similar: content-based similar-items a partir de una lista de semillas.
func (s *RecommendService) Similar(ctx context.Context, kind models.MediaKind, in SimilarInput, opts RunOptions) (*models.Recommendations, error) {
	items := s.Features(ctx, kind, in.TMDBIDs)
	if len(items) == 0 {
		return nil, seedsError(len(in.TMDBIDs))
	}
	zero := 0.0
	for i := range items {
		items[i].Rating = &zero
	}

	return s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: recommender.ContentSimilar,
		Payload:  recommender.SimilarRequest{Items: items, NRecommendations: DefaultSimilarCount},
		Filters:  filtersOrEmpty(in.Filters),
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
}

// Discover: content-based discover a partir de features sueltos. Si no vienen
// filtros explícitos, los propios features hacen de post-filtro.
func (s *RecommendService) Discover(ctx context.Context, kind models.MediaKind, in DiscoverInput, opts RunOptions) (*models.Recommendations, error) {
	if in.Metadata.MediaType == "" {
		in.Metadata.MediaType = string(kind)
	}
	filters := in.Metadata.Filters()
	if in.Filters != nil {
		filters = *in.Filters
	}

	return s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: recommender.ContentDiscover,
		Payload:  recommender.DiscoverRequest{TMDBID: in.TMDBID, Metadata: in.Metadata},
		Filters:  filters,
		Limit:    s.maxBatch,
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
}

// SimilarTo: discover sembrado con un item ya resuelto; el propio item se
// excluye del resultado.
func (s *RecommendService) SimilarTo(ctx context.Context, kind models.MediaKind, externalID int, opts RunOptions) (*models.Recommendations, error) {
	res, err := s.resolver.Resolve(ctx, kind, externalID)
	if err != nil {
		return nil, err
	}
	id := res.Record.ExternalID

	out, err := s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: recommender.ContentDiscover,
		Payload:  recommender.DiscoverRequest{TMDBID: &id, Metadata: recommender.MetadataFromRecord(res.Record)},
		Limit:    s.maxBatch + 1,
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	items := out.Items[:0]
	for _, m := range out.Items {
		if m.ExternalID != id {
			items = append(items, m)
		}
	}
	out.Items = items
	if len(out.Items) == 0 && out.Outcome == models.OutcomeOK {
		out.Outcome = models.OutcomeNoCandidates
	}
	return out, nil
}

// ItemBased: collaborative item-based; el recomendador recibe el array de ids.
func (s *RecommendService) ItemBased(ctx context.Context, kind models.MediaKind, in ItemBasedInput, opts RunOptions) (*models.Recommendations, error) {
	return s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: recommender.CollabItem,
		Payload:  in.TMDBIDs,
		Filters:  filtersOrEmpty(in.Filters),
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
}

// UserBased: collaborative user-based con el mapa {tmdbId: rating}.
func (s *RecommendService) UserBased(ctx context.Context, kind models.MediaKind, in UserBasedInput, opts RunOptions) (*models.Recommendations, error) {
	ratings := make(map[int]float64, len(in.Ratings))
	for k, v := range in.Ratings {
		id, err := strconv.Atoi(k)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: tmdbId inválido %q", ErrInvalidInput, k)
		}
		ratings[id] = v
	}

	return s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: recommender.CollabUser,
		Payload:  recommender.RatingsMap(ratings),
		Filters:  filtersOrEmpty(in.Filters),
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
}

// Hybrid: weighted o switching. Los ítems puntuados van como mapa y además
// con sus features en request_data.
func (s *RecommendService) Hybrid(
	ctx context.Context,
	kind models.MediaKind,
	strategy recommender.Strategy,
	in HybridInput,
	opts RunOptions,
) (*models.Recommendations, error) {
	if strategy != recommender.HybridWeighted && strategy != recommender.HybridSwitching {
		return nil, fmt.Errorf("%w: estrategia híbrida desconocida %q", ErrInvalidInput, strategy)
	}

	ratings := make(map[int]float64, len(in.Ratings))
	ids := make([]int, 0, len(in.Ratings))
	for _, r := range in.Ratings {
		if _, dup := ratings[r.TMDBID]; !dup {
			ids = append(ids, r.TMDBID)
		}
		ratings[r.TMDBID] = r.Rating
	}

	return s.Recommend(ctx, RecRequest{
		Kind:     kind,
		Strategy: strategy,
		Payload: recommender.HybridRequest{
			Ratings:     recommender.RatingsMap(ratings),
			RequestData: s.Features(ctx, kind, ids),
		},
		Filters:  filtersOrEmpty(in.Filters),
		UserID:   opts.UserID,
		Refresh:  opts.Refresh,
		Progress: opts.Progress,
	})
}
