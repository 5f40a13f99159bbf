package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediacore/internal/models"
	"mediacore/internal/recommender"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.sets++
	return nil
}

func rec(id int, title string, vote float64, date string, credits ...models.Credit) *models.MediaRecord {
	r := &models.MediaRecord{
		Completeness: models.Complete,
		ExternalID:   id,
		Title:        title,
		Credits:      credits,
	}
	if vote > 0 {
		r.VoteAverage = ptr(vote)
	}
	if date != "" {
		r.ReleaseDate = ptr(date)
	}
	return r
}

func titles(items []models.MediaRecord) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Title
	}
	return out
}

func TestAssemble_KeepsRankingOrderAndDropsFailures(t *testing.T) {
	resolver := &fakeResolver{
		records: map[int]*models.MediaRecord{
			3: rec(3, "C", 7, "2000-01-01"),
			2: rec(2, "B", 7, "2000-01-01"),
		},
		// C tarda más que B: el orden de salida no depende de quién termina primero
		delays: map[int]time.Duration{3: 30 * time.Millisecond},
	}
	svc := NewRecommendService(&fakeSource{}, resolver, nil, nil, 0)

	var events []ProgressEvent
	out := svc.Assemble(context.Background(), models.KindMovie, cands(3, 1, 2), models.Filters{}, func(e ProgressEvent) {
		events = append(events, e)
	})

	assert.Equal(t, models.OutcomeOK, out.Outcome)
	assert.Equal(t, []string{"C", "B"}, titles(out.Items))
	require.Len(t, events, 3)
	assert.Equal(t, 3, events[2].Done)
	assert.Equal(t, 3, events[2].Total)
}

func TestAssemble_Outcomes(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{
		1: rec(1, "A", 5, "1990-01-01"),
	}}
	svc := NewRecommendService(&fakeSource{}, resolver, nil, nil, 0)

	out := svc.Assemble(context.Background(), models.KindMovie, nil, models.Filters{}, nil)
	assert.Equal(t, models.OutcomeNoCandidates, out.Outcome)
	assert.NotNil(t, out.Items)

	out = svc.Assemble(context.Background(), models.KindMovie, cands(9, 10), models.Filters{}, nil)
	assert.Equal(t, models.OutcomeNoCandidates, out.Outcome)

	out = svc.Assemble(context.Background(), models.KindMovie, cands(1), models.Filters{MinRating: ptr(9.0)}, nil)
	assert.Equal(t, models.OutcomeNoMatches, out.Outcome)
	assert.Empty(t, out.Items)
}

func TestApplyFilters_Rating(t *testing.T) {
	items := []models.MediaRecord{
		*rec(1, "a", 8, ""), *rec(2, "b", 6, ""), *rec(3, "c", 9, ""),
		*rec(4, "d", 5, ""), *rec(5, "e", 7, ""), *rec(6, "sin rating", 0, ""),
	}
	out := ApplyFilters(items, models.Filters{MinRating: ptr(7.0)})
	assert.Equal(t, []string{"a", "c", "e"}, titles(out))
}

func TestApplyFilters_Year(t *testing.T) {
	items := []models.MediaRecord{
		*rec(1, "old", 0, "1980-05-01"),
		*rec(2, "new", 0, "2015-05-01"),
		*rec(3, "tba", 0, "TBA"),
		*rec(4, "none", 0, ""),
		*rec(5, "edge", 0, "2000"),
	}
	out := ApplyFilters(items, models.Filters{MinYear: ptr(2000)})
	assert.Equal(t, []string{"new", "edge"}, titles(out))
}

func TestApplyFilters_PeopleMatchSubstringsIgnoringCase(t *testing.T) {
	nolan := models.Credit{Role: models.RoleDirector, Name: "Christopher Nolan"}
	gilligan := models.Credit{Role: models.RoleCreator, Name: "Vince Gilligan"}
	caine := models.Credit{Role: models.RoleCast, Name: "Michael Caine"}
	cranston := models.Credit{Role: models.RoleCast, Name: "Bryan Cranston"}

	items := []models.MediaRecord{
		*rec(1, "prestige", 0, "", nolan, caine),
		*rec(2, "bb", 0, "", gilligan, cranston),
		*rec(3, "nada", 0, ""),
	}

	out := ApplyFilters(items, models.Filters{Directors: []string{"  NOLAN "}})
	assert.Equal(t, []string{"prestige"}, titles(out))

	out = ApplyFilters(items, models.Filters{Directors: []string{"gilli", "zzz"}})
	assert.Equal(t, []string{"bb"}, titles(out))

	out = ApplyFilters(items, models.Filters{Cast: []string{"caine", "cranston"}})
	assert.Equal(t, []string{"prestige", "bb"}, titles(out))

	out = ApplyFilters(items, models.Filters{Directors: []string{"nolan"}, Cast: []string{"cranston"}})
	assert.Empty(t, out)

	out = ApplyFilters(items, models.Filters{Cast: []string{" ", ""}})
	assert.Len(t, out, 3)
}

func TestRecommend_UsesCandidateCache(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{1: rec(1, "A", 8, ""), 2: rec(2, "B", 8, "")}}
	source := &fakeSource{cands: cands(1, 2)}
	cache := newMemCache()
	svc := NewRecommendService(source, resolver, nil, cache, 0)

	req := RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabItem, Payload: []int{1, 2}}
	out, err := svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)

	_, err = svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, cache.sets)

	req.Refresh = true
	_, err = svc.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestRecommend_EmptyCandidatesAreNotCached(t *testing.T) {
	source := &fakeSource{}
	cache := newMemCache()
	svc := NewRecommendService(source, &fakeResolver{}, nil, cache, 0)

	out, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabItem, Payload: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNoCandidates, out.Outcome)
	assert.Equal(t, 0, cache.sets)
}

func TestRecommend_SourceErrorPassesThrough(t *testing.T) {
	srcErr := &recommender.Error{Kind: recommender.Timeout, Strategy: recommender.CollabUser}
	svc := NewRecommendService(&fakeSource{err: srcErr}, &fakeResolver{}, nil, nil, 0)

	_, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabUser})
	assert.Equal(t, recommender.Timeout, recommender.KindOf(err))
}

func TestRecommend_HistoryFailureDoesNotBreakResponse(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{1: rec(1, "A", 8, "")}}
	history := &fakeHistory{err: errBoom}
	svc := NewRecommendService(&fakeSource{cands: cands(1)}, resolver, history, nil, 0)

	out, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabItem, Payload: []int{1}})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	history.err = nil
	_, err = svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabItem, Payload: []int{1}, Limit: 5})
	require.NoError(t, err)
	require.Len(t, history.runs, 1)
	assert.Equal(t, []int{1}, history.runs[0].Results)
	assert.Equal(t, models.OutcomeOK, history.runs[0].Outcome)
}

func TestHistory_ReturnsUserRunsNewestFirst(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{1: rec(1, "A", 8, "")}}
	history := &fakeHistory{}
	svc := NewRecommendService(&fakeSource{cands: cands(1)}, resolver, history, nil, 0)
	user := primitive.NewObjectID()

	for _, st := range []recommender.Strategy{recommender.CollabItem, recommender.ContentDiscover} {
		_, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: st, UserID: &user})
		require.NoError(t, err)
	}
	_, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.CollabUser})
	require.NoError(t, err)

	runs, err := svc.History(context.Background(), user, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, string(recommender.ContentDiscover), runs[0].Strategy)
}

func TestRecommend_LimitTruncatesCandidates(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{
		1: rec(1, "A", 8, ""), 2: rec(2, "B", 8, ""), 3: rec(3, "C", 8, ""),
	}}
	svc := NewRecommendService(&fakeSource{cands: cands(1, 2, 3)}, resolver, nil, nil, 0)

	out, err := svc.Recommend(context.Background(), RecRequest{Kind: models.KindMovie, Strategy: recommender.ContentDiscover, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(out.Items))
}

// ====== estrategias ======

func TestSimilar_BuildsSeedPayload(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{
		603: rec(603, "The Matrix", 8.2, "1999-03-31"),
		10:  rec(10, "X", 7, "2005-01-01"),
	}}
	source := &fakeSource{cands: cands(10)}
	svc := NewRecommendService(source, resolver, nil, nil, 0)

	out, err := svc.Similar(context.Background(), models.KindMovie, SimilarInput{TMDBIDs: []int{603, 404}}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, titles(out.Items))

	assert.Equal(t, recommender.ContentSimilar, source.lastStr)
	body, ok := source.lastBody.(recommender.SimilarRequest)
	require.True(t, ok)
	assert.Equal(t, DefaultSimilarCount, body.NRecommendations)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 603, body.Items[0].TMDBID)
	assert.Equal(t, 0.0, *body.Items[0].Rating)

	_, err = svc.Similar(context.Background(), models.KindMovie, SimilarInput{TMDBIDs: []int{404}}, RunOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscover_DefaultsFiltersFromMetadata(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{
		1: rec(1, "baja", 5, "2010-01-01"),
		2: rec(2, "alta", 8, "2010-01-01"),
	}}
	source := &fakeSource{cands: cands(1, 2)}
	svc := NewRecommendService(source, resolver, nil, nil, 0)

	out, err := svc.Discover(context.Background(), models.KindSeries, DiscoverInput{
		Metadata: recommender.Metadata{VoteAverage: 7},
	}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alta"}, titles(out.Items))

	body := source.lastBody.(recommender.DiscoverRequest)
	assert.Equal(t, "tv", body.Metadata.MediaType)

	out, err = svc.Discover(context.Background(), models.KindSeries, DiscoverInput{
		Metadata: recommender.Metadata{VoteAverage: 7},
		Filters:  &models.Filters{},
	}, RunOptions{Refresh: true})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
}

func TestSimilarTo_ExcludesSeed(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{
		603: rec(603, "The Matrix", 8.2, "1999-03-31"),
		604: rec(604, "Reloaded", 7, "2003-05-15"),
	}}
	source := &fakeSource{cands: cands(603, 604)}
	svc := NewRecommendService(source, resolver, nil, nil, 0)

	out, err := svc.SimilarTo(context.Background(), models.KindMovie, 603, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Reloaded"}, titles(out.Items))

	body := source.lastBody.(recommender.DiscoverRequest)
	require.NotNil(t, body.TMDBID)
	assert.Equal(t, 603, *body.TMDBID)
	assert.Equal(t, "The Matrix", body.Metadata.Title)
}

func TestUserBased_RejectsBadKeys(t *testing.T) {
	source := &fakeSource{}
	svc := NewRecommendService(source, &fakeResolver{}, nil, nil, 0)

	_, err := svc.UserBased(context.Background(), models.KindMovie, UserBasedInput{Ratings: map[string]float64{"abc": 4}}, RunOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 0, source.calls)

	_, err = svc.UserBased(context.Background(), models.KindMovie, UserBasedInput{Ratings: map[string]float64{"603": 4}}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"603": 4}, source.lastBody)
}

func TestItemBased_PostsIDArray(t *testing.T) {
	source := &fakeSource{}
	svc := NewRecommendService(source, &fakeResolver{}, nil, nil, 0)

	_, err := svc.ItemBased(context.Background(), models.KindMovie, ItemBasedInput{TMDBIDs: []int{1, 2}}, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, recommender.CollabItem, source.lastStr)
	assert.Equal(t, []int{1, 2}, source.lastBody)
}

func TestHybrid(t *testing.T) {
	resolver := &fakeResolver{records: map[int]*models.MediaRecord{603: rec(603, "The Matrix", 8.2, "1999-03-31")}}
	source := &fakeSource{}
	svc := NewRecommendService(source, resolver, nil, nil, 0)

	_, err := svc.Hybrid(context.Background(), models.KindMovie, recommender.CollabItem, HybridInput{}, RunOptions{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	in := HybridInput{Ratings: []RatedItem{{TMDBID: 603, Rating: 4}, {TMDBID: 603, Rating: 5}, {TMDBID: 77, Rating: 3}}}
	_, err = svc.Hybrid(context.Background(), models.KindMovie, recommender.HybridSwitching, in, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, recommender.HybridSwitching, source.lastStr)
	body := source.lastBody.(recommender.HybridRequest)
	assert.Equal(t, map[string]float64{"603": 5, "77": 3}, body.Ratings)
	require.Len(t, body.RequestData, 1)
	assert.Equal(t, 603, body.RequestData[0].TMDBID)
}
