package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediacore/internal/catalog"
	"mediacore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePersonStore struct {
	mu      sync.Mutex
	byID    map[int]*models.PersonRecord
	upserts int
}

func (f *fakePersonStore) FindByExternalID(_ context.Context, id int) (*models.PersonRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePersonStore) Upsert(_ context.Context, p *models.PersonRecord) (*models.PersonRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	cp := *p
	if cp.ID.IsZero() {
		cp.ID = primitive.NewObjectID()
	}
	cp.UpdatedAt = testNow
	f.byID[p.ExternalID] = &cp
	out := cp
	return &out, nil
}

func keanuBundle() *catalog.PersonBundle {
	return &catalog.PersonBundle{
		Details: &catalog.PersonDetails{ID: ptr(6384), Name: ptr("Keanu Reeves"), ProfilePath: ptr("/k.jpg")},
		MovieCredits: &catalog.PersonCredits{
			Cast: []catalog.PersonCredit{
				{ID: 603, Title: ptr("The Matrix"), Popularity: 50},
				{ID: 245891, Title: ptr("John Wick"), Popularity: 80},
				{ID: 0, Title: ptr("sin id"), Popularity: 99},
			},
			Crew: []catalog.PersonCredit{
				{ID: 8915, Title: ptr("Man of Tai Chi"), Job: "Director"},
				{ID: 8915, Title: ptr("Man of Tai Chi"), Job: "Director"},
				{ID: 1, Title: ptr("Producida"), Job: "Producer"},
			},
		},
		TVCredits: &catalog.PersonCredits{},
		Failures:  map[catalog.Resource]error{},
	}
}

func newTestPersonService(persons *fakePersonStore, media *fakeMediaStore, cat *fakeCatalog) *PersonService {
	svc := NewPersonService(persons, media, cat, 0)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestPersonGet_BuildsFilmography(t *testing.T) {
	persons := &fakePersonStore{byID: map[int]*models.PersonRecord{}}
	media := newFakeMediaStore()
	cat := newFakeCatalog()
	cat.persons[6384] = keanuBundle
	svc := newTestPersonService(persons, media, cat)

	v, err := svc.Get(context.Background(), 6384)
	require.NoError(t, err)
	assert.Equal(t, "Keanu Reeves", v.Name)

	// acting ordenado por popularidad, sin el crédito inválido
	assert.Equal(t, []string{"John Wick", "The Matrix"}, titles(v.MovieCredits.Acting))
	assert.Equal(t, []string{"Man of Tai Chi"}, titles(v.MovieCredits.Directing))
	assert.Empty(t, v.TVCredits.Acting)
	for _, m := range v.MovieCredits.Acting {
		assert.Equal(t, models.Partial, m.Completeness)
	}
	assert.Equal(t, 1, persons.upserts)
}

func TestPersonGet_DoesNotDowngradeCompleteMedia(t *testing.T) {
	persons := &fakePersonStore{byID: map[int]*models.PersonRecord{}}
	media := newFakeMediaStore()
	media.put(models.MediaRecord{Completeness: models.Complete, ExternalID: 603, Kind: models.KindMovie, Title: "The Matrix", Runtime: ptr(136)})
	cat := newFakeCatalog()
	cat.persons[6384] = keanuBundle
	svc := newTestPersonService(persons, media, cat)

	v, err := svc.Get(context.Background(), 6384)
	require.NoError(t, err)
	require.Len(t, v.MovieCredits.Acting, 2)
	assert.Equal(t, models.Complete, v.MovieCredits.Acting[1].Completeness)
	assert.Equal(t, 136, *v.MovieCredits.Acting[1].Runtime)
}

func TestPersonGet_FreshAndFallback(t *testing.T) {
	stored := &models.PersonRecord{ID: primitive.NewObjectID(), ExternalID: 6384, Name: "Keanu (guardado)"}

	t.Run("fresh skips upstream", func(t *testing.T) {
		p := *stored
		p.UpdatedAt = testNow.Add(-time.Hour)
		persons := &fakePersonStore{byID: map[int]*models.PersonRecord{6384: &p}}
		cat := newFakeCatalog()
		svc := newTestPersonService(persons, newFakeMediaStore(), cat)

		v, err := svc.Get(context.Background(), 6384)
		require.NoError(t, err)
		assert.Equal(t, "Keanu (guardado)", v.Name)
		assert.Equal(t, 0, cat.callsFor(6384))
	})

	t.Run("stale with upstream down", func(t *testing.T) {
		p := *stored
		p.UpdatedAt = testNow.Add(-30 * 24 * time.Hour)
		persons := &fakePersonStore{byID: map[int]*models.PersonRecord{6384: &p}}
		cat := newFakeCatalog()
		svc := newTestPersonService(persons, newFakeMediaStore(), cat)

		v, err := svc.Get(context.Background(), 6384)
		require.NoError(t, err)
		assert.Equal(t, "Keanu (guardado)", v.Name)
		assert.Equal(t, 1, cat.callsFor(6384))
		assert.Equal(t, 0, persons.upserts)
	})
}

func TestPersonGet_Errors(t *testing.T) {
	persons := &fakePersonStore{byID: map[int]*models.PersonRecord{}}
	cat := newFakeCatalog()
	cat.persons[1] = func() *catalog.PersonBundle {
		return &catalog.PersonBundle{Failures: map[catalog.Resource]error{
			catalog.ResDetails: &catalog.StatusError{Path: "/person/1", Status: 404},
		}}
	}
	svc := newTestPersonService(persons, newFakeMediaStore(), cat)

	_, err := svc.Get(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(context.Background(), 2)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
