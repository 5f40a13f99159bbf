package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mediacore/internal/catalog"
	"mediacore/internal/models"
	"mediacore/internal/recommender"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func ptr[T any](v T) *T { return &v }

var errBoom = errors.New("boom")

// ====== media store ======

type fakeMediaStore struct {
	mu        sync.Mutex
	byKey     map[string]*models.MediaRecord
	findErr   error
	upsertErr error
	ensureErr error
	upserts   int
	now       func() time.Time
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{byKey: map[string]*models.MediaRecord{}, now: time.Now}
}

func mediaKey(kind models.MediaKind, id int) string { return fmt.Sprintf("%s:%d", kind, id) }

func (f *fakeMediaStore) put(rec models.MediaRecord) *models.MediaRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	f.byKey[mediaKey(rec.Kind, rec.ExternalID)] = &rec
	return &rec
}

func (f *fakeMediaStore) FindByExternalID(_ context.Context, kind models.MediaKind, id int) (*models.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rec, ok := f.byKey[mediaKey(kind, id)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeMediaStore) Upsert(_ context.Context, rec *models.MediaRecord) (*models.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	cp := *rec
	if prev, ok := f.byKey[mediaKey(rec.Kind, rec.ExternalID)]; ok {
		cp.ID = prev.ID
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.ID = primitive.NewObjectID()
		cp.CreatedAt = f.now()
	}
	cp.UpdatedAt = f.now()
	f.byKey[mediaKey(rec.Kind, rec.ExternalID)] = &cp
	out := cp
	return &out, nil
}

func (f *fakeMediaStore) EnsurePartial(_ context.Context, stub models.MediaStub) (*models.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	if prev, ok := f.byKey[mediaKey(stub.Kind, stub.ExternalID)]; ok {
		cp := *prev
		return &cp, nil
	}
	rec := stub.Record()
	rec.ID = primitive.NewObjectID()
	rec.UpdatedAt = f.now()
	f.byKey[mediaKey(stub.Kind, stub.ExternalID)] = &rec
	cp := rec
	return &cp, nil
}

// FindByInternalIDs devuelve en orden inverso para que los tests
// comprueben el reordenamiento.
func (f *fakeMediaStore) FindByInternalIDs(_ context.Context, ids []primitive.ObjectID) ([]models.MediaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []models.MediaRecord
	for _, rec := range f.byKey {
		if want[rec.ID] {
			out = append([]models.MediaRecord{*rec}, out...)
		}
	}
	return out, nil
}

// ====== catálogo ======

type fakeCatalog struct {
	mu      sync.Mutex
	bundles map[int]func() *catalog.Bundle
	calls   map[int]int
	persons map[int]func() *catalog.PersonBundle
	lists   func() (*catalog.ListPage, error)
	listN   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		bundles: map[int]func() *catalog.Bundle{},
		calls:   map[int]int{},
		persons: map[int]func() *catalog.PersonBundle{},
	}
}

func (f *fakeCatalog) FetchItemBundle(_ context.Context, _ models.MediaKind, id int) *catalog.Bundle {
	f.mu.Lock()
	f.calls[id]++
	fn, ok := f.bundles[id]
	f.mu.Unlock()
	if !ok {
		return unreachableBundle()
	}
	return fn()
}

func (f *fakeCatalog) FetchPersonBundle(_ context.Context, id int) *catalog.PersonBundle {
	f.mu.Lock()
	f.calls[id]++
	fn, ok := f.persons[id]
	f.mu.Unlock()
	if !ok {
		return &catalog.PersonBundle{Failures: map[catalog.Resource]error{catalog.ResDetails: catalog.ErrTransient}}
	}
	return fn()
}

func (f *fakeCatalog) list() (*catalog.ListPage, error) {
	f.mu.Lock()
	f.listN++
	f.mu.Unlock()
	return f.lists()
}

func (f *fakeCatalog) Category(context.Context, models.MediaKind, string, int) (*catalog.ListPage, error) {
	return f.list()
}

func (f *fakeCatalog) Trending(context.Context, models.MediaKind, string, int) (*catalog.ListPage, error) {
	return f.list()
}

func (f *fakeCatalog) Search(context.Context, string, int) (*catalog.ListPage, error) {
	return f.list()
}

func (f *fakeCatalog) callsFor(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func movieBundle(id int, title string, vote float64, date string) func() *catalog.Bundle {
	return func() *catalog.Bundle {
		return &catalog.Bundle{
			Details: &catalog.Details{
				ID:          ptr(id),
				Title:       ptr(title),
				Genres:      []models.Genre{{ID: 18, Name: "Drama"}},
				ReleaseDate: ptr(date),
				Runtime:     ptr(120),
				VoteAverage: ptr(vote),
			},
			Credits: &catalog.Credits{
				Crew: []catalog.CrewMember{{ID: id * 10, Name: "Director " + title, Job: "Director"}},
				Cast: []catalog.CastMember{{ID: id*10 + 1, Name: "Star " + title, Popularity: 7}},
			},
			Videos:   &catalog.Videos{Results: []catalog.Video{{Type: "Trailer", Official: true, Key: "k" + title}}},
			Keywords: &catalog.Keywords{Keywords: []models.Keyword{{ID: 1, Name: "kw"}}},
			Failures: map[catalog.Resource]error{},
		}
	}
}

func unreachableBundle() *catalog.Bundle {
	return &catalog.Bundle{Failures: map[catalog.Resource]error{
		catalog.ResDetails:  catalog.ErrTransient,
		catalog.ResVideos:   catalog.ErrTransient,
		catalog.ResCredits:  catalog.ErrTransient,
		catalog.ResKeywords: catalog.ErrTransient,
	}}
}

func notFoundBundle() *catalog.Bundle {
	return &catalog.Bundle{Failures: map[catalog.Resource]error{
		catalog.ResDetails:  &catalog.StatusError{Path: "/movie/1", Status: 404},
		catalog.ResVideos:   &catalog.StatusError{Path: "/movie/1/videos", Status: 404},
		catalog.ResCredits:  &catalog.StatusError{Path: "/movie/1/credits", Status: 404},
		catalog.ResKeywords: &catalog.StatusError{Path: "/movie/1/keywords", Status: 404},
	}}
}

// ====== resolver / recomendador ======

// fakeResolver resuelve desde un mapa; ids ausentes fallan.
type fakeResolver struct {
	mu      sync.Mutex
	records map[int]*models.MediaRecord
	delays  map[int]time.Duration
	calls   int
}

func (f *fakeResolver) Resolve(_ context.Context, kind models.MediaKind, id int) (*Resolution, error) {
	f.mu.Lock()
	f.calls++
	rec, ok := f.records[id]
	d := f.delays[id]
	f.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if !ok {
		return &Resolution{State: StateFailed}, ErrUpstreamUnavailable
	}
	cp := *rec
	cp.Kind = kind
	return &Resolution{Record: &cp, State: StateResolved}, nil
}

type fakeSource struct {
	mu       sync.Mutex
	cands    []models.RecommendationCandidate
	err      error
	calls    int
	lastStr  recommender.Strategy
	lastBody any
}

func (f *fakeSource) Recommend(_ context.Context, strategy recommender.Strategy, payload any) ([]models.RecommendationCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastStr = strategy
	f.lastBody = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.cands, nil
}

func cands(ids ...int) []models.RecommendationCandidate {
	out := make([]models.RecommendationCandidate, len(ids))
	for i, id := range ids {
		out[i] = models.RecommendationCandidate{ExternalID: id}
	}
	return out
}

type fakeHistory struct {
	mu   sync.Mutex
	runs []*models.RecommendationRun
	err  error
}

func (f *fakeHistory) Insert(_ context.Context, run *models.RecommendationRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeHistory) FindByUser(_ context.Context, userID primitive.ObjectID, limit int64) ([]models.RecommendationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.RecommendationRun{}
	for i := len(f.runs) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if f.runs[i].UserID != nil && *f.runs[i].UserID == userID {
			out = append(out, *f.runs[i])
		}
	}
	return out, nil
}

// ====== usuarios / reseñas ======

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.UserDoc
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]*models.UserDoc{}}
}

func (f *fakeUserStore) find(pred func(*models.UserDoc) bool) *models.UserDoc {
	for _, u := range f.users {
		if pred(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *models.UserDoc) bool { return u.ID == id }), nil
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *models.UserDoc) bool { return u.Info.Username == username }), nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.UserDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(u *models.UserDoc) bool { return u.Info.Email == email }), nil
}

func (f *fakeUserStore) Insert(_ context.Context, u *models.UserDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

// UpdateByID entiende solo las claves que usan los servicios.
func (f *fakeUserStore) UpdateByID(_ context.Context, id primitive.ObjectID, update bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for k, v := range update {
		switch k {
		case "info.password":
			u.Info.PasswordHash = v.(string)
		case "info.email":
			u.Info.Email = v.(string)
		case "info.firstName":
			u.Info.FirstName = v.(string)
		case "info.lastName":
			u.Info.LastName = v.(string)
		case "info.gender":
			u.Info.Gender = v.(string)
		case "info.location":
			u.Info.Location = v.(string)
		case "info.avatar":
			u.Info.Avatar = v.(string)
		case "preferences.languages":
			u.Preferences.Languages = v.([]string)
		case "preferences.genres":
			u.Preferences.Genres = v.([]string)
		case "preferences.favoriteMovies":
			u.Preferences.FavoriteMovies = v.([]primitive.ObjectID)
		case "preferences.favoriteSeries":
			u.Preferences.FavoriteSeries = v.([]primitive.ObjectID)
		case "preferences.watchlist":
			u.Preferences.Watchlist = v.([]primitive.ObjectID)
		}
	}
	return nil
}

func (f *fakeUserStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}


type fakeReviewStore struct {
	mu      sync.Mutex
	reviews []models.Review
	listErr error
}

func (f *fakeReviewStore) Insert(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv.ID = primitive.NewObjectID()
	f.reviews = append(f.reviews, *rv)
	return nil
}

func (f *fakeReviewStore) DeleteForUser(_ context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	drop := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	var n int64
	kept := f.reviews[:0]
	for _, rv := range f.reviews {
		if rv.UserID == userID && drop[rv.ID] {
			n++
			continue
		}
		kept = append(kept, rv)
	}
	f.reviews = kept
	return n, nil
}

func (f *fakeReviewStore) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	kept := f.reviews[:0]
	for _, rv := range f.reviews {
		if rv.UserID == userID {
			n++
			continue
		}
		kept = append(kept, rv)
	}
	f.reviews = kept
	return n, nil
}

func (f *fakeReviewStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, rv := range f.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) ListByMedia(_ context.Context, mediaID primitive.ObjectID) ([]models.ReviewView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.ReviewView
	for _, rv := range f.reviews {
		if rv.MediaID == mediaID {
			out = append(out, models.ReviewView{Review: rv, Username: "neo"})
		}
	}
	return out, nil
}
