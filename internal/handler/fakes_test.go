package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediacore/internal/models"
	"mediacore/internal/recommender"
	"mediacore/internal/service"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

var errBoom = errors.New("boom")

// ====== Fakes de servicios ======

type fakeMedia struct {
	detail *models.MediaDetail
	err    error
	gotID  int
}

func (f *fakeMedia) GetDetail(_ context.Context, kind models.MediaKind, id int) (*models.MediaDetail, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	if f.detail != nil {
		return f.detail, nil
	}
	return &models.MediaDetail{MediaRecord: &models.MediaRecord{ExternalID: id, Kind: kind, Title: "Heat"}}, nil
}

type fakeLists struct {
	err      error
	category string
	window   string
	query    string
	page     int
}

func (f *fakeLists) Category(_ context.Context, _ models.MediaKind, category string, page int) (*models.MediaPage, error) {
	f.category, f.page = category, page
	return &models.MediaPage{Page: page}, f.err
}

func (f *fakeLists) Trending(_ context.Context, _ models.MediaKind, window string, page int) (*models.MediaPage, error) {
	f.window, f.page = window, page
	return &models.MediaPage{Page: page}, f.err
}

func (f *fakeLists) Search(_ context.Context, query string, page int) (*models.MediaPage, error) {
	f.query, f.page = query, page
	return &models.MediaPage{Page: page}, f.err
}

type fakePersons struct{ err error }

func (f *fakePersons) Get(_ context.Context, id int) (*models.PersonView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.PersonView{}, nil
}

type fakeRecommender struct {
	recs     *models.Recommendations
	err      error
	strategy recommender.Strategy
	opts     service.RunOptions
	calls    int
	progress []service.ProgressEvent
	runs     []models.RecommendationRun
	limit    int64
}

func (f *fakeRecommender) result(opts service.RunOptions) (*models.Recommendations, error) {
	f.calls++
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	if opts.Progress != nil {
		for _, ev := range f.progress {
			opts.Progress(ev)
		}
	}
	if f.recs != nil {
		return f.recs, nil
	}
	return &models.Recommendations{Outcome: models.OutcomeOK, Items: []models.MediaRecord{{ExternalID: 1, Title: "Alien"}}}, nil
}

func (f *fakeRecommender) Similar(_ context.Context, _ models.MediaKind, _ service.SimilarInput, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = recommender.ContentSimilar
	return f.result(opts)
}

func (f *fakeRecommender) Discover(_ context.Context, _ models.MediaKind, _ service.DiscoverInput, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = recommender.ContentDiscover
	return f.result(opts)
}

func (f *fakeRecommender) SimilarTo(_ context.Context, _ models.MediaKind, _ int, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = recommender.ContentSimilar
	return f.result(opts)
}

func (f *fakeRecommender) ItemBased(_ context.Context, _ models.MediaKind, _ service.ItemBasedInput, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = recommender.CollabItem
	return f.result(opts)
}

func (f *fakeRecommender) UserBased(_ context.Context, _ models.MediaKind, _ service.UserBasedInput, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = recommender.CollabUser
	return f.result(opts)
}

func (f *fakeRecommender) Hybrid(_ context.Context, _ models.MediaKind, strategy recommender.Strategy, _ service.HybridInput, opts service.RunOptions) (*models.Recommendations, error) {
	f.strategy = strategy
	return f.result(opts)
}

func (f *fakeRecommender) History(_ context.Context, _ primitive.ObjectID, limit int64) ([]models.RecommendationRun, error) {
	f.limit = limit
	return f.runs, f.err
}

type fakeAuth struct {
	user    *models.UserDoc
	err     error
	token   string
	oldPass string
	newPass string
}

func (f *fakeAuth) Register(_ context.Context, data service.RegisterUserData) (*models.UserDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserDoc{ID: primitive.NewObjectID(), Info: models.UserInfo{Username: data.Username, Email: data.Email}, Role: models.RoleUser}, nil
}

func (f *fakeAuth) Login(context.Context, string, string) (string, *models.UserDoc, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuth) Me(context.Context, primitive.ObjectID) (*models.UserDoc, error) {
	return f.user, f.err
}

func (f *fakeAuth) ChangePassword(_ context.Context, _ primitive.ObjectID, oldPassword, newPassword string) error {
	f.oldPass, f.newPass = oldPassword, newPassword
	return f.err
}

func (f *fakeAuth) TokenTTL() time.Duration { return time.Hour }

type fakeAccount struct {
	err     error
	userID  primitive.ObjectID
	deleted bool
	reviews models.ReviewsUpdate
}

func (f *fakeAccount) Profile(_ context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserProfile{Role: models.RoleUser}, nil
}

func (f *fakeAccount) UpdateProfile(_ context.Context, userID primitive.ObjectID, _ service.ProfileUpdate) (*models.UserDoc, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &models.UserDoc{ID: userID, Role: models.RoleUser}, nil
}

func (f *fakeAccount) DeleteProfile(_ context.Context, userID primitive.ObjectID) error {
	f.userID = userID
	f.deleted = f.err == nil
	return f.err
}

func (f *fakeAccount) UpdatePreferences(_ context.Context, userID primitive.ObjectID, _ service.PreferencesUpdate) (*models.ResolvedPreferences, error) {
	f.userID = userID
	return &models.ResolvedPreferences{}, f.err
}

func (f *fakeAccount) UpdateReviews(_ context.Context, userID primitive.ObjectID, in models.ReviewsUpdate) (*models.ReviewsUpdateResult, error) {
	f.userID = userID
	f.reviews = in
	return &models.ReviewsUpdateResult{}, f.err
}

type fakeMaintainer struct {
	limit int64
	req   *models.RefreshMediaRequest
}

func (f *fakeMaintainer) GetMediaSummary(context.Context) (*models.MediaCacheSummary, error) {
	return &models.MediaCacheSummary{}, nil
}

func (f *fakeMaintainer) GetPendingMedia(_ context.Context, limit int64) (*models.PendingMediaList, error) {
	f.limit = limit
	return &models.PendingMediaList{}, nil
}

func (f *fakeMaintainer) RefreshPendingMedia(_ context.Context, req *models.RefreshMediaRequest) (*models.RefreshMediaResult, error) {
	f.req = req
	return &models.RefreshMediaResult{}, nil
}

// ====== Router de prueba ======

type testDeps struct {
	media   *fakeMedia
	lists   *fakeLists
	persons *fakePersons
	recs    *fakeRecommender
	auth    *fakeAuth
	account *fakeAccount
	maint   *fakeMaintainer
	mongo   Pinger
	redis   Pinger
}

func newTestDeps() *testDeps {
	ok := PingFunc(func(context.Context) error { return nil })
	return &testDeps{
		media:   &fakeMedia{},
		lists:   &fakeLists{},
		persons: &fakePersons{},
		recs:    &fakeRecommender{},
		auth:    &fakeAuth{},
		account: &fakeAccount{},
		maint:   &fakeMaintainer{},
		mongo:   ok,
		redis:   ok,
	}
}

func (d *testDeps) router() http.Handler {
	return NewRouter(RouterConfig{
		JWTSecret:      testSecret,
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         NewHealthHandler(d.mongo, d.redis),
		Auth:           NewAuthHandler(d.auth, CookieConfig{}),
		User:           NewUserHandler(d.account),
		Media:          NewMediaHandler(d.media, d.lists),
		Person:         NewPersonHandler(d.persons),
		Recommend:      NewRecommendHandler(d.recs),
		Maintenance:    NewAdminMaintenanceHandler(d.maint),
	})
}

func signToken(t *testing.T, secret string, userID primitive.ObjectID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.Hex(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

type reqOpt func(*http.Request)

func withBearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func do(t *testing.T, h http.Handler, method, path string, body any, opts ...reqOpt) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, o := range opts {
		o(req)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
