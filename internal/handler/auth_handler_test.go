package handler

import (
	"net/http"
	"testing"

	"mediacore/internal/models"
	"mediacore/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sessionCookieFrom(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("no se seteó la cookie %q", sessionCookie)
	return nil
}

func TestRegister(t *testing.T) {
	valid := map[string]any{"username": "neo", "email": "neo@zion.io", "password": "redpill99"}

	cases := []struct {
		name   string
		body   any
		err    error
		status int
	}{
		{"ok", valid, nil, http.StatusCreated},
		{"email inválido", map[string]any{"username": "neo", "email": "neo", "password": "redpill99"}, nil, http.StatusBadRequest},
		{"password corta", map[string]any{"username": "neo", "email": "neo@zion.io", "password": "123"}, nil, http.StatusBadRequest},
		{"gender desconocido", map[string]any{"username": "neo", "email": "neo@zion.io", "password": "redpill99", "gender": "X"}, nil, http.StatusBadRequest},
		{"username tomado", valid, service.ErrUsernameTaken, http.StatusConflict},
		{"email tomado", valid, service.ErrEmailTaken, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDeps()
			d.auth.err = tc.err
			rr := do(t, d.router(), http.MethodPost, "/auth/register", tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestRegisterHidesPassword(t *testing.T) {
	d := newTestDeps()
	rr := do(t, d.router(), http.MethodPost, "/auth/register",
		map[string]any{"username": "neo", "email": "neo@zion.io", "password": "redpill99"})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "redpill99")
	assert.Contains(t, rr.Body.String(), `"role":"user"`)
}

func TestLoginSetsCookie(t *testing.T) {
	d := newTestDeps()
	uid := primitive.NewObjectID()
	d.auth.token = signToken(t, testSecret, uid, models.RoleUser)
	d.auth.user = &models.UserDoc{ID: uid, Info: models.UserInfo{Username: "neo"}, Role: models.RoleUser}

	rr := do(t, d.router(), http.MethodPost, "/auth/login", map[string]any{"username": "neo", "password": "redpill99"})
	require.Equal(t, http.StatusOK, rr.Code)

	c := sessionCookieFrom(t, rr.Result().Cookies())
	assert.Equal(t, d.auth.token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 3600, c.MaxAge)

	data, ok := decodeEnvelope(t, rr).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, d.auth.token, data["token"])

	// la cookie sola alcanza para /auth/me
	rr = do(t, d.router(), http.MethodGet, "/auth/me", nil, func(r *http.Request) { r.AddCookie(c) })
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLoginErrors(t *testing.T) {
	d := newTestDeps()
	d.auth.err = service.ErrInvalidCredentials

	rr := do(t, d.router(), http.MethodPost, "/auth/login", map[string]any{"username": "neo", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Empty(t, rr.Result().Cookies())

	rr = do(t, d.router(), http.MethodPost, "/auth/login", map[string]any{"username": "neo"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	d := newTestDeps()
	rr := do(t, d.router(), http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	c := sessionCookieFrom(t, rr.Result().Cookies())
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestChangePassword(t *testing.T) {
	d := newTestDeps()
	h := d.router()
	auth := withBearer(signToken(t, testSecret, primitive.NewObjectID(), models.RoleUser))

	rr := do(t, h, http.MethodPatch, "/auth/password/change", map[string]any{"oldPassword": "a", "newPassword": "bbbbbbbb"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPatch, "/auth/password/change", map[string]any{"oldPassword": "a", "newPassword": "bbbbbbbb"}, auth)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a", d.auth.oldPass)
	assert.Equal(t, "bbbbbbbb", d.auth.newPass)

	d.auth.err = service.ErrWrongPassword
	rr = do(t, h, http.MethodPatch, "/auth/password/change", map[string]any{"oldPassword": "x", "newPassword": "bbbbbbbb"}, auth)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
