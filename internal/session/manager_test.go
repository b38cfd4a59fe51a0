package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ngolib/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "ngolib_session"

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	store := sessions.NewFilesystemStore(t.TempDir(), securecookie.GenerateRandomKey(32))
	store.Options = &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewManager(logger, store, cookieName)
}

// next builds a request that carries the cookies set on rec.
func next(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPrincipalWithoutSession(t *testing.T) {
	m := newTestManager(t)

	p, ok := m.Principal(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestLoginThenPrincipal(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	err := m.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), &types.Principal{
		ID:    7,
		Name:  "ana",
		Email: "ana@example.com",
		Type:  "ngo",
	})
	require.NoError(t, err)

	p, ok := m.Principal(next(rec))
	require.True(t, ok)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, types.RoleNGO, p.Type)
}

func TestPrincipalWithUnknownRoleIsRejected(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), principalKey, map[string]any{
		"id":   1,
		"type": "superuser",
	}))

	_, ok := m.Principal(next(rec))
	assert.False(t, ok)
}

func TestLogoutDestroysSession(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), &types.Principal{ID: 1, Type: types.RoleUser}))

	loggedIn := next(rec)
	out := httptest.NewRecorder()
	require.NoError(t, m.Logout(out, loggedIn))

	cookies := out.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)

	// the old cookie no longer resolves to a session
	_, ok := m.Principal(next(rec))
	assert.False(t, ok)
}

func TestLogoutWithoutSession(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Logout(rec, httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestLoadAndSave(t *testing.T) {
	m := newTestManager(t)

	type state struct {
		Page int `json:"page"`
	}

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), "searchState", state{Page: 3}))

	var got state
	ok, err := m.Load(next(rec), "searchState", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Page)

	ok, err = m.Load(next(rec), "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	m := newTestManager(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})

	_, ok := m.Principal(r)
	assert.False(t, ok)
}

func TestNewStore(t *testing.T) {
	cfg := &types.Config{
		Environment:      "development",
		SessionBackend:   BackendFilesystem,
		SessionDir:       t.TempDir(),
		SessionMaxAgeSec: 60,
	}

	store, err := NewStore(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &sessions.FilesystemStore{}, store)

	cfg.SessionBackend = BackendRedis
	_, err = NewStore(cfg, nil)
	assert.Error(t, err)

	cfg.SessionBackend = "memcache"
	_, err = NewStore(cfg, nil)
	assert.Error(t, err)

	cfg.SessionBackend = BackendFilesystem
	cfg.Environment = "production"
	_, err = NewStore(cfg, nil)
	assert.Error(t, err)
}
