package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ngolib/pkg/types"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, &sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true}, securecookie.GenerateRandomKey(32))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewManager(logger, store, cookieName), mr
}

func sessionKeys(mr *miniredis.Miniredis) []string {
	var keys []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, defaultKeyPrefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestRedisStoreLoginLogout(t *testing.T) {
	m, mr := newRedisManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), &types.Principal{
		ID:    4,
		Name:  "bo",
		Email: "bo@example.com",
		Type:  "user",
	}))

	keys := sessionKeys(mr)
	require.Len(t, keys, 1)
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))

	// the cookie carries only the signed id, not the principal
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotContains(t, cookies[0].Value, "bo@example.com")

	p, ok := m.Principal(next(rec))
	require.True(t, ok)
	assert.Equal(t, int64(4), p.ID)
	assert.Equal(t, types.RoleUser, p.Type)

	out := httptest.NewRecorder()
	require.NoError(t, m.Logout(out, next(rec)))

	expired := out.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Less(t, expired[0].MaxAge, 0)

	assert.False(t, mr.Exists(keys[0]))

	// replaying the old cookie finds nothing
	_, ok = m.Principal(next(rec))
	assert.False(t, ok)
}

func TestRedisStoreSessionExpires(t *testing.T) {
	m, mr := newRedisManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), &types.Principal{ID: 1, Type: types.RoleAdmin}))

	_, ok := m.Principal(next(rec))
	require.True(t, ok)

	mr.FastForward(time.Hour + time.Second)

	_, ok = m.Principal(next(rec))
	assert.False(t, ok)
	assert.Empty(t, sessionKeys(mr))
}

func TestRedisStoreLoginIssuesNewID(t *testing.T) {
	m, mr := newRedisManager(t)

	first := httptest.NewRecorder()
	require.NoError(t, m.Save(first, httptest.NewRequest(http.MethodGet, "/", nil), "searchState", map[string]int{"page": 2}))
	require.Len(t, sessionKeys(mr), 1)
	before := sessionKeys(mr)[0]

	second := httptest.NewRecorder()
	require.NoError(t, m.Login(second, next(first), &types.Principal{ID: 9, Type: types.RoleNGO}))

	p, ok := m.Principal(next(second))
	require.True(t, ok)
	assert.Equal(t, int64(9), p.ID)

	// values saved before login travel to the new id
	var state map[string]int
	found, err := m.Load(next(second), "searchState", &state)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, state["page"])

	keys := sessionKeys(mr)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, before)

	// the pre-login id never gains the principal
	_, ok = m.Principal(next(first))
	assert.False(t, ok)
}

func TestRedisStoreUnknownID(t *testing.T) {
	m, mr := newRedisManager(t)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Login(rec, httptest.NewRequest(http.MethodPost, "/", nil), &types.Principal{ID: 2, Type: types.RoleUser}))

	// a validly signed id whose data is gone
	mr.FlushAll()

	_, ok := m.Principal(next(rec))
	assert.False(t, ok)
}

func TestNewStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &types.Config{
		Environment:      "development",
		SessionBackend:   BackendRedis,
		SessionMaxAgeSec: 60,
	}

	store, err := NewStore(cfg, client)
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, store)
	assert.Equal(t, 60, store.(*RedisStore).Options.MaxAge)
}
