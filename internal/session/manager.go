// Package session provides server-side sessions and the logged in principal
// they carry.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"ngolib/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

const (
	BackendRedis      = "redis"
	BackendFilesystem = "filesystem"
)

// Manager reads and writes values of the named session. Values are stored
// as JSON strings so any backend can hold them without type registration.
type Manager struct {
	logger *logrus.Logger
	store  sessions.Store
	name   string
}

func NewManager(logger *logrus.Logger, store sessions.Store, name string) *Manager {
	return &Manager{logger: logger, store: store, name: name}
}

// Options returns the cookie options sessions are issued with.
func Options(config *types.Config) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   config.SessionMaxAgeSec,
		HttpOnly: true,
		Secure:   config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
	}
}

// KeyPairs decodes the configured cookie keys. Outside development the hash
// key is required; in development a random one is generated per process.
func KeyPairs(config *types.Config) ([][]byte, error) {
	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode COOKIE_HASH_KEY: %w", err)
	}

	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode COOKIE_BLOCK_KEY: %w", err)
	}

	if len(hashKey) == 0 {
		if config.Environment != "development" {
			return nil, fmt.Errorf("set COOKIE_HASH_KEY")
		}
		hashKey = securecookie.GenerateRandomKey(32)
	}

	if len(blockKey) == 0 {
		return [][]byte{hashKey}, nil
	}

	return [][]byte{hashKey, blockKey}, nil
}

// NewStore builds the configured session backend.
func NewStore(config *types.Config, client *redis.Client) (sessions.Store, error) {
	keyPairs, err := KeyPairs(config)
	if err != nil {
		return nil, err
	}

	opts := Options(config)

	switch config.SessionBackend {
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("session backend redis needs REDIS_URL")
		}
		return NewRedisStore(client, opts, keyPairs...), nil
	case BackendFilesystem:
		dir := config.SessionDir
		if dir == "" {
			dir = os.TempDir()
		}
		store := sessions.NewFilesystemStore(dir, keyPairs...)
		store.Options = opts
		store.MaxAge(opts.MaxAge)
		return store, nil
	}

	return nil, fmt.Errorf("unknown session backend %q", config.SessionBackend)
}

// session returns the request's session. A cookie that no longer decodes
// (rotated keys, expired, tampered) yields a fresh session.
func (m *Manager) session(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.logger.WithError(err).Debug("discarding unreadable session")
	}
	if sess == nil {
		sess = sessions.NewSession(m.store, m.name)
		sess.IsNew = true
	}
	return sess
}

// Load decodes the value stored under key into dst. It reports false when
// nothing is stored.
func (m *Manager) Load(r *http.Request, key string, dst any) (bool, error) {
	raw, ok := m.session(r).Values[key].(string)
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode session value %q: %w", key, err)
	}

	return true, nil
}

func (m *Manager) Save(w http.ResponseWriter, r *http.Request, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session value %q: %w", key, err)
	}

	sess := m.session(r)
	sess.Values[key] = string(data)

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Principal returns the logged in identity, if any.
func (m *Manager) Principal(r *http.Request) (*types.Principal, bool) {
	var p types.Principal
	ok, err := m.Load(r, principalKey, &p)
	if err != nil {
		m.logger.WithError(err).Warn("failed to read session principal")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	role, err := types.ParseRole(string(p.Type))
	if err != nil {
		return nil, false
	}
	p.Type = role

	return &p, true
}

// Login stores the principal under a freshly issued session id.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, p *types.Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode principal: %w", err)
	}

	sess := m.session(r)
	sess.ID = ""
	sess.Values[principalKey] = string(data)

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Logout destroys the session and expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := m.session(r)
	if sess.IsNew {
		http.SetCookie(w, sessions.NewCookie(m.name, "", &sessions.Options{Path: "/", MaxAge: -1}))
		return nil
	}

	sess.Values = make(map[any]any)
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}
