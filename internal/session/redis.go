package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ngolib/internal/utils"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "session_"

// RedisStore keeps session values in Redis. The cookie only carries the
// signed session id; the values are encoded with the same codecs and stored
// under the id with a TTL of the session max age.
type RedisStore struct {
	client    *redis.Client
	codecs    []securecookie.Codec
	keyPrefix string

	Options *sessions.Options
}

var _ sessions.Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, options *sessions.Options, keyPairs ...[]byte) *RedisStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			// stored values are not bound by cookie size
			sc.MaxLength(0)
			sc.MaxAge(options.MaxAge)
		}
	}

	return &RedisStore{
		client:    client,
		codecs:    codecs,
		keyPrefix: defaultKeyPrefix,
		Options:   options,
	}
}

func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	err = securecookie.DecodeMulti(name, c.Value, &session.ID, s.codecs...)
	if err != nil {
		return session, err
	}

	ok, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !ok

	return session, nil
}

// Save writes the session to Redis and sets the id cookie. A negative MaxAge
// deletes the session and expires the cookie.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if err := s.delete(r.Context(), session); err != nil {
			return err
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = utils.NanoID()
	}

	if err := s.save(r.Context(), session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session id: %w", err)
	}

	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) key(session *sessions.Session) string {
	return s.keyPrefix + session.ID
}

func (s *RedisStore) save(ctx context.Context, session *sessions.Session) error {
	encoded, err := securecookie.EncodeMulti(session.Name(), session.Values, s.codecs...)
	if err != nil {
		return fmt.Errorf("failed to encode session values: %w", err)
	}

	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.client.Set(ctx, s.key(session), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

func (s *RedisStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.client.Get(ctx, s.key(session)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch session: %w", err)
	}

	err = securecookie.DecodeMulti(session.Name(), data, &session.Values, s.codecs...)
	if err != nil {
		return false, fmt.Errorf("failed to decode session values: %w", err)
	}

	return true, nil
}

func (s *RedisStore) delete(ctx context.Context, session *sessions.Session) error {
	if session.ID == "" {
		return nil
	}

	if err := s.client.Del(ctx, s.key(session)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
