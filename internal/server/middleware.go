package server

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"ngolib/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyPrincipal contextKey = "principal"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// denyFunc writes a rejection body. Most routes answer with writeMessage;
// the opportunity routes answer with writeError.
type denyFunc func(w http.ResponseWriter, status int, msg string)

// RequireSession rejects requests without a logged in principal and puts the
// principal in the request context.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return s.requireSession(s.writeMessage)(next)
}

func (s *Service) requireSession(deny denyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := s.sessions.Principal(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			s.logger.WithFields(logrus.Fields{
				"user_id": principal.ID,
				"type":    principal.Type,
			}).Debug("authenticated user")

			ctx := context.WithValue(r.Context(), contextKeyPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after RequireSession. Principals of any other role get
// a 403 with msg.
func (s *Service) RequireRole(msg string, roles ...types.Role) func(http.Handler) http.Handler {
	return s.requireRole(s.writeMessage, msg, roles...)
}

func (s *Service) requireRole(deny denyFunc, msg string, roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !slices.Contains(roles, principal.Type) {
				deny(w, http.StatusForbidden, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func principalFromContext(ctx context.Context) (*types.Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal).(*types.Principal)
	return p, ok && p != nil
}

// StripTrailingSlash redirects GET and HEAD requests to the slashless path
// and rewrites the path of every other method in place.
func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/" || !strings.HasSuffix(path, "/") {
			next.ServeHTTP(w, r)
			return
		}

		newURL := *r.URL
		newURL.Path = strings.TrimSuffix(path, "/")

		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		r2 := r.Clone(r.Context())
		r2.URL = &newURL
		next.ServeHTTP(w, r2)
	})
}
