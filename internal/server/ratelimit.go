package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RateLimiter throttles per client IP. Counters live in Redis when a client
// is given; without Redis, or when Redis errors, an in-process token bucket
// per key takes over.
type RateLimiter struct {
	logger   *logrus.Logger
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	limit    redis_rate.Limit
}

func NewRateLimiter(logger *logrus.Logger, rdb *redis.Client, limit redis_rate.Limit) *RateLimiter {
	rl := &RateLimiter{
		logger:   logger,
		fallback: &localLimiter{},
		limit:    limit,
	}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

// PerMinute allows n requests a minute with a burst of n. Zero or less
// disables limiting.
func PerMinute(n int) redis_rate.Limit {
	return redis_rate.Limit{Rate: n, Burst: n, Period: time.Minute}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit.IsZero() || rl.limit.Rate <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := keyByIP(r) + ":" + r.URL.Path
		res := rl.allow(r.Context(), key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit.Rate))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if res.Allowed == 0 {
			retryAfter := max(int(res.RetryAfter.Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

			rl.logger.WithField("key", key).Warn("rate limit exceeded")
			writeRateLimited(w, retryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) *redis_rate.Result {
	if rl.limiter != nil {
		res, err := rl.limiter.Allow(ctx, key, rl.limit)
		if err == nil {
			return res
		}
		rl.logger.WithError(err).Warn("redis rate limiter failed, using local limiter")
	}

	return rl.fallback.allow(key, rl.limit)
}

func writeRateLimited(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = fmt.Fprintf(w, `{"message":"Too many requests, retry after %d seconds"}`+"\n", retryAfter)
}

func keyByIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return "ratelimit:ip:" + strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ratelimit:ip:" + xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	return "ratelimit:ip:" + ip
}

const localEntryTTL = 10 * time.Minute

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type localLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.limiters == nil {
		l.limiters = make(map[string]*limiterEntry)
	}

	// sweep idle buckets
	if now.Sub(l.lastSweep) > localEntryTTL {
		for k, e := range l.limiters {
			if now.Sub(e.lastAccess) > localEntryTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	perSec := float64(limit.Rate) / limit.Period.Seconds()

	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now

	res := &redis_rate.Result{Limit: limit, RetryAfter: -1}
	if entry.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = time.Duration(float64(time.Second) / perSec)
	}
	res.Remaining = max(int(entry.limiter.TokensAt(now)), 0)

	return res
}
