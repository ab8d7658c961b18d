package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

// RateLimitConfig sets the per-caller token bucket. A zero
// RequestsPerSecond turns limiting off.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// idleBucketTTL is how long a full, unused bucket is kept before it is
// dropped from the store.
const idleBucketTTL = 10 * time.Minute

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

type bucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rate      float64
	burst     float64
	now       func() time.Time
	lastSweep time.Time
}

func newBucketStore(cfg RateLimitConfig, now func() time.Time) *bucketStore {
	return &bucketStore{
		buckets:   make(map[string]*tokenBucket),
		rate:      cfg.RequestsPerSecond,
		burst:     float64(cfg.Burst),
		now:       now,
		lastSweep: now(),
	}
}

// take spends one token for key. When the bucket is empty it reports how
// many whole seconds until the next token.
func (s *bucketStore) take(key string) (ok bool, retryAfter int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > idleBucketTTL {
		s.sweepLocked(now)
	}

	b, found := s.buckets[key]
	if !found {
		b = &tokenBucket{tokens: s.burst, lastSeen: now}
		s.buckets[key] = b
	}
	b.tokens += now.Sub(b.lastSeen).Seconds() * s.rate
	if b.tokens > s.burst {
		b.tokens = s.burst
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, int(math.Ceil((1 - b.tokens) / s.rate))
}

func (s *bucketStore) sweepLocked(now time.Time) {
	for k, b := range s.buckets {
		if now.Sub(b.lastSeen) > idleBucketTTL {
			delete(s.buckets, k)
		}
	}
	s.lastSweep = now
}

// RateLimit throttles each signed-in actor separately; anonymous callers
// share a bucket per client IP. Health and metrics endpoints are never
// limited. It must run after auth.Middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(cfg, time.Now)
}

func rateLimit(cfg RateLimitConfig, now func() time.Time) echo.MiddlewareFunc {
	if cfg.RequestsPerSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	store := newBucketStore(cfg, now)
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.IsPublicPath(c.Path()) {
				return next(c)
			}

			key := "ip:" + c.RealIP()
			if actor, _ := c.Get(string(auth.ActorKey)).(string); actor != "" {
				key = "actor:" + actor
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			ok, retryAfter := store.take(key)
			if !ok {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please wait a moment and try again")
			}
			return next(c)
		}
	}
}
