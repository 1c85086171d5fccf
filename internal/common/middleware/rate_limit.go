package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepSize = 1024
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller
type RateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	perMinute int
	limit     rate.Limit
	burst     int
	now       func() time.Time
}

// NewRateLimiter returns nil when perMinute is not positive; a nil limiter
// lets every request through.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		entries:   make(map[string]*limiterEntry),
		perMinute: perMinute,
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		now:       time.Now,
	}
}

func (l *RateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.entries) >= limiterSweepSize {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// RateLimit throttles requests per authenticated user, falling back to the
// client IP when no identity is attached.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if id := UserID(c); id != uuid.Nil {
			key = "user:" + id.String()
		}
		limiter := l.get(key)
		now := l.now()

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.perMinute))

		res := limiter.ReserveN(now, 1)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			retry := int(math.Ceil(delay.Seconds()))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retry))
			JSONErrorResponse(c, errors.RateLimited(fmt.Sprintf("retry after %ds", retry)))
			c.Abort()
			return
		}

		remaining := int(math.Max(0, math.Floor(limiter.TokensAt(now))))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
