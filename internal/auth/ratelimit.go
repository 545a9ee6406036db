package auth

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mrlokans/bookstore/internal/apperrors"
)

// idleLimiterTTL is how long an untouched limiter is kept before cleanup.
const idleLimiterTTL = 30 * time.Minute

// RateLimiter throttles login attempts with one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst attempts at once per key, refilled at rps per
// second. It starts a cleanup goroutine that Stop ends.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop(idleLimiterTTL)
	return rl
}

// Reserve takes a token for key. When none is available it returns false and
// how long until the next one.
func (rl *RateLimiter) Reserve(key string) (bool, time.Duration) {
	now := rl.now()
	limiter := rl.getLimiter(key, now)
	if limiter.AllowN(now, 1) {
		return true, 0
	}

	r := limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	if !r.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	return false, delay
}

// Reset forgets the bucket for key, typically after a successful login.
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	delete(rl.limiters, key)
	rl.mu.Unlock()
}

func (rl *RateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Stop shuts down the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

func (rl *RateLimiter) cleanupLoop(ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(ttl)
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(ttl time.Duration) {
	cutoff := rl.now().Add(-ttl)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
// It should be applied only to the login route.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Reserve(c.ClientIP())
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			abortWithError(c, apperrors.ErrTooManyRequests.WithDetails(map[string]string{
				"retry_after": strconv.Itoa(seconds) + "s",
			}))
			return
		}
		c.Next()
	}
}
