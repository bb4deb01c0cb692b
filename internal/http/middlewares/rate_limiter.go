package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a token-bucket limiter keyed by client IP. Each bucket
// refills at rate tokens per second up to burst. Solve endpoints are
// CPU-bound, so the limiter sits in front of every route. Knobs come from
// the general config (RATE_LIMIT_RPS / RATE_LIMIT_BURST).
type RateLimiter struct {
	mu      sync.Mutex
	rate    int
	burst   int
	buckets map[string]*bucket
}

type bucket struct {
	tokens int
	seen   time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

// RateLimitMiddleware answers 429 when the caller's bucket is empty.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// take refills the caller's bucket for the elapsed interval and consumes one
// token, reporting whether one was available.
func (rl *RateLimiter) take(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, seen: now}
		rl.buckets[ip] = b
	}

	b.tokens += int(now.Sub(b.seen).Seconds()) * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.seen = now

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}
