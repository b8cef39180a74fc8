package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the per client token bucket.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
	// IdleAfter drops the bucket of a client that has been quiet this long.
	IdleAfter time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiterMap stores one limiter per client IP.
type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	config   RateLimiterConfig
	now      func() time.Time
}

func newRateLimiterMap(config RateLimiterConfig) *rateLimiterMap {
	if config.IdleAfter <= 0 {
		config.IdleAfter = 10 * time.Minute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	return &rateLimiterMap{
		limiters: make(map[string]*clientLimiter),
		config:   config,
		now:      time.Now,
	}
}

func (rl *rateLimiterMap) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cl, exists := rl.limiters[ip]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep forgets clients idle for longer than IdleAfter.
func (rl *rateLimiterMap) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.config.IdleAfter)
	for ip, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
}

func (rl *rateLimiterMap) cleanup() {
	ticker := time.NewTicker(rl.config.IdleAfter)
	defer ticker.Stop()
	for range ticker.C {
		rl.sweep()
	}
}

// RateLimiterMiddleware rejects clients exceeding the configured rate with 429.
// A non-positive rate disables limiting.
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiterMap := newRateLimiterMap(config)
	go limiterMap.cleanup()

	return func(c *gin.Context) {
		limiter := limiterMap.getLimiter(c.ClientIP())
		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := reservation.DelayFrom(time.Now()).Seconds()
			reservation.Cancel()

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded. Please try again later.",
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}
