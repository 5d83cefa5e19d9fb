package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipRateLimiter keeps one token bucket per client IP. Buckets refill evenly
// across the window and allow the full window quota as burst.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	message  string
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit allows max requests per window per client IP, answering 429 with
// the given message once exhausted. Abuse protection only, not correctness.
func RateLimit(max int, window time.Duration, message string) gin.HandlerFunc {
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		window:   window,
		message:  message,
	}

	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": rl.message,
			})
			return
		}
		c.Next()
	}
}

func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	// Drop buckets idle for well over a window to bound memory
	if len(rl.visitors) > 1000 {
		for key, vis := range rl.visitors {
			if now.Sub(vis.lastSeen) > 3*rl.window {
				delete(rl.visitors, key)
			}
		}
	}

	return v.limiter.Allow()
}
