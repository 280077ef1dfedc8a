package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// State is in-process; it backs routes that must stay limited when Redis is down.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientInfo)
	)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		ci, ok := clients[ip]
		if !ok || now.Sub(ci.last) > window {
			ci = &clientInfo{last: now}
			clients[ip] = ci
		}
		ci.count++
		count := ci.count
		mu.Unlock()

		if count > maxRequests {
			rateLimitDecisions.WithLabelValues("local", outcomeBlocked).Inc()
			abort(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}

		rateLimitDecisions.WithLabelValues("local", outcomeAllowed).Inc()
		c.Next()
	}
}
