package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"clicker_game/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter sets the shared Redis client used by the limiters.
// A nil client leaves them fail-open.
func InitRedisRateLimiter(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a fixed-window rate limiter per client IP using
// Redis INCR/EXPIRE. key format: rl:<window_seconds>:<ip>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limitRequest(c, key, "api", maxRequests, window, "X-RateLimit")
	}
}

// GameRateLimit limits one game action per user (not per IP). Requires JWT
// to run first.
func GameRateLimit(action string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get(ContextUserID)
		userID, isInt := uid.(int64)
		if !ok || !isInt {
			abort(c, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		key := "game_rl:" + action + ":" + strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		limitRequest(c, key, "game:"+action, maxRequests, window, "X-GameRateLimit")
	}
}

func limitRequest(c *gin.Context, key, scope string, maxRequests int, window time.Duration, headerPrefix string) {
	if redisClient == nil {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		// Redis недоступен: пропускаем запрос
		rateLimitDecisions.WithLabelValues(scope, outcomeFailOpen).Inc()
		logger.Warn("rate limiter redis error", "scope", scope, "error", err)
		c.Header(headerPrefix+"-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header(headerPrefix+"-Limit", strconv.Itoa(maxRequests))
	c.Header(headerPrefix+"-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		rateLimitDecisions.WithLabelValues(scope, outcomeBlocked).Inc()
		c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
		abort(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
		return
	}

	rateLimitDecisions.WithLabelValues(scope, outcomeAllowed).Inc()
	c.Next()
}
