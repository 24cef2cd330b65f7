// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit allows limitPerMinute requests per client IP in a fixed
// one-minute window counted in Redis. Requests pass when Redis is down.
func RateLimit(redisClient *redis.Client, limitPerMinute int, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("rate_limit:%s:%d", c.ClientIP(), window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WithError(err).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := limitPerMinute - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limitPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt((window+1)*60, 10))

		if count > limitPerMinute {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": (window+1)*60 - time.Now().Unix(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
