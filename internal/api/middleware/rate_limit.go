package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"costedge/backend/pkg/redis"
	"costedge/backend/pkg/response"
)

const codeRateLimited = 10004

// RateLimit fixed-window limit per client IP and route, counted in Redis.
// A nil client or a non-positive limit disables it. Redis failures let the
// request through.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, codeRateLimited, "too many requests, retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}
