package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/teamtask/internal/constants"
	apierrors "github.com/yukikurage/teamtask/internal/errors"
	"github.com/yukikurage/teamtask/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimit rejects callers over their budget with 429 and Retry-After.
// Authenticated callers are keyed by user, everyone else by client IP.
// Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = "user:" + strconv.FormatUint(userID, 10)
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header(constants.HeaderRetryAfter, strconv.Itoa(seconds))
			log.Info("rate limit hit", zap.String("key", key), zap.String("path", c.Request.URL.Path))
			apierrors.TooManyRequests(c, "")
			return
		}

		c.Next()
	}
}
