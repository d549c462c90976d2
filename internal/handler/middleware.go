package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wiederlebendig/lead-attribution-service/internal/dto"
	"github.com/wiederlebendig/lead-attribution-service/internal/ratelimit"
)

// cronAuth gates admin and cron routes on the shared bearer secret. The check
// runs before any external call is made.
func cronAuth(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token != secret {
			log.Warn("Rejected unauthorized admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Err("unauthorized"))
			return
		}
		c.Next()
	}
}

// rateLimited enforces the fixed-window ingestion cap per source IP. Limiter
// backend errors fail open: tracking must not degrade the user-facing flow.
func rateLimited(limiter ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		if !ok {
			seconds := int(retryAfter / time.Second)
			if retryAfter%time.Second > 0 {
				seconds++
			}
			c.Header("Retry-After", fmt.Sprintf("%d", seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Err("rate limit exceeded"))
			return
		}

		c.Next()
	}
}
