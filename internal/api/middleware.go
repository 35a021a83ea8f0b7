package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shodhmemory/engine/internal/ratelimit"
)

// DefaultBodyLimit caps request bodies at 1MB; content above that size
// is rejected before it reaches a handler.
const DefaultBodyLimit = 1 * 1024 * 1024

// APIKeyAuthMiddleware checks X-API-Key (or "Bearer <key>" in
// Authorization) against apiKey. No-op if apiKey is empty. /health is
// always exempt.
func APIKeyAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		if key := c.GetHeader("X-API-Key"); key == apiKey {
			c.Next()
			return
		}

		if auth := c.GetHeader("Authorization"); auth != "" {
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] == apiKey {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, Response{Success: false, Message: "invalid or missing API key"})
		c.Abort()
	}
}

// RateLimitMiddleware rejects requests once limiter denies the
// caller's API key.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		result := limiter.Allow(c.GetHeader("X-API-Key"))
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, Response{Success: false, Message: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MaxBodySizeMiddleware rejects request bodies larger than maxBytes.
func MaxBodySizeMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, Response{Success: false, Message: "request body too large"})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
