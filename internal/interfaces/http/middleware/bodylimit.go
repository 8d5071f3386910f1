// Package middleware provides gin middleware for the bot's HTTP server.
package middleware

import (
	"net/http"

	"github.com/compmath/schedule-bot/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DefaultWebhookBodyLimit caps a single webhook update
const DefaultWebhookBodyLimit int64 = 1 << 20

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.CodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		// streamed bodies without a Content-Length are cut off by the reader
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
