package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"costedge/backend/pkg/response"
)

const codeBodyTooLarge = 10005

// BodyLimit caps the request body. Declared oversized bodies are refused up
// front; the rest are cut off while being read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
