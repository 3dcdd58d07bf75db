package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies; image payloads arrive inline as base64
// data URIs.
const MaxBodyBytes = 5 << 20 // 5MB

// BodyLimit caps the request body. Handlers binding JSON see a
// *http.MaxBytesError once the limit is crossed and answer 413.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
