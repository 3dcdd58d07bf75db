package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. Business-rule and validation
// failures are reported as success:false envelopes with 200; only oversized
// bodies get a transport-level status.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"message": "Image size exceeds 5MB limit",
			})
		} else {
			failMessage(c, "Invalid request body")
		}
		return false
	}
	return true
}

// failMessage reports a business failure inside the success envelope.
func failMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"message": message,
	})
}

// failStore reports a persistence failure.
func failStore(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": message,
	})
}
