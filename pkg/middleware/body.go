package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter caps the request body at maxBytes. Requests that announce a
// bigger body are handed to onExceed right away; bodies that only turn out to
// be too big while reading make the read fail, see IsBodyTooLarge.
func BodySizeLimiter(maxBytes int64, onExceed gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fast reject for legit requests
		if c.Request.ContentLength > maxBytes {
			onExceed(c)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit
func IsBodyTooLarge(err error) bool {
	if err == nil {
		return false
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}

	// Some readers flatten the error on the way up
	return strings.Contains(err.Error(), "request body too large")
}
