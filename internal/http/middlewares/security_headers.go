package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultCSP = "default-src 'none'; frame-ancestors 'none'"
	// images are embedded by the frontend from another origin
	uploadsCSP = "default-src 'none'; img-src 'self'"
)

func SecurityHeaders(uploadsPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		if uploadsPrefix != "" && strings.HasPrefix(c.Request.URL.Path, uploadsPrefix+"/") {
			c.Header("Content-Security-Policy", uploadsCSP)
			c.Header("Cross-Origin-Resource-Policy", "cross-origin")
		} else {
			c.Header("X-Frame-Options", "DENY")
			c.Header("Content-Security-Policy", defaultCSP)
		}
		c.Next()
	}
}
