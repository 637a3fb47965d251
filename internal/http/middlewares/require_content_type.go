package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireContentType rejects POST/PUT/PATCH bodies whose Content-Type does
// not start with one of the given media types.
func RequireContentType(mediaTypes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// allow "application/json; charset=utf-8" and multipart boundaries
			ct := strings.ToLower(c.GetHeader("Content-Type"))
			for _, mt := range mediaTypes {
				if strings.HasPrefix(ct, mt) {
					c.Next()
					return
				}
			}
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": gin.H{
					"code":    "unsupported_media_type",
					"message": "Content-Type must be " + strings.Join(mediaTypes, " or "),
				},
			})
			return
		}
		c.Next()
	}
}

func RequireJSON() gin.HandlerFunc {
	return RequireContentType("application/json")
}

func RequireMultipart() gin.HandlerFunc {
	return RequireContentType("multipart/form-data", "application/x-www-form-urlencoded")
}
