package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies; multipart uploads get their own, larger cap.
func MaxBodyBytes(max, multipartMax int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := max
		if strings.HasPrefix(strings.ToLower(ctx.GetHeader("Content-Type")), "multipart/") {
			limit = multipartMax
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
