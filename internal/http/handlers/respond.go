package handlers

import (
	"errors"
	"net/http"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details any) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnauthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

// RespondForbidden keeps one flat message for every ownership failure.
func RespondForbidden(ctx *gin.Context) {
	RespondError(ctx, http.StatusForbidden, "forbidden", "Unauthorized", nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnsupportedMedia(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnsupportedMediaType, "unsupported_media_type", message, nil)
}

func RespondTooLarge(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", message, nil)
}

func RespondBadGateway(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadGateway, "upstream_error", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondValidation reports every failing field under details.fields.
func RespondValidation(ctx *gin.Context, verr *listing.ValidationError) {
	fields := make([]FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, FieldError{Field: f.Field, Rule: f.Rule, Param: f.Param, Message: f.Message})
	}
	RespondBadRequest(ctx, "Validation failed", gin.H{"fields": fields})
}

// respondIfValidation handles a *listing.ValidationError and reports
// whether it did.
func respondIfValidation(ctx *gin.Context, err error) bool {
	var verr *listing.ValidationError
	if errors.As(err, &verr) {
		RespondValidation(ctx, verr)
		return true
	}
	return false
}
