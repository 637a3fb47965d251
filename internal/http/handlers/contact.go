package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/automartines/autoonline/internal/domain/contact"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/automartines/autoonline/internal/notifications"
	"github.com/gin-gonic/gin"
)

type InquiryStore interface {
	Create(ctx context.Context, in contact.Inquiry) (contact.Inquiry, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type ContactHandler struct {
	inquiries InquiryStore
	users     UserFinder
	notifier  notifications.Notifier
	log       *slog.Logger
}

func NewContactHandler(inquiries InquiryStore, users UserFinder, notifier notifications.Notifier, log *slog.Logger) *ContactHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ContactHandler{inquiries: inquiries, users: users, notifier: notifier, log: log}
}

// CreateInquiry stores a message to another user. The email to the
// recipient is best-effort and never fails the request.
func (h *ContactHandler) CreateInquiry(ctx *gin.Context) {
	fromID, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req contact.InquiryRequest
	if !BindJSON(ctx, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"fields": []FieldError{{Field: "message", Rule: "required", Message: validationMessage("required", "")}},
		})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	saved, err := h.inquiries.Create(cctx, req.Inquiry(fromID))
	if err != nil {
		if errors.Is(err, contact.ErrUnknownTarget) {
			RespondNotFound(ctx, "Recipient or listing not found")
			return
		}
		RespondInternal(ctx, "Failed to send message")
		return
	}

	h.notifyRecipient(cctx, saved)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Message sent successfully",
		"contactId": saved.ID,
	})
}

func (h *ContactHandler) notifyRecipient(ctx context.Context, in contact.Inquiry) {
	if h.notifier == nil || h.users == nil {
		return
	}

	to, err := h.users.GetByID(ctx, in.ToUserID)
	if err != nil {
		h.log.WarnContext(ctx, "inquiry recipient lookup failed", "contact_id", in.ID, "err", err)
		return
	}
	from, err := h.users.GetByID(ctx, in.FromUserID)
	if err != nil {
		h.log.WarnContext(ctx, "inquiry sender lookup failed", "contact_id", in.ID, "err", err)
		return
	}

	err = h.notifier.SendInquiry(ctx, notifications.InquiryNotice{
		ToEmail:   to.Email,
		ToName:    to.FullName,
		FromName:  from.FullName,
		FromEmail: from.Email,
		ListingID: in.ListingID,
		Message:   in.Message,
	})
	if err != nil {
		h.log.WarnContext(ctx, "inquiry notification failed", "contact_id", in.ID, "err", err)
	}
}

// SendContactForm relays the public contact form. There is no retry; a
// failed relay is reported to the caller.
func (h *ContactHandler) SendContactForm(ctx *gin.Context) {
	var req contact.Message
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	err := h.notifier.SendContactMessage(cctx, notifications.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "contact relay failed", "err", err)
		RespondBadGateway(ctx, "Could not send message")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Message sent successfully"})
}
