package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/automartines/autoonline/internal/storage/images"
	"github.com/gin-gonic/gin"
)

type ListingService interface {
	Get(ctx context.Context, id int64) (listing.Listing, error)
	List(ctx context.Context, f listing.ListFilter) ([]listing.Listing, error)
	ListByUser(ctx context.Context, userID int64) ([]listing.Listing, error)
	Create(ctx context.Context, actor listing.Actor, p listing.Patch, uploads []images.Upload) (listing.Listing, error)
	Update(ctx context.Context, actor listing.Actor, id int64, p listing.Patch, uploads []images.Upload) (listing.Listing, error)
	Delete(ctx context.Context, actor listing.Actor, id int64) error
}

type ListingsHandler struct {
	svc ListingService
}

func NewListingsHandler(svc ListingService) *ListingsHandler {
	return &ListingsHandler{svc: svc}
}

// writes touch disk or object storage for every file
const listingWriteTimeout = 30 * time.Second

func (h *ListingsHandler) List(ctx *gin.Context) {
	f, err := listing.FilterFromQuery(ctx.Request.URL.Query())
	if err != nil {
		if !respondIfValidation(ctx, err) {
			RespondBadRequest(ctx, "Invalid query", nil)
		}
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx, f)
	if err != nil {
		RespondInternal(ctx, "Could not list listings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"listings": items,
		"count":    len(items),
	})
}

func (h *ListingsHandler) Get(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	l, err := h.svc.Get(cctx, id)
	if err != nil {
		respondListingError(ctx, err, "Could not fetch listing")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"listing": l})
}

func (h *ListingsHandler) ListByUser(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.svc.ListByUser(cctx, userID)
	if err != nil {
		RespondInternal(ctx, "Could not list listings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"listings": items})
}

func (h *ListingsHandler) Create(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}

	patch, uploads, err := readListingForm(ctx)
	if err != nil {
		respondListingError(ctx, err, "Could not create listing")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), listingWriteTimeout)
	defer cancel()

	created, err := h.svc.Create(cctx, actor, patch, uploads)
	if err != nil {
		respondListingError(ctx, err, "Could not create listing")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Listing created successfully",
		"listingId": created.ID,
		"listing":   created,
	})
}

func (h *ListingsHandler) Update(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	patch, uploads, err := readListingForm(ctx)
	if err != nil {
		respondListingError(ctx, err, "Failed to update listing")
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), listingWriteTimeout)
	defer cancel()

	if _, err := h.svc.Update(cctx, actor, id, patch, uploads); err != nil {
		respondListingError(ctx, err, "Failed to update listing")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Listing updated successfully"})
}

func (h *ListingsHandler) Delete(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), listingWriteTimeout)
	defer cancel()

	if err := h.svc.Delete(cctx, actor, id); err != nil {
		respondListingError(ctx, err, "Failed to delete listing")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

// respondListingError maps service errors onto the JSON error body.
// fallback is the 500 message.
func respondListingError(ctx *gin.Context, err error, fallback string) {
	if respondIfValidation(ctx, err) {
		return
	}

	var tooLarge *http.MaxBytesError

	switch {
	case errors.Is(err, listing.ErrNotFound):
		RespondNotFound(ctx, "Listing not found")
	case errors.Is(err, listing.ErrForbidden):
		RespondForbidden(ctx)
	case errors.Is(err, images.ErrUnsupportedType):
		RespondUnsupportedMedia(ctx, "Only image files are allowed (JPG, PNG, WebP, GIF, AVIF)")
	case errors.Is(err, images.ErrTooLarge), errors.As(err, &tooLarge):
		RespondTooLarge(ctx, "Image exceeds the upload size limit")
	case errors.Is(err, errBadForm):
		RespondBadRequest(ctx, "Invalid form data", nil)
	default:
		RespondInternal(ctx, fallback)
	}
}

func actorFrom(ctx *gin.Context) (listing.Actor, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return listing.Actor{}, false
	}
	role, _ := middlewares.RoleFromContext(ctx)
	return listing.Actor{UserID: id, Role: role}, true
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name, gin.H{
			"fields": []FieldError{{Field: name, Rule: "numeric", Message: "must be a positive integer"}},
		})
		return 0, false
	}
	return id, true
}
