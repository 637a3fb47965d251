package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/automartines/autoonline/internal/domain/listing"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ListingLister interface {
	List(ctx context.Context, f listing.ListFilter) ([]listing.Listing, error)
}

type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

type AdminHandler struct {
	listings ListingLister
	users    UserLister
}

func NewAdminHandler(listings ListingLister, users UserLister) *AdminHandler {
	return &AdminHandler{listings: listings, users: users}
}

// GET /admin/listings?status=sold|available
func (h *AdminHandler) Listings(ctx *gin.Context) {
	f := listing.ListFilter{IncludeSold: true}

	switch ctx.Query("status") {
	case "":
	case "sold":
		sold := true
		f.Sold = &sold
	case "available":
		sold := false
		f.Sold = &sold
	default:
		RespondBadRequest(ctx, "Invalid query", gin.H{
			"fields": []FieldError{{Field: "status", Rule: "oneof", Param: "sold available", Message: validationMessage("oneof", "sold available")}},
		})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.listings.List(cctx, f)
	if err != nil {
		RespondInternal(ctx, "Could not list listings")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"listings": items,
		"count":    len(items),
	})
}

// GET /admin/users
func (h *AdminHandler) Users(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.users.List(cctx)
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": items,
		"count": len(items),
	})
}
