package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	UpdateProfile(ctx context.Context, id int64, p user.ProfileUpdate) (user.User, error)
}

type UsersHandler struct {
	users ProfileStore
}

func NewUsersHandler(users ProfileStore) *UsersHandler {
	return &UsersHandler{users: users}
}

// GetPublic exposes the public part of a profile to anyone.
func (h *UsersHandler) GetPublic(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u.Public()})
}

func (h *UsersHandler) UpdateProfile(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	var req user.ProfileUpdate
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateProfile(cctx, id, req)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Failed to update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    u,
	})
}
