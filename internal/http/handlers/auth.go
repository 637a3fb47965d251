package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/automartines/autoonline/internal/config"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/http/middlewares"
	"github.com/automartines/autoonline/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type TokenIssuer interface {
	GenerateToken(userID int64, email string) (string, time.Time, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
	cfg   config.Config
}

func NewAuthHandler(users UserStore, jwt TokenIssuer, cfg config.Config) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, cfg: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
	FirstName string `json:"firstName" binding:"required,max=80"`
	LastName  string `json:"lastName" binding:"required,max=80"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	var blank []FieldError
	if req.FirstName == "" {
		blank = append(blank, FieldError{Field: "firstName", Rule: "required", Message: validationMessage("required", "")})
	}
	if req.LastName == "" {
		blank = append(blank, FieldError{Field: "lastName", Rule: "required", Message: validationMessage("required", "")})
	}
	if len(blank) > 0 {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": blank})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.NewUser{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         user.RoleCustomer,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email already registered")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	token, ok := h.issue(ctx, u)
	if !ok {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    u,
		"token":   token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			RespondInternal(ctx, "Could not log in")
			return
		}
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	if !security.PasswordMatches(foundUser.PasswordHash, req.Password) {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	token, ok := h.issue(ctx, foundUser)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    foundUser,
		"token":   token,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearTokenCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the user row the auth middleware resolved.
func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Authentication required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) issue(ctx *gin.Context, u user.User) (string, bool) {
	token, expiresAt, err := h.jwt.GenerateToken(u.ID, u.Email)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return "", false
	}

	h.setTokenCookie(ctx, token, expiresAt)
	return token, true
}

func (h *AuthHandler) setTokenCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.TokenCookie,
		raw,
		maxAge,
		"/",
		"",
		h.cfg.IsProd(),
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearTokenCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.TokenCookie,
		"",
		-1,
		"/",
		"",
		h.cfg.IsProd(),
		true,
	)
}
