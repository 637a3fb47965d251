package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/automartines/autoonline/internal/auth"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/gin-gonic/gin"
)

const TokenCookie = "token"

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// AuthMiddleware verifies the token and then loads the user row on every
// request; the role always comes from the row, never from the token.
type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

var (
	errNoToken      = errors.New("missing token")
	errBadToken     = errors.New("invalid token")
	errUnknownUser  = errors.New("user not found")
	errLookupFailed = errors.New("user lookup failed")
)

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := m.authenticate(c)

		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, errNoToken):
			abortUnauthorized(c, "Authentication required")
		case errors.Is(err, errBadToken):
			abortUnauthorized(c, "Invalid or expired token")
		case errors.Is(err, errUnknownUser):
			abortUnauthorized(c, "User not found")
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "internal_error",
					"message": "Could not verify session",
				},
			})
		}
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) error {
	raw := tokenFromRequest(c)
	if raw == "" {
		return errNoToken
	}

	claims, err := m.jwt.VerifyToken(raw)
	if err != nil {
		return errBadToken
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return errUnknownUser
		}
		return errLookupFailed
	}

	role := u.Role
	if role == "" {
		role = user.RoleCustomer
	}

	// Stash useful bits of identity on the context
	c.Set(CtxUserID, u.ID)
	c.Set(CtxEmail, u.Email)
	c.Set(CtxRole, role)
	return nil
}

// cookie first, then bearer header
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(TokenCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Optional helpers so handlers don’t need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxEmail)
	if !ok {
		return "", false
	}
	email, ok := v.(string)
	return email, ok
}
