package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

// create a new instance of the health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Auto Online API is running"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.db == nil {
		ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
	defer cancel()

	if err := h.db.Ping(cctx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db": "down"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "db": "up"})
}
