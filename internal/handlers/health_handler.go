package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

// NewHealthHandler accepts a nil store for the in-memory backend.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check godoc
// @Summary  Liveness and store reachability
// @Tags     Health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  ErrorResponse
// @Router   /healthz [get]
func (h *HealthHandler) Check(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.PingContext(ctx); err != nil {
			log.Printf("[health][ping][err] %v", err)
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
