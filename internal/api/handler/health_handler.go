package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 3 * time.Second

type HealthHandler struct {
	logger   *slog.Logger
	database HealthChecker
	broker   BrokerStatus
	service  string
}

func NewHealthHandler(deps *Dependencies, service string) *HealthHandler {
	return &HealthHandler{
		logger:   deps.Logger,
		database: deps.Database,
		broker:   deps.Broker,
		service:  service,
	}
}

// Health handles GET /health. The broker is only checked when mail goes
// through the queue.
func (h *HealthHandler) Health(c *gin.Context) {
	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := h.database.HealthCheck(ctx); err != nil {
			h.logger.Warn("Health check failed", slog.String("error", err.Error()))
			h.unhealthy(c, "database")
			return
		}
	}

	if h.broker != nil && !h.broker.IsConnected() {
		h.logger.Warn("Health check failed", slog.String("error", "rabbitmq connection is closed"))
		h.unhealthy(c, "rabbitmq")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}

func (h *HealthHandler) unhealthy(c *gin.Context, component string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"status":    "unhealthy",
		"service":   h.service,
		"component": component,
	})
}
