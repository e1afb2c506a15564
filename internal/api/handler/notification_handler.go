package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/dto"
	"github.com/cuongbtq/hirenest-be/internal/api/notification"
	"github.com/gin-gonic/gin"
)

// NotificationHandler serves the admin notification feed
type NotificationHandler struct {
	logger        *slog.Logger
	notifications *notification.Service
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:        deps.Logger,
		notifications: deps.Notifications,
	}
}

// List handles GET /api/v1/admin/notifications and /api/v1/notifications/admin
func (h *NotificationHandler) List(c *gin.Context) {
	logRequest(h.logger, c, "ListNotifications called")

	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	list, err := h.notifications.ListForAdmin(c.Request.Context(), req.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// UnreadCount handles GET /api/v1/notifications/admin/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	logRequest(h.logger, c, "UnreadCount called")

	count, err := h.notifications.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// MarkRead handles PUT /api/v1/admin/notifications/:id/read and
// PATCH /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := c.Param("id")
	logRequest(h.logger, c, "MarkNotificationRead called", slog.String("notification_id", id))

	n, err := h.notifications.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, n)
}
