package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/contact"
	"github.com/cuongbtq/hirenest-be/internal/api/moderation"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles moderation and inbox requests
type AdminHandler struct {
	logger  *slog.Logger
	gate    *moderation.Gate
	contact *contact.Service
}

func NewAdminHandler(deps *Dependencies) *AdminHandler {
	return &AdminHandler{
		logger:  deps.Logger,
		gate:    deps.Moderation,
		contact: deps.Contact,
	}
}

// ApproveJob handles POST /api/v1/admin/jobs/:id/approve
func (h *AdminHandler) ApproveJob(c *gin.Context) {
	jobID := c.Param("id")
	logRequest(h.logger, c, "ApproveJob called", slog.String("job_id", jobID))

	job, err := h.gate.Approve(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListPendingJobs handles GET /api/v1/admin/jobs/pending
func (h *AdminHandler) ListPendingJobs(c *gin.Context) {
	logRequest(h.logger, c, "ListPendingJobs called")

	list, err := h.gate.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListMessages handles GET /api/v1/admin/messages
func (h *AdminHandler) ListMessages(c *gin.Context) {
	logRequest(h.logger, c, "ListMessages called")

	list, err := h.contact.ListForAdmin(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// MarkMessageRead handles PATCH /api/v1/admin/messages/:id/read
func (h *AdminHandler) MarkMessageRead(c *gin.Context) {
	id := c.Param("id")
	logRequest(h.logger, c, "MarkMessageRead called", slog.String("message_id", id))

	msg, err := h.contact.MarkRead(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}
