package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/contact"
	"github.com/cuongbtq/hirenest-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	logger  *slog.Logger
	contact *contact.Service
}

func NewContactHandler(deps *Dependencies) *ContactHandler {
	return &ContactHandler{
		logger:  deps.Logger,
		contact: deps.Contact,
	}
}

// Create handles POST /api/v1/contact. Authentication is optional.
func (h *ContactHandler) Create(c *gin.Context) {
	logRequest(h.logger, c, "CreateContactMessage called")

	var req dto.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.contact.Create(c.Request.Context(), optionalPrincipal(c), contact.Input{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
