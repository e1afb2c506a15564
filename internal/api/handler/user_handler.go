package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	logger *slog.Logger
	users  *users.Service
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger: deps.Logger,
		users:  deps.Users,
	}
}

// ForRecruiter handles GET /api/v1/users/:id/for-recruiter
func (h *UserHandler) ForRecruiter(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	userID := c.Param("id")
	logRequest(h.logger, c, "ForRecruiter called", slog.String("user_id", userID))

	profile, err := h.users.ForRecruiter(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
