package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/dto"
	"github.com/cuongbtq/hirenest-be/internal/api/lifecycle"
	"github.com/gin-gonic/gin"
)

const resumeField = "resume"

// ApplicationHandler handles application requests
type ApplicationHandler struct {
	logger         *slog.Logger
	lifecycle      *lifecycle.Service
	maxResumeBytes int64
}

func NewApplicationHandler(deps *Dependencies) *ApplicationHandler {
	maxResumeBytes := deps.MaxResumeBytes
	if maxResumeBytes <= 0 {
		maxResumeBytes = lifecycle.DefaultMaxResumeBytes
	}
	return &ApplicationHandler{
		logger:         deps.Logger,
		lifecycle:      deps.Lifecycle,
		maxResumeBytes: maxResumeBytes,
	}
}

// Apply handles POST /api/v1/applications/apply/:jobId
func (h *ApplicationHandler) Apply(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")
	logRequest(h.logger, c, "Apply called",
		slog.String("job_id", jobID),
		slog.String("applicant_id", actor.ID),
	)

	var req dto.ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resume, err := readUpload(c, resumeField, h.maxResumeBytes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	application, err := h.lifecycle.Apply(c.Request.Context(), actor, jobID, lifecycle.ApplyInput{
		CoverLetter: req.CoverLetter,
		Resume:      resume,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// ListForJob handles GET /api/v1/applications/job/:jobId
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	jobID := c.Param("jobId")
	logRequest(h.logger, c, "ListForJob called", slog.String("job_id", jobID))

	list, err := h.lifecycle.ListForJob(c.Request.Context(), jobID, actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListMine handles GET /api/v1/applications/me
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	logRequest(h.logger, c, "ListMine called", slog.String("applicant_id", actor.ID))

	list, err := h.lifecycle.ListForApplicant(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListForRecruiter handles GET /api/v1/applications/recruiter/me
func (h *ApplicationHandler) ListForRecruiter(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	logRequest(h.logger, c, "ListForRecruiter called", slog.String("query", c.Request.URL.RawQuery))

	var req dto.RecruiterApplicationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.lifecycle.ListForRecruiter(c.Request.Context(), actor.ID, lifecycle.ListQuery{
		Status: req.Status,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateStatus handles PUT /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	applicationID := c.Param("id")
	logRequest(h.logger, c, "UpdateStatus called", slog.String("application_id", applicationID))

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	application, err := h.lifecycle.UpdateStatus(c.Request.Context(), applicationID, domain.ApplicationStatus(req.Status), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, application)
}
