package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/hirenest-be/internal/api/dto"
	"github.com/cuongbtq/hirenest-be/internal/api/jobs"
	"github.com/gin-gonic/gin"
)

const companyLogoField = "companyLogo"

// JobHandler handles job posting requests
type JobHandler struct {
	logger       *slog.Logger
	jobs         *jobs.Service
	maxLogoBytes int64
}

func NewJobHandler(deps *Dependencies) *JobHandler {
	maxLogoBytes := deps.MaxLogoBytes
	if maxLogoBytes <= 0 {
		maxLogoBytes = jobs.DefaultMaxLogoBytes
	}
	return &JobHandler{
		logger:       deps.Logger,
		jobs:         deps.Jobs,
		maxLogoBytes: maxLogoBytes,
	}
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	logRequest(h.logger, c, "ListJobs called", slog.String("query", c.Request.URL.RawQuery))

	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		h.logger.Error("Invalid cursor", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
		return
	}

	page, err := h.jobs.ListPublic(c.Request.Context(), jobs.Search{
		Query:    req.Query,
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       page.Jobs,
		NextCursor: EncodeJobCursor(page.Next),
	})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID := c.Param("id")
	logRequest(h.logger, c, "GetJob called", slog.String("job_id", jobID))

	job, err := h.jobs.Get(c.Request.Context(), optionalPrincipal(c), jobID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListMyJobs handles GET /api/v1/jobs/recruiter/me
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	logRequest(h.logger, c, "ListMyJobs called", slog.String("recruiter_id", actor.ID))

	list, err := h.jobs.ListMine(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// CreateJob handles POST /api/v1/jobs, as JSON or multipart with a logo
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	logRequest(h.logger, c, "CreateJob called", slog.String("recruiter_id", actor.ID))

	var req dto.CreateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logo, err := readUpload(c, companyLogoField, h.maxLogoBytes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), actor, jobs.CreateJobInput{
		Title:          req.Title,
		Company:        req.Company,
		Location:       req.Location,
		Description:    req.Description,
		Skills:         req.Skills,
		EmploymentType: req.Type,
		Salary:         req.Salary,
		CompanyLogoURL: req.CompanyLogoURL,
	}, logo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

// UpdateJob handles PUT /api/v1/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	jobID := c.Param("id")
	logRequest(h.logger, c, "UpdateJob called", slog.String("job_id", jobID))

	var req dto.UpdateJobRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	logo, err := readUpload(c, companyLogoField, h.maxLogoBytes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	in := jobs.UpdateJobInput{
		Title:          req.Title,
		Company:        req.Company,
		Location:       req.Location,
		Description:    req.Description,
		EmploymentType: req.Type,
		Salary:         req.Salary,
		CompanyLogoURL: req.CompanyLogoURL,
		IsActive:       req.IsActive,
	}
	if req.Skills != nil {
		in.Skills = *req.Skills
		in.SkillsSet = true
	}

	job, err := h.jobs.Update(c.Request.Context(), actor, jobID, in, logo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob handles DELETE /api/v1/jobs/:id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	jobID := c.Param("id")
	logRequest(h.logger, c, "DeleteJob called", slog.String("job_id", jobID))

	if err := h.jobs.Delete(c.Request.Context(), actor, jobID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Job deleted"})
}
