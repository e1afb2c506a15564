package jobs

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cuongbtq/hirenest-be/internal/api/access"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/files"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/moderation"
	"github.com/cuongbtq/hirenest-be/internal/api/storage"
	"github.com/google/uuid"
)

const (
	// DefaultMaxLogoBytes applies when no ceiling is configured
	DefaultMaxLogoBytes int64 = 5 << 20

	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultLocation = "Remote"

	logoFolder = "company_logos"
)

// Storage is the job persistence the service needs
type Storage interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, jobID string) error
	ListPublicJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error)
	ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]model.Job, error)
}

// Emitter schedules side effects for an event
type Emitter interface {
	Emit(ctx context.Context, ev fanout.Event)
}

type Service struct {
	storage      Storage
	guard        *access.Guard
	gate         *moderation.Gate
	files        files.Store
	events       Emitter
	maxLogoBytes int64
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(
	storage Storage,
	guard *access.Guard,
	gate *moderation.Gate,
	store files.Store,
	events Emitter,
	maxLogoBytes int64,
	logger *slog.Logger,
) *Service {
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultMaxLogoBytes
	}
	return &Service{
		storage:      storage,
		guard:        guard,
		gate:         gate,
		files:        store,
		events:       events,
		maxLogoBytes: maxLogoBytes,
		logger:       logger,
		now:          time.Now,
	}
}

type CreateJobInput struct {
	Title          string
	Company        string
	Location       string
	Description    string
	Skills         []string
	EmploymentType string
	Salary         string
	CompanyLogoURL string
}

// UpdateJobInput holds a partial update. Nil fields are left unchanged.
type UpdateJobInput struct {
	Title          *string
	Company        *string
	Location       *string
	Description    *string
	Skills         []string
	SkillsSet      bool
	EmploymentType *string
	Salary         *string
	CompanyLogoURL *string
	IsActive       *bool
}

// Create posts a new job. It starts unapproved and admins are told about it.
func (s *Service) Create(ctx context.Context, actor domain.Principal, in CreateJobInput, logo *files.Upload) (*model.Job, error) {
	if !actor.IsRecruiter() && !actor.IsAdmin() {
		return nil, domain.Forbidden("only recruiters can post jobs")
	}

	job := &model.Job{
		ID:             uuid.New().String(),
		RecruiterID:    actor.ID,
		Title:          strings.TrimSpace(in.Title),
		Company:        strings.TrimSpace(in.Company),
		Location:       strings.TrimSpace(in.Location),
		Description:    strings.TrimSpace(in.Description),
		Skills:         ParseSkills(in.Skills),
		EmploymentType: strings.TrimSpace(in.EmploymentType),
		Salary:         strings.TrimSpace(in.Salary),
		IsApproved:     false,
		IsActive:       true,
	}
	if job.Location == "" {
		job.Location = DefaultLocation
	}

	if err := validateJob(job); err != nil {
		return nil, err
	}

	if logo == nil && strings.TrimSpace(in.CompanyLogoURL) == "" {
		return nil, domain.InvalidInput("company logo is required")
	}
	if err := s.applyLogo(ctx, job, logo, in.CompanyLogoURL); err != nil {
		return nil, err
	}

	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := s.storage.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job created",
		slog.String("job_id", job.ID),
		slog.String("recruiter_id", job.RecruiterID),
	)

	s.events.Emit(ctx, fanout.JobCreated{Job: job})

	return job, nil
}

// Update changes the fields set in in. Moderation state is not touched.
func (s *Service) Update(ctx context.Context, actor domain.Principal, jobID string, in UpdateJobInput, logo *files.Upload) (*model.Job, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMutateJob(actor, job) {
		return nil, domain.Forbidden("not authorized to edit this job")
	}

	if in.Title != nil {
		job.Title = strings.TrimSpace(*in.Title)
	}
	if in.Company != nil {
		job.Company = strings.TrimSpace(*in.Company)
	}
	if in.Location != nil {
		job.Location = strings.TrimSpace(*in.Location)
		if job.Location == "" {
			job.Location = DefaultLocation
		}
	}
	if in.Description != nil {
		job.Description = strings.TrimSpace(*in.Description)
	}
	if in.SkillsSet {
		job.Skills = ParseSkills(in.Skills)
	}
	if in.EmploymentType != nil {
		job.EmploymentType = strings.TrimSpace(*in.EmploymentType)
	}
	if in.Salary != nil {
		job.Salary = strings.TrimSpace(*in.Salary)
	}
	if in.IsActive != nil {
		job.IsActive = *in.IsActive
	}

	if err := validateJob(job); err != nil {
		return nil, err
	}

	logoURL := ""
	if in.CompanyLogoURL != nil {
		logoURL = *in.CompanyLogoURL
	}
	if logo != nil || strings.TrimSpace(logoURL) != "" {
		if err := s.applyLogo(ctx, job, logo, logoURL); err != nil {
			return nil, err
		}
	}

	job.UpdatedAt = s.now()

	if err := s.storage.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	return job, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.Principal, jobID string) error {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return err
	}

	if !s.guard.CanMutateJob(actor, job) {
		return domain.Forbidden("not authorized to delete this job")
	}

	if err := s.storage.DeleteJob(ctx, job.ID); err != nil {
		return err
	}

	s.logger.Info("Job deleted",
		slog.String("job_id", job.ID),
		slog.String("actor_id", actor.ID),
	)

	return nil
}

// Get returns a job. Jobs still awaiting moderation are visible only to
// their owner and to admins.
func (s *Service) Get(ctx context.Context, viewer *domain.Principal, jobID string) (*model.Job, error) {
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.gate.IsOpenForApplications(job) {
		return job, nil
	}
	if viewer != nil && s.guard.CanMutateJob(*viewer, job) {
		return job, nil
	}

	return nil, domain.ErrJobNotFound
}

// Search selects one page of public jobs
type Search struct {
	Query    string
	PageSize int
	Cursor   *storage.JobCursor
}

// PublicPage is a page of public jobs. Next is nil on the last page.
type PublicPage struct {
	Jobs []model.Job
	Next *storage.JobCursor
}

// ListPublic searches approved, active jobs newest first
func (s *Service) ListPublic(ctx context.Context, search Search) (*PublicPage, error) {
	pageSize := search.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, err := s.storage.ListPublicJobs(ctx, storage.JobFilter{
		Query:    strings.TrimSpace(search.Query),
		PageSize: pageSize,
		Cursor:   search.Cursor,
	})
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}

	page := &PublicPage{Jobs: make([]model.Job, 0, len(rows))}
	for _, job := range rows {
		if s.gate.IsOpenForApplications(&job) {
			page.Jobs = append(page.Jobs, job)
		}
	}

	if hasMore {
		last := rows[len(rows)-1]
		page.Next = &storage.JobCursor{CreatedAt: last.CreatedAt, JobID: last.ID}
	}

	return page, nil
}

// ListMine returns every job of a recruiter regardless of moderation state
func (s *Service) ListMine(ctx context.Context, recruiterID string) ([]model.Job, error) {
	return s.storage.ListJobsByRecruiter(ctx, recruiterID)
}

func (s *Service) load(ctx context.Context, jobID string) (*model.Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrJobNotFound
	}
	return s.storage.GetJobByID(ctx, jobID)
}

// applyLogo stores an uploaded logo, or falls back to a logo URL
func (s *Service) applyLogo(ctx context.Context, job *model.Job, logo *files.Upload, logoURL string) error {
	if logo != nil {
		if logo.Size > s.maxLogoBytes || int64(len(logo.Data)) > s.maxLogoBytes {
			return domain.InvalidInput("company logo is too large")
		}
		if !files.IsImage(logo.ContentType) {
			return domain.InvalidInput("company logo must be an image")
		}

		ref, err := s.files.Save(ctx, logoFolder, logo)
		if err != nil {
			return err
		}
		job.CompanyLogoURL = ref.URL
		job.CompanyLogoID = ref.PublicID
		return nil
	}

	logoURL = strings.TrimSpace(logoURL)
	u, err := url.ParseRequestURI(logoURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.InvalidInput("company logo URL must be an http(s) URL")
	}
	job.CompanyLogoURL = logoURL
	job.CompanyLogoID = ""
	return nil
}

func validateJob(job *model.Job) error {
	if n := utf8.RuneCountInString(job.Title); n < 2 || n > 120 {
		return domain.InvalidInput("title must be between 2 and 120 characters")
	}
	if n := utf8.RuneCountInString(job.Company); n < 2 || n > 120 {
		return domain.InvalidInput("company must be between 2 and 120 characters")
	}
	if utf8.RuneCountInString(job.Description) < 10 {
		return domain.InvalidInput("description must be at least 10 characters")
	}
	return nil
}

// ParseSkills accepts skills as a list, a comma separated string or a mix
// of both. Order is kept and blanks are dropped.
func ParseSkills(raw []string) []string {
	skills := []string{}
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if skill := strings.TrimSpace(part); skill != "" {
				skills = append(skills, skill)
			}
		}
	}
	return skills
}
