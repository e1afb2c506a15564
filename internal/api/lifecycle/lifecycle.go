package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"math"
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
	// DefaultMaxResumeBytes applies when no ceiling is configured
	DefaultMaxResumeBytes int64 = 20 << 20

	MaxCoverLetterLength = 5000

	DefaultPageLimit = 20
	MaxPageLimit     = 100

	resumeFolder = "resumes"
)

// Storage is the persistence the lifecycle needs
type Storage interface {
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	SetInitialResume(ctx context.Context, userID string, ref model.StorageRef) (bool, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplicationByID(ctx context.Context, applicationID string) (*model.Application, error)
	UpdateApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) (*model.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]model.ApplicationDetail, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]model.ApplicationDetail, error)
	ListApplicationsForRecruiter(ctx context.Context, filter storage.RecruiterApplicationFilter) ([]model.ApplicationDetail, int, error)
}

// Emitter schedules side effects for an event
type Emitter interface {
	Emit(ctx context.Context, ev fanout.Event)
}

// Service applies to jobs and moves applications through their statuses
type Service struct {
	storage        Storage
	guard          *access.Guard
	gate           *moderation.Gate
	files          files.Store
	events         Emitter
	maxResumeBytes int64
	logger         *slog.Logger
	now            func() time.Time
}

func NewService(
	storage Storage,
	guard *access.Guard,
	gate *moderation.Gate,
	store files.Store,
	events Emitter,
	maxResumeBytes int64,
	logger *slog.Logger,
) *Service {
	if maxResumeBytes <= 0 {
		maxResumeBytes = DefaultMaxResumeBytes
	}
	return &Service{
		storage:        storage,
		guard:          guard,
		gate:           gate,
		files:          store,
		events:         events,
		maxResumeBytes: maxResumeBytes,
		logger:         logger,
		now:            time.Now,
	}
}

// ApplyInput is the body of an application
type ApplyInput struct {
	CoverLetter string
	Resume      *files.Upload // optional
}

// Apply creates an application for actor on jobID
func (s *Service) Apply(ctx context.Context, actor domain.Principal, jobID string, in ApplyInput) (*model.Application, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrJobNotFound
	}

	job, err := s.storage.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !s.gate.IsOpenForApplications(job) {
		return nil, domain.Forbidden("job is not available for applications yet")
	}

	if !s.guard.CanApply(actor) {
		return nil, domain.Forbidden("only job seekers can apply")
	}

	coverLetter := strings.TrimSpace(in.CoverLetter)
	if utf8.RuneCountInString(coverLetter) > MaxCoverLetterLength {
		return nil, domain.InvalidInput("cover letter must be at most %d characters", MaxCoverLetterLength)
	}

	if in.Resume != nil {
		if in.Resume.Size > s.maxResumeBytes || int64(len(in.Resume.Data)) > s.maxResumeBytes {
			return nil, domain.InvalidInput("resume must be at most %s", humanSize(s.maxResumeBytes))
		}
		if !files.IsProbablyPDF(in.Resume.Data) {
			return nil, domain.InvalidInput("resume must be a valid PDF file")
		}
	}

	applicant, err := s.storage.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	app := &model.Application{
		ID:          uuid.New().String(),
		JobID:       job.ID,
		ApplicantID: applicant.ID,
		CoverLetter: coverLetter,
		Status:      domain.StatusApplied,
		AppliedAt:   s.now(),
	}

	if in.Resume != nil {
		ref, err := s.files.Save(ctx, resumeFolder, in.Resume)
		if err != nil {
			return nil, fmt.Errorf("failed to store resume: %w", err)
		}
		app.ResumeURL = ref.URL
		app.ResumePublicID = ref.PublicID

		if !applicant.HasResume() {
			if _, err := s.storage.SetInitialResume(ctx, applicant.ID, ref); err != nil {
				return nil, err
			}
		}
	} else if applicant.HasResume() {
		app.ResumeURL = applicant.ResumeURL
		app.ResumePublicID = applicant.ResumePublicID
	}

	if err := s.storage.CreateApplication(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("Application created",
		slog.String("application_id", app.ID),
		slog.String("job_id", job.ID),
		slog.String("applicant_id", applicant.ID),
	)

	s.events.Emit(ctx, fanout.ApplicationCreated{
		Application: app,
		Job:         job,
		Applicant:   applicant,
		Recruiter:   s.lookupUser(ctx, job.RecruiterID),
	})

	return app, nil
}

// UpdateStatus moves an application to status. Only the job owner or an
// admin may do so; concurrent updates resolve last write wins.
func (s *Service) UpdateStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus, actor domain.Principal) (*model.Application, error) {
	if !status.Valid() {
		return nil, domain.InvalidInput("invalid status %q", status)
	}

	if _, err := uuid.Parse(applicationID); err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	app, err := s.storage.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	job, err := s.storage.GetJobByID(ctx, app.JobID)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMutateApplication(actor, job) {
		return nil, domain.Forbidden("not authorized to update this application")
	}

	if !domain.CanTransition(app.Status, status) {
		return nil, domain.InvalidInput("cannot move application from %s to %s", app.Status, status)
	}

	updated, err := s.storage.UpdateApplicationStatus(ctx, app.ID, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application status updated",
		slog.String("application_id", updated.ID),
		slog.String("from", string(app.Status)),
		slog.String("to", string(updated.Status)),
		slog.String("actor_id", actor.ID),
	)

	s.events.Emit(ctx, fanout.ApplicationStatusChanged{
		Application: updated,
		Job:         job,
		Applicant:   s.lookupUser(ctx, updated.ApplicantID),
	})

	return updated, nil
}

// ListForJob returns the applications of a job to its owner or an admin
func (s *Service) ListForJob(ctx context.Context, jobID string, actor domain.Principal) ([]model.ApplicationDetail, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrJobNotFound
	}

	job, err := s.storage.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !s.guard.CanMutateJob(actor, job) {
		return nil, domain.Forbidden("not authorized to view these applications")
	}

	return s.storage.ListApplicationsByJob(ctx, job.ID)
}

func (s *Service) ListForApplicant(ctx context.Context, applicantID string) ([]model.ApplicationDetail, error) {
	return s.storage.ListApplicationsByApplicant(ctx, applicantID)
}

// ListQuery pages the recruiter listing. Unknown statuses are ignored.
type ListQuery struct {
	Status string
	Page   int
	Limit  int
}

// Page is one page of the recruiter listing
type Page struct {
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
	Total int                       `json:"total"`
	Pages int                       `json:"pages"`
	Items []model.ApplicationDetail `json:"items"`
}

// ListForRecruiter pages through the applications on every job of recruiterID
func (s *Service) ListForRecruiter(ctx context.Context, recruiterID string, q ListQuery) (*Page, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	filter := storage.RecruiterApplicationFilter{
		RecruiterID: recruiterID,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if status := domain.ApplicationStatus(q.Status); status.Valid() {
		filter.Status = status
	}

	items, total, err := s.storage.ListApplicationsForRecruiter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &Page{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
		Items: items,
	}, nil
}

// lookupUser loads a user for notification content. A failure only costs
// the email, so it is logged and nil is returned.
func (s *Service) lookupUser(ctx context.Context, userID string) *model.User {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load user for notifications",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil
	}
	return user
}

func humanSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
