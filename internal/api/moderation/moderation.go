package moderation

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
)

// Storage is the job persistence the gate needs
type Storage interface {
	ApproveJob(ctx context.Context, jobID string) (*model.Job, bool, error)
	ListJobsByApproval(ctx context.Context, approved bool) ([]model.Job, error)
}

// Emitter schedules side effects for an event
type Emitter interface {
	Emit(ctx context.Context, ev fanout.Event)
}

// Gate decides whether a job is visible and open for applications
type Gate struct {
	storage Storage
	events  Emitter
	logger  *slog.Logger
}

func NewGate(storage Storage, events Emitter, logger *slog.Logger) *Gate {
	return &Gate{
		storage: storage,
		events:  events,
		logger:  logger,
	}
}

// Approve marks a job approved. Repeating it is harmless; only the call
// that flips the flag emits job_approved.
func (g *Gate) Approve(ctx context.Context, jobID string) (*model.Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrJobNotFound
	}

	job, flipped, err := g.storage.ApproveJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if flipped {
		g.logger.Info("Job approved",
			slog.String("job_id", job.ID),
			slog.String("recruiter_id", job.RecruiterID),
		)
		g.events.Emit(ctx, fanout.JobApproved{Job: job})
	}

	return job, nil
}

// IsOpenForApplications reports whether job may be listed publicly and applied to
func (g *Gate) IsOpenForApplications(job *model.Job) bool {
	return job != nil && job.IsApproved
}

// List returns jobs in the given moderation state, newest first
func (g *Gate) List(ctx context.Context, approved bool) ([]model.Job, error) {
	return g.storage.ListJobsByApproval(ctx, approved)
}

func (g *Gate) ListPending(ctx context.Context) ([]model.Job, error) {
	return g.List(ctx, false)
}
