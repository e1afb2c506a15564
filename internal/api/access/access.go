package access

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

// ApplicantLookup answers whether an applicant applied to a recruiter's jobs
type ApplicantLookup interface {
	HasApplicationFromApplicant(ctx context.Context, recruiterID, applicantID string) (bool, error)
}

// Guard holds every ownership decision. It never returns errors; callers map false to 403.
type Guard struct {
	lookup ApplicantLookup
	logger *slog.Logger
}

func NewGuard(lookup ApplicantLookup, logger *slog.Logger) *Guard {
	return &Guard{
		lookup: lookup,
		logger: logger,
	}
}

// CanMutateJob allows admins and the job owner
func (g *Guard) CanMutateJob(p domain.Principal, job *model.Job) bool {
	if job == nil {
		return false
	}
	return p.IsAdmin() || (p.ID != "" && p.ID == job.RecruiterID)
}

// CanMutateApplication applies the job owner rule to an application's job
func (g *Guard) CanMutateApplication(p domain.Principal, job *model.Job) bool {
	return g.CanMutateJob(p, job)
}

// CanApply allows seekers only
func (g *Guard) CanApply(p domain.Principal) bool {
	return p.IsSeeker()
}

func (g *Guard) IsAdmin(p domain.Principal) bool {
	return p.IsAdmin()
}

// CanViewApplicant allows admins, and recruiters the target applied to.
// Lookup failures deny access.
func (g *Guard) CanViewApplicant(ctx context.Context, p domain.Principal, targetUserID string) bool {
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRecruiter:
		ok, err := g.lookup.HasApplicationFromApplicant(ctx, p.ID, targetUserID)
		if err != nil {
			g.logger.Error("Failed to check applicant relation",
				slog.String("recruiter_id", p.ID),
				slog.String("applicant_id", targetUserID),
				slog.Any("error", err),
			)
			return false
		}
		return ok
	default:
		return false
	}
}
