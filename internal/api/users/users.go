package users

import (
	"context"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/access"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
)

// Storage loads user profiles
type Storage interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
}

// Linker builds the view link of a stored file
type Linker interface {
	ViewURL(publicID string) string
}

// ApplicantProfile is what a recruiter may see of an applicant
type ApplicantProfile struct {
	ID             string      `json:"id"`
	Role           domain.Role `json:"role"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Resume         string      `json:"resume,omitempty"`
	ResumePublicID string      `json:"resumePublicId,omitempty"`
	ResumeView     string      `json:"resumeView,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

type Service struct {
	storage Storage
	guard   *access.Guard
	linker  Linker
}

func NewService(storage Storage, guard *access.Guard, linker Linker) *Service {
	return &Service{
		storage: storage,
		guard:   guard,
		linker:  linker,
	}
}

// ForRecruiter returns an applicant profile to an admin, or to a recruiter
// the applicant applied to
func (s *Service) ForRecruiter(ctx context.Context, actor domain.Principal, userID string) (*ApplicantProfile, error) {
	if !actor.IsAdmin() && !actor.IsRecruiter() {
		return nil, domain.Forbidden("forbidden")
	}

	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}

	if !s.guard.CanViewApplicant(ctx, actor, userID) {
		return nil, domain.Forbidden("forbidden")
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &ApplicantProfile{
		ID:             user.ID,
		Role:           user.Role,
		Name:           user.Name,
		Email:          user.Email,
		Resume:         user.ResumeURL,
		ResumePublicID: user.ResumePublicID,
		CreatedAt:      user.CreatedAt,
	}

	switch {
	case user.ResumePublicID != "" && s.linker != nil:
		profile.ResumeView = s.linker.ViewURL(user.ResumePublicID)
	case user.ResumeURL != "":
		profile.ResumeView = user.ResumeURL
	}

	return profile, nil
}
