package users

import (
	"context"
	"errors"
	"testing"

	"github.com/cuongbtq/hirenest-be/internal/api/access"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	applicantID = "55555555-5555-5555-5555-555555555555"
	missingID   = "66666666-6666-6666-6666-666666666666"
)

type fakeStorage struct {
	users map[string]*model.User
}

func (f *fakeStorage) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// fakeLookup reports which recruiters an applicant applied to
type fakeLookup struct {
	appliedTo map[string]bool
	err       error
}

func (f *fakeLookup) HasApplicationFromApplicant(ctx context.Context, recruiterID, applicantID string) (bool, error) {
	return f.appliedTo[recruiterID], f.err
}

type staticLinker struct{}

func (staticLinker) ViewURL(publicID string) string { return "https://files.test/" + publicID }

func newService(lookup *fakeLookup) *Service {
	st := &fakeStorage{users: map[string]*model.User{
		applicantID: {
			ID: applicantID, Role: domain.RoleSeeker, Name: "Sam", Email: "sam@example.com",
			ResumeURL: "https://files.test/resumes/cv.pdf", ResumePublicID: "resumes/cv.pdf",
		},
	}}
	return NewService(st, access.NewGuard(lookup, logger.NewDiscard()), staticLinker{})
}

func TestService_ForRecruiter(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Principal
		lookup  *fakeLookup
		userID  string
		wantErr error
	}{
		{"admin", domain.Principal{ID: "adm", Role: domain.RoleAdmin}, &fakeLookup{}, applicantID, nil},
		{"recruiter applied to", domain.Principal{ID: "rec-1", Role: domain.RoleRecruiter}, &fakeLookup{appliedTo: map[string]bool{"rec-1": true}}, applicantID, nil},
		{"recruiter not applied to", domain.Principal{ID: "rec-2", Role: domain.RoleRecruiter}, &fakeLookup{appliedTo: map[string]bool{"rec-1": true}}, applicantID, domain.ErrForbidden},
		{"lookup failure denies", domain.Principal{ID: "rec-1", Role: domain.RoleRecruiter}, &fakeLookup{err: errors.New("db down")}, applicantID, domain.ErrForbidden},
		{"seeker", domain.Principal{ID: "seek-9", Role: domain.RoleSeeker}, &fakeLookup{}, applicantID, domain.ErrForbidden},
		{"unknown user", domain.Principal{ID: "adm", Role: domain.RoleAdmin}, &fakeLookup{}, missingID, domain.ErrNotFound},
		{"malformed id", domain.Principal{ID: "adm", Role: domain.RoleAdmin}, &fakeLookup{}, "abc", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(tt.lookup)

			profile, err := s.ForRecruiter(context.Background(), tt.actor, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Sam", profile.Name)
			assert.Equal(t, "sam@example.com", profile.Email)
			assert.Equal(t, "https://files.test/resumes/cv.pdf", profile.ResumeView)
		})
	}
}
