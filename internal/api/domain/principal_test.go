package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomFor(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		userID   string
		wantRoom string
		wantOK   bool
	}{
		{"admin", RoleAdmin, "a1", RoomAdmins, true},
		{"recruiter", RoleRecruiter, "r1", "recruiter:r1", true},
		{"seeker", RoleSeeker, "s1", "seeker:s1", true},
		{"guest", RoleGuest, "g1", "", false},
		{"unknown", Role("owner"), "x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, ok := RoomFor(tt.role, tt.userID)
			assert.Equal(t, tt.wantRoom, room)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestError_Kinds(t *testing.T) {
	err := Forbidden("job %s is closed", "j1")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "job j1 is closed", err.Error())

	var domainErr *Error
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, ErrForbidden, domainErr.Kind)

	assert.True(t, errors.Is(ErrJobNotFound, ErrNotFound))
}
