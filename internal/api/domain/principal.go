package domain

import "fmt"

// Role of an authenticated user
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"

	// RoleGuest marks unauthenticated contact form submissions
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the account roles
func (r Role) Valid() bool {
	switch r {
	case RoleSeeker, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of a request
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
func (p Principal) IsRecruiter() bool { return p.Role == RoleRecruiter }
func (p Principal) IsSeeker() bool    { return p.Role == RoleSeeker }

// RoomAdmins is the realtime room every identified admin joins
const RoomAdmins = "admins"

// RecruiterRoom returns the realtime room of one recruiter
func RecruiterRoom(id string) string {
	return fmt.Sprintf("recruiter:%s", id)
}

// SeekerRoom returns the realtime room of one seeker
func SeekerRoom(id string) string {
	return fmt.Sprintf("seeker:%s", id)
}

// RoomFor resolves the room a principal joins on identify. ok is false for
// unknown roles.
func RoomFor(role Role, userID string) (room string, ok bool) {
	switch role {
	case RoleAdmin:
		return RoomAdmins, true
	case RoleRecruiter:
		return RecruiterRoom(userID), true
	case RoleSeeker:
		return SeekerRoom(userID), true
	}
	return "", false
}
