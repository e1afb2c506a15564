package domain

// ApplicationStatus is the review state of an application
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusAccepted    ApplicationStatus = "accepted"
)

// ApplicationStatuses lists every defined status
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied,
	StatusShortlisted,
	StatusRejected,
	StatusAccepted,
}

// Valid reports whether s is a defined status literal
func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition is the single place the status policy lives. Every defined
// status is reachable from every other one, itself included, and no status
// is terminal. Tightening the workflow means changing only this function.
func CanTransition(from, to ApplicationStatus) bool {
	return from.Valid() && to.Valid()
}
