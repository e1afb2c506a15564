package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/lib/pq"
)

type Job struct {
	ID             string         `db:"id" json:"id"`
	RecruiterID    string         `db:"recruiter_id" json:"recruiterId"`
	Title          string         `db:"title" json:"title"`
	Company        string         `db:"company" json:"company"`
	Location       string         `db:"location" json:"location"`
	Description    string         `db:"description" json:"description"`
	Skills         pq.StringArray `db:"skills" json:"skills"`
	EmploymentType string         `db:"employment_type" json:"type"`
	Salary         string         `db:"salary" json:"salary"`
	CompanyLogoURL string         `db:"company_logo_url" json:"companyLogoUrl"`
	CompanyLogoID  string         `db:"company_logo_id" json:"companyLogoPublicId,omitempty"`
	IsApproved     bool           `db:"is_approved" json:"isApproved"`
	IsActive       bool           `db:"is_active" json:"isActive"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

type Application struct {
	ID             string                   `db:"id" json:"id"`
	JobID          string                   `db:"job_id" json:"jobId"`
	ApplicantID    string                   `db:"applicant_id" json:"applicantId"`
	ResumeURL      string                   `db:"resume_url" json:"resume,omitempty"`
	ResumePublicID string                   `db:"resume_public_id" json:"resumePublicId,omitempty"`
	CoverLetter    string                   `db:"cover_letter" json:"coverLetter"`
	Status         domain.ApplicationStatus `db:"status" json:"status"`
	AppliedAt      time.Time                `db:"applied_at" json:"appliedAt"`
}

// ApplicationDetail is an application joined with the job and applicant
// fields the listings display
type ApplicationDetail struct {
	Application
	JobTitle       string `db:"job_title" json:"jobTitle"`
	JobCompany     string `db:"job_company" json:"jobCompany"`
	JobLocation    string `db:"job_location" json:"jobLocation"`
	ApplicantName  string `db:"applicant_name" json:"applicantName"`
	ApplicantEmail string `db:"applicant_email" json:"applicantEmail"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	FromUser  *string   `db:"from_user" json:"fromUser,omitempty"`
	ToRole    string    `db:"to_role" json:"toRole"`
	Meta      Meta      `db:"meta" json:"meta"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Meta is a free-form string map stored as JSONB
type Meta map[string]string

func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *Meta) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = Meta{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported meta type %T", src)
	}

	out := Meta{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode meta: %w", err)
	}
	*m = out
	return nil
}

type User struct {
	ID             string      `db:"id" json:"id"`
	Role           domain.Role `db:"role" json:"role"`
	Email          string      `db:"email" json:"email"`
	Name           string      `db:"name" json:"name"`
	ResumeURL      string      `db:"resume_url" json:"resume,omitempty"`
	ResumePublicID string      `db:"resume_public_id" json:"resumePublicId,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
}

// HasResume reports whether the profile already holds a resume
func (u *User) HasResume() bool {
	return u.ResumeURL != ""
}

type ContactMessage struct {
	ID        string      `db:"id" json:"id"`
	UserID    *string     `db:"user_id" json:"userId,omitempty"`
	Role      domain.Role `db:"role" json:"role"`
	Name      string      `db:"name" json:"name"`
	Email     string      `db:"email" json:"email"`
	Subject   string      `db:"subject" json:"subject"`
	Message   string      `db:"message" json:"message"`
	Read      bool        `db:"read" json:"read"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// StorageRef points at a stored file
type StorageRef struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Mail delivery states
const (
	MailPending = "PENDING"
	MailSending = "SENDING"
	MailSent    = "SENT"
	MailFailed  = "FAILED"
)

// MailDelivery is an outbox row drained by the worker-service
type MailDelivery struct {
	ID         string    `db:"id" json:"id"`
	Recipient  string    `db:"recipient" json:"recipient"`
	Subject    string    `db:"subject" json:"subject"`
	HTMLBody   string    `db:"html_body" json:"-"`
	EventType  string    `db:"event_type" json:"eventType"`
	Status     string    `db:"status" json:"status"`
	MaxRetries int       `db:"max_retries" json:"maxRetries"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
