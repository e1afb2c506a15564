package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

const applicationColumns = `
	id, job_id, applicant_id, resume_url, resume_public_id,
	cover_letter, status, applied_at`

const applicationDetailSelect = `
	SELECT a.id, a.job_id, a.applicant_id, a.resume_url, a.resume_public_id,
		a.cover_letter, a.status, a.applied_at,
		j.title AS job_title, j.company AS job_company, j.location AS job_location,
		u.name AS applicant_name, u.email AS applicant_email
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN users u ON u.id = a.applicant_id
`

func (s *Storage) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (
			id, job_id, applicant_id, resume_url, resume_public_id,
			cover_letter, status, applied_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.JobID,
		app.ApplicantID,
		app.ResumeURL,
		app.ResumePublicID,
		app.CoverLetter,
		app.Status,
		app.AppliedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (s *Storage) GetApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	var app model.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	err := s.db.GetContext(ctx, &app, query, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// UpdateApplicationStatus persists a new status. Concurrent updates resolve last-write-wins.
func (s *Storage) UpdateApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) (*model.Application, error) {
	var app model.Application
	query := `UPDATE applications SET status = $1 WHERE id = $2 RETURNING ` + applicationColumns

	err := s.db.GetContext(ctx, &app, query, status, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	return &app, nil
}

func (s *Storage) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.ApplicationDetail, error) {
	query := applicationDetailSelect + ` WHERE a.job_id = $1 ORDER BY a.applied_at DESC, a.id DESC`

	apps := []model.ApplicationDetail{}
	if err := s.db.SelectContext(ctx, &apps, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}

	return apps, nil
}

func (s *Storage) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]model.ApplicationDetail, error) {
	query := applicationDetailSelect + ` WHERE a.applicant_id = $1 ORDER BY a.applied_at DESC, a.id DESC`

	apps := []model.ApplicationDetail{}
	if err := s.db.SelectContext(ctx, &apps, query, applicantID); err != nil {
		return nil, fmt.Errorf("failed to list applicant applications: %w", err)
	}

	return apps, nil
}

type RecruiterApplicationFilter struct {
	RecruiterID string
	Status      domain.ApplicationStatus // empty means any
	Limit       int
	Offset      int
}

// ListApplicationsForRecruiter returns one page of applications across the
// recruiter's jobs together with the unpaged total
func (s *Storage) ListApplicationsForRecruiter(ctx context.Context, filter RecruiterApplicationFilter) ([]model.ApplicationDetail, int, error) {
	where := ` WHERE j.recruiter_id = $1`
	args := []interface{}{filter.RecruiterID}

	if filter.Status != "" {
		where += ` AND a.status = $2`
		args = append(args, filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id` + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count recruiter applications: %w", err)
	}

	query := applicationDetailSelect + where +
		fmt.Sprintf(` ORDER BY a.applied_at DESC, a.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	apps := []model.ApplicationDetail{}
	if err := s.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list recruiter applications: %w", err)
	}

	return apps, total, nil
}

// HasApplicationFromApplicant reports whether applicantID applied to any job owned by recruiterID
func (s *Storage) HasApplicationFromApplicant(ctx context.Context, recruiterID, applicantID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM applications a
			JOIN jobs j ON j.id = a.job_id
			WHERE a.applicant_id = $1 AND j.recruiter_id = $2
		)
	`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, applicantID, recruiterID); err != nil {
		return false, fmt.Errorf("failed to check applicant relation: %w", err)
	}

	return exists, nil
}
