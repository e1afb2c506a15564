package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

const jobColumns = `
	id, recruiter_id, title, company, location, description, skills,
	employment_type, salary, company_logo_url, company_logo_id,
	is_approved, is_active, created_at, updated_at`

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			id, recruiter_id, title, company, location, description, skills,
			employment_type, salary, company_logo_url, company_logo_id,
			is_approved, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.RecruiterID,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Skills,
		job.EmploymentType,
		job.Salary,
		job.CompanyLogoURL,
		job.CompanyLogoID,
		job.IsApproved,
		job.IsActive,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJob writes the mutable fields of a job. Moderation state is left to ApproveJob.
func (s *Storage) UpdateJob(ctx context.Context, job *model.Job) error {
	query := `
		UPDATE jobs
		SET title = $1,
			company = $2,
			location = $3,
			description = $4,
			skills = $5,
			employment_type = $6,
			salary = $7,
			company_logo_url = $8,
			company_logo_id = $9,
			is_active = $10,
			updated_at = $11
		WHERE id = $12
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.Skills,
		job.EmploymentType,
		job.Salary,
		job.CompanyLogoURL,
		job.CompanyLogoID,
		job.IsActive,
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	return expectOneRow(result, domain.ErrJobNotFound)
}

func (s *Storage) DeleteJob(ctx context.Context, jobID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	return expectOneRow(result, domain.ErrJobNotFound)
}

// ApproveJob sets is_approved unconditionally. flipped reports whether the
// job was unapproved before this call.
func (s *Storage) ApproveJob(ctx context.Context, jobID string) (job *model.Job, flipped bool, err error) {
	query := `
		UPDATE jobs j
		SET is_approved = TRUE,
			updated_at = CASE WHEN prev.was_approved THEN j.updated_at ELSE NOW() END
		FROM (SELECT id, is_approved AS was_approved FROM jobs WHERE id = $1 FOR UPDATE) prev
		WHERE j.id = prev.id
		RETURNING j.id, j.recruiter_id, j.title, j.company, j.location, j.description, j.skills,
			j.employment_type, j.salary, j.company_logo_url, j.company_logo_id,
			j.is_approved, j.is_active, j.created_at, j.updated_at, prev.was_approved
	`

	var row struct {
		model.Job
		WasApproved bool `db:"was_approved"`
	}

	err = s.db.GetContext(ctx, &row, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, domain.ErrJobNotFound
		}
		return nil, false, fmt.Errorf("failed to approve job: %w", err)
	}

	return &row.Job, !row.WasApproved, nil
}

// ListJobsByApproval returns jobs in the given moderation state, newest first
func (s *Storage) ListJobsByApproval(ctx context.Context, approved bool) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE is_approved = $1 ORDER BY created_at DESC, id DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, approved); err != nil {
		return nil, fmt.Errorf("failed to list jobs by approval: %w", err)
	}

	return jobs, nil
}

func (s *Storage) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC, id DESC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, recruiterID); err != nil {
		return nil, fmt.Errorf("failed to list recruiter jobs: %w", err)
	}

	return jobs, nil
}

type JobFilter struct {
	Query    string
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListPublicJobs returns approved, active jobs newest first. It fetches
// PageSize+1 rows so the caller can tell whether another page exists.
func (s *Storage) ListPublicJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE is_approved = TRUE AND is_active = TRUE
	`
	args := []interface{}{}
	argIdx := 1

	if filter.Query != "" {
		query += fmt.Sprintf(` AND (
			title ILIKE $%[1]d OR company ILIKE $%[1]d OR location ILIKE $%[1]d
			OR EXISTS (SELECT 1 FROM unnest(skills) AS skill WHERE skill ILIKE $%[1]d)
		)`, argIdx)
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		argIdx++
	}

	if filter.Cursor != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.JobID)
		argIdx += 2
	}

	query += " ORDER BY created_at DESC, id DESC"

	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, filter.PageSize+1)

	jobs := []model.Job{}
	err := s.db.SelectContext(ctx, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}
