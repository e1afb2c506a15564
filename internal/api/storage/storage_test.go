package storage

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStorage(sqlx.NewDb(db, "postgres")), mock
}

var jobRowColumns = []string{
	"id", "recruiter_id", "title", "company", "location", "description", "skills",
	"employment_type", "salary", "company_logo_url", "company_logo_id",
	"is_approved", "is_active", "created_at", "updated_at",
}

func jobRow(id string, approved bool, createdAt time.Time) []driver.Value {
	return []driver.Value{
		id, "rec-1", "Go Engineer", "Acme", "Remote", "Build services in Go", "{go,postgres}",
		"full-time", "100k", "https://cdn/logo.png", "logos/1",
		approved, true, createdAt, createdAt,
	}
}

func TestStorage_CreateJob(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	job := &model.Job{
		ID:          "job-1",
		RecruiterID: "rec-1",
		Title:       "Go Engineer",
		Company:     "Acme",
		Location:    "Remote",
		Description: "Build services in Go",
		Skills:      pq.StringArray{"go"},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO jobs").
		WithArgs("job-1", "rec-1", "Go Engineer", "Acme", "Remote", "Build services in Go",
			sqlmock.AnyArg(), "", "", "", "", false, true, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.CreateJob(context.Background(), job))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetJobByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s, mock := newMockStorage(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT .* FROM jobs WHERE id = \$1`).
			WithArgs("job-1").
			WillReturnRows(sqlmock.NewRows(jobRowColumns).AddRow(jobRow("job-1", true, now)...))

		job, err := s.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, pq.StringArray{"go", "postgres"}, job.Skills)
		assert.True(t, job.IsApproved)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing job maps to not found", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectQuery(`SELECT .* FROM jobs WHERE id = \$1`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(jobRowColumns))

		job, err := s.GetJobByID(context.Background(), "nope")
		assert.Nil(t, job)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStorage_ApproveJob(t *testing.T) {
	tests := []struct {
		name        string
		wasApproved bool
		wantFlipped bool
	}{
		{name: "first approval flips the flag", wasApproved: false, wantFlipped: true},
		{name: "second approval is a no-op", wasApproved: true, wantFlipped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			now := time.Now()

			rows := sqlmock.NewRows(append(jobRowColumns, "was_approved")).
				AddRow(append(jobRow("job-1", true, now), tt.wasApproved)...)
			mock.ExpectQuery(`UPDATE jobs j\s+SET is_approved = TRUE`).
				WithArgs("job-1").
				WillReturnRows(rows)

			job, flipped, err := s.ApproveJob(context.Background(), "job-1")
			require.NoError(t, err)
			assert.True(t, job.IsApproved)
			assert.Equal(t, tt.wantFlipped, flipped)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing job", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectQuery(`UPDATE jobs j`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(append(jobRowColumns, "was_approved")))

		_, _, err := s.ApproveJob(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrJobNotFound)
	})
}

func TestStorage_DeleteJob_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(`DELETE FROM jobs WHERE id = \$1`).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteJob(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_ListPublicJobs(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()
	cursor := &JobCursor{CreatedAt: now, JobID: "job-9"}

	mock.ExpectQuery(`WHERE is_approved = TRUE AND is_active = TRUE .*ILIKE \$1.*\(created_at, id\) < \(\$2, \$3\) ORDER BY created_at DESC, id DESC LIMIT \$4`).
		WithArgs(`%50\%%`, now, "job-9", 3).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(jobRow("job-8", true, now.Add(-time.Minute))...).
			AddRow(jobRow("job-7", true, now.Add(-2*time.Minute))...))

	jobs, err := s.ListPublicJobs(context.Background(), JobFilter{
		Query:    "50%",
		PageSize: 2,
		Cursor:   cursor,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-8", jobs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

var applicationDetailColumns = []string{
	"id", "job_id", "applicant_id", "resume_url", "resume_public_id",
	"cover_letter", "status", "applied_at",
	"job_title", "job_company", "job_location", "applicant_name", "applicant_email",
}

func TestStorage_ListApplicationsForRecruiter(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM applications a JOIN jobs j ON j.id = a.job_id WHERE j.recruiter_id = \$1 AND a.status = \$2`).
		WithArgs("rec-1", domain.StatusShortlisted).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	mock.ExpectQuery(`FROM applications a .* WHERE j.recruiter_id = \$1 AND a.status = \$2 ORDER BY a.applied_at DESC, a.id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("rec-1", domain.StatusShortlisted, 20, 20).
		WillReturnRows(sqlmock.NewRows(applicationDetailColumns).
			AddRow("app-1", "job-1", "seek-1", "", "", "hi", "shortlisted", now,
				"Go Engineer", "Acme", "Remote", "Sam", "sam@example.com"))

	items, total, err := s.ListApplicationsForRecruiter(context.Background(), RecruiterApplicationFilter{
		RecruiterID: "rec-1",
		Status:      domain.StatusShortlisted,
		Limit:       20,
		Offset:      20,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusShortlisted, items[0].Status)
	assert.Equal(t, "Go Engineer", items[0].JobTitle)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateApplicationStatus_NotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`UPDATE applications SET status = \$1 WHERE id = \$2 RETURNING`).
		WithArgs(domain.StatusAccepted, "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	app, err := s.UpdateApplicationStatus(context.Background(), "nope", domain.StatusAccepted)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)
}

func TestStorage_HasApplicationFromApplicant(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("seek-1", "rec-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.HasApplicationFromApplicant(context.Background(), "rec-1", "seek-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStorage_SetInitialResume(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		want         bool
	}{
		{name: "profile without resume is updated", rowsAffected: 1, want: true},
		{name: "existing resume is kept", rowsAffected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)

			mock.ExpectExec(`UPDATE users\s+SET resume_url = \$1, resume_public_id = \$2\s+WHERE id = \$3 AND resume_url = ''`).
				WithArgs("https://files/r.pdf", "resumes/r", "seek-1").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			updated, err := s.SetInitialResume(context.Background(), "seek-1", model.StorageRef{
				URL:      "https://files/r.pdf",
				PublicID: "resumes/r",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, updated)
		})
	}
}

func TestStorage_Notifications(t *testing.T) {
	t.Run("create stores meta as json", func(t *testing.T) {
		s, mock := newMockStorage(t)
		now := time.Now()

		mock.ExpectExec("INSERT INTO notifications").
			WithArgs("n-1", domain.EventJobApproved, "Job approved", nil, "admin", []byte(`{"jobId":"job-1"}`), false, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.CreateNotification(context.Background(), &model.Notification{
			ID:        "n-1",
			Type:      domain.EventJobApproved,
			Message:   "Job approved",
			ToRole:    "admin",
			Meta:      model.Meta{"jobId": "job-1"},
			CreatedAt: now,
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list scans meta", func(t *testing.T) {
		s, mock := newMockStorage(t)
		now := time.Now()

		mock.ExpectQuery(`FROM notifications\s+WHERE to_role = \$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$2`).
			WithArgs("admin", 100).
			WillReturnRows(sqlmock.NewRows([]string{"id", "type", "message", "from_user", "to_role", "meta", "read", "created_at"}).
				AddRow("n-1", "feedback", "hello", "seek-1", "admin", []byte(`{"a":"b"}`), false, now))

		items, err := s.ListNotifications(context.Background(), "admin", 100)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].FromUser)
		assert.Equal(t, "seek-1", *items[0].FromUser)
		assert.Equal(t, model.Meta{"a": "b"}, items[0].Meta)
	})

	t.Run("unread count", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE to_role = \$1 AND read = FALSE`).
			WithArgs("admin").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := s.CountUnreadNotifications(context.Background(), "admin")
		require.NoError(t, err)
		assert.Equal(t, 4, count)
	})

	t.Run("mark read on missing notification", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectQuery(`UPDATE notifications SET read = TRUE WHERE id = \$1`).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.MarkNotificationRead(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	})
}

func TestStorage_CreateMailDelivery(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now()

	mock.ExpectExec("INSERT INTO mail_deliveries").
		WithArgs("d-1", "sam@example.com", "Hi", "<p>hi</p>", domain.EventApplicationCreated, "PENDING", 3, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CreateMailDelivery(context.Background(), &model.MailDelivery{
		ID:         "d-1",
		Recipient:  "sam@example.com",
		Subject:    "Hi",
		HTMLBody:   "<p>hi</p>",
		EventType:  domain.EventApplicationCreated,
		Status:     "PENDING",
		MaxRetries: 3,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_RequeueStaleMailDeliveries(t *testing.T) {
	now := time.Now()
	staleBefore := now.Add(-5 * time.Minute)

	t.Run("fails exhausted rows then requeues the rest", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE mail_deliveries SET status = \$1`).
			WithArgs(model.MailFailed, "send interrupted", now, model.MailSending, staleBefore).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE mail_deliveries .* FOR UPDATE SKIP LOCKED .* RETURNING id`).
			WithArgs(model.MailSending, "send interrupted", model.MailPending, now, staleBefore, 50).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("d-1").AddRow("d-2"))
		mock.ExpectCommit()

		ids, err := s.RequeueStaleMailDeliveries(context.Background(), now, staleBefore, 50, "send interrupted")
		require.NoError(t, err)
		assert.Equal(t, []string{"d-1", "d-2"}, ids)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure rolls back", func(t *testing.T) {
		s, mock := newMockStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE mail_deliveries`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`UPDATE mail_deliveries`).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err := s.RequeueStaleMailDeliveries(context.Background(), now, staleBefore, 50, "send interrupted")
		require.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
	assert.Equal(t, "golang", escapeLike("golang"))
}

func TestSchema_Embedded(t *testing.T) {
	for _, table := range []string{"users", "jobs", "applications", "notifications", "contact_messages", "mail_deliveries"} {
		assert.Contains(t, Schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
