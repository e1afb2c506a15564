package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/access"
	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/files"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/moderation"
	"github.com/cuongbtq/hirenest-be/internal/api/storage"
	"github.com/cuongbtq/hirenest-be/shared/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	approvedID = "11111111-1111-1111-1111-111111111111"
	pendingID  = "22222222-2222-2222-2222-222222222222"
	missingID  = "33333333-3333-3333-3333-333333333333"
)

var (
	owner     = domain.Principal{ID: "rec-1", Role: domain.RoleRecruiter}
	stranger  = domain.Principal{ID: "rec-2", Role: domain.RoleRecruiter}
	admin     = domain.Principal{ID: "adm-1", Role: domain.RoleAdmin}
	seeker    = domain.Principal{ID: "seek-1", Role: domain.RoleSeeker}
	pngLogo   = &files.Upload{Filename: "logo.png", ContentType: "image/png", Size: 4, Data: []byte("\x89PNG")}
	validBody = CreateJobInput{
		Title:          "Go Engineer",
		Company:        "Acme",
		Description:    "Build the backend of a job board.",
		Skills:         []string{"Go, SQL", "RabbitMQ"},
		CompanyLogoURL: "https://cdn.test/acme.png",
	}
)

type fakeStorage struct {
	jobs       map[string]*model.Job
	publicRows []model.Job
	lastFilter storage.JobFilter
	deleted    []string
}

func (f *fakeStorage) CreateJob(ctx context.Context, job *model.Job) error {
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeStorage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (f *fakeStorage) UpdateJob(ctx context.Context, job *model.Job) error {
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeStorage) DeleteJob(ctx context.Context, jobID string) error {
	delete(f.jobs, jobID)
	f.deleted = append(f.deleted, jobID)
	return nil
}

func (f *fakeStorage) ListPublicJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error) {
	f.lastFilter = filter
	rows := f.publicRows
	if len(rows) > filter.PageSize+1 {
		rows = rows[:filter.PageSize+1]
	}
	return rows, nil
}

func (f *fakeStorage) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]model.Job, error) {
	out := []model.Job{}
	for _, job := range f.jobs {
		if job.RecruiterID == recruiterID {
			out = append(out, *job)
		}
	}
	return out, nil
}

type memoryFiles struct {
	saved []string
}

func (m *memoryFiles) Save(ctx context.Context, folder string, upload *files.Upload) (model.StorageRef, error) {
	m.saved = append(m.saved, folder+"/"+upload.Filename)
	return model.StorageRef{URL: "https://files.test/" + folder + "/" + upload.Filename, PublicID: folder + "/" + upload.Filename}, nil
}

type recordingEmitter struct {
	events []fanout.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, ev fanout.Event) {
	r.events = append(r.events, ev)
}

type testEnv struct {
	storage *fakeStorage
	files   *memoryFiles
	events  *recordingEmitter
	service *Service
}

func newTestEnv() *testEnv {
	st := &fakeStorage{jobs: map[string]*model.Job{
		approvedID: {ID: approvedID, RecruiterID: owner.ID, Title: "Go Engineer", Company: "Acme", Description: "Long enough description", IsApproved: true, IsActive: true},
		pendingID:  {ID: pendingID, RecruiterID: owner.ID, Title: "Rust Engineer", Company: "Acme", Description: "Long enough description", IsActive: true},
	}}
	env := &testEnv{storage: st, files: &memoryFiles{}, events: &recordingEmitter{}}

	log := logger.NewDiscard()
	env.service = NewService(st, access.NewGuard(nil, log), moderation.NewGate(nil, nil, log), env.files, env.events, 1024, log)
	return env
}

func TestService_Create(t *testing.T) {
	env := newTestEnv()

	job, err := env.service.Create(context.Background(), owner, validBody, nil)
	require.NoError(t, err)

	assert.False(t, job.IsApproved)
	assert.True(t, job.IsActive)
	assert.Equal(t, DefaultLocation, job.Location)
	assert.Equal(t, []string{"Go", "SQL", "RabbitMQ"}, []string(job.Skills))
	assert.Equal(t, "https://cdn.test/acme.png", job.CompanyLogoURL)
	assert.Contains(t, env.storage.jobs, job.ID)

	require.Len(t, env.events.events, 1)
	assert.Equal(t, domain.EventJobCreated, env.events.events[0].Type())
}

func TestService_Create_WithUploadedLogo(t *testing.T) {
	env := newTestEnv()
	body := validBody
	body.CompanyLogoURL = ""

	job, err := env.service.Create(context.Background(), admin, body, pngLogo)
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/company_logos/logo.png", job.CompanyLogoURL)
	assert.Equal(t, "company_logos/logo.png", job.CompanyLogoID)
	assert.Equal(t, []string{"company_logos/logo.png"}, env.files.saved)
}

func TestService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		actor   domain.Principal
		mutate  func(in *CreateJobInput)
		logo    *files.Upload
		wantErr error
	}{
		{"seeker", seeker, func(in *CreateJobInput) {}, nil, domain.ErrForbidden},
		{"short title", owner, func(in *CreateJobInput) { in.Title = "G" }, nil, domain.ErrInvalidInput},
		{"short company", owner, func(in *CreateJobInput) { in.Company = " " }, nil, domain.ErrInvalidInput},
		{"short description", owner, func(in *CreateJobInput) { in.Description = "too short" }, nil, domain.ErrInvalidInput},
		{"missing logo", owner, func(in *CreateJobInput) { in.CompanyLogoURL = "" }, nil, domain.ErrInvalidInput},
		{"bad logo url", owner, func(in *CreateJobInput) { in.CompanyLogoURL = "ftp://cdn.test/x.png" }, nil, domain.ErrInvalidInput},
		{
			"logo not an image", owner, func(in *CreateJobInput) {},
			&files.Upload{Filename: "x.pdf", ContentType: "application/pdf", Size: 4, Data: []byte("%PDF")},
			domain.ErrInvalidInput,
		},
		{
			"logo too large", owner, func(in *CreateJobInput) {},
			&files.Upload{Filename: "x.png", ContentType: "image/png", Size: 4096, Data: []byte("x")},
			domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			body := validBody
			tt.mutate(&body)

			_, err := env.service.Create(context.Background(), tt.actor, body, tt.logo)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, env.storage.jobs, 2)
			assert.Empty(t, env.files.saved)
			assert.Empty(t, env.events.events)
		})
	}
}

func TestService_Update(t *testing.T) {
	env := newTestEnv()
	title := "Senior Go Engineer"
	inactive := false

	job, err := env.service.Update(context.Background(), owner, approvedID, UpdateJobInput{
		Title:     &title,
		IsActive:  &inactive,
		Skills:    []string{"Go"},
		SkillsSet: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer", job.Title)
	assert.Equal(t, "Acme", job.Company)
	assert.False(t, job.IsActive)
	assert.True(t, job.IsApproved)
	assert.Equal(t, []string{"Go"}, []string(env.storage.jobs[approvedID].Skills))
}

func TestService_UpdateAndDelete_Ownership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	title := "Hijacked"

	_, err := env.service.Update(ctx, stranger, approvedID, UpdateJobInput{Title: &title}, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "Go Engineer", env.storage.jobs[approvedID].Title)

	err = env.service.Delete(ctx, stranger, approvedID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.service.Delete(ctx, admin, approvedID)
	require.NoError(t, err)
	assert.Equal(t, []string{approvedID}, env.storage.deleted)

	err = env.service.Delete(ctx, admin, missingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Get_Visibility(t *testing.T) {
	tests := []struct {
		name    string
		viewer  *domain.Principal
		jobID   string
		wantErr error
	}{
		{"anonymous sees approved", nil, approvedID, nil},
		{"anonymous cannot see pending", nil, pendingID, domain.ErrNotFound},
		{"other recruiter cannot see pending", &stranger, pendingID, domain.ErrNotFound},
		{"owner sees pending", &owner, pendingID, nil},
		{"admin sees pending", &admin, pendingID, nil},
		{"missing", &admin, missingID, domain.ErrNotFound},
		{"malformed id", nil, "abc", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			job, err := env.service.Get(context.Background(), tt.viewer, tt.jobID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.jobID, job.ID)
		})
	}
}

func TestService_ListPublic(t *testing.T) {
	env := newTestEnv()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		env.storage.publicRows = append(env.storage.publicRows, model.Job{
			ID:         string(rune('a' + i)),
			IsApproved: true,
			CreatedAt:  base.Add(-time.Duration(i) * time.Hour),
		})
	}

	page, err := env.service.ListPublic(context.Background(), Search{Query: "  go ", PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, "go", env.storage.lastFilter.Query)
	assert.Equal(t, 2, env.storage.lastFilter.PageSize)
	require.Len(t, page.Jobs, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "b", page.Next.JobID)
	assert.Equal(t, base.Add(-time.Hour), page.Next.CreatedAt)

	last, err := env.service.ListPublic(context.Background(), Search{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, last.Jobs, 5)
	assert.Nil(t, last.Next)

	_, err = env.service.ListPublic(context.Background(), Search{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, env.storage.lastFilter.PageSize)

	_, err = env.service.ListPublic(context.Background(), Search{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, env.storage.lastFilter.PageSize)
}

func TestService_ListMine(t *testing.T) {
	env := newTestEnv()

	mine, err := env.service.ListMine(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := env.service.ListMine(context.Background(), stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseSkills(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"list", []string{"Go", "SQL"}, []string{"Go", "SQL"}},
		{"comma string", []string{"Go, SQL ,,Docker"}, []string{"Go", "SQL", "Docker"}},
		{"mixed", []string{"Go,SQL", " ", "Kafka"}, []string{"Go", "SQL", "Kafka"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSkills(tt.raw))
		})
	}
}
