package lifecycle

import (
	"context"
	"sync"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/files"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/storage"
)

type memoryStorage struct {
	mu           sync.Mutex
	jobs         map[string]*model.Job
	users        map[string]*model.User
	applications map[string]*model.Application

	appLoads       int
	lastFilter     storage.RecruiterApplicationFilter
	recruiterTotal int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		jobs:         map[string]*model.Job{},
		users:        map[string]*model.User{},
		applications: map[string]*model.Application{},
	}
}

func (m *memoryStorage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memoryStorage) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryStorage) SetInitialResume(ctx context.Context, userID string, ref model.StorageRef) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok || user.ResumeURL != "" {
		return false, nil
	}
	user.ResumeURL = ref.URL
	user.ResumePublicID = ref.PublicID
	return true, nil
}

func (m *memoryStorage) CreateApplication(ctx context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *app
	m.applications[app.ID] = &copied
	return nil
}

func (m *memoryStorage) GetApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appLoads++
	app, ok := m.applications[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *memoryStorage) UpdateApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	app.Status = status
	copied := *app
	return &copied, nil
}

func (m *memoryStorage) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.ApplicationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ApplicationDetail{}
	for _, app := range m.applications {
		if app.JobID == jobID {
			out = append(out, model.ApplicationDetail{Application: *app})
		}
	}
	return out, nil
}

func (m *memoryStorage) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]model.ApplicationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ApplicationDetail{}
	for _, app := range m.applications {
		if app.ApplicantID == applicantID {
			out = append(out, model.ApplicationDetail{Application: *app})
		}
	}
	return out, nil
}

func (m *memoryStorage) ListApplicationsForRecruiter(ctx context.Context, filter storage.RecruiterApplicationFilter) ([]model.ApplicationDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	return []model.ApplicationDetail{}, m.recruiterTotal, nil
}

func (m *memoryStorage) applicationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.applications)
}

type countingStore struct {
	saves int
	err   error
}

func (c *countingStore) Save(ctx context.Context, folder string, upload *files.Upload) (model.StorageRef, error) {
	c.saves++
	if c.err != nil {
		return model.StorageRef{}, c.err
	}
	return model.StorageRef{
		URL:      "https://files.test/" + folder + "/" + upload.Filename,
		PublicID: folder + "/" + upload.Filename,
	}, nil
}

type recordingEmitter struct {
	events []fanout.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, ev fanout.Event) {
	r.events = append(r.events, ev)
}
