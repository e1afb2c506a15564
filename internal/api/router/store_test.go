package router

import (
	"context"
	"sort"
	"sync"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/storage"
)

// memStore backs every service the router serves
type memStore struct {
	mu            sync.Mutex
	jobs          map[string]*model.Job
	users         map[string]*model.User
	applications  map[string]*model.Application
	notifications []*model.Notification
	messages      []*model.ContactMessage
}

func newMemStore() *memStore {
	return &memStore{
		jobs:         map[string]*model.Job{},
		users:        map[string]*model.User{},
		applications: map[string]*model.Application{},
	}
}

func (m *memStore) CreateJob(ctx context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memStore) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memStore) UpdateJob(ctx context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memStore) DeleteJob(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
	return nil
}

func (m *memStore) ListPublicJobs(ctx context.Context, filter storage.JobFilter) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Job
	for _, job := range m.jobs {
		if job.IsApproved && job.IsActive {
			out = append(out, *job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > filter.PageSize+1 {
		out = out[:filter.PageSize+1]
	}
	return out, nil
}

func (m *memStore) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Job{}
	for _, job := range m.jobs {
		if job.RecruiterID == recruiterID {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memStore) ApproveJob(ctx context.Context, jobID string) (*model.Job, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, false, domain.ErrJobNotFound
	}
	flipped := !job.IsApproved
	job.IsApproved = true
	copied := *job
	return &copied, flipped, nil
}

func (m *memStore) ListJobsByApproval(ctx context.Context, approved bool) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Job{}
	for _, job := range m.jobs {
		if job.IsApproved == approved {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *memStore) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) SetInitialResume(ctx context.Context, userID string, ref model.StorageRef) (bool, error) {
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

func (m *memStore) CreateApplication(ctx context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *app
	m.applications[app.ID] = &copied
	return nil
}

func (m *memStore) GetApplicationByID(ctx context.Context, applicationID string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.applications[applicationID]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *memStore) UpdateApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) (*model.Application, error) {
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

func (m *memStore) details(match func(*model.Application) bool) []model.ApplicationDetail {
	out := []model.ApplicationDetail{}
	for _, app := range m.applications {
		if match(app) {
			out = append(out, model.ApplicationDetail{Application: *app})
		}
	}
	return out
}

func (m *memStore) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.ApplicationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.details(func(a *model.Application) bool { return a.JobID == jobID }), nil
}

func (m *memStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]model.ApplicationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.details(func(a *model.Application) bool { return a.ApplicantID == applicantID }), nil
}

func (m *memStore) ListApplicationsForRecruiter(ctx context.Context, filter storage.RecruiterApplicationFilter) ([]model.ApplicationDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.details(func(a *model.Application) bool {
		job, ok := m.jobs[a.JobID]
		return ok && job.RecruiterID == filter.RecruiterID &&
			(filter.Status == "" || a.Status == filter.Status)
	})
	return items, len(items), nil
}

func (m *memStore) HasApplicationFromApplicant(ctx context.Context, recruiterID, applicantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.applications {
		if job, ok := m.jobs[app.JobID]; ok && job.RecruiterID == recruiterID && app.ApplicantID == applicantID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.notifications = append(m.notifications, &copied)
	return nil
}

func (m *memStore) ListNotifications(ctx context.Context, toRole string, limit int) ([]model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Notification{}
	for _, n := range m.notifications {
		if n.ToRole == toRole && len(out) < limit {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memStore) CountUnreadNotifications(ctx context.Context, toRole string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.ToRole == toRole && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memStore) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ID == id {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (m *memStore) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *msg
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *memStore) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ContactMessage{}
	for _, msg := range m.messages {
		out = append(out, *msg)
	}
	return out, nil
}

func (m *memStore) MarkContactMessageRead(ctx context.Context, id string) (*model.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Read = true
			copied := *msg
			return &copied, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []fanout.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, ev fanout.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingEmitter) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type())
	}
	return out
}
