package fanout

import (
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/api/notification"
	"github.com/cuongbtq/hirenest-be/internal/mail"
)

// Event is something that happened in the core which others must hear about
type Event interface {
	Type() string
	plan(pc planContext) (Plan, error)
}

type planContext struct {
	branding mail.Branding
	now      time.Time
}

// Broadcast is one realtime emission. An empty room reaches every client.
type Broadcast struct {
	Event   string
	Room    string
	Payload any
}

// Plan lists the side effects of one event
type Plan struct {
	Notification *notification.RecordInput
	Broadcasts   []Broadcast
	Emails       []mail.Message
}

// summary is the payload of the global notification broadcast
type summary struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ApplicationCreated follows a successful apply
type ApplicationCreated struct {
	Application *model.Application
	Job         *model.Job
	Applicant   *model.User
	Recruiter   *model.User // optional
}

func (e ApplicationCreated) Type() string { return domain.EventApplicationCreated }

func (e ApplicationCreated) plan(pc planContext) (Plan, error) {
	name := displayName(e.Applicant)
	message := fmt.Sprintf("%s applied to %s", name, e.Job.Title)

	p := Plan{
		Notification: &notification.RecordInput{
			Type:    e.Type(),
			Message: message,
			Meta: model.Meta{
				"jobId":         e.Job.ID,
				"applicantId":   e.Application.ApplicantID,
				"applicationId": e.Application.ID,
			},
		},
		Broadcasts: []Broadcast{
			{Event: domain.RealtimeNotification, Payload: summary{Type: e.Type(), Message: message}},
			{
				Event: domain.RealtimeApplicationNew,
				Room:  domain.RecruiterRoom(e.Job.RecruiterID),
				Payload: map[string]string{
					"applicationId": e.Application.ID,
					"jobId":         e.Job.ID,
					"jobTitle":      e.Job.Title,
					"applicantId":   e.Application.ApplicantID,
					"applicantName": name,
				},
			},
		},
	}

	var errs []error
	year := pc.now.Year()

	if e.Applicant != nil && e.Applicant.Email != "" {
		msg, err := mail.ApplicationReceived(pc.branding, year, e.Applicant.Email, mail.ApplicationData{
			Name:     e.Applicant.Name,
			JobTitle: e.Job.Title,
			Company:  e.Job.Company,
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			msg.EventType = e.Type()
			p.Emails = append(p.Emails, msg)
		}
	}

	if e.Recruiter != nil && e.Recruiter.Email != "" {
		msg, err := mail.NewApplicationForRecruiter(pc.branding, year, e.Recruiter.Email, mail.NewApplicationData{
			RecruiterName: e.Recruiter.Name,
			ApplicantName: name,
			ApplicantID:   e.Application.ApplicantID,
			JobTitle:      e.Job.Title,
			Company:       e.Job.Company,
		})
		if err != nil {
			errs = append(errs, err)
		} else {
			msg.EventType = e.Type()
			p.Emails = append(p.Emails, msg)
		}
	}

	return p, errors.Join(errs...)
}

// ApplicationStatusChanged follows a status update. Acceptance is reported
// as its own event type and is the only status that sends email.
type ApplicationStatusChanged struct {
	Application *model.Application
	Job         *model.Job
	Applicant   *model.User
}

func (e ApplicationStatusChanged) accepted() bool {
	return e.Application.Status == domain.StatusAccepted
}

func (e ApplicationStatusChanged) Type() string {
	if e.accepted() {
		return domain.EventApplicationAccepted
	}
	return domain.EventApplicationStatus
}

func (e ApplicationStatusChanged) plan(pc planContext) (Plan, error) {
	status := string(e.Application.Status)
	seekerUpdate := Broadcast{
		Event: domain.RealtimeApplicationStatus,
		Room:  domain.SeekerRoom(e.Application.ApplicantID),
		Payload: map[string]string{
			"applicationId": e.Application.ID,
			"jobId":         e.Job.ID,
			"jobTitle":      e.Job.Title,
			"status":        status,
		},
	}

	if !e.accepted() {
		return Plan{
			Notification: &notification.RecordInput{
				Type:    e.Type(),
				Message: fmt.Sprintf("Application status changed to %s", status),
				Meta:    model.Meta{"applicationId": e.Application.ID},
			},
			Broadcasts: []Broadcast{
				{
					Event:   domain.RealtimeNotification,
					Payload: summary{Type: e.Type(), Message: fmt.Sprintf("Application %s -> %s", e.Application.ID, status)},
				},
				seekerUpdate,
			},
		}, nil
	}

	name := displayName(e.Applicant)
	p := Plan{
		Notification: &notification.RecordInput{
			Type:    e.Type(),
			Message: fmt.Sprintf("Your application for %s was accepted", e.Job.Title),
			Meta: model.Meta{
				"jobId":         e.Job.ID,
				"applicantId":   e.Application.ApplicantID,
				"applicationId": e.Application.ID,
			},
		},
		Broadcasts: []Broadcast{
			{
				Event:   domain.RealtimeNotification,
				Payload: summary{Type: e.Type(), Message: fmt.Sprintf("%s's application accepted for %s", name, e.Job.Title)},
			},
			seekerUpdate,
		},
	}

	if e.Applicant == nil || e.Applicant.Email == "" {
		return p, nil
	}

	msg, err := mail.ApplicationAccepted(pc.branding, pc.now.Year(), e.Applicant.Email, mail.ApplicationData{
		Name:     e.Applicant.Name,
		JobTitle: e.Job.Title,
		Company:  e.Job.Company,
	})
	if err != nil {
		return p, err
	}
	msg.EventType = e.Type()
	p.Emails = []mail.Message{msg}

	return p, nil
}

// JobCreated follows a new job posting awaiting moderation
type JobCreated struct {
	Job *model.Job
}

func (e JobCreated) Type() string { return domain.EventJobCreated }

func (e JobCreated) plan(pc planContext) (Plan, error) {
	message := fmt.Sprintf("New job pending approval: %s @ %s", e.Job.Title, e.Job.Company)

	return Plan{
		Notification: &notification.RecordInput{
			Type:    e.Type(),
			Message: message,
			Meta:    model.Meta{"jobId": e.Job.ID, "recruiterId": e.Job.RecruiterID},
		},
		Broadcasts: []Broadcast{
			{
				Event:   domain.RealtimeAdminNotification,
				Room:    domain.RoomAdmins,
				Payload: map[string]string{"type": e.Type(), "message": message, "jobId": e.Job.ID},
			},
		},
	}, nil
}

// JobApproved follows the first approval of a job
type JobApproved struct {
	Job *model.Job
}

func (e JobApproved) Type() string { return domain.EventJobApproved }

func (e JobApproved) plan(pc planContext) (Plan, error) {
	message := fmt.Sprintf("Job %s at %s was approved", e.Job.Title, e.Job.Company)

	return Plan{
		Notification: &notification.RecordInput{
			Type:    e.Type(),
			Message: message,
			Meta:    model.Meta{"jobId": e.Job.ID, "recruiterId": e.Job.RecruiterID},
		},
		Broadcasts: []Broadcast{
			{Event: domain.RealtimeNotification, Payload: summary{Type: e.Type(), Message: message}},
			{
				Event:   domain.RealtimeJobApproved,
				Room:    domain.RecruiterRoom(e.Job.RecruiterID),
				Payload: map[string]string{"jobId": e.Job.ID, "title": e.Job.Title},
			},
		},
	}, nil
}

// ContactReceived follows a contact form submission
type ContactReceived struct {
	Message *model.ContactMessage
}

func (e ContactReceived) Type() string { return domain.EventContactMessage }

func (e ContactReceived) plan(pc planContext) (Plan, error) {
	m := e.Message
	message := fmt.Sprintf("New contact from %s (%s): %s", m.Name, m.Role, m.Subject)

	return Plan{
		Notification: &notification.RecordInput{
			Type:    e.Type(),
			Message: message,
			Meta:    model.Meta{"contactId": m.ID},
		},
		Broadcasts: []Broadcast{
			{
				Event:   domain.RealtimeAdminNotification,
				Room:    domain.RoomAdmins,
				Payload: map[string]string{"type": e.Type(), "message": message, "contactId": m.ID},
			},
		},
	}, nil
}

// FeedbackReceived is feedback sent over the realtime channel
type FeedbackReceived struct {
	From    domain.Principal
	Message string
}

func (e FeedbackReceived) Type() string { return domain.EventFeedback }

func (e FeedbackReceived) plan(pc planContext) (Plan, error) {
	return Plan{
		Notification: &notification.RecordInput{
			Type:     e.Type(),
			Message:  e.Message,
			FromUser: e.From.ID,
		},
		Broadcasts: []Broadcast{
			{
				Event:   domain.RealtimeNotification,
				Room:    domain.RoomAdmins,
				Payload: map[string]string{"type": e.Type(), "message": e.Message, "fromUser": e.From.ID},
			},
		},
	}, nil
}

func displayName(u *model.User) string {
	if u == nil || u.Name == "" {
		return "A candidate"
	}
	return u.Name
}
