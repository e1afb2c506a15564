package contact

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/fanout"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
)

// Storage is the contact message persistence
type Storage interface {
	CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error
	ListContactMessages(ctx context.Context) ([]model.ContactMessage, error)
	MarkContactMessageRead(ctx context.Context, id string) (*model.ContactMessage, error)
}

// Emitter schedules side effects for an event
type Emitter interface {
	Emit(ctx context.Context, ev fanout.Event)
}

type Service struct {
	storage Storage
	events  Emitter
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(storage Storage, events Emitter, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

type Input struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Create stores a contact form submission and tells the admins. principal
// is nil for anonymous visitors.
func (s *Service) Create(ctx context.Context, principal *domain.Principal, in Input) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		ID:        uuid.New().String(),
		Role:      domain.RoleGuest,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now(),
	}

	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return nil, domain.InvalidInput("all fields are required")
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return nil, domain.InvalidInput("email is not valid")
	}

	if principal != nil {
		userID := principal.ID
		msg.UserID = &userID
		msg.Role = principal.Role
	}

	if err := s.storage.CreateContactMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Info("Contact message received",
		slog.String("contact_id", msg.ID),
		slog.String("role", string(msg.Role)),
	)

	s.events.Emit(ctx, fanout.ContactReceived{Message: msg})

	return msg, nil
}

func (s *Service) ListForAdmin(ctx context.Context) ([]model.ContactMessage, error) {
	return s.storage.ListContactMessages(ctx)
}

func (s *Service) MarkRead(ctx context.Context, id string) (*model.ContactMessage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrMessageNotFound
	}
	return s.storage.MarkContactMessageRead(ctx, id)
}
