package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/google/uuid"
)

// MaxListLimit caps the admin feed
const MaxListLimit = 100

// Storage is the persistence the service needs
type Storage interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, toRole string, limit int) ([]model.Notification, error)
	CountUnreadNotifications(ctx context.Context, toRole string) (int, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)
}

// RecordInput describes one admin notification
type RecordInput struct {
	Type     string
	Message  string
	Meta     model.Meta
	FromUser string // optional
}

type Service struct {
	storage Storage
	now     func() time.Time
}

func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// Record persists a notification addressed to admins. Storage failures are
// returned to the caller.
func (s *Service) Record(ctx context.Context, in RecordInput) (*model.Notification, error) {
	if strings.TrimSpace(in.Type) == "" || strings.TrimSpace(in.Message) == "" {
		return nil, domain.InvalidInput("notification type and message are required")
	}

	meta := in.Meta
	if meta == nil {
		meta = model.Meta{}
	}

	n := &model.Notification{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Message:   in.Message,
		ToRole:    domain.NotifyRoleAdmin,
		Meta:      meta,
		Read:      false,
		CreatedAt: s.now(),
	}
	if in.FromUser != "" {
		from := in.FromUser
		n.FromUser = &from
	}

	if err := s.storage.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to record %s notification: %w", in.Type, err)
	}

	return n, nil
}

// ListForAdmin returns the newest notifications. limit defaults to and is capped at MaxListLimit.
func (s *Service) ListForAdmin(ctx context.Context, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.storage.ListNotifications(ctx, domain.NotifyRoleAdmin, limit)
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	return s.storage.CountUnreadNotifications(ctx, domain.NotifyRoleAdmin)
}

func (s *Service) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotificationNotFound
	}
	return s.storage.MarkNotificationRead(ctx, id)
}
