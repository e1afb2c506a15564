package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

const notificationColumns = `id, type, message, from_user, to_role, meta, read, created_at`

func (s *Storage) CreateNotification(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, type, message, from_user, to_role, meta, read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		n.ID,
		n.Type,
		n.Message,
		n.FromUser,
		n.ToRole,
		n.Meta,
		n.Read,
		n.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListNotifications returns the newest notifications addressed to toRole
func (s *Storage) ListNotifications(ctx context.Context, toRole string, limit int) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE to_role = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	items := []model.Notification{}
	if err := s.db.SelectContext(ctx, &items, query, toRole, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return items, nil
}

func (s *Storage) CountUnreadNotifications(ctx context.Context, toRole string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE to_role = $1 AND read = FALSE`

	if err := s.db.GetContext(ctx, &count, query, toRole); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 RETURNING ` + notificationColumns

	err := s.db.GetContext(ctx, &n, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}

	return &n, nil
}
