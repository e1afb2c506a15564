package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

const contactColumns = `id, user_id, role, name, email, subject, message, read, created_at`

func (s *Storage) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (
			id, user_id, role, name, email, subject, message, read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		msg.ID,
		msg.UserID,
		msg.Role,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.Read,
		msg.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

func (s *Storage) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages ORDER BY created_at DESC, id DESC`

	items := []model.ContactMessage{}
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	return items, nil
}

func (s *Storage) MarkContactMessageRead(ctx context.Context, id string) (*model.ContactMessage, error) {
	var msg model.ContactMessage
	query := `UPDATE contact_messages SET read = TRUE WHERE id = $1 RETURNING ` + contactColumns

	err := s.db.GetContext(ctx, &msg, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to mark contact message read: %w", err)
	}

	return &msg, nil
}
