package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

func (s *Storage) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, role, email, name, resume_url, resume_public_id, created_at
		FROM users
		WHERE id = $1
	`

	err := s.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// SetInitialResume stores ref on the user profile only when the profile has
// no resume yet. It reports whether the profile was updated.
func (s *Storage) SetInitialResume(ctx context.Context, userID string, ref model.StorageRef) (bool, error) {
	query := `
		UPDATE users
		SET resume_url = $1, resume_public_id = $2
		WHERE id = $3 AND resume_url = ''
	`

	result, err := s.db.ExecContext(ctx, query, ref.URL, ref.PublicID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to set user resume: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
