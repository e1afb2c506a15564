package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/hirenest-be/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// ClaimDelivery moves a delivery from PENDING to SENDING using optimistic
// locking. It fails with ErrDeliveryAlreadyClaimed when the row is in any
// other state.
func (s *Storage) ClaimDelivery(ctx context.Context, deliveryID, workerID string) (*domain.Delivery, error) {
	query := `
		UPDATE mail_deliveries
		SET status = $1,
		    worker_id = $2,
		    updated_at = NOW()
		WHERE id = $3
		  AND status = $4
		RETURNING id, recipient, subject, html_body, event_type, retry_count, max_retries
	`

	var d domain.Delivery
	err := s.db.QueryRowContext(ctx, query, domain.DeliveryStatusSending, workerID, deliveryID, domain.DeliveryStatusPending).Scan(
		&d.ID,
		&d.Recipient,
		&d.Subject,
		&d.HTMLBody,
		&d.EventType,
		&d.RetryCount,
		&d.MaxRetries,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Failed to claim delivery - already claimed or not found",
				slog.String("delivery_id", deliveryID),
				slog.String("worker_id", workerID),
			)
			return nil, domain.ErrDeliveryAlreadyClaimed
		}
		return nil, fmt.Errorf("failed to claim delivery: %w", err)
	}

	d.Status = domain.DeliveryStatusSending
	d.WorkerID = workerID

	s.logger.Info("Delivery claimed successfully",
		slog.String("delivery_id", deliveryID),
		slog.String("worker_id", workerID),
		slog.String("event_type", d.EventType),
	)

	return &d, nil
}

// MarkSent records a successful send
func (s *Storage) MarkSent(ctx context.Context, deliveryID string) error {
	query := `
		UPDATE mail_deliveries
		SET status = $1,
		    last_error = '',
		    sent_at = NOW(),
		    updated_at = NOW()
		WHERE id = $2
	`

	if _, err := s.db.ExecContext(ctx, query, domain.DeliveryStatusSent, deliveryID); err != nil {
		return fmt.Errorf("failed to mark delivery sent: %w", err)
	}

	s.logger.Info("Delivery status updated",
		slog.String("delivery_id", deliveryID),
		slog.String("status", domain.DeliveryStatusSent),
	)

	return nil
}

// ReleaseForRetry counts a failed attempt and puts the delivery back to
// PENDING so a redelivered message can claim it again
func (s *Storage) ReleaseForRetry(ctx context.Context, deliveryID, errorMsg string) error {
	query := `
		UPDATE mail_deliveries
		SET status = $1,
		    retry_count = retry_count + 1,
		    last_error = $2,
		    worker_id = NULL,
		    updated_at = NOW()
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, domain.DeliveryStatusPending, errorMsg, deliveryID); err != nil {
		return fmt.Errorf("failed to release delivery: %w", err)
	}

	s.logger.Info("Delivery released for retry",
		slog.String("delivery_id", deliveryID),
	)

	return nil
}

// MarkFailed gives up on a delivery
func (s *Storage) MarkFailed(ctx context.Context, deliveryID, errorMsg string) error {
	query := `
		UPDATE mail_deliveries
		SET status = $1,
		    retry_count = retry_count + 1,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $3
	`

	if _, err := s.db.ExecContext(ctx, query, domain.DeliveryStatusFailed, errorMsg, deliveryID); err != nil {
		return fmt.Errorf("failed to mark delivery failed: %w", err)
	}

	s.logger.Warn("Delivery status updated",
		slog.String("delivery_id", deliveryID),
		slog.String("status", domain.DeliveryStatusFailed),
	)

	return nil
}
