package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/model"
)

func (s *Storage) CreateMailDelivery(ctx context.Context, d *model.MailDelivery) error {
	query := `
		INSERT INTO mail_deliveries (
			id, recipient, subject, html_body, event_type,
			status, max_retries, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $8
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		d.ID,
		d.Recipient,
		d.Subject,
		d.HTMLBody,
		d.EventType,
		d.Status,
		d.MaxRetries,
		d.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create mail delivery: %w", err)
	}

	return nil
}

// RequeueStaleMailDeliveries returns up to limit deliveries untouched since
// staleBefore to PENDING and reports their ids for republishing. A stale
// SENDING row belongs to a worker that died mid-send: it is charged one
// attempt, and rows with no attempts left are marked FAILED instead.
// Returned rows get updated_at = now so concurrent sweepers skip them.
func (s *Storage) RequeueStaleMailDeliveries(ctx context.Context, now, staleBefore time.Time, limit int, reason string) ([]string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sweep: %w", err)
	}
	defer tx.Rollback()

	failQuery := `
		UPDATE mail_deliveries
		SET status = $1,
		    retry_count = retry_count + 1,
		    last_error = $2,
		    updated_at = $3
		WHERE status = $4
		  AND updated_at < $5
		  AND retry_count + 1 >= max_retries
	`

	if _, err := tx.ExecContext(ctx, failQuery, model.MailFailed, reason, now, model.MailSending, staleBefore); err != nil {
		return nil, fmt.Errorf("failed to fail stale mail deliveries: %w", err)
	}

	requeueQuery := `
		UPDATE mail_deliveries
		SET retry_count = retry_count + CASE WHEN status = $1 THEN 1 ELSE 0 END,
		    last_error = CASE WHEN status = $1 THEN $2 ELSE last_error END,
		    status = $3,
		    worker_id = NULL,
		    updated_at = $4
		WHERE id IN (
			SELECT id FROM mail_deliveries
			WHERE status IN ($3, $1)
			  AND updated_at < $5
			ORDER BY updated_at
			LIMIT $6
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id
	`

	var ids []string
	if err := tx.SelectContext(ctx, &ids, requeueQuery, model.MailSending, reason, model.MailPending, now, staleBefore, limit); err != nil {
		return nil, fmt.Errorf("failed to requeue stale mail deliveries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sweep: %w", err)
	}

	return ids, nil
}
