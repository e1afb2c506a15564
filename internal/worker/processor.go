package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/hirenest-be/internal/mail"
	"github.com/cuongbtq/hirenest-be/internal/worker/domain"
)

// processDelivery claims a delivery, sends it and records the outcome.
// The returned error drives the ACK/NACK decision.
func (w *Worker) processDelivery(ctx context.Context, msg *domain.DeliveryMessage) error {
	w.logger.Info("Processing delivery",
		slog.String("delivery_id", msg.DeliveryID),
		slog.String("worker_id", w.workerID),
	)

	// Step 1: Claim delivery from database (PENDING → SENDING)
	d, err := w.storage.ClaimDelivery(ctx, msg.DeliveryID, w.workerID)
	if err != nil {
		if errors.Is(err, domain.ErrDeliveryAlreadyClaimed) {
			return fmt.Errorf("delivery already claimed: %w", err)
		}
		// Database error - could be transient
		return domain.NewRetryableError(fmt.Errorf("failed to claim delivery: %w", err))
	}

	// Step 2: Send within the configured timeout
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	sendErr := w.sender.Send(sendCtx, mail.Message{
		To:        d.Recipient,
		Subject:   d.Subject,
		HTML:      d.HTMLBody,
		EventType: d.EventType,
	})

	// Step 3: Record the outcome even when shutdown canceled ctx
	bookkeeping := context.WithoutCancel(ctx)

	if sendErr == nil {
		if err := w.storage.MarkSent(bookkeeping, d.ID); err != nil {
			// The mail went out; redelivering would send it twice
			w.logger.Error("Failed to mark delivery sent",
				slog.String("delivery_id", d.ID),
				slog.String("error", err.Error()),
			)
		}
		w.logger.Info("Delivery sent",
			slog.String("delivery_id", d.ID),
			slog.String("event_type", d.EventType),
		)
		return nil
	}

	w.logger.Warn("Delivery send failed",
		slog.String("delivery_id", d.ID),
		slog.Int("retry_count", d.RetryCount),
		slog.Int("max_retries", d.MaxRetries),
		slog.String("error", sendErr.Error()),
	)

	if errors.Is(sendErr, mail.ErrInvalidAddress) {
		w.markFailed(bookkeeping, d.ID, sendErr)
		return fmt.Errorf("%w: %v", domain.ErrPermanent, sendErr)
	}

	maxRetries := d.MaxRetries
	if maxRetries <= 0 {
		maxRetries = w.maxRetries
	}

	if d.RetryCount+1 < maxRetries {
		if err := w.storage.ReleaseForRetry(bookkeeping, d.ID, sendErr.Error()); err != nil {
			w.logger.Error("Failed to release delivery for retry",
				slog.String("delivery_id", d.ID),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewRetryableError(fmt.Errorf("send failed: %w", sendErr))
	}

	w.markFailed(bookkeeping, d.ID, sendErr)
	return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, sendErr)
}

func (w *Worker) markFailed(ctx context.Context, deliveryID string, cause error) {
	if err := w.storage.MarkFailed(ctx, deliveryID, cause.Error()); err != nil {
		w.logger.Error("Failed to mark delivery failed",
			slog.String("delivery_id", deliveryID),
			slog.String("error", err.Error()),
		)
	}
}
