package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/metrics"
	"github.com/cuongbtq/hirenest-be/internal/api/model"
	"github.com/cuongbtq/hirenest-be/internal/mail"
	"github.com/google/uuid"
)

const defaultMaxRetries = 3

// Storage persists outbox rows
type Storage interface {
	CreateMailDelivery(ctx context.Context, d *model.MailDelivery) error
}

// Publisher hands a delivery id to the broker
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// DeliveryMessage is the broker payload the worker-service consumes
type DeliveryMessage struct {
	DeliveryID string `json:"delivery_id"`
}

// Outbox queues email for the worker-service. The row is written before
// the publish so that a delivery is never announced without its content.
type Outbox struct {
	storage    Storage
	publisher  Publisher
	maxRetries int
	logger     *slog.Logger
	now        func() time.Time
}

func New(storage Storage, publisher Publisher, maxRetries int, logger *slog.Logger) *Outbox {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &Outbox{
		storage:    storage,
		publisher:  publisher,
		maxRetries: maxRetries,
		logger:     logger,
		now:        time.Now,
	}
}

// Enqueue stores msg as a PENDING delivery and publishes its id
func (o *Outbox) Enqueue(ctx context.Context, msg mail.Message) (err error) {
	defer func() { metrics.RecordMailEnqueued(err) }()

	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: empty recipient", mail.ErrInvalidAddress)
	}

	delivery := &model.MailDelivery{
		ID:         uuid.New().String(),
		Recipient:  msg.To,
		Subject:    msg.Subject,
		HTMLBody:   msg.HTML,
		EventType:  msg.EventType,
		Status:     model.MailPending,
		MaxRetries: o.maxRetries,
		CreatedAt:  o.now(),
	}

	if err := o.storage.CreateMailDelivery(ctx, delivery); err != nil {
		return err
	}

	body, err := json.Marshal(DeliveryMessage{DeliveryID: delivery.ID})
	if err != nil {
		return fmt.Errorf("failed to encode delivery message: %w", err)
	}

	// The row is committed from here on; the Sweeper republishes it if this
	// publish fails, so the caller must not enqueue the message again.
	if err := o.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
		o.logger.Error("Mail delivery stored but not published",
			slog.String("delivery_id", delivery.ID),
			slog.String("event_type", delivery.EventType),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: failed to publish delivery %s: %w", mail.ErrDeferred, delivery.ID, err)
	}

	o.logger.Debug("Mail delivery queued",
		slog.String("delivery_id", delivery.ID),
		slog.String("event_type", delivery.EventType),
	)

	return nil
}
