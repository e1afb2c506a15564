package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/mail"
	"github.com/cuongbtq/hirenest-be/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultSendTimeout = 30 * time.Second
	defaultMaxRetries  = 3
)

// Broker is the queue the worker consumes delivery ids from
type Broker interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
	Ack(tag uint64) error
	Nack(tag uint64, requeue bool) error
}

// Storage tracks delivery state across attempts
type Storage interface {
	ClaimDelivery(ctx context.Context, deliveryID, workerID string) (*domain.Delivery, error)
	MarkSent(ctx context.Context, deliveryID string) error
	ReleaseForRetry(ctx context.Context, deliveryID, errorMsg string) error
	MarkFailed(ctx context.Context, deliveryID, errorMsg string) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Broker        Broker
	Storage       Storage
	Sender        mail.Sender
	WorkerID      string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	SendTimeout   time.Duration

	// MaxRetries applies to rows stored without their own ceiling
	MaxRetries int
}

// Worker drains the mail outbox: it consumes delivery ids, claims the row
// and sends the message
type Worker struct {
	logger        *slog.Logger
	broker        Broker
	storage       Storage
	sender        mail.Sender
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	sendTimeout   time.Duration
	maxRetries    int

	deliveriesChan chan *domain.DeliveryMessage
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	sendTimeout := cfg.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}

	return &Worker{
		logger:         cfg.Logger,
		broker:         cfg.Broker,
		storage:        cfg.Storage,
		sender:         cfg.Sender,
		workerID:       cfg.WorkerID,
		queueName:      cfg.QueueName,
		concurrency:    concurrency,
		prefetchCount:  prefetch,
		sendTimeout:    sendTimeout,
		maxRetries:     maxRetries,
		deliveriesChan: make(chan *domain.DeliveryMessage, concurrency),
		stopChan:       make(chan struct{}),
	}
}

// Start consumes deliveries until ctx is canceled or the broker closes the
// delivery channel
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("send_timeout", w.sendTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	return nil
}

// Stop gracefully stops the worker. In-flight sends finish first.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
