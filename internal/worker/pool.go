package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/hirenest-be/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Debug("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Debug("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg := <-w.deliveriesChan:
			w.handle(ctx, workerName, msg)
		}
	}
}

// handle processes one message and settles it with the broker
func (w *Worker) handle(ctx context.Context, workerName string, msg *domain.DeliveryMessage) {
	err := w.processDelivery(ctx, msg)

	if err == nil || errors.Is(err, domain.ErrDeliveryAlreadyClaimed) {
		if err != nil {
			w.logger.Info("Skipping duplicate delivery message",
				slog.String("worker_name", workerName),
				slog.String("delivery_id", msg.DeliveryID),
			)
		}
		if ackErr := w.broker.Ack(msg.DeliveryTag); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("delivery_id", msg.DeliveryID),
				slog.String("error", ackErr.Error()),
			)
		}
		return
	}

	requeue := shouldRequeue(err)
	w.logger.Error("Delivery processing failed",
		slog.String("worker_name", workerName),
		slog.String("delivery_id", msg.DeliveryID),
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)
	w.nack(msg.DeliveryTag, requeue)
}

// shouldRequeue determines if a message should be redelivered based on the error type
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxRetriesExceeded) || errors.Is(err, domain.ErrPermanent) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
