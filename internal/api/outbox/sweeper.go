package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultSweepInterval = time.Minute
	defaultStaleAfter    = 5 * time.Minute
	defaultSweepBatch    = 100

	interruptedReason = "send interrupted before completion"
)

// SweepStorage finds deliveries that never reached a worker or whose
// worker stopped mid-send
type SweepStorage interface {
	RequeueStaleMailDeliveries(ctx context.Context, now, staleBefore time.Time, limit int, reason string) ([]string, error)
}

// SweeperConfig tunes the republish loop. StaleAfter must stay well above
// the worker send timeout, or rows still being sent are handed out again.
type SweeperConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// Sweeper republishes deliveries left PENDING by a failed publish and
// recovers SENDING rows abandoned by a crashed worker
type Sweeper struct {
	storage    SweepStorage
	publisher  Publisher
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	logger     *slog.Logger
	now        func() time.Time
}

func NewSweeper(storage SweepStorage, publisher Publisher, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSweepBatch
	}

	return &Sweeper{
		storage:    storage,
		publisher:  publisher,
		interval:   cfg.Interval,
		staleAfter: cfg.StaleAfter,
		batchSize:  cfg.BatchSize,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps every interval until ctx is cancelled
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Mail outbox sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("stale_after", s.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Mail outbox sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Mail outbox sweep failed", slog.Any("error", err))
			}
		}
	}
}

// Sweep requeues one batch of stale deliveries and returns how many were
// published. A row whose publish fails stays PENDING for the next sweep.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()

	ids, err := s.storage.RequeueStaleMailDeliveries(ctx, now, now.Add(-s.staleAfter), s.batchSize, interruptedReason)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, id := range ids {
		body, err := json.Marshal(DeliveryMessage{DeliveryID: id})
		if err != nil {
			return published, fmt.Errorf("failed to encode delivery message: %w", err)
		}

		if err := s.publisher.PublishWithRetry(ctx, body, "application/json"); err != nil {
			s.logger.Warn("Failed to republish mail delivery",
				slog.String("delivery_id", id),
				slog.Any("error", err),
			)
			continue
		}
		published++
	}

	if len(ids) > 0 {
		s.logger.Info("Republished stale mail deliveries",
			slog.Int("found", len(ids)),
			slog.Int("published", published),
		)
	}

	return published, nil
}
