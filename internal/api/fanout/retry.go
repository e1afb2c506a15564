package fanout

import (
	"context"
	"errors"
	"time"

	"github.com/cuongbtq/hirenest-be/internal/api/domain"
	"github.com/cuongbtq/hirenest-be/internal/mail"
)

// RetryPolicy retries a branch with exponential backoff
type RetryPolicy struct {
	Attempts          int
	BaseDelay         time.Duration
	BackoffMultiplier float64
}

// Do runs fn until it succeeds, the attempts run out, ctx ends or fn
// returns an error that can never succeed.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	multiplier := p.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	var err error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) || attempt == attempts {
			return err
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
		delay = time.Duration(float64(delay) * multiplier)
	}

	return err
}

func retryable(err error) bool {
	return !errors.Is(err, mail.ErrInvalidAddress) &&
		!errors.Is(err, mail.ErrDeferred) &&
		!errors.Is(err, domain.ErrInvalidInput)
}
