package domain

import "errors"

var (
	// ErrDeliveryAlreadyClaimed is returned when a delivery is not PENDING,
	// because another worker holds it or it already went out
	ErrDeliveryAlreadyClaimed = errors.New("delivery already claimed or not in PENDING status")

	// ErrMaxRetriesExceeded is returned when a delivery has used up its attempts
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrPermanent marks send failures retrying cannot fix
	ErrPermanent = errors.New("permanent delivery failure")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
