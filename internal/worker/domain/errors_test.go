package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryableError(t *testing.T) {
	cause := errors.New("smtp timeout")
	err := fmt.Errorf("sending: %w", NewRetryableError(cause))

	var retryable *RetryableError
	assert.True(t, errors.As(err, &retryable))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "retryable error: smtp timeout", retryable.Error())
}
