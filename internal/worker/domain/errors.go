package domain

import "errors"

var (
	// ErrInvalidPayload is returned when a batch message is not valid JSON
	ErrInvalidPayload = errors.New("invalid batch payload")

	// ErrEmptyBatch is returned for a batch without entries
	ErrEmptyBatch = errors.New("batch has no entries")

	// ErrInvalidEntry is returned when an entry cannot be stored as sent
	ErrInvalidEntry = errors.New("invalid log entry")

	// ErrBatchAlreadyImported is returned when a redelivered batch was already committed
	ErrBatchAlreadyImported = errors.New("batch already imported")
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
