package errors

import "errors"

// Error kinds of the booking core. Services wrap these with fmt.Errorf("...: %w", ...)
// so callers can classify with errors.Is while keeping the full message.
var ErrNotFound = errors.New("entity not found")
var ErrConflict = errors.New("illegal state transition")
var ErrCapacityFull = errors.New("seat class is full")
var ErrValidation = errors.New("validation failed")
var ErrTxTimeout = errors.New("transaction lock wait timed out")
var ErrTxAborted = errors.New("transaction aborted")

// IsRetryable reports whether the caller may safely retry the operation.
// Only lock-wait timeouts are retryable; every other kind is a hard failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTxTimeout)
}
