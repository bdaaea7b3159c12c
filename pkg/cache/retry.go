package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure of a backing service (Mongo, Redis) that
// is worth another attempt, such as a dropped connection or a timeout.
type RetryableError struct{ Err error }

// Retryable marks err for retry. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryDelay is the first backoff interval of [RetryWithBackoff].
var RetryDelay = time.Second

// RetryWithBackoff runs fn up to three times, starting at [RetryDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, RetryDelay, fn)
}

// Retry runs fn until it succeeds, returns an error not marked
// [Retryable], or has run attempts times. The delay doubles after each
// retryable failure. The last error is returned unwrapped.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = re.Err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
