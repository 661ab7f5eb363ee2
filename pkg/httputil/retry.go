package httputil

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// RetryableError marks a failure as transient.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped in a RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retrier runs an operation up to Attempts times, doubling Delay after
// each transient failure.
type Retrier struct {
	Attempts int
	Delay    time.Duration
	Clock    clockwork.Clock
}

// DefaultRetrier makes 3 attempts starting with a 500ms delay.
func DefaultRetrier() Retrier {
	return Retrier{Attempts: 3, Delay: 500 * time.Millisecond}
}

// Do calls fn until it succeeds, fails permanently, or attempts run out.
// It returns the last error, or ctx.Err() if ctx ends while waiting.
func (r Retrier) Do(ctx context.Context, fn func() error) error {
	clock := r.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	attempts := max(r.Attempts, 1)
	delay := r.Delay

	var lastErr error
	for i := range attempts {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clock.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
