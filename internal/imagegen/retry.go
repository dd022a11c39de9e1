package imagegen

import (
	"context"
	"errors"
	"time"
)

// RetryForever is the explicit sentinel for an unbounded retry budget. A
// MaxRetries of 0 means a single try with no retry; callers that really want
// to loop until success must opt in with this value.
const RetryForever = -1

// RetryPolicy bounds how often one streaming attempt may be re-run after an
// upstream failure. Invalid-image and missing-credential errors are terminal
// and are never retried regardless of the budget.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

// Do runs fn up to MaxRetries+1 times, sleeping Delay between runs without
// blocking other requests. It returns nil on the first success, the last error
// once the budget is exhausted, or immediately on a non-retryable error.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	var lastErr error
	for try := 0; p.MaxRetries == RetryForever || try <= p.MaxRetries; try++ {
		if try > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// retryable reports whether the error is worth another attempt: model failures
// and unclassified errors are, client input and configuration errors are not.
func retryable(err error) bool {
	if errors.Is(err, ErrInvalidImage) {
		return false
	}
	if isTerminal(err) {
		return false
	}
	return true
}
