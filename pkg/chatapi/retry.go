package chatapi

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const (
	maxRetries = 2
	baseDelay  = 500 * time.Millisecond
	maxDelay   = 5 * time.Second
)

// isRetryable reports whether an idempotent read is worth repeating.
// Transport failures and server errors qualify; anything the backend decided
// on purpose (4xx) does not.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// retryDelay returns the backoff for attempt n (0-indexed) with ±25% jitter.
func retryDelay(attempt int) time.Duration {
	delay := baseDelay
	for range attempt {
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int64N(int64(delay)/2)) - time.Duration(int64(delay)/4)
	return delay + jitter
}

// sleepWithContext sleeps for d, returning early if ctx is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
