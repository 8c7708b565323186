// Package retry provides the single-retry-with-backoff policy used for
// persistence writes. Transient storage errors get exactly one more
// chance; anything that fails twice is surfaced to the caller.
package retry

import (
	"context"
	"time"
)

// DefaultBackoff is the wait before the single retry attempt.
const DefaultBackoff = 250 * time.Millisecond

// Once runs fn, and on failure retries it exactly once after the backoff.
// Context cancellation aborts the wait and returns the context error.
func Once(ctx context.Context, backoff time.Duration, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
	}

	return fn()
}
