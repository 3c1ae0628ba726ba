package repository

import (
	"context"
	"time"
)

// retryDelay is the pause before the single retry of a transient failure.
const retryDelay = 25 * time.Millisecond

// RetryOnce runs fn and, if it fails with an error isTransient accepts,
// runs it exactly once more. The second error, if any, is returned as is.
func RetryOnce(ctx context.Context, isTransient func(error) bool, fn func() error) error {
	err := fn()
	if err == nil || !isTransient(err) {
		return err
	}

	timer := time.NewTimer(retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return err
	case <-timer.C:
	}

	return fn()
}
