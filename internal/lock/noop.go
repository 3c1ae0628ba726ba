package lock

import (
	"context"
	"time"
)

// NoOpLocker is a no-operation locker that always succeeds.
// Use this when locking is not needed.
type NoOpLocker struct{}

// Acquire always returns true (lock acquired).
func (NoOpLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, ctx.Err()
}

// Release always returns true (lock released).
func (NoOpLocker) Release(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// Ensure NoOpLocker implements Locker.
var _ Locker = NoOpLocker{}
