package driven

import (
	"context"
	"time"
)

// DistributedLock provides distributed locking for serializing work on a
// shared resource across processes. Used to serialize mutations on a single
// tenant copy so distribution refreshes and tenant edits do not interleave.
type DistributedLock interface {
	// Acquire attempts to acquire a lock with the given key.
	// Returns true if the lock was acquired, false if it is held elsewhere.
	// The lock expires automatically after ttl to prevent deadlocks.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases a previously acquired lock.
	// Only the holder that acquired the lock can release it.
	Release(ctx context.Context, key string) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
