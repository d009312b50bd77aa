package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serialises work on a key across processes.
type DistributedLocker interface {
	// Lock blocks until the lock is held or ctx is done. The lock expires after ttl.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
