// Package lock serializes one-off maintenance work such as migrations and
// seeding. Single instances use MemoryLocker; replicas sharing a database
// use RedisLocker.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned by WithLock when the lock stays held by
// another process for the whole wait period.
var ErrNotAcquired = errors.New("lock not acquired")

// retryInterval is the delay between acquisition attempts in WithLock.
const retryInterval = 250 * time.Millisecond

// Locker acquires and releases named, expiring locks.
type Locker interface {
	// Acquire takes key for ttl. It returns false if another holder has it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up key if this locker holds it.
	Release(ctx context.Context, key string) error
}

// WithLock runs fn while holding key, waiting up to wait for it.
// The lock is released when fn returns, even on error.
func WithLock(ctx context.Context, l Locker, key string, ttl, wait time.Duration, fn func(ctx context.Context) error) error {
	deadline := time.Now().Add(wait)
	for {
		acquired, err := l.Acquire(ctx, key, ttl)
		if err != nil {
			return err
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	defer func() {
		// Release on a fresh context so a cancelled fn still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = l.Release(releaseCtx, key)
	}()

	return fn(ctx)
}

// Keys provides lock key generation for common scenarios.
var Keys = lockKeys{}

type lockKeys struct{}

// Migrate guards schema migrations.
func (lockKeys) Migrate() string {
	return "lock:migrate"
}

// Seed guards the demo data seed.
func (lockKeys) Seed() string {
	return "lock:seed"
}
