package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements Locker within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

// NewMemoryLocker creates a new in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Acquire takes key unless an unexpired holder exists.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expiresAt, held := m.locks[key]; held && now.Before(expiresAt) {
		return false, nil
	}
	m.locks[key] = now.Add(ttl)
	return true, nil
}

// Release frees key.
func (m *MemoryLocker) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.locks, key)
	return nil
}

var _ Locker = (*MemoryLocker)(nil)
