package lock

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	ok, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "held lock cannot be taken twice")

	require.NoError(t, l.Release(ctx, "k"))

	ok, err = l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	now := time.Now()
	l.now = func() time.Time { return now }

	ok, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	ok, err = l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken over")
}

func TestMemoryLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryLocker().Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLock(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	var runs int32
	err := WithLock(ctx, l, Keys.Migrate(), time.Minute, 0, func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, runs)

	ok, err := l.Acquire(ctx, Keys.Migrate(), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "WithLock releases the lock")
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()
	boom := errors.New("boom")

	err := WithLock(ctx, l, Keys.Seed(), time.Minute, 0, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	ok, err := l.Acquire(ctx, Keys.Seed(), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWithLock_NotAcquired(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	ok, err := l.Acquire(ctx, Keys.Migrate(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	called := false
	err = WithLock(ctx, l, Keys.Migrate(), time.Minute, 0, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.False(t, called)
}

func TestWithLock_WaitsForHolder(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	ok, err := l.Acquire(ctx, Keys.Migrate(), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = l.Release(ctx, Keys.Migrate())
	}()

	err = WithLock(ctx, l, Keys.Migrate(), time.Minute, 5*time.Second, func(context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("PROJECTHUB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PROJECTHUB_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	prefix := "projecthub-test:" + t.Name() + ":"
	a := NewRedisLocker(client, prefix)
	b := NewRedisLocker(client, prefix)

	ok, err := a.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = b.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx, "k"), "releasing an unowned lock is a no-op")
	ok, err = b.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "b must not have released a's lock")

	require.NoError(t, a.Release(ctx, "k"))
	ok, err = b.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, b.Release(ctx, "k"))
}
