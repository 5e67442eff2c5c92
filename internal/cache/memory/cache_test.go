package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/repository"
)

func TestCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Hour)
	defer c.Stop()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	value := []byte("hello")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'j'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, c.Delete(ctx, "k", "other"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(time.Hour)
	defer c.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))

	now = now.Add(2 * time.Minute)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)

	c.cleanup()
	assert.Equal(t, 1, c.Len())

	_, err = c.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestCache_StopIsIdempotent(t *testing.T) {
	c := NewCache(time.Millisecond)
	c.Stop()
	c.Stop()
	assert.NoError(t, c.Close())
}
