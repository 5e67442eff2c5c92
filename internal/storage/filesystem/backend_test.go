package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/projecthub/internal/storage"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := NewBackend(t.TempDir(), "/uploads", zerolog.Nop())
	require.NoError(t, err)
	return b
}

func TestBackend_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	key := "ab/cd/abcd1234.png"

	exists, err := b.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, b.Put(ctx, key, strings.NewReader("image"), 5, "image/png"))

	exists, err = b.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := b.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))

	entries, err := os.ReadDir(filepath.Join(b.Dir(), "ab", "cd"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	require.NoError(t, b.Delete(ctx, key))
	require.NoError(t, b.Delete(ctx, key))

	_, err = b.Open(ctx, key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestBackend_ShortWrite(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	err := b.Put(ctx, "x.png", strings.NewReader("abc"), 10, "image/png")
	require.Error(t, err)

	exists, err := b.Exists(ctx, "x.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestBackend_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	err := b.Put(ctx, "../escape.png", strings.NewReader("x"), 1, "image/png")
	assert.Error(t, err)
}

func TestBackend_URL(t *testing.T) {
	b := newTestBackend(t)
	assert.Equal(t, "/uploads/ab/cd/f.png", b.URL("ab/cd/f.png"))
}
