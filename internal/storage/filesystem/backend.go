// Package filesystem stores uploads on local disk under a data directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/storage"
)

// Backend writes objects below dataDir and serves them under publicPrefix.
type Backend struct {
	dataDir      string
	publicPrefix string
	logger       zerolog.Logger
}

// NewBackend creates the data directory if needed and returns a backend.
func NewBackend(dataDir, publicPrefix string, logger zerolog.Logger) (*Backend, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Backend{
		dataDir:      dataDir,
		publicPrefix: publicPrefix,
		logger:       logger.With().Str("component", "upload-fs").Logger(),
	}, nil
}

// Dir returns the directory served at the public prefix.
func (b *Backend) Dir() string {
	return b.dataDir
}

func (b *Backend) path(key string) (string, error) {
	if !storage.ValidKey(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.dataDir, filepath.FromSlash(key)), nil
}

// Put writes to a temp file in the target directory and renames it into place,
// so readers never observe a partial object.
func (b *Backend) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	target, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op once renamed.
		_ = os.Remove(tmpName)
	}()

	written, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if size >= 0 && written != size {
		return fmt.Errorf("short write: wrote %d of %d bytes", written, size)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("failed to commit upload: %w", err)
	}

	b.logger.Debug().
		Str("key", key).
		Int64("size", written).
		Str("content_type", contentType).
		Msg("object stored")
	return nil
}

// Open opens the stored object.
func (b *Backend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := b.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrObjectNotFound
	}
	return f, err
}

// Exists reports whether the object file is present.
func (b *Backend) Exists(_ context.Context, key string) (bool, error) {
	target, err := b.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes the object file.
func (b *Backend) Delete(_ context.Context, key string) error {
	target, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}

// URL returns publicPrefix/key.
func (b *Backend) URL(key string) string {
	return storage.JoinURL(b.publicPrefix, key)
}

var _ storage.Backend = (*Backend)(nil)
