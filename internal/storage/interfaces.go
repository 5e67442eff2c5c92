// Package storage defines the upload storage backends used for project images.
// Objects are content-addressed: the key is derived from the SHA-256 of the
// bytes, so uploading the same image twice stores it once.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound indicates the key does not exist in the backend.
var ErrObjectNotFound = errors.New("object not found")

// Backend defines the interface for upload storage backends.
type Backend interface {
	// Put stores size bytes from reader under key.
	// Storing an existing key overwrites it with identical content.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Open returns the object stored under key. The caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether key is stored.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL clients use to fetch key.
	URL(key string) string
}
