// Package repository defines data access interfaces for ProjectHub.
package repository

import (
	"context"
	"time"
)

// =============================================================================
// Cache Interface (Redis or in-memory)
// =============================================================================

// Cache defines the interface for caching read-mostly storefront data.
type Cache interface {
	// Get retrieves a value by key.
	// Returns ErrCacheMiss if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with an optional TTL.
	// If ttl is 0, the value doesn't expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes values by key. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}

// CacheError represents a cache error type.
type CacheError string

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"

	// ErrCacheUnavailable indicates the cache is unavailable.
	ErrCacheUnavailable CacheError = "cache unavailable"
)

func (e CacheError) Error() string {
	return string(e)
}

// =============================================================================
// Common Cache Keys
// =============================================================================

// CacheKeys generates cache keys for common scenarios.
var CacheKeys = cacheKeys{}

type cacheKeys struct{}

// Settings returns the cache key for the full settings map.
func (cacheKeys) Settings() string {
	return "cache:settings"
}

// Categories returns the cache key for the active category list.
func (cacheKeys) Categories() string {
	return "cache:projects:categories"
}
