package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
)

// Cache TTLs for read-mostly storefront data.
const (
	settingsCacheTTL   = 10 * time.Minute
	categoriesCacheTTL = 5 * time.Minute
)

// jsonCache stores JSON-encoded values in a repository.Cache.
// A nil cache disables caching. Cache failures are logged and treated as misses.
type jsonCache struct {
	cache   repository.Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func (c jsonCache) get(ctx context.Context, key string, dst any) bool {
	if c.cache == nil {
		return false
	}

	data, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
			c.metrics.RecordCache("error")
			return false
		}
		c.metrics.RecordCache("miss")
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		c.metrics.RecordCache("error")
		return false
	}

	c.metrics.RecordCache("hit")
	return true
}

func (c jsonCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (c jsonCache) invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
