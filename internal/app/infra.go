package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/cache/memory"
	"github.com/prn-tf/projecthub/internal/cache/redis"
	"github.com/prn-tf/projecthub/internal/config"
	"github.com/prn-tf/projecthub/internal/lock"
	"github.com/prn-tf/projecthub/internal/repository"
	"github.com/prn-tf/projecthub/internal/repository/postgres"
	"github.com/prn-tf/projecthub/internal/repository/sqlite"
	"github.com/prn-tf/projecthub/internal/storage"
	"github.com/prn-tf/projecthub/internal/storage/filesystem"
	"github.com/prn-tf/projecthub/internal/storage/s3"
)

// keyPrefix namespaces every Redis key written by ProjectHub.
const keyPrefix = "projecthub:"

// Database is an open store of either driver.
type Database struct {
	Repos *repository.Repositories

	conn    repository.DatabaseHealth
	migrate func(ctx context.Context, command string) error
}

// OpenDatabase connects to the configured driver and builds its repositories.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Database, error) {
	switch cfg.Driver {
	case "sqlite":
		sqliteCfg := sqlite.DefaultConfig(cfg.Path)
		if cfg.JournalMode != "" {
			sqliteCfg.JournalMode = cfg.JournalMode
		}
		if cfg.BusyTimeout > 0 {
			sqliteCfg.BusyTimeout = cfg.BusyTimeout
		}
		if cfg.SynchronousMode != "" {
			sqliteCfg.SynchronousMode = cfg.SynchronousMode
		}

		db, err := sqlite.NewDB(ctx, sqliteCfg, logger)
		if err != nil {
			return nil, err
		}
		return &Database{
			Repos: sqlite.NewRepositories(db),
			conn:  db,
			migrate: func(ctx context.Context, command string) error {
				return sqlite.RunMigrations(ctx, db.DB(), command)
			},
		}, nil

	case "postgres":
		db, err := postgres.NewDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Database{
			Repos:   postgres.NewRepositories(db),
			conn:    db,
			migrate: db.RunMigrations,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Ping checks the database connection.
func (d *Database) Ping(ctx context.Context) error {
	return d.conn.Ping(ctx)
}

// Migrate runs a goose command ("up", "down", "status", "version").
func (d *Database) Migrate(ctx context.Context, command string) error {
	return d.migrate(ctx, command)
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.conn.Close()
}

// Coordination holds the cache and locker, which share one backend.
type Coordination struct {
	Cache  repository.Cache
	Locker lock.Locker
	close  func() error
}

// Close releases the cache backend.
func (c *Coordination) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// OpenCoordination uses Redis when enabled so replicas share cache entries
// and locks, and in-process implementations otherwise.
func OpenCoordination(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*Coordination, error) {
	if !cfg.Enabled {
		c := memory.NewCache(time.Minute)
		logger.Info().Msg("using in-memory cache")
		return &Coordination{
			Cache:  c,
			Locker: lock.NewMemoryLocker(),
			close:  c.Close,
		}, nil
	}

	c, err := redis.NewCache(ctx, cfg, keyPrefix, logger)
	if err != nil {
		return nil, err
	}
	return &Coordination{
		Cache:  c,
		Locker: lock.NewRedisLocker(c.Client(), keyPrefix),
		close:  c.Close,
	}, nil
}

// OpenStorage builds the configured upload backend.
func OpenStorage(ctx context.Context, cfg config.UploadConfig, logger zerolog.Logger) (storage.Backend, error) {
	switch cfg.Backend {
	case "filesystem":
		return filesystem.NewBackend(cfg.DataDir, cfg.PublicPrefix, logger)
	case "s3":
		return s3.NewBackend(ctx, cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unsupported upload backend %q", cfg.Backend)
	}
}
