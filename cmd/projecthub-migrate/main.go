// Package main is the entry point for the ProjectHub database migration tool.
// It applies the embedded goose migrations for the configured driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prn-tf/projecthub/internal/app"
	"github.com/prn-tf/projecthub/internal/config"
	"github.com/prn-tf/projecthub/internal/lock"
	"github.com/prn-tf/projecthub/internal/logging"
)

// migrateLockTTL bounds how long a crashed run can block other migrations.
const migrateLockTTL = 5 * time.Minute

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	switch command {
	case "version":
		fmt.Printf("ProjectHub Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return

	case "up", "down", "status", "redo", "reset":

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err := run(*configPath, command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, command string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	coord, err := app.OpenCoordination(ctx, cfg.Redis, logger)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() { _ = coord.Close() }()

	// Servers auto-migrating under the same lock wait for this run.
	err = lock.WithLock(ctx, coord.Locker, lock.Keys.Migrate(), migrateLockTTL, time.Minute, func(ctx context.Context) error {
		return db.Migrate(ctx, command)
	})
	if err != nil {
		return err
	}

	logger.Info().Str("command", command).Str("driver", cfg.Database.Driver).Msg("migration command finished")
	return nil
}

func printUsage() {
	fmt.Println(`ProjectHub Migration Tool

Usage:
  projecthub-migrate [-config path] <command>

Commands:
  up          Run all pending migrations
  down        Roll back the last migration
  redo        Roll back and re-apply the last migration
  reset       Roll back all migrations
  status      Show current migration status
  version     Print version information
  help        Show this help message

Environment Variables:
  PROJECTHUB_DATABASE_DRIVER    sqlite (default) or postgres
  PROJECTHUB_DATABASE_PATH      SQLite database file
  PROJECTHUB_DATABASE_HOST      PostgreSQL host

Examples:
  projecthub-migrate up
  projecthub-migrate status
  projecthub-migrate -config ./configs/config.yaml down`)
}
