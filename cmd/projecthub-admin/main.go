// Package main is the entry point for the ProjectHub admin CLI.
// It manages accounts, seeds demo data and generates session keys.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/app"
	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/config"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/logging"
	"github.com/prn-tf/projecthub/internal/pkg/crypto"
	"github.com/prn-tf/projecthub/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command := os.Args[1]; command {
	case "version":
		fmt.Printf("ProjectHub Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "keygen":
		err = keygen()

	case "user":
		err = userCommand(ctx, os.Args[2:])

	case "seed":
		err = seedCommand(ctx, os.Args[2:])

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ProjectHub Admin CLI

Usage:
  projecthub-admin <command> [arguments]

Commands:
  user        Manage accounts (create, list, delete)
  seed        Write default settings, demo accounts and the demo catalog
  keygen      Generate session.hash_key and session.block_key values
  version     Print version information
  help        Show this help message

Examples:
  projecthub-admin user create -username admin -password s3cret -role ADMIN
  projecthub-admin user list
  projecthub-admin user delete -username seller1
  projecthub-admin seed -admin-password s3cret

Configuration is read from config.yaml and PROJECTHUB_* environment variables.`)
}

// keygen prints session keys in env-file form.
func keygen() error {
	hashKey, blockKey, err := crypto.GenerateSessionKeys()
	if err != nil {
		return err
	}
	fmt.Printf("PROJECTHUB_SESSION_HASH_KEY=%s\n", hashKey)
	fmt.Printf("PROJECTHUB_SESSION_BLOCK_KEY=%s\n", blockKey)
	return nil
}

// passwordOrGenerate returns pw, or a random password that is printed once.
func passwordOrGenerate(pw, username string) (string, error) {
	if pw != "" {
		return pw, nil
	}
	pw, err := crypto.GeneratePassword()
	if err != nil {
		return "", err
	}
	fmt.Printf("Generated password for %s: %s\n", username, pw)
	return pw, nil
}

// env holds the backends an admin command needs.
type env struct {
	db       *app.Database
	coord    *app.Coordination
	services *app.Services
	logger   zerolog.Logger
}

func (e *env) Close() {
	if err := e.coord.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("failed to close cache")
	}
	if err := e.db.Close(); err != nil {
		e.logger.Warn().Err(err).Msg("failed to close database")
	}
}

// open connects to the configured database and cache. Mail and uploads
// are not wired; no admin command sends mail or stores files.
func open(ctx context.Context, configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := app.OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, "up"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	coord, err := app.OpenCoordination(ctx, cfg.Redis, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	services := app.NewServices(app.ServiceDeps{
		Repos:  db.Repos,
		Cache:  coord.Cache,
		Guard:  auth.NewGuard(nil),
		Logger: logger,
	})
	return &env{db: db, coord: coord, services: services, logger: logger}, nil
}

func userCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: projecthub-admin user <create|list|delete> [flags]")
	}

	fs := flag.NewFlagSet("user "+args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password, generated when empty (create)")
	role := fs.String("role", string(domain.RoleUser), "ADMIN or USER (create)")
	id := fs.String("id", "", "account id (delete)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	e, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()
	accounts := e.services.Accounts

	switch args[0] {
	case "create":
		pw, err := passwordOrGenerate(*password, *username)
		if err != nil {
			return err
		}
		account, err := accounts.Provision(ctx, service.CreateAccountInput{
			Username: *username,
			Password: pw,
			Role:     domain.Role(*role),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s account %q (%s)\n", account.Role, account.Username, account.ID)
		return nil

	case "list":
		all, err := accounts.ListAll(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tROLE\tCREATED")
		for _, a := range all {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Username, a.Role, a.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()

	case "delete":
		target := *id
		if target == "" {
			if target, err = lookupID(ctx, accounts, *username); err != nil {
				return err
			}
		}
		if err := accounts.Remove(ctx, target); err != nil {
			return err
		}
		fmt.Printf("Deleted account %s\n", target)
		return nil

	default:
		return fmt.Errorf("unknown user command %q", args[0])
	}
}

func lookupID(ctx context.Context, accounts *service.AccountService, username string) (string, error) {
	if username == "" {
		return "", errors.New("either -id or -username is required")
	}
	all, err := accounts.ListAll(ctx)
	if err != nil {
		return "", err
	}
	for _, a := range all {
		if a.Username == username {
			return a.ID, nil
		}
	}
	return "", fmt.Errorf("account %q not found", username)
}

func seedCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	opts := app.SeedOptions{}
	fs.StringVar(&opts.AdminUsername, "admin", "admin", "admin username")
	fs.StringVar(&opts.AdminPassword, "admin-password", os.Getenv("PROJECTHUB_SEED_ADMIN_PASSWORD"), "admin password")
	fs.StringVar(&opts.UserUsername, "user", "user1", "seller username")
	fs.StringVar(&opts.UserPassword, "user-password", os.Getenv("PROJECTHUB_SEED_USER_PASSWORD"), "seller password")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if opts.AdminPassword, err = passwordOrGenerate(opts.AdminPassword, opts.AdminUsername); err != nil {
		return err
	}
	if opts.UserPassword, err = passwordOrGenerate(opts.UserPassword, opts.UserUsername); err != nil {
		return err
	}

	e, err := open(ctx, *configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	report, err := app.Seed(ctx, e.services, e.coord.Locker, opts)
	if err != nil {
		return err
	}
	e.logger.Info().
		Bool("admin_created", report.AdminCreated).
		Bool("user_created", report.UserCreated).
		Int("projects", report.Projects).
		Int("settings", report.Settings).
		Int("sales", report.Sales).
		Msg("database seeded")
	return nil
}
