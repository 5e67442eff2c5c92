// Package app wires configuration, storage, services and the HTTP API
// into a runnable ProjectHub server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/config"
	"github.com/prn-tf/projecthub/internal/handler"
	"github.com/prn-tf/projecthub/internal/lock"
	"github.com/prn-tf/projecthub/internal/mail"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
	"github.com/prn-tf/projecthub/internal/service"
	"github.com/prn-tf/projecthub/internal/storage"
	"github.com/prn-tf/projecthub/internal/storage/filesystem"
)

const (
	migrateLockTTL  = 5 * time.Minute
	migrateLockWait = 2 * time.Minute
)

// Services bundles every domain service.
type Services struct {
	Accounts  *service.AccountService
	Projects  *service.ProjectService
	Messages  *service.MessageService
	Settings  *service.SettingService
	Inquiries *service.InquiryService
	Stats     *service.StatsService
	Uploads   *service.UploadService
}

// ServiceDeps are the collaborators shared by the services.
type ServiceDeps struct {
	Repos         *repository.Repositories
	Cache         repository.Cache
	Backend       storage.Backend
	Notifier      service.Notifier
	MaxUploadSize int64
	Guard         *auth.Guard
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
}

// NewServices builds the services over deps.
func NewServices(deps ServiceDeps) *Services {
	r := deps.Repos
	return &Services{
		Accounts:  service.NewAccountService(r.Account, r.Project, deps.Guard, deps.Metrics, deps.Logger),
		Projects:  service.NewProjectService(r.Project, deps.Guard, deps.Cache, deps.Metrics, deps.Logger),
		Messages:  service.NewMessageService(r.Message, deps.Guard, deps.Notifier, deps.Logger),
		Settings:  service.NewSettingService(r.Setting, deps.Guard, deps.Cache, deps.Metrics, deps.Logger),
		Inquiries: service.NewInquiryService(deps.Notifier, deps.Logger),
		Stats:     service.NewStatsService(r.Project, r.Message, r.Sale, deps.Guard, deps.Logger),
		Uploads:   service.NewUploadService(deps.Backend, deps.MaxUploadSize, deps.Guard, deps.Metrics, deps.Logger),
	}
}

// App is a fully wired server.
type App struct {
	Config       *config.Config
	Database     *Database
	Coordination *Coordination
	Services     *Services
	Metrics      *metrics.Metrics

	handler http.Handler
	logger  zerolog.Logger
}

// New opens every backend named by cfg and builds the HTTP handler.
// On error, anything already opened is closed.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (_ *App, err error) {
	a := &App{Config: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	if a.Database, err = OpenDatabase(ctx, cfg.Database, logger); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if a.Coordination, err = OpenCoordination(ctx, cfg.Redis, logger); err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err = a.migrate(ctx); err != nil {
			return nil, err
		}
	}

	backend, err := OpenStorage(ctx, cfg.Upload, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload storage: %w", err)
	}

	codec, err := auth.NewSessionCodec(auth.CodecConfig{
		HashKey:  []byte(cfg.Session.HashKey),
		BlockKey: []byte(cfg.Session.BlockKey),
		TTL:      cfg.Session.TTL,
		Secure:   cfg.Server.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session codec: %w", err)
	}

	notifier := mail.NewNotifier(mail.New(cfg.Mail, logger), cfg.Mail.AdminEmail, a.Metrics, logger)
	a.Services = NewServices(ServiceDeps{
		Repos:         a.Database.Repos,
		Cache:         a.Coordination.Cache,
		Backend:       backend,
		Notifier:      notifier,
		MaxUploadSize: cfg.Upload.MaxSize,
		Guard:         auth.NewGuard(a.Metrics),
		Metrics:       a.Metrics,
		Logger:        logger,
	})

	a.handler = a.router(codec, backend).Handler()
	return a, nil
}

// migrate applies pending migrations while holding the migrate lock, so
// replicas starting together do not race.
func (a *App) migrate(ctx context.Context) error {
	err := lock.WithLock(ctx, a.Coordination.Locker, lock.Keys.Migrate(), migrateLockTTL, migrateLockWait,
		func(ctx context.Context) error {
			return a.Database.Migrate(ctx, "up")
		})
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	a.logger.Info().Msg("database migrations applied")
	return nil
}

func (a *App) router(codec *auth.SessionCodec, backend storage.Backend) *handler.Router {
	s := a.Services
	dashboard := handler.NewDashboardHandler(handler.DashboardConfig{
		ProjectService: s.Projects,
		StatsService:   s.Stats,
		Logger:         a.logger,
	})

	cfg := handler.RouterConfig{
		Auth:        handler.NewAuthHandler(s.Accounts, codec, a.logger),
		Projects:    handler.NewProjectHandler(s.Projects, a.logger),
		Contact:     handler.NewContactHandler(s.Messages, s.Inquiries, a.logger),
		Settings:    handler.NewSettingHandler(s.Settings, a.logger),
		Users:       handler.NewUserHandler(s.Accounts, a.logger),
		Uploads:     handler.NewUploadHandler(s.Uploads, a.logger),
		Dashboard:   dashboard,
		Codec:       codec,
		Health:      a.Database,
		Metrics:     a.Metrics,
		MetricsPath: a.Config.Metrics.Path,
		Logger:      a.logger,
	}
	if fs, ok := backend.(*filesystem.Backend); ok {
		cfg.UploadsDir = fs.Dir()
		cfg.UploadsURL = a.Config.Upload.PublicPrefix
	}
	return handler.NewRouter(cfg)
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Close releases the cache and database.
func (a *App) Close() error {
	var errs []error
	if a.Coordination != nil {
		errs = append(errs, a.Coordination.Close())
	}
	if a.Database != nil {
		errs = append(errs, a.Database.Close())
	}
	return errors.Join(errs...)
}
