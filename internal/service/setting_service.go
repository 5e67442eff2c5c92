package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/repository"
)

// SettingService handles the key/value storefront settings.
type SettingService struct {
	settingRepo repository.SettingRepository
	guard       *auth.Guard
	cache       jsonCache
	logger      zerolog.Logger
}

// NewSettingService creates a new SettingService. cache may be nil.
func NewSettingService(
	settingRepo repository.SettingRepository,
	guard *auth.Guard,
	cache repository.Cache,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *SettingService {
	logger = logger.With().Str("service", "setting").Logger()
	return &SettingService{
		settingRepo: settingRepo,
		guard:       guard,
		cache:       jsonCache{cache: cache, metrics: m, logger: logger},
		logger:      logger,
	}
}

// All returns every setting as a key to value map.
func (s *SettingService) All(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}
	if s.cache.get(ctx, repository.CacheKeys.Settings(), &values) {
		return values, nil
	}

	settings, err := s.settingRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list settings")
		return nil, internalError(err)
	}

	values = make(map[string]string, len(settings))
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}

	s.cache.set(ctx, repository.CacheKeys.Settings(), values, settingsCacheTTL)
	return values, nil
}

// Get returns a single setting.
func (s *SettingService) Get(ctx context.Context, key string) (*domain.SiteSetting, error) {
	setting, err := s.settingRepo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("failed to get setting")
		return nil, internalError(err)
	}
	return setting, nil
}

// Upsert creates or replaces one setting. Admin only.
func (s *SettingService) Upsert(ctx context.Context, session *auth.Session, key, value string) (*domain.SiteSetting, error) {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return nil, err
	}
	if err := domain.ValidateSettingKey(key); err != nil {
		return nil, err
	}

	setting, err := s.settingRepo.Upsert(ctx, key, value)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to upsert setting")
		return nil, internalError(err)
	}

	s.cache.invalidate(ctx, repository.CacheKeys.Settings())
	return setting, nil
}

// UpsertMany applies every pair in one transaction. Admin only.
func (s *SettingService) UpsertMany(ctx context.Context, session *auth.Session, values map[string]string) error {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return err
	}
	return s.Apply(ctx, values)
}

// Apply upserts values without an authorization check. It backs the seed command.
func (s *SettingService) Apply(ctx context.Context, values map[string]string) error {
	for key := range values {
		if err := domain.ValidateSettingKey(key); err != nil {
			return err
		}
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.settingRepo.UpsertMany(ctx, values); err != nil {
		s.logger.Error().Err(err).Int("count", len(values)).Msg("failed to upsert settings")
		return internalError(err)
	}

	s.cache.invalidate(ctx, repository.CacheKeys.Settings())
	s.logger.Info().Int("count", len(values)).Msg("settings updated")
	return nil
}
