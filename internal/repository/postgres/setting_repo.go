package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// settingRepository implements repository.SettingRepository.
type settingRepository struct {
	db *DB
}

// NewSettingRepository creates a new PostgreSQL setting repository.
func NewSettingRepository(db *DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

const upsertSettingQuery = `
	INSERT INTO site_settings (key, value, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

func scanSetting(row pgx.Row) (*domain.SiteSetting, error) {
	s := &domain.SiteSetting{}
	if err := row.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

// Get retrieves a single setting by key.
func (r *settingRepository) Get(ctx context.Context, key string) (*domain.SiteSetting, error) {
	s, err := scanSetting(r.db.Pool.QueryRow(ctx,
		`SELECT key, value, updated_at FROM site_settings WHERE key = $1`, key))
	if err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return s, nil
}

// List returns every setting ordered by key.
func (r *settingRepository) List(ctx context.Context) ([]*domain.SiteSetting, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT key, value, updated_at FROM site_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := []*domain.SiteSetting{}
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// Upsert creates the setting or replaces its value in place.
func (r *settingRepository) Upsert(ctx context.Context, key, value string) (*domain.SiteSetting, error) {
	now := time.Now().UTC()
	if _, err := r.db.Pool.Exec(ctx, upsertSettingQuery, key, value, now); err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return &domain.SiteSetting{Key: key, Value: value, UpdatedAt: now}, nil
}

// UpsertMany writes every pair in a single batched transaction.
func (r *settingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	now := time.Now().UTC()
	return r.db.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for key, value := range values {
			batch.Queue(upsertSettingQuery, key, value, now)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert settings: %w", err)
		}
		return nil
	})
}

// Ensure settingRepository implements repository.SettingRepository.
var _ repository.SettingRepository = (*settingRepository)(nil)
