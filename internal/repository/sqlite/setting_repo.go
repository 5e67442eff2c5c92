package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// settingRepository implements repository.SettingRepository for SQLite.
type settingRepository struct {
	db *DB
}

// NewSettingRepository creates a new SQLite setting repository.
func NewSettingRepository(db *DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

const upsertSettingQuery = `
	INSERT INTO site_settings (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

func scanSetting(row rowScanner) (*domain.SiteSetting, error) {
	s := &domain.SiteSetting{}
	var updatedAt string
	if err := row.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = parseTime(updatedAt)
	return s, nil
}

// Get retrieves a single setting by key.
func (r *settingRepository) Get(ctx context.Context, key string) (*domain.SiteSetting, error) {
	s, err := scanSetting(r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM site_settings WHERE key = ?`, key))
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
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, updated_at FROM site_settings ORDER BY key`)
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
	if _, err := r.db.ExecContext(ctx, upsertSettingQuery, key, value, formatTime(now)); err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}
	return &domain.SiteSetting{Key: key, Value: value, UpdatedAt: now}, nil
}

// UpsertMany writes every pair in a single transaction.
func (r *settingRepository) UpsertMany(ctx context.Context, values map[string]string) error {
	now := formatTime(time.Now().UTC())
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertSettingQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for key, value := range values {
			if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
				return fmt.Errorf("failed to upsert setting %q: %w", key, err)
			}
		}
		return nil
	})
}

// Ensure settingRepository implements repository.SettingRepository.
var _ repository.SettingRepository = (*settingRepository)(nil)
