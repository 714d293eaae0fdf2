package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingPasswordHash stores the bcrypt hash set through change-password.
const SettingPasswordHash = "password_hash"

// SettingsRepository is a string key/value store.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// PGXSettingsRepository implements SettingsRepository using pgx.
type PGXSettingsRepository struct {
	pool pgxPool
}

// NewPGXSettingsRepository wires a pgx backed repository.
func NewPGXSettingsRepository(pool *pgxpool.Pool) *PGXSettingsRepository {
	return &PGXSettingsRepository{pool: pool}
}

// Get reports the stored value and whether the key exists.
func (r *PGXSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	if err := r.pool.QueryRow(ctx, `SELECT value FROM app_settings WHERE key = $1`, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("query setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set inserts or replaces the value.
func (r *PGXSettingsRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.pool.Exec(ctx, `
        INSERT INTO app_settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `, key, value); err != nil {
		return fmt.Errorf("upsert setting %q: %w", key, err)
	}
	return nil
}
