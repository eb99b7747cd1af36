package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubselect/clubselect-api/internal/models"
)

// SettingRepository handles persistence of site settings.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns a setting by its key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, value FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert writes the value for a key, creating it when absent.
func (r *SettingRepository) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	const query = `INSERT INTO settings (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
        RETURNING key, value`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key, value); err != nil {
		return nil, fmt.Errorf("upsert setting: %w", err)
	}
	return &setting, nil
}
