package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
)

// SettingRepository provides access to the global_setting key/value table.
type SettingRepository struct {
	db DBTX
}

// NewSettingRepository creates a new SettingRepository with the provided database connection.
func NewSettingRepository(db DBTX) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get retrieves a setting value by key.
func (r *SettingRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM global_setting WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// Set writes a setting value, replacing any existing value for the key.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO global_setting (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}
