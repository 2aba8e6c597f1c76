package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

const settingsKey = "automation"

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get loads the settings document. Unset keys keep their defaults; a
// missing document returns the defaults unchanged.
func (r *SettingsRepository) Get() (models.Settings, error) {
	settings := models.DefaultSettings()

	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", settingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// Save persists the settings document
func (r *SettingsRepository) Save(s models.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		settingsKey, string(data), time.Now(),
	)
	return err
}

// Reset restores the documented defaults
func (r *SettingsRepository) Reset() error {
	return r.Save(models.DefaultSettings())
}
