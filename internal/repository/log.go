package repository

import (
	"database/sql"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

type LogRepository struct {
	db *sql.DB
}

func NewLogRepository(db *sql.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Add appends an activity log entry
func (r *LogRepository) Add(e *models.LogEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Level == "" {
		e.Level = models.LogLevelInfo
	}

	res, err := r.db.Exec(`
		INSERT INTO logs (message, level, timestamp) VALUES (?, ?, ?)`,
		e.Message, e.Level, e.Timestamp,
	)
	if err != nil {
		return err
	}

	e.ID, err = res.LastInsertId()
	return err
}

// Recent returns the newest entries, most recent first
func (r *LogRepository) Recent(limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, message, level, timestamp
		FROM logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.Message, &e.Level, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// All returns every log entry in store order
func (r *LogRepository) All() ([]models.LogEntry, error) {
	rows, err := r.db.Query("SELECT id, message, level, timestamp FROM logs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.Message, &e.Level, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear removes all log entries
func (r *LogRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM logs")
	return err
}
