package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a new template and assigns its store identity
func (r *TemplateRepository) Create(t *models.Template) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Tone == "" {
		t.Tone = "professional"
	}

	res, err := r.db.Exec(`
		INSERT INTO templates (name, subject, body, tone, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.Name, t.Subject, t.Body, t.Tone, t.Tags, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	t.ID, err = res.LastInsertId()
	return err
}

// GetByID returns a template by ID, or nil when not found
func (r *TemplateRepository) GetByID(id int64) (*models.Template, error) {
	t := &models.Template{}
	err := r.db.QueryRow(`
		SELECT id, name, subject, body, tone, COALESCE(tags, '[]'), created_at
		FROM templates WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Tone, &t.Tags, &t.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all templates in store order
func (r *TemplateRepository) List() ([]models.Template, error) {
	rows, err := r.db.Query(`
		SELECT id, name, subject, body, tone, COALESCE(tags, '[]'), created_at
		FROM templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.Tone, &t.Tags, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// Delete deletes a template
func (r *TemplateRepository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM templates WHERE id = ?", id)
	return err
}

// Clear removes all templates
func (r *TemplateRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM templates")
	return err
}

// Count returns the total number of templates
func (r *TemplateRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&n)
	return n, err
}
