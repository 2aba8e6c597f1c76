package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

// ErrDuplicateEmail is returned when a lead's email collides with an
// existing record. Bulk import paths recover from it by skipping the row.
var ErrDuplicateEmail = errors.New("lead email already exists")

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead and assigns its store identity
func (r *LeadRepository) Create(l *models.Lead) error {
	if l.Created.IsZero() {
		l.Created = time.Now()
	}
	if l.Status == "" {
		l.Status = models.LeadStatusActive
	}

	res, err := r.db.Exec(`
		INSERT INTO leads (name, email, company, location, industry, title, phone, website, status, source, tags, targeted, notes, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Name, l.Email, l.Company, l.Location, l.Industry, l.Title, l.Phone, l.Website, l.Status, l.Source, l.Tags, l.Targeted, l.Notes, l.Created,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}

	l.ID, err = res.LastInsertId()
	return err
}

// GetByID returns a lead by ID, or nil when not found
func (r *LeadRepository) GetByID(id int64) (*models.Lead, error) {
	l := &models.Lead{}
	err := r.db.QueryRow(`
		SELECT id, name, email, company, location, industry, title, phone, website, status, source, COALESCE(tags, '[]'), targeted, COALESCE(notes, ''), created
		FROM leads WHERE id = ?`, id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Location, &l.Industry, &l.Title, &l.Phone, &l.Website, &l.Status, &l.Source, &l.Tags, &l.Targeted, &l.Notes, &l.Created)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List returns leads matching the filter in store order
func (r *LeadRepository) List(filter models.LeadFilter) ([]models.Lead, error) {
	query := `
		SELECT id, name, email, company, location, industry, title, phone, website, status, source, COALESCE(tags, '[]'), targeted, COALESCE(notes, ''), created
		FROM leads WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR email LIKE ? OR company LIKE ?)"
		s := "%" + filter.Search + "%"
		args = append(args, s, s, s)
	}

	query += " ORDER BY id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := []models.Lead{}
	for rows.Next() {
		var l models.Lead
		err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.Company, &l.Location, &l.Industry, &l.Title, &l.Phone, &l.Website, &l.Status, &l.Source, &l.Tags, &l.Targeted, &l.Notes, &l.Created)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}

	return leads, rows.Err()
}

// Update updates a lead
func (r *LeadRepository) Update(l *models.Lead) error {
	_, err := r.db.Exec(`
		UPDATE leads SET name = ?, email = ?, company = ?, location = ?, industry = ?, title = ?, phone = ?, website = ?, status = ?, source = ?, tags = ?, targeted = ?, notes = ?
		WHERE id = ?`,
		l.Name, l.Email, l.Company, l.Location, l.Industry, l.Title, l.Phone, l.Website, l.Status, l.Source, l.Tags, l.Targeted, l.Notes, l.ID,
	)
	return err
}

// Delete deletes a lead
func (r *LeadRepository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM leads WHERE id = ?", id)
	return err
}

// Clear removes all leads
func (r *LeadRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM leads")
	return err
}

// Count returns the total number of leads
func (r *LeadRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM leads").Scan(&n)
	return n, err
}
