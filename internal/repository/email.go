package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

type EmailRepository struct {
	db *sql.DB
}

func NewEmailRepository(db *sql.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// Create inserts a new sent-email record and assigns its store identity
func (r *EmailRepository) Create(e *models.Email) error {
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}
	if e.Status == "" {
		e.Status = models.EmailStatusSent
	}

	res, err := r.db.Exec(`
		INSERT INTO emails (lead_id, campaign_id, subject, body, status, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.LeadID, e.CampaignID, e.Subject, e.Body, e.Status, e.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create email: %w", err)
	}

	e.ID, err = res.LastInsertId()
	return err
}

// GetByID returns an email by ID, or nil when not found
func (r *EmailRepository) GetByID(id int64) (*models.Email, error) {
	e := &models.Email{}
	var openedAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, lead_id, campaign_id, subject, body, status, sent_at, opened_at
		FROM emails WHERE id = ?`, id,
	).Scan(&e.ID, &e.LeadID, &e.CampaignID, &e.Subject, &e.Body, &e.Status, &e.SentAt, &openedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if openedAt.Valid {
		e.OpenedAt = &openedAt.Time
	}
	return e, nil
}

// List returns emails matching the filter, newest first
func (r *EmailRepository) List(filter models.EmailFilter) ([]models.Email, error) {
	query := `
		SELECT id, lead_id, campaign_id, subject, body, status, sent_at, opened_at
		FROM emails WHERE 1=1`
	args := []any{}

	if filter.CampaignID > 0 {
		query += " AND campaign_id = ?"
		args = append(args, filter.CampaignID)
	}
	if filter.LeadID > 0 {
		query += " AND lead_id = ?"
		args = append(args, filter.LeadID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY sent_at DESC"

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

	emails := []models.Email{}
	for rows.Next() {
		var e models.Email
		var openedAt sql.NullTime
		err := rows.Scan(&e.ID, &e.LeadID, &e.CampaignID, &e.Subject, &e.Body, &e.Status, &e.SentAt, &openedAt)
		if err != nil {
			return nil, err
		}
		if openedAt.Valid {
			e.OpenedAt = &openedAt.Time
		}
		emails = append(emails, e)
	}

	return emails, rows.Err()
}

// UpdateStatus resolves an email's delivery outcome
func (r *EmailRepository) UpdateStatus(id int64, status string) error {
	_, err := r.db.Exec("UPDATE emails SET status = ? WHERE id = ?", status, id)
	return err
}

// MarkOpened records a simulated open event. It reports whether the
// record still existed; a stale event on a deleted record is discarded.
func (r *EmailRepository) MarkOpened(id int64, at time.Time) (bool, error) {
	res, err := r.db.Exec("UPDATE emails SET opened_at = ? WHERE id = ?", at, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountSent returns the number of emails with status sent or delivered
func (r *EmailRepository) CountSent() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emails WHERE status IN ('sent', 'delivered')").Scan(&n)
	return n, err
}

// CountByStatus returns the number of emails with the given status
func (r *EmailRepository) CountByStatus(status string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emails WHERE status = ?", status).Scan(&n)
	return n, err
}

// CountOpened returns the number of emails with a recorded open
func (r *EmailRepository) CountOpened() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emails WHERE opened_at IS NOT NULL").Scan(&n)
	return n, err
}

// Count returns the total number of emails
func (r *EmailRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM emails").Scan(&n)
	return n, err
}

// Clear removes all emails
func (r *EmailRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM emails")
	return err
}
