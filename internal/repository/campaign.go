package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a new campaign and assigns its store identity
func (r *CampaignRepository) Create(c *models.Campaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.Status == "" {
		c.Status = models.CampaignStatusDraft
	}
	if c.LeadsFilter == "" {
		c.LeadsFilter = models.LeadsFilterAll
	}

	res, err := r.db.Exec(`
		INSERT INTO campaigns (name, template_id, leads_filter, leads_count, sent_count, opened_count, clicked_count, status, send_interval, daily_limit, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.TemplateID, c.LeadsFilter, c.LeadsCount, c.SentCount, c.OpenedCount, c.ClickedCount, c.Status, c.SendInterval, c.DailyLimit, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	c.ID, err = res.LastInsertId()
	return err
}

// GetByID returns a campaign by ID, or nil when not found
func (r *CampaignRepository) GetByID(id int64) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := r.db.QueryRow(`
		SELECT id, name, template_id, leads_filter, leads_count, sent_count, opened_count, clicked_count, status, send_interval, daily_limit, created_at
		FROM campaigns WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.TemplateID, &c.LeadsFilter, &c.LeadsCount, &c.SentCount, &c.OpenedCount, &c.ClickedCount, &c.Status, &c.SendInterval, &c.DailyLimit, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all campaigns in store order
func (r *CampaignRepository) List() ([]models.Campaign, error) {
	rows, err := r.db.Query(`
		SELECT id, name, template_id, leads_filter, leads_count, sent_count, opened_count, clicked_count, status, send_interval, daily_limit, created_at
		FROM campaigns ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(&c.ID, &c.Name, &c.TemplateID, &c.LeadsFilter, &c.LeadsCount, &c.SentCount, &c.OpenedCount, &c.ClickedCount, &c.Status, &c.SendInterval, &c.DailyLimit, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

// UpdateStatus changes a campaign's status
func (r *CampaignRepository) UpdateStatus(id int64, status string) error {
	_, err := r.db.Exec("UPDATE campaigns SET status = ? WHERE id = ?", status, id)
	return err
}

// AddSentCount increments a campaign's sent counter by n
func (r *CampaignRepository) AddSentCount(id int64, n int) error {
	_, err := r.db.Exec("UPDATE campaigns SET sent_count = sent_count + ? WHERE id = ?", n, id)
	return err
}

// IncrementOpenedCount bumps a campaign's opened counter
func (r *CampaignRepository) IncrementOpenedCount(id int64) error {
	_, err := r.db.Exec("UPDATE campaigns SET opened_count = opened_count + 1 WHERE id = ?", id)
	return err
}

// Delete deletes a campaign (its send markers cascade)
func (r *CampaignRepository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM campaigns WHERE id = ?", id)
	return err
}

// Clear removes all campaigns
func (r *CampaignRepository) Clear() error {
	_, err := r.db.Exec("DELETE FROM campaigns")
	return err
}

// CountByStatus returns the number of campaigns with the given status
func (r *CampaignRepository) CountByStatus(status string) (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM campaigns WHERE status = ?", status).Scan(&n)
	return n, err
}

// MarkSent records that a lead has been dispatched for a campaign. A
// repeated mark for the same pair is not an error.
func (r *CampaignRepository) MarkSent(campaignID, leadID int64) error {
	_, err := r.db.Exec(`
		INSERT INTO campaign_sends (campaign_id, lead_id, sent_at) VALUES (?, ?, ?)`,
		campaignID, leadID, time.Now(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil
		}
		return fmt.Errorf("failed to mark lead sent: %w", err)
	}
	return nil
}

// SentLeadIDs returns the set of leads already dispatched for a campaign
func (r *CampaignRepository) SentLeadIDs(campaignID int64) (map[int64]bool, error) {
	rows, err := r.db.Query("SELECT lead_id FROM campaign_sends WHERE campaign_id = ?", campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sent := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sent[id] = true
	}

	return sent, rows.Err()
}
