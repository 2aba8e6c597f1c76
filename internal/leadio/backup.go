package leadio

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

const backupVersion = "1.0"

// BackupEnvelope is the full-state export format.
type BackupEnvelope struct {
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Data      BackupData      `json:"data"`
	Settings  models.Settings `json:"settings"`
}

// BackupData holds the dumped store contents.
type BackupData struct {
	Leads     []models.Lead     `json:"leads"`
	Templates []models.Template `json:"templates"`
	Campaigns []models.Campaign `json:"campaigns"`
	Emails    []models.Email    `json:"emails"`
	Logs      []models.LogEntry `json:"logs"`
}

// BackupService writes and restores full-state snapshots. Restore replaces
// everything: existing rows are cleared before the snapshot is loaded.
type BackupService struct {
	db        *sql.DB
	leads     *repository.LeadRepository
	templates *repository.TemplateRepository
	campaigns *repository.CampaignRepository
	emails    *repository.EmailRepository
	logs      *repository.LogRepository
	settings  *repository.SettingsRepository
}

// NewBackupService creates a backup service
func NewBackupService(db *sql.DB, leads *repository.LeadRepository, templates *repository.TemplateRepository, campaigns *repository.CampaignRepository, emails *repository.EmailRepository, logs *repository.LogRepository, settings *repository.SettingsRepository) *BackupService {
	return &BackupService{
		db:        db,
		leads:     leads,
		templates: templates,
		campaigns: campaigns,
		emails:    emails,
		logs:      logs,
		settings:  settings,
	}
}

// Create writes a snapshot of all stores and settings as indented JSON.
func (s *BackupService) Create(w io.Writer) error {
	leads, err := s.leads.List(models.LeadFilter{})
	if err != nil {
		return fmt.Errorf("failed to dump leads: %w", err)
	}
	templates, err := s.templates.List()
	if err != nil {
		return fmt.Errorf("failed to dump templates: %w", err)
	}
	campaigns, err := s.campaigns.List()
	if err != nil {
		return fmt.Errorf("failed to dump campaigns: %w", err)
	}
	emails, err := s.emails.List(models.EmailFilter{})
	if err != nil {
		return fmt.Errorf("failed to dump emails: %w", err)
	}
	logs, err := s.logs.All()
	if err != nil {
		return fmt.Errorf("failed to dump logs: %w", err)
	}
	settings, err := s.settings.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	envelope := BackupEnvelope{
		Timestamp: time.Now().UTC(),
		Version:   backupVersion,
		Data: BackupData{
			Leads:     leads,
			Templates: templates,
			Campaigns: campaigns,
			Emails:    emails,
			Logs:      logs,
		},
		Settings: settings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}

// Restore loads a snapshot, replacing all current data. Record IDs are
// preserved so cross-references between stores stay intact, and the
// campaign send history is rebuilt from the restored emails.
func (s *BackupService) Restore(r io.Reader) error {
	var envelope BackupEnvelope
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	if envelope.Version == "" {
		return errors.New("invalid backup file format")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin restore: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"emails", "campaign_sends", "campaigns", "templates", "leads", "logs"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, l := range envelope.Data.Leads {
		_, err := tx.Exec(
			`INSERT INTO leads (id, name, email, company, location, industry, title, phone, website, status, source, tags, targeted, notes, created)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.Email, l.Company, l.Location, l.Industry, l.Title, l.Phone, l.Website, l.Status, l.Source, l.Tags, l.Targeted, l.Notes, l.Created,
		)
		if err != nil {
			return fmt.Errorf("failed to restore lead %d: %w", l.ID, err)
		}
	}

	for _, t := range envelope.Data.Templates {
		_, err := tx.Exec(
			`INSERT INTO templates (id, name, subject, body, tone, tags, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.Subject, t.Body, t.Tone, t.Tags, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to restore template %d: %w", t.ID, err)
		}
	}

	for _, c := range envelope.Data.Campaigns {
		_, err := tx.Exec(
			`INSERT INTO campaigns (id, name, template_id, leads_filter, leads_count, sent_count, opened_count, clicked_count, status, send_interval, daily_limit, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.TemplateID, c.LeadsFilter, c.LeadsCount, c.SentCount, c.OpenedCount, c.ClickedCount, c.Status, c.SendInterval, c.DailyLimit, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to restore campaign %d: %w", c.ID, err)
		}
	}

	for _, e := range envelope.Data.Emails {
		_, err := tx.Exec(
			`INSERT INTO emails (id, lead_id, campaign_id, subject, body, status, sent_at, opened_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.LeadID, e.CampaignID, e.Subject, e.Body, e.Status, e.SentAt, e.OpenedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to restore email %d: %w", e.ID, err)
		}
	}

	for _, entry := range envelope.Data.Logs {
		_, err := tx.Exec(
			`INSERT INTO logs (id, message, level, timestamp) VALUES (?, ?, ?, ?)`,
			entry.ID, entry.Message, entry.Level, entry.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to restore log %d: %w", entry.ID, err)
		}
	}

	// The send history is not part of the envelope; rebuild it so restored
	// campaigns do not re-send to leads they already reached.
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO campaign_sends (campaign_id, lead_id, sent_at)
		 SELECT campaign_id, lead_id, sent_at FROM emails`,
	)
	if err != nil {
		return fmt.Errorf("failed to rebuild send history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit restore: %w", err)
	}

	if err := s.settings.Save(envelope.Settings); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}
	return nil
}
