package models

import "time"

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Lead filters a campaign can target
const (
	LeadsFilterAll        = "all"
	LeadsFilterActive     = "active"
	LeadsFilterUntargeted = "untargeted"
)

// Campaign ties a template to a set of leads. SendInterval and DailyLimit
// are a snapshot of the settings at creation time; LeadsCount is fixed at
// creation and not re-evaluated as leads are added later.
type Campaign struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TemplateID   int64     `json:"template_id"`
	LeadsFilter  string    `json:"leads_filter"` // all, active, untargeted
	LeadsCount   int       `json:"leads_count"`
	SentCount    int       `json:"sent_count"`
	OpenedCount  int       `json:"opened_count"`
	ClickedCount int       `json:"clicked_count"`
	Status       string    `json:"status"`
	SendInterval int       `json:"send_interval"` // seconds
	DailyLimit   int       `json:"daily_limit"`
	CreatedAt    time.Time `json:"created_at"`
}
