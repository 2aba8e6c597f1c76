package models

import "time"

// Lead statuses
const (
	LeadStatusActive       = "active"
	LeadStatusContacted    = "contacted"
	LeadStatusUnsubscribed = "unsubscribed"
)

// Lead represents a prospect the automation can send to
type Lead struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Company  string    `json:"company"`
	Location string    `json:"location"`
	Industry string    `json:"industry"`
	Title    string    `json:"title"`
	Phone    string    `json:"phone"`
	Website  string    `json:"website"`
	Status   string    `json:"status"` // active, contacted, unsubscribed
	Source   string    `json:"source"` // scraping, import, manual, sample
	Tags     string    `json:"tags"`   // JSON array
	Targeted bool      `json:"targeted"`
	Notes    string    `json:"notes"`
	Created  time.Time `json:"created"`
}

// CampaignSend records that a lead has been dispatched for a campaign.
// One row per (campaign, lead) pair; the pair is unique in the store.
type CampaignSend struct {
	CampaignID int64     `json:"campaign_id"`
	LeadID     int64     `json:"lead_id"`
	SentAt     time.Time `json:"sent_at"`
}

// LeadFilter for listing leads
type LeadFilter struct {
	Status string
	Source string
	Search string
	Limit  int
	Offset int
}
