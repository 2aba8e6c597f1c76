package models

import "time"

// Email statuses. Every email starts as sent; the delivery simulator
// later resolves it to delivered or failed.
const (
	EmailStatusSent      = "sent"
	EmailStatusDelivered = "delivered"
	EmailStatusFailed    = "failed"
)

// Email is one rendered send attempt for a lead within a campaign
type Email struct {
	ID         int64      `json:"id"`
	LeadID     int64      `json:"lead_id"`
	CampaignID int64      `json:"campaign_id"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	SentAt     time.Time  `json:"sent_at"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
}

// EmailFilter for listing emails
type EmailFilter struct {
	CampaignID int64
	LeadID     int64
	Status     string
	Limit      int
	Offset     int
}
