package models

// Stats holds derived dashboard counters recomputed from store contents.
// QueueDepth is the documented approximation max(0, totalLeads-emailsSent),
// not an exact pending count.
type Stats struct {
	TotalLeads      int `json:"total_leads"`
	EmailsSent      int `json:"emails_sent"`
	SuccessRate     int `json:"success_rate"` // percent
	ActiveCampaigns int `json:"active_campaigns"`
	QueueDepth      int `json:"queue_depth"`
	SentToday       int `json:"sent_today"`
}

// Analytics holds the simulated engagement rates shown on the analytics
// page. Clicked and responses are estimates derived from opens.
type Analytics struct {
	OpenRate     int `json:"open_rate"`     // percent
	ClickRate    int `json:"click_rate"`    // percent
	ResponseRate int `json:"response_rate"` // percent
	BounceRate   int `json:"bounce_rate"`   // percent
}
