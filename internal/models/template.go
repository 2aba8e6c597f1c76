package models

import "time"

// Template is an email template with merge-tag placeholders in the
// subject and body ({name}, {company}, {location}, {industry}, {title}).
type Template struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Tone      string    `json:"tone"` // professional, friendly, casual, sales
	Tags      string    `json:"tags"` // JSON array
	CreatedAt time.Time `json:"created_at"`
}
