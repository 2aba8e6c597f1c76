package models

import "time"

// Activity log levels
const (
	LogLevelInfo    = "info"
	LogLevelSuccess = "success"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// LogEntry is one activity/audit record
type LogEntry struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}
