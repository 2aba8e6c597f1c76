package models

// Settings is the process-wide automation configuration, persisted as a
// single document and mutated only through an explicit save.
type Settings struct {
	DailySendLimit      int      `json:"daily_send_limit"`
	SendIntervalSeconds int      `json:"send_interval_seconds"`
	WorkingHoursStart   int      `json:"working_hours_start"` // 0-23
	WorkingHoursEnd     int      `json:"working_hours_end"`   // 0-23, exclusive
	WorkingDays         []string `json:"working_days"`        // lowercase English names
	Signature           string   `json:"signature"`
	UnsubscribeLink     bool     `json:"unsubscribe_link"`
	TrackOpens          bool     `json:"track_opens"`
}

// DefaultSettings returns the documented defaults used for unset keys
func DefaultSettings() Settings {
	return Settings{
		DailySendLimit:      500,
		SendIntervalSeconds: 30,
		WorkingHoursStart:   9,
		WorkingHoursEnd:     17,
		WorkingDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Signature:           "Best regards,\nYour Marketing Team",
		UnsubscribeLink:     true,
		TrackOpens:          true,
	}
}

// WorksOn reports whether day (lowercase English weekday) is a working day
func (s *Settings) WorksOn(day string) bool {
	for _, d := range s.WorkingDays {
		if d == day {
			return true
		}
	}
	return false
}
