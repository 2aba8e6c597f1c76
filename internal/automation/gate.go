package automation

import (
	"strings"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

// CanSendNow decides whether the scheduler may dispatch any email this
// tick. It is checked once per tick, globally, not per campaign or lead.
// Working hours form a half-open interval: the end hour itself is outside
// sending time.
func CanSendNow(now time.Time, settings *models.Settings, sentToday int) bool {
	hour := now.Hour()
	if hour < settings.WorkingHoursStart || hour >= settings.WorkingHoursEnd {
		return false
	}

	day := strings.ToLower(now.Weekday().String())
	if !settings.WorksOn(day) {
		return false
	}

	if sentToday >= settings.DailySendLimit {
		return false
	}

	return true
}
