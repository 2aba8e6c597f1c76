package automation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/mergetag"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

// batchCap bounds per-campaign work within one tick and smooths the send
// rate; it is independent of the daily quota.
const batchCap = 3

// Sender hands a rendered email off for delivery. The outcome resolves
// asynchronously; Deliver only fails when the handoff itself does.
type Sender interface {
	Deliver(ctx context.Context, email *models.Email, lead *models.Lead) error
}

// SettingsSource yields the current automation settings
type SettingsSource interface {
	Get() (models.Settings, error)
}

// QuotaCounter tracks sends against the daily quota
type QuotaCounter interface {
	SentToday() int
	AddSent(n int)
}

// Dispatcher selects eligible leads for each active campaign, renders the
// campaign's template against them and hands the result to the sender.
type Dispatcher struct {
	campaigns *repository.CampaignRepository
	leads     *repository.LeadRepository
	templates *repository.TemplateRepository
	emails    *repository.EmailRepository
	settings  SettingsSource
	sender    Sender
	quota     QuotaCounter
	activity  *activity.Logger
	metrics   *metrics.Metrics
	logger    *slog.Logger

	now func() time.Time
}

// DispatcherConfig wires the dispatcher's collaborators
type DispatcherConfig struct {
	Campaigns *repository.CampaignRepository
	Leads     *repository.LeadRepository
	Templates *repository.TemplateRepository
	Emails    *repository.EmailRepository
	Settings  SettingsSource
	Sender    Sender
	Quota     QuotaCounter
	Activity  *activity.Logger
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		campaigns: cfg.Campaigns,
		leads:     cfg.Leads,
		templates: cfg.Templates,
		emails:    cfg.Emails,
		settings:  cfg.Settings,
		sender:    cfg.Sender,
		quota:     cfg.Quota,
		activity:  cfg.Activity,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With("component", "dispatcher"),
		now:       time.Now,
	}
}

// ProcessQueue runs one tick of campaign processing. With no active
// campaigns it returns before the gate is consulted; with the gate closed
// it returns with no side effects.
func (d *Dispatcher) ProcessQueue(ctx context.Context) error {
	campaigns, err := d.campaigns.List()
	if err != nil {
		return fmt.Errorf("failed to load campaigns: %w", err)
	}

	active := campaigns[:0:0]
	for _, c := range campaigns {
		if c.Status == models.CampaignStatusActive {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		d.metrics.TicksSkippedTotal.WithLabelValues("no_active_campaigns").Inc()
		return nil
	}

	settings, err := d.settings.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if !CanSendNow(d.now(), &settings, d.quota.SentToday()) {
		d.metrics.TicksSkippedTotal.WithLabelValues("gate_closed").Inc()
		return nil
	}

	for i := range active {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d.processCampaign(ctx, &active[i], &settings)
	}

	return nil
}

// processCampaign dispatches up to batchCap untouched leads for one
// campaign. Side effects are per-lead, not transactional: a failure
// partway leaves earlier leads marked sent and counted.
func (d *Dispatcher) processCampaign(ctx context.Context, campaign *models.Campaign, settings *models.Settings) {
	leads, err := d.leads.List(models.LeadFilter{})
	if err != nil {
		d.logger.Error("failed to load leads", "campaign_id", campaign.ID, "error", err)
		return
	}

	alreadySent, err := d.campaigns.SentLeadIDs(campaign.ID)
	if err != nil {
		d.logger.Error("failed to load send markers", "campaign_id", campaign.ID, "error", err)
		return
	}

	batch := make([]models.Lead, 0, batchCap)
	for _, lead := range filterLeads(leads, campaign.LeadsFilter) {
		if alreadySent[lead.ID] {
			continue
		}
		batch = append(batch, lead)
		if len(batch) == batchCap {
			break
		}
	}
	if len(batch) == 0 {
		return
	}

	tmpl, err := d.templates.GetByID(campaign.TemplateID)
	if err != nil {
		d.logger.Error("failed to load template", "template_id", campaign.TemplateID, "error", err)
		return
	}
	if tmpl == nil {
		// Template was deleted; skip the campaign this tick.
		d.activity.Warning(fmt.Sprintf("Campaign %q references a missing template", campaign.Name))
		return
	}

	processed := 0
	for i := range batch {
		// The batch cap does not override the daily quota.
		if d.quota.SentToday() >= settings.DailySendLimit {
			break
		}

		lead := &batch[i]
		email := &models.Email{
			LeadID:     lead.ID,
			CampaignID: campaign.ID,
			Subject:    mergetag.Render(tmpl.Subject, lead),
			Body:       renderBody(tmpl.Body, lead, settings),
			Status:     models.EmailStatusSent,
			SentAt:     d.now(),
		}

		if err := d.emails.Create(email); err != nil {
			d.logger.Error("failed to record email", "lead_id", lead.ID, "error", err)
			return
		}

		if err := d.sender.Deliver(ctx, email, lead); err != nil {
			d.logger.Error("delivery handoff failed", "email_id", email.ID, "error", err)
		}

		if err := d.campaigns.MarkSent(campaign.ID, lead.ID); err != nil {
			d.logger.Error("failed to mark lead sent", "lead_id", lead.ID, "campaign_id", campaign.ID, "error", err)
		}

		d.quota.AddSent(1)
		d.metrics.EmailsSentTotal.Inc()
		d.activity.Success("Email sent to " + lead.Email)
		processed++
	}

	if processed > 0 {
		if err := d.campaigns.AddSentCount(campaign.ID, processed); err != nil {
			d.logger.Error("failed to update campaign counters", "campaign_id", campaign.ID, "error", err)
		}
	}
}

// filterLeads applies a campaign's lead-filter selector. The targeted
// marker used by "untargeted" is a generic flag on the lead, distinct
// from per-campaign send markers.
func filterLeads(leads []models.Lead, filter string) []models.Lead {
	switch filter {
	case models.LeadsFilterActive:
		out := leads[:0:0]
		for _, l := range leads {
			if l.Status == models.LeadStatusActive {
				out = append(out, l)
			}
		}
		return out
	case models.LeadsFilterUntargeted:
		out := leads[:0:0]
		for _, l := range leads {
			if !l.Targeted {
				out = append(out, l)
			}
		}
		return out
	default:
		return leads
	}
}

func renderBody(body string, lead *models.Lead, settings *models.Settings) string {
	out := mergetag.Render(body, lead)
	if settings.Signature != "" {
		out += "\n\n" + settings.Signature
	}
	if settings.UnsubscribeLink {
		out += "\n\nIf you'd rather not hear from us, reply with \"unsubscribe\"."
	}
	return out
}
