package delivery

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

// SettingsSource provides the current automation settings.
type SettingsSource interface {
	Get() (models.Settings, error)
}

// Config controls the simulated delivery outcomes.
type Config struct {
	// DeliveredRate is the probability a sent email resolves to delivered.
	DeliveredRate float64
	// OpenRate is the probability a delivered email is eventually opened.
	OpenRate float64
	// MaxOpenDelay bounds how long after delivery an open event fires.
	MaxOpenDelay time.Duration
}

// DefaultConfig returns the standard simulation rates
func DefaultConfig() Config {
	return Config{
		DeliveredRate: 0.9,
		OpenRate:      0.2,
		MaxOpenDelay:  60 * time.Second,
	}
}

// Simulator stands in for a real email transport. Every message is captured
// to the outbox, then resolved to delivered or failed according to the
// configured rates. Opens fire on a delayed timer and are discarded if the
// email record no longer exists by then.
type Simulator struct {
	cfg       Config
	emails    *repository.EmailRepository
	campaigns *repository.CampaignRepository
	settings  SettingsSource
	outbox    *Outbox
	activity  *activity.Logger
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	timers map[int64]*time.Timer
	closed bool
}

// SimulatorDeps bundles the collaborators a Simulator needs.
type SimulatorDeps struct {
	Emails    *repository.EmailRepository
	Campaigns *repository.CampaignRepository
	Settings  SettingsSource
	Outbox    *Outbox
	Activity  *activity.Logger
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewSimulator creates a delivery simulator
func NewSimulator(cfg Config, deps SimulatorDeps) *Simulator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Simulator{
		cfg:       cfg,
		emails:    deps.Emails,
		campaigns: deps.Campaigns,
		settings:  deps.Settings,
		outbox:    deps.Outbox,
		activity:  deps.Activity,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "delivery"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		timers:    make(map[int64]*time.Timer),
	}
}

// Deliver resolves the outcome for a freshly created email record. The
// record is captured to the outbox, then flipped to delivered or failed.
// Delivered emails may later receive an open event.
func (s *Simulator) Deliver(ctx context.Context, email *models.Email, lead *models.Lead) error {
	if s.outbox != nil {
		msg := &Message{
			ID:         uuid.New().String(),
			EmailID:    email.ID,
			CampaignID: email.CampaignID,
			To:         lead.Email,
			Subject:    email.Subject,
			Body:       email.Body,
			CapturedAt: time.Now(),
		}
		if err := s.outbox.Save(ctx, msg); err != nil {
			s.logger.Warn("failed to capture message to outbox", "email_id", email.ID, "error", err)
		}
	}

	if s.roll() < s.cfg.DeliveredRate {
		if err := s.emails.UpdateStatus(email.ID, models.EmailStatusDelivered); err != nil {
			return err
		}
		s.metrics.EmailsDeliveredTotal.Inc()

		if s.shouldOpen() {
			s.scheduleOpen(email.ID, email.CampaignID)
		}
		return nil
	}

	if err := s.emails.UpdateStatus(email.ID, models.EmailStatusFailed); err != nil {
		return err
	}
	s.metrics.EmailsFailedTotal.Inc()
	s.activity.Error("Email failed to send to " + lead.Email)
	return nil
}

// Close cancels all pending open timers. In-flight opens that already
// fired are allowed to finish.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Simulator) shouldOpen() bool {
	settings, err := s.settings.Get()
	if err != nil {
		s.logger.Warn("failed to load settings for open tracking", "error", err)
		return false
	}
	if !settings.TrackOpens {
		return false
	}
	return s.roll() < s.cfg.OpenRate
}

func (s *Simulator) scheduleOpen(emailID, campaignID int64) {
	delay := s.openDelay()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.timers[emailID] = time.AfterFunc(delay, func() {
		s.fireOpen(emailID, campaignID)
	})
}

func (s *Simulator) fireOpen(emailID, campaignID int64) {
	s.mu.Lock()
	delete(s.timers, emailID)
	s.mu.Unlock()

	opened, err := s.emails.MarkOpened(emailID, time.Now())
	if err != nil {
		s.logger.Error("failed to record open event", "email_id", emailID, "error", err)
		return
	}
	if !opened {
		// Record was deleted between delivery and open, drop the event.
		s.logger.Debug("discarding open event for missing email", "email_id", emailID)
		return
	}

	s.metrics.EmailsOpenedTotal.Inc()
	if err := s.campaigns.IncrementOpenedCount(campaignID); err != nil {
		s.logger.Warn("failed to bump campaign open count", "campaign_id", campaignID, "error", err)
	}
}

func (s *Simulator) roll() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Simulator) openDelay() time.Duration {
	if s.cfg.MaxOpenDelay <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.rng.Int63n(int64(s.cfg.MaxOpenDelay) + 1))
}
