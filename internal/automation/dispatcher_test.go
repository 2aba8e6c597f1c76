package automation

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

// setupTestDB creates an in-memory SQLite database with all migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	for _, m := range db.Migrations {
		if _, err := conn.Exec(m); err != nil {
			t.Fatalf("migration failed: %v", err)
		}
	}
	return conn
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openSettings allows sending at any hour on any day
func openSettings() models.Settings {
	return models.Settings{
		DailySendLimit:      500,
		SendIntervalSeconds: 30,
		WorkingHoursStart:   0,
		WorkingHoursEnd:     24,
		WorkingDays:         []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		Signature:           "Best regards,\nYour Marketing Team",
		UnsubscribeLink:     true,
		TrackOpens:          true,
	}
}

type stubSettings struct {
	settings models.Settings
	calls    int
}

func (s *stubSettings) Get() (models.Settings, error) {
	s.calls++
	return s.settings, nil
}

type fakeQuota struct{ sent int }

func (q *fakeQuota) SentToday() int { return q.sent }
func (q *fakeQuota) AddSent(n int)  { q.sent += n }

type recordingSender struct {
	delivered []string
}

func (r *recordingSender) Deliver(ctx context.Context, email *models.Email, lead *models.Lead) error {
	r.delivered = append(r.delivered, lead.Email)
	return nil
}

type dispatcherEnv struct {
	dispatcher *Dispatcher
	leads      *repository.LeadRepository
	templates  *repository.TemplateRepository
	campaigns  *repository.CampaignRepository
	emails     *repository.EmailRepository
	logs       *repository.LogRepository
	settings   *stubSettings
	quota      *fakeQuota
	sender     *recordingSender
}

func newDispatcherEnv(t *testing.T, settings models.Settings) *dispatcherEnv {
	t.Helper()

	conn := setupTestDB(t)
	env := &dispatcherEnv{
		leads:     repository.NewLeadRepository(conn),
		templates: repository.NewTemplateRepository(conn),
		campaigns: repository.NewCampaignRepository(conn),
		emails:    repository.NewEmailRepository(conn),
		logs:      repository.NewLogRepository(conn),
		settings:  &stubSettings{settings: settings},
		quota:     &fakeQuota{},
		sender:    &recordingSender{},
	}

	env.dispatcher = NewDispatcher(DispatcherConfig{
		Campaigns: env.campaigns,
		Leads:     env.leads,
		Templates: env.templates,
		Emails:    env.emails,
		Settings:  env.settings,
		Sender:    env.sender,
		Quota:     env.quota,
		Activity:  activity.New(env.logs, testLogger()),
		Metrics:   metrics.New(),
		Logger:    testLogger(),
	})
	// Monday mid-morning
	env.dispatcher.now = func() time.Time {
		return time.Date(2025, 7, 21, 10, 0, 0, 0, time.UTC)
	}
	return env
}

func (env *dispatcherEnv) addLead(t *testing.T, email string, mutate func(*models.Lead)) *models.Lead {
	t.Helper()

	lead := &models.Lead{
		Name:    "Lead " + email,
		Email:   email,
		Company: "TechCorp",
		Status:  models.LeadStatusActive,
		Source:  "manual",
		Created: time.Now(),
	}
	if mutate != nil {
		mutate(lead)
	}
	if err := env.leads.Create(lead); err != nil {
		t.Fatalf("failed to create lead: %v", err)
	}
	return lead
}

func (env *dispatcherEnv) addCampaign(t *testing.T, templateID int64, filter string) *models.Campaign {
	t.Helper()

	campaign := &models.Campaign{
		Name:        "Launch",
		TemplateID:  templateID,
		LeadsFilter: filter,
		Status:      models.CampaignStatusActive,
		CreatedAt:   time.Now(),
	}
	if err := env.campaigns.Create(campaign); err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}
	return campaign
}

func (env *dispatcherEnv) addTemplate(t *testing.T) *models.Template {
	t.Helper()

	tpl := &models.Template{
		Name:      "Outreach",
		Subject:   "Hello {name}",
		Body:      "Hi {name} at {company}",
		Tone:      "professional",
		CreatedAt: time.Now(),
	}
	if err := env.templates.Create(tpl); err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	return tpl
}

func TestProcessQueueBatchSequence(t *testing.T) {
	env := newDispatcherEnv(t, openSettings())
	tpl := env.addTemplate(t)
	env.addCampaign(t, tpl.ID, models.LeadsFilterAll)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		env.addLead(t, email, nil)
	}

	// Five leads against a batch cap of three: 3, then 2, then 0.
	for i, want := range []int{3, 2, 0} {
		before := len(env.sender.delivered)
		if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
			t.Fatalf("tick %d: ProcessQueue: %v", i+1, err)
		}
		if got := len(env.sender.delivered) - before; got != want {
			t.Errorf("tick %d: sent %d emails, want %d", i+1, got, want)
		}
	}

	count, err := env.emails.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 5 {
		t.Errorf("stored %d emails, want 5", count)
	}
}

func TestProcessQueueNoDuplicateSends(t *testing.T) {
	env := newDispatcherEnv(t, openSettings())
	tpl := env.addTemplate(t)
	campaign := env.addCampaign(t, tpl.ID, models.LeadsFilterAll)
	lead := env.addLead(t, "solo@x.com", nil)

	for i := 0; i < 3; i++ {
		if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
			t.Fatalf("ProcessQueue: %v", err)
		}
	}

	if len(env.sender.delivered) != 1 {
		t.Errorf("lead received %d emails, want 1", len(env.sender.delivered))
	}

	sent, err := env.campaigns.SentLeadIDs(campaign.ID)
	if err != nil {
		t.Fatalf("SentLeadIDs: %v", err)
	}
	if !sent[lead.ID] {
		t.Error("lead not marked as sent for the campaign")
	}
}

func TestProcessQueueDailyLimitWithinBatch(t *testing.T) {
	settings := openSettings()
	settings.DailySendLimit = 2
	env := newDispatcherEnv(t, settings)
	tpl := env.addTemplate(t)
	env.addCampaign(t, tpl.ID, models.LeadsFilterAll)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		env.addLead(t, email, nil)
	}

	if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("ProcessQueue: %v", err)
	}

	// The third batch slot is withheld once the quota is reached.
	if len(env.sender.delivered) != 2 {
		t.Errorf("sent %d emails, want 2", len(env.sender.delivered))
	}
	if env.quota.SentToday() != 2 {
		t.Errorf("quota counter = %d, want 2", env.quota.SentToday())
	}
}

func TestProcessQueueGateClosed(t *testing.T) {
	env := newDispatcherEnv(t, openSettings())
	tpl := env.addTemplate(t)
	env.addCampaign(t, tpl.ID, models.LeadsFilterAll)
	env.addLead(t, "a@x.com", nil)

	// Sunday with a weekday-only schedule
	env.settings.settings.WorkingDays = []string{"monday"}
	env.dispatcher.now = func() time.Time {
		return time.Date(2025, 7, 27, 10, 0, 0, 0, time.UTC)
	}

	if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("ProcessQueue: %v", err)
	}
	if len(env.sender.delivered) != 0 {
		t.Errorf("sent %d emails with the gate closed, want 0", len(env.sender.delivered))
	}
}

func TestProcessQueueNoActiveCampaigns(t *testing.T) {
	env := newDispatcherEnv(t, openSettings())
	tpl := env.addTemplate(t)
	campaign := env.addCampaign(t, tpl.ID, models.LeadsFilterAll)
	env.addLead(t, "a@x.com", nil)

	if err := env.campaigns.UpdateStatus(campaign.ID, models.CampaignStatusPaused); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("ProcessQueue: %v", err)
	}

	if len(env.sender.delivered) != 0 {
		t.Errorf("sent %d emails without active campaigns, want 0", len(env.sender.delivered))
	}
	// The active-campaigns check comes before the gate, so settings are
	// never consulted.
	if env.settings.calls != 0 {
		t.Errorf("settings consulted %d times, want 0", env.settings.calls)
	}
}

func TestProcessQueueMissingTemplate(t *testing.T) {
	env := newDispatcherEnv(t, openSettings())
	env.addCampaign(t, 999, models.LeadsFilterAll)
	env.addLead(t, "a@x.com", nil)

	if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
		t.Fatalf("ProcessQueue: %v", err)
	}
	if len(env.sender.delivered) != 0 {
		t.Errorf("sent %d emails for a campaign with a missing template, want 0", len(env.sender.delivered))
	}

	entries, err := env.logs.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Level == models.LogLevelWarning && strings.Contains(e.Message, "missing template") {
			found = true
		}
	}
	if !found {
		t.Error("expected a warning activity entry about the missing template")
	}
}

func TestProcessQueueLeadFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{"active only", models.LeadsFilterActive, []string{"active@x.com", "targeted@x.com"}},
		{"untargeted only", models.LeadsFilterUntargeted, []string{"active@x.com", "contacted@x.com"}},
		{"all", models.LeadsFilterAll, []string{"active@x.com", "contacted@x.com", "targeted@x.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDispatcherEnv(t, openSettings())
			tpl := env.addTemplate(t)
			env.addCampaign(t, tpl.ID, tt.filter)

			env.addLead(t, "active@x.com", nil)
			env.addLead(t, "contacted@x.com", func(l *models.Lead) { l.Status = models.LeadStatusContacted })
			env.addLead(t, "targeted@x.com", func(l *models.Lead) { l.Targeted = true })

			if err := env.dispatcher.ProcessQueue(context.Background()); err != nil {
				t.Fatalf("ProcessQueue: %v", err)
			}

			if len(env.sender.delivered) != len(tt.want) {
				t.Fatalf("sent to %v, want %v", env.sender.delivered, tt.want)
			}
			for i, email := range tt.want {
				if env.sender.delivered[i] != email {
					t.Errorf("recipient %d = %q, want %q", i, env.sender.delivered[i], email)
				}
			}
		})
	}
}

func TestRenderBodyAppendsSignatureAndUnsubscribe(t *testing.T) {
	lead := &models.Lead{Name: "Alice"}
	settings := openSettings()

	body := renderBody("Hi {name}", lead, &settings)
	if !strings.Contains(body, "Hi Alice") {
		t.Errorf("body missing rendered greeting: %q", body)
	}
	if !strings.Contains(body, settings.Signature) {
		t.Errorf("body missing signature: %q", body)
	}
	if !strings.Contains(body, "unsubscribe") {
		t.Errorf("body missing unsubscribe line: %q", body)
	}

	settings.UnsubscribeLink = false
	settings.Signature = ""
	body = renderBody("Hi {name}", lead, &settings)
	if body != "Hi Alice" {
		t.Errorf("body = %q, want %q", body, "Hi Alice")
	}
}
