package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/automation"
	"github.com/abhishekbhowal06/email-automation/internal/db"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
	"github.com/abhishekbhowal06/email-automation/internal/scraper"
	"github.com/abhishekbhowal06/email-automation/internal/stats"
	"github.com/abhishekbhowal06/email-automation/internal/writer"
)

type noopProcessor struct{}

func (noopProcessor) ProcessQueue(ctx context.Context) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	for _, m := range db.Migrations {
		if _, err := conn.Exec(m); err != nil {
			t.Fatalf("migration failed: %v", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	leadRepo := repository.NewLeadRepository(conn)
	templateRepo := repository.NewTemplateRepository(conn)
	campaignRepo := repository.NewCampaignRepository(conn)
	emailRepo := repository.NewEmailRepository(conn)
	logRepo := repository.NewLogRepository(conn)
	settingsRepo := repository.NewSettingsRepository(conn)

	act := activity.New(logRepo, logger)
	m := metrics.New()
	scheduler := automation.NewScheduler(noopProcessor{}, settingsRepo, act, m, logger)
	t.Cleanup(scheduler.Stop)

	srv := NewServer(Deps{
		Leads:          leadRepo,
		Templates:      templateRepo,
		Campaigns:      campaignRepo,
		Emails:         emailRepo,
		Logs:           logRepo,
		Settings:       settingsRepo,
		Scheduler:      scheduler,
		Stats:          stats.NewAggregator(leadRepo, emailRepo, campaignRepo, scheduler),
		Scraper:        scraper.New(),
		Writer:         writer.New(),
		Backup:         leadio.NewBackupService(conn, leadRepo, templateRepo, campaignRepo, emailRepo, logRepo, settingsRepo),
		Activity:       act,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Version:        "test",
	}, logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	health := decode[HealthResponse](t, resp)
	if health.Status != "ok" || health.Version != "test" {
		t.Errorf("health = %+v", health)
	}
}

func TestLeadCRUD(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/leads", models.Lead{Name: "Alice", Email: "alice@example.com"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[models.Lead](t, resp)
	if created.ID == 0 || created.Status != models.LeadStatusActive || created.Source != "manual" {
		t.Errorf("created lead = %+v", created)
	}

	// Duplicate email conflicts
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/leads", models.Lead{Name: "Alice 2", Email: "alice@example.com"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/leads", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	leads := decode[[]models.Lead](t, resp)
	if len(leads) != 1 {
		t.Fatalf("listed %d leads, want 1", len(leads))
	}

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/leads/1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/leads/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/settings", nil)
	settings := decode[models.Settings](t, resp)
	if settings.DailySendLimit != 500 {
		t.Fatalf("default daily limit = %d", settings.DailySendLimit)
	}

	// A partial update leaves the other keys alone
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/v1/settings", map[string]any{"daily_send_limit": 10})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}
	updated := decode[models.Settings](t, resp)
	if updated.DailySendLimit != 10 {
		t.Errorf("daily limit = %d, want 10", updated.DailySendLimit)
	}
	if updated.WorkingHoursStart != 9 || !updated.TrackOpens {
		t.Errorf("partial update clobbered other settings: %+v", updated)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/v1/settings", map[string]any{"send_interval_seconds": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid interval status = %d, want 400", resp.StatusCode)
	}
}

func TestAutomationLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/automation/status", nil)
	status := decode[automation.Status](t, resp)
	if status.State != "stopped" {
		t.Fatalf("initial state = %q", status.State)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/automation/start", nil)
	status = decode[automation.Status](t, resp)
	if status.State != "running" {
		t.Errorf("state after start = %q", status.State)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/automation/pause", nil)
	status = decode[automation.Status](t, resp)
	if status.State != "paused" {
		t.Errorf("state after pause = %q", status.State)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/automation/stop", nil)
	status = decode[automation.Status](t, resp)
	if status.State != "stopped" {
		t.Errorf("state after stop = %q", status.State)
	}
}

func TestCampaignCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	// Missing template
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns", CreateCampaignRequest{Name: "C", TemplateID: 99})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for a missing template", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/templates", models.Template{Name: "T", Subject: "s", Body: "b"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("template create status = %d", resp.StatusCode)
	}
	tpl := decode[models.Template](t, resp)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns", CreateCampaignRequest{Name: "C", TemplateID: tpl.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("campaign create status = %d", resp.StatusCode)
	}
	campaign := decode[models.Campaign](t, resp)
	if campaign.Status != models.CampaignStatusActive {
		t.Errorf("new campaign status = %q, want active", campaign.Status)
	}
	if campaign.DailyLimit != 500 || campaign.SendInterval != 30 {
		t.Errorf("campaign did not snapshot settings: %+v", campaign)
	}

	// Pause and resume through the API
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns/1/pause", nil)
	paused := decode[models.Campaign](t, resp)
	if paused.Status != models.CampaignStatusPaused {
		t.Errorf("paused campaign status = %q", paused.Status)
	}
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/campaigns/1/start", nil)
	resumed := decode[models.Campaign](t, resp)
	if resumed.Status != models.CampaignStatusActive {
		t.Errorf("resumed campaign status = %q", resumed.Status)
	}
}

func TestScraperEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/scraper/run", ScraperRequest{Keywords: "SaaS"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without location = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/scraper/run", ScraperRequest{Keywords: "SaaS", Location: "Berlin"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	result := decode[ScraperResponse](t, resp)
	if result.Found < 3 || result.Found > 10 {
		t.Errorf("found = %d, want 3-10", result.Found)
	}
}

func TestWriterEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/writer/generate", WriterRequest{Tone: "friendly", Keywords: "retail"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	draft := decode[writer.Draft](t, resp)
	if draft.Subject == "" || !strings.Contains(draft.Body, "retail") {
		t.Errorf("draft = %+v", draft)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/writer/subject", WriterRequest{Tone: "sales"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("subject status = %d", resp.StatusCode)
	}
	subject := decode[SubjectResponse](t, resp)
	if subject.Subject == "" {
		t.Error("empty generated subject")
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[models.Stats](t, resp)
	if got.TotalLeads != 0 || got.EmailsSent != 0 {
		t.Errorf("empty stats = %+v", got)
	}
}

func TestImportExportEndpoints(t *testing.T) {
	ts := newTestServer(t)

	csv := "name,email\nAlice,alice@example.com\nBob,bob@example.com\n"
	resp, err := http.Post(ts.URL+"/api/v1/leads/import", "text/csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	result := decode[ImportResponse](t, resp)
	if result.Imported != 2 {
		t.Errorf("imported = %d, want 2", result.Imported)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/leads/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(body), "alice@example.com") {
		t.Errorf("export missing imported lead: %q", string(body))
	}
}
