// Package api exposes the application over HTTP: CRUD for leads,
// templates and campaigns, automation control, stats, settings,
// import/export and the simulated scraper and writer.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/automation"
	"github.com/abhishekbhowal06/email-automation/internal/delivery"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
	"github.com/abhishekbhowal06/email-automation/internal/scraper"
	"github.com/abhishekbhowal06/email-automation/internal/stats"
	"github.com/abhishekbhowal06/email-automation/internal/writer"
)

// Server is the HTTP API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	deps       Deps
	logger     *slog.Logger
	startTime  time.Time
}

// Deps bundles everything the handlers reach into.
type Deps struct {
	Leads     *repository.LeadRepository
	Templates *repository.TemplateRepository
	Campaigns *repository.CampaignRepository
	Emails    *repository.EmailRepository
	Logs      *repository.LogRepository
	Settings  *repository.SettingsRepository

	Scheduler *automation.Scheduler
	Stats     *stats.Aggregator
	Scraper   *scraper.Scraper
	Writer    *writer.Generator
	Backup    *leadio.BackupService
	Outbox    *delivery.Outbox
	Activity  *activity.Logger

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Version        string
}

// NewServer creates the API server and wires up the routes
func NewServer(deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		deps:      deps,
		logger:    logger,
		startTime: time.Now(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	if s.deps.MetricsHandler != nil {
		s.router.Method(http.MethodGet, "/metrics", s.deps.MetricsHandler)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/leads", func(r chi.Router) {
			r.Get("/", s.handleListLeads)
			r.Post("/", s.handleCreateLead)
			r.Post("/clear", s.handleClearLeads)
			r.Get("/export", s.handleExportLeads)
			r.Post("/import", s.handleImportLeads)
			r.Get("/{id}", s.handleGetLead)
			r.Put("/{id}", s.handleUpdateLead)
			r.Delete("/{id}", s.handleDeleteLead)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Post("/", s.handleCreateTemplate)
			r.Get("/{id}", s.handleGetTemplate)
			r.Delete("/{id}", s.handleDeleteTemplate)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", s.handleListCampaigns)
			r.Post("/", s.handleCreateCampaign)
			r.Get("/{id}", s.handleGetCampaign)
			r.Delete("/{id}", s.handleDeleteCampaign)
			r.Post("/{id}/start", s.handleStartCampaign)
			r.Post("/{id}/pause", s.handlePauseCampaign)
		})

		r.Route("/automation", func(r chi.Router) {
			r.Post("/start", s.handleAutomationStart)
			r.Post("/pause", s.handleAutomationPause)
			r.Post("/stop", s.handleAutomationStop)
			r.Get("/status", s.handleAutomationStatus)
		})

		r.Get("/stats", s.handleStats)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/logs", s.handleLogs)
		r.Get("/emails", s.handleListEmails)
		r.Get("/outbox", s.handleOutbox)

		r.Post("/scraper/run", s.handleScraperRun)
		r.Post("/writer/generate", s.handleWriterGenerate)
		r.Post("/writer/subject", s.handleWriterSubject)

		r.Get("/backup", s.handleBackup)
		r.Post("/restore", s.handleRestore)
	})
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting HTTP API server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP API server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Handler returns the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ErrorResponse is the error response body
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}
