package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

func (s *Server) handleAutomationStart(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Scheduler.Start(); err != nil {
		s.logger.Error("failed to start automation", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to start automation")
		return
	}
	s.sendJSON(w, http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleAutomationPause(w http.ResponseWriter, r *http.Request) {
	s.deps.Scheduler.Pause()
	s.sendJSON(w, http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleAutomationStop(w http.ResponseWriter, r *http.Request) {
	s.deps.Scheduler.Stop()
	s.sendJSON(w, http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleAutomationStatus(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.deps.Scheduler.Status())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Stats.Collect()
	if err != nil {
		s.logger.Error("failed to collect stats", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	s.sendJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.deps.Stats.Analytics()
	if err != nil {
		s.logger.Error("failed to compute analytics", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to compute analytics")
		return
	}
	s.sendJSON(w, http.StatusOK, analytics)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.deps.Settings.Get()
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	s.sendJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	// Decode over the current values so omitted keys keep their settings
	settings, err := s.deps.Settings.Get()
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if settings.DailySendLimit < 0 || settings.SendIntervalSeconds <= 0 {
		s.sendError(w, http.StatusBadRequest, "daily_send_limit must not be negative and send_interval_seconds must be positive")
		return
	}
	if settings.WorkingHoursStart < 0 || settings.WorkingHoursStart > 23 ||
		settings.WorkingHoursEnd < 0 || settings.WorkingHoursEnd > 24 {
		s.sendError(w, http.StatusBadRequest, "working hours must be within 0-24")
		return
	}

	if err := s.deps.Settings.Save(settings); err != nil {
		s.logger.Error("failed to save settings", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	s.deps.Activity.Info("Settings saved")
	s.sendJSON(w, http.StatusOK, settings)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	logs, err := s.deps.Logs.Recent(limit)
	if err != nil {
		s.logger.Error("failed to load logs", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to load logs")
		return
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	s.sendJSON(w, http.StatusOK, logs)
}
