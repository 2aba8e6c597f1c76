package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.deps.Version,
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Leads

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	filter := models.LeadFilter{
		Status: r.URL.Query().Get("status"),
		Source: r.URL.Query().Get("source"),
		Search: r.URL.Query().Get("search"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	leads, err := s.deps.Leads.List(filter)
	if err != nil {
		s.logger.Error("failed to list leads", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	s.sendJSON(w, http.StatusOK, leads)
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if lead.Email == "" {
		s.sendError(w, http.StatusBadRequest, "email is required")
		return
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusActive
	}
	if lead.Source == "" {
		lead.Source = "manual"
	}
	if lead.Created.IsZero() {
		lead.Created = time.Now()
	}

	err := s.deps.Leads.Create(&lead)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.sendError(w, http.StatusConflict, "A lead with this email already exists")
		return
	}
	if err != nil {
		s.logger.Error("failed to create lead", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create lead")
		return
	}

	s.deps.Activity.Info("Lead added: " + lead.Email)
	s.sendJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	lead, err := s.deps.Leads.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}
	if lead == nil {
		s.sendError(w, http.StatusNotFound, "Lead not found")
		return
	}
	s.sendJSON(w, http.StatusOK, lead)
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := s.deps.Leads.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get lead")
		return
	}
	if existing == nil {
		s.sendError(w, http.StatusNotFound, "Lead not found")
		return
	}

	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	lead.ID = id
	if lead.Created.IsZero() {
		lead.Created = existing.Created
	}

	if err := s.deps.Leads.Update(&lead); err != nil {
		s.logger.Error("failed to update lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update lead")
		return
	}
	s.sendJSON(w, http.StatusOK, lead)
}

func (s *Server) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.deps.Leads.Delete(id); err != nil {
		s.logger.Error("failed to delete lead", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete lead")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearLeads(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Leads.Clear(); err != nil {
		s.logger.Error("failed to clear leads", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to clear leads")
		return
	}
	s.deps.Activity.Warning("All leads cleared")
	w.WriteHeader(http.StatusNoContent)
}

// Templates

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.deps.Templates.List()
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	s.sendJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if tpl.Name == "" || tpl.Subject == "" || tpl.Body == "" {
		s.sendError(w, http.StatusBadRequest, "name, subject and body are required")
		return
	}
	if tpl.Tone == "" {
		tpl.Tone = "professional"
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now()
	}

	if err := s.deps.Templates.Create(&tpl); err != nil {
		s.logger.Error("failed to create template", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	s.deps.Activity.Info("Email template saved: " + tpl.Name)
	s.sendJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	tpl, err := s.deps.Templates.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	if tpl == nil {
		s.sendError(w, http.StatusNotFound, "Template not found")
		return
	}
	s.sendJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.deps.Templates.Delete(id); err != nil {
		s.logger.Error("failed to delete template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Campaigns

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.deps.Campaigns.List()
	if err != nil {
		s.logger.Error("failed to list campaigns", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}
	if campaigns == nil {
		campaigns = []models.Campaign{}
	}
	s.sendJSON(w, http.StatusOK, campaigns)
}

// CreateCampaignRequest is the request body for POST /campaigns
type CreateCampaignRequest struct {
	Name        string `json:"name"`
	TemplateID  int64  `json:"template_id"`
	LeadsFilter string `json:"leads_filter"`
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		s.sendError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.LeadsFilter == "" {
		req.LeadsFilter = models.LeadsFilterAll
	}

	tpl, err := s.deps.Templates.GetByID(req.TemplateID)
	if err != nil {
		s.logger.Error("failed to get template", "id", req.TemplateID, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	if tpl == nil {
		s.sendError(w, http.StatusBadRequest, "template does not exist")
		return
	}

	settings, err := s.deps.Settings.Get()
	if err != nil {
		s.logger.Error("failed to load settings", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	count, err := s.countMatchingLeads(req.LeadsFilter)
	if err != nil {
		s.logger.Error("failed to count leads", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to count leads")
		return
	}

	campaign := models.Campaign{
		Name:         req.Name,
		TemplateID:   req.TemplateID,
		LeadsFilter:  req.LeadsFilter,
		LeadsCount:   count,
		Status:       models.CampaignStatusActive,
		SendInterval: settings.SendIntervalSeconds,
		DailyLimit:   settings.DailySendLimit,
		CreatedAt:    time.Now(),
	}
	if err := s.deps.Campaigns.Create(&campaign); err != nil {
		s.logger.Error("failed to create campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	s.deps.Activity.Success("Campaign created: " + campaign.Name)
	s.sendJSON(w, http.StatusCreated, campaign)
}

func (s *Server) countMatchingLeads(filter string) (int, error) {
	leads, err := s.deps.Leads.List(models.LeadFilter{})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, l := range leads {
		switch filter {
		case models.LeadsFilterActive:
			if l.Status == models.LeadStatusActive {
				count++
			}
		case models.LeadsFilterUntargeted:
			if !l.Targeted {
				count++
			}
		default:
			count++
		}
	}
	return count, nil
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	campaign, err := s.deps.Campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	s.sendJSON(w, http.StatusOK, campaign)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.deps.Campaigns.Delete(id); err != nil {
		s.logger.Error("failed to delete campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartCampaign(w http.ResponseWriter, r *http.Request) {
	s.setCampaignStatus(w, r, models.CampaignStatusActive, "Campaign resumed: ")
}

func (s *Server) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
	s.setCampaignStatus(w, r, models.CampaignStatusPaused, "Campaign paused: ")
}

func (s *Server) setCampaignStatus(w http.ResponseWriter, r *http.Request, status, activityPrefix string) {
	id, ok := s.urlID(r)
	if !ok {
		s.sendError(w, http.StatusBadRequest, "invalid id")
		return
	}

	campaign, err := s.deps.Campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	if err := s.deps.Campaigns.UpdateStatus(id, status); err != nil {
		s.logger.Error("failed to update campaign status", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update campaign")
		return
	}

	s.deps.Activity.Info(activityPrefix + campaign.Name)
	campaign.Status = status
	s.sendJSON(w, http.StatusOK, campaign)
}

// Emails

func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	filter := models.EmailFilter{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("campaign_id"); v != "" {
		filter.CampaignID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}

	emails, err := s.deps.Emails.List(filter)
	if err != nil {
		s.logger.Error("failed to list emails", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list emails")
		return
	}
	if emails == nil {
		emails = []models.Email{}
	}
	s.sendJSON(w, http.StatusOK, emails)
}
