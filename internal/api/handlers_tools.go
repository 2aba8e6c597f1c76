package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/delivery"
	"github.com/abhishekbhowal06/email-automation/internal/leadio"
	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
	"github.com/abhishekbhowal06/email-automation/internal/scraper"
)

// Lead import/export

func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.deps.Leads.List(models.LeadFilter{})
	if err != nil {
		s.logger.Error("failed to list leads", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to export leads")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	if err := leadio.ExportLeads(w, leads); err != nil {
		s.logger.Error("failed to write leads CSV", "error", err)
	}
}

// ImportResponse is the response for POST /leads/import
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *Server) handleImportLeads(w http.ResponseWriter, r *http.Request) {
	result, err := leadio.ImportLeads(r.Body, s.deps.Leads)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "Failed to import leads: "+err.Error())
		return
	}

	s.deps.Metrics.LeadsImportedTotal.Add(float64(result.Imported))
	s.deps.Activity.Info(fmt.Sprintf("Imported %d leads", result.Imported))
	s.sendJSON(w, http.StatusOK, ImportResponse{Imported: result.Imported, Skipped: result.Skipped})
}

// Scraper

// ScraperRequest is the request body for POST /scraper/run
type ScraperRequest struct {
	Keywords    string `json:"keywords"`
	Location    string `json:"location"`
	ContactType string `json:"contact_type"`
	CompanySize string `json:"company_size"`
}

// ScraperResponse is the response for POST /scraper/run
type ScraperResponse struct {
	Found int           `json:"found"`
	Added int           `json:"added"`
	Leads []models.Lead `json:"leads"`
}

func (s *Server) handleScraperRun(w http.ResponseWriter, r *http.Request) {
	var req ScraperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Keywords == "" || req.Location == "" {
		s.sendError(w, http.StatusBadRequest, "keywords and location are required")
		return
	}
	if req.ContactType == "" {
		req.ContactType = "ceo"
	}
	if req.CompanySize == "" {
		req.CompanySize = "startup"
	}

	s.deps.Activity.Info(fmt.Sprintf("Starting lead scraping for %q in %s", req.Keywords, req.Location))

	leads := s.deps.Scraper.GenerateLeads(scraper.Request{
		Keywords:    req.Keywords,
		Location:    req.Location,
		ContactType: req.ContactType,
		CompanySize: req.CompanySize,
	})

	added := make([]models.Lead, 0, len(leads))
	for i := range leads {
		err := s.deps.Leads.Create(&leads[i])
		if errors.Is(err, repository.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			s.logger.Error("failed to store scraped lead", "email", leads[i].Email, "error", err)
			s.sendError(w, http.StatusInternalServerError, "Failed to store scraped leads")
			return
		}
		added = append(added, leads[i])
	}

	s.deps.Metrics.LeadsScrapedTotal.Add(float64(len(added)))
	s.deps.Activity.Success(fmt.Sprintf("Scraping completed: %d leads found", len(leads)))
	s.sendJSON(w, http.StatusOK, ScraperResponse{Found: len(leads), Added: len(added), Leads: added})
}

// Writer

// WriterRequest is the request body for the writer endpoints
type WriterRequest struct {
	Tone     string `json:"tone"`
	Keywords string `json:"keywords"`
}

func (s *Server) handleWriterGenerate(w http.ResponseWriter, r *http.Request) {
	var req WriterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	draft := s.deps.Writer.Generate(req.Tone, req.Keywords)
	s.deps.Activity.Info("Email draft generated")
	s.sendJSON(w, http.StatusOK, draft)
}

// SubjectResponse is the response for POST /writer/subject
type SubjectResponse struct {
	Subject string `json:"subject"`
}

func (s *Server) handleWriterSubject(w http.ResponseWriter, r *http.Request) {
	var req WriterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.sendJSON(w, http.StatusOK, SubjectResponse{Subject: s.deps.Writer.GenerateSubject(req.Tone)})
}

// Backup

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("emailbot-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := s.deps.Backup.Create(w); err != nil {
		s.logger.Error("failed to write backup", "error", err)
	}
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Backup.Restore(r.Body); err != nil {
		s.logger.Error("failed to restore backup", "error", err)
		s.sendError(w, http.StatusBadRequest, "Failed to restore backup: "+err.Error())
		return
	}

	s.deps.Activity.Info("Backup restored")
	w.WriteHeader(http.StatusNoContent)
}

// Outbox

func (s *Server) handleOutbox(w http.ResponseWriter, r *http.Request) {
	if s.deps.Outbox == nil {
		s.sendJSON(w, http.StatusOK, []delivery.Message{})
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	messages, err := s.deps.Outbox.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list outbox", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list outbox")
		return
	}
	if messages == nil {
		messages = []*delivery.Message{}
	}
	s.sendJSON(w, http.StatusOK, messages)
}
