// Package leadio handles moving data in and out of the stores: CSV
// lead import/export and full JSON backups.
package leadio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
	"github.com/abhishekbhowal06/email-automation/internal/repository"
)

var csvHeader = []string{"name", "email", "company", "location", "industry", "title", "phone", "website", "status", "source", "tags", "notes"}

// ExportLeads writes all leads as CSV with a header row.
func ExportLeads(w io.Writer, leads []models.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, l := range leads {
		row := []string{l.Name, l.Email, l.Company, l.Location, l.Industry, l.Title, l.Phone, l.Website, l.Status, l.Source, l.Tags, l.Notes}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportResult summarizes a CSV import run.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportLeads reads leads from CSV and stores them. The first row must be
// a header naming the columns; unknown columns are ignored. Imported leads
// always get status active and source import. Rows with a duplicate email
// are skipped, not treated as errors.
func ImportLeads(r io.Reader, repo *repository.LeadRepository) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	if _, ok := cols["email"]; !ok {
		return nil, errors.New("CSV header must include an email column")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	result := &ImportResult{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		lead := &models.Lead{
			Name:     field(row, "name"),
			Email:    field(row, "email"),
			Company:  field(row, "company"),
			Location: field(row, "location"),
			Industry: field(row, "industry"),
			Title:    field(row, "title"),
			Phone:    field(row, "phone"),
			Website:  field(row, "website"),
			Status:   models.LeadStatusActive,
			Source:   "import",
			Tags:     field(row, "tags"),
			Notes:    field(row, "notes"),
			Created:  time.Now(),
		}
		if lead.Email == "" {
			result.Skipped++
			continue
		}

		err = repo.Create(lead)
		if errors.Is(err, repository.ErrDuplicateEmail) {
			result.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to store imported lead: %w", err)
		}
		result.Imported++
	}

	return result, nil
}
