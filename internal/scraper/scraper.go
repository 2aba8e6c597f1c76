// Package scraper produces simulated lead lists. No network requests are
// made; results are randomized from fixed pools so the rest of the
// pipeline has realistic data to work with.
package scraper

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/models"
)

var (
	names     = []string{"Alice Johnson", "Bob Smith", "Carol Davis", "David Wilson", "Eva Brown", "Frank Miller"}
	companies = []string{"TechCorp", "InnovateLab", "FutureWorks", "SmartSolutions", "NextGen Systems", "ProActive Inc"}
	domains   = []string{"gmail.com", "company.com", "business.org", "enterprise.net", "startup.io"}

	jobTitles = map[string][]string{
		"ceo":       {"CEO", "Founder", "Co-founder", "President"},
		"marketing": {"Marketing Director", "CMO", "Marketing Manager", "VP Marketing"},
		"sales":     {"Sales Manager", "VP Sales", "Sales Director", "Business Development"},
		"hr":        {"HR Director", "CHRO", "HR Manager", "People Operations"},
		"cto":       {"CTO", "Tech Lead", "VP Engineering", "Technical Director"},
	}
)

// Request describes a scraping run.
type Request struct {
	Keywords    string
	Location    string
	ContactType string
	CompanySize string
}

// Scraper generates simulated leads.
type Scraper struct {
	rng *rand.Rand
	now func() time.Time
}

// New creates a scraper with a time-seeded random source
func New() *Scraper {
	return &Scraper{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// GenerateLeads returns between 3 and 10 randomized leads matching the
// request. Duplicate emails across calls are possible; the caller is
// expected to handle unique constraint violations on insert.
func (s *Scraper) GenerateLeads(req Request) []models.Lead {
	count := s.rng.Intn(8) + 3

	leads := make([]models.Lead, 0, count)
	for i := 0; i < count; i++ {
		name := names[s.rng.Intn(len(names))]
		company := companies[s.rng.Intn(len(companies))]
		domain := domains[s.rng.Intn(len(domains))]

		email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@" + domain
		tags := fmt.Sprintf(`["%s","%s"]`, strings.ToLower(req.Keywords), req.CompanySize)

		leads = append(leads, models.Lead{
			Name:     name,
			Email:    email,
			Company:  company + " " + req.Keywords,
			Location: req.Location,
			Industry: req.Keywords,
			Title:    s.jobTitle(req.ContactType),
			Phone:    fmt.Sprintf("+1-555-%04d", s.rng.Intn(10000)),
			Website:  strings.ToLower(company) + ".com",
			Status:   models.LeadStatusActive,
			Source:   "scraping",
			Tags:     tags,
			Notes:    "Scraped lead from " + req.Location,
			Created:  s.now(),
		})
	}
	return leads
}

func (s *Scraper) jobTitle(contactType string) string {
	titles, ok := jobTitles[contactType]
	if !ok {
		titles = jobTitles["ceo"]
	}
	return titles[s.rng.Intn(len(titles))]
}
