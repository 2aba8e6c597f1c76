package models

import "time"

// SampleLeads returns the starter leads loaded into an empty database
func SampleLeads() []Lead {
	created := time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC)
	return []Lead{
		{
			Name:     "John Smith",
			Email:    "john@techstartup.com",
			Company:  "TechStartup Inc",
			Location: "San Francisco, CA",
			Industry: "Technology",
			Title:    "CEO",
			Phone:    "+1-555-0101",
			Website:  "techstartup.com",
			Status:   LeadStatusActive,
			Source:   "sample",
			Tags:     `["startup","b2b"]`,
			Notes:    "Interested in AI solutions",
			Created:  created,
		},
		{
			Name:     "Sarah Johnson",
			Email:    "sarah@designstudio.com",
			Company:  "Creative Design Studio",
			Location: "New York, NY",
			Industry: "Design",
			Title:    "Creative Director",
			Phone:    "+1-555-0102",
			Website:  "designstudio.com",
			Status:   LeadStatusActive,
			Source:   "sample",
			Tags:     `["agency","creative"]`,
			Notes:    "Looking for marketing automation",
			Created:  created,
		},
		{
			Name:     "Michael Chen",
			Email:    "michael@fintech.co",
			Company:  "FinTech Solutions",
			Location: "Austin, TX",
			Industry: "Finance",
			Title:    "CTO",
			Phone:    "+1-555-0103",
			Website:  "fintech.co",
			Status:   LeadStatusActive,
			Source:   "sample",
			Tags:     `["fintech","b2b"]`,
			Notes:    "Tech-savvy, interested in automation",
			Created:  created,
		},
	}
}

// SampleTemplates returns the starter templates loaded into an empty database
func SampleTemplates() []Template {
	return []Template{
		{
			Name:    "Cold Outreach - B2B",
			Subject: "Quick question about {company}'s growth plans",
			Body: "Hi {name},\n\nI came across {company} and was impressed by your work in {location}.\n\n" +
				"I help companies like yours streamline their email marketing processes and typically see 3x better conversion rates.\n\n" +
				"Would you be open to a 15-minute chat this week to see if there's a fit?\n\nBest regards,\n[Your Name]",
			Tone: "professional",
			Tags: `["cold","b2b"]`,
		},
		{
			Name:    "Follow-up Sequence",
			Subject: "Following up on {company}",
			Body: "Hi {name},\n\nI wanted to follow up on my previous email about helping {company} with marketing automation.\n\n" +
				"I understand you're busy, but I believe we could help {company} save significant time and increase conversions.\n\n" +
				"Would next Tuesday or Wednesday work for a brief call?\n\nThanks,\n[Your Name]",
			Tone: "friendly",
			Tags: `["followup"]`,
		},
	}
}
