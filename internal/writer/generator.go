// Package writer produces canned email copy per tone. There is no model
// behind it; drafts come from fixed templates with the campaign keywords
// interpolated, and merge tags left in place for the dispatcher to fill.
package writer

import (
	"math/rand"
	"strings"
	"time"
)

// Tones accepted by the generator. Unknown tones fall back to professional.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneCasual       = "casual"
	ToneSales        = "sales"
)

// Draft is a generated subject and body pair.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type toneTemplate struct {
	subject  string
	body     string
	subjects []string
}

var toneTemplates = map[string]toneTemplate{
	ToneProfessional: {
		subject: "Streamline {company}'s %KEYWORDS% processes - 15 min chat?",
		body: "Dear {name},\n\nI hope this email finds you well. I noticed {company}'s impressive work in the %KEYWORDS% space in {location}.\n\n" +
			"I specialize in helping companies like {company} optimize their processes and typically see 40-60% efficiency improvements.\n\n" +
			"Would you be available for a brief 15-minute conversation this week to explore potential synergies?\n\nBest regards,\n[Your Name]",
		subjects: []string{
			"Partnership opportunity with {company}",
			"Streamlining {company}'s operations - brief discussion?",
			"Industry insights for {company}",
			"Optimization strategies for {company}",
		},
	},
	ToneFriendly: {
		subject: "Quick question about {company}'s %KEYWORDS% goals",
		body: "Hi {name}!\n\nI came across {company} and was really impressed by what you're doing in {location}.\n\n" +
			"I help businesses streamline their %KEYWORDS% workflows, and I'd love to share some insights that might be valuable for {company}.\n\n" +
			"Would you be up for a quick chat sometime this week?\n\nCheers,\n[Your Name]",
		subjects: []string{
			"Quick question about {company}",
			"Loved what I saw at {company}!",
			"Coffee chat about {company}'s growth?",
			"Exciting opportunity for {name}",
		},
	},
	ToneCasual: {
		subject: "{name}, saw {company}'s work - impressed!",
		body: "Hey {name},\n\nJust checked out {company} - really cool stuff you're doing in {location}!\n\n" +
			"I work with companies in the %KEYWORDS% space and have some ideas that might help {company} scale even faster.\n\n" +
			"Want to grab a quick call this week?\n\nTalk soon,\n[Your Name]",
		subjects: []string{
			"{name}, this might interest you",
			"Cool stuff happening at {company}!",
			"Quick idea for {company}",
			"Hey {name}, got a sec?",
		},
	},
	ToneSales: {
		subject: "{company} could save $10,000+ on %KEYWORDS% costs",
		body: "Hi {name},\n\nI've been researching companies in {location} and {company} caught my attention.\n\n" +
			"I help businesses reduce %KEYWORDS% costs by 30-50% while improving efficiency. Most clients see ROI within 60 days.\n\n" +
			"Would you be interested in a 10-minute call to see how this could work for {company}?\n\nBest,\n[Your Name]",
		subjects: []string{
			"{company} - Save 30% on operations costs",
			"ROI opportunity for {company}",
			"{name}, this could boost {company}'s revenue",
			"Cost reduction strategy for {company}",
		},
	},
}

// Generator creates email drafts.
type Generator struct {
	rng *rand.Rand
}

// New creates a draft generator
func New() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Generate returns a full draft for the given tone with the keywords
// woven into subject and body.
func (g *Generator) Generate(tone, keywords string) Draft {
	if keywords == "" {
		keywords = "business automation"
	}
	tpl := lookupTone(tone)

	return Draft{
		Subject: strings.ReplaceAll(tpl.subject, "%KEYWORDS%", keywords),
		Body:    strings.ReplaceAll(tpl.body, "%KEYWORDS%", keywords),
	}
}

// GenerateSubject returns one of the canned subject lines for the tone.
func (g *Generator) GenerateSubject(tone string) string {
	tpl := lookupTone(tone)
	return tpl.subjects[g.rng.Intn(len(tpl.subjects))]
}

func lookupTone(tone string) toneTemplate {
	tpl, ok := toneTemplates[tone]
	if !ok {
		return toneTemplates[ToneProfessional]
	}
	return tpl
}
