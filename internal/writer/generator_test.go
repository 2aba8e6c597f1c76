package writer

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	g := New()

	tests := []struct {
		name     string
		tone     string
		keywords string
	}{
		{"professional", ToneProfessional, "cloud migration"},
		{"friendly", ToneFriendly, "automation"},
		{"casual", ToneCasual, "analytics"},
		{"sales", ToneSales, "logistics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := g.Generate(tt.tone, tt.keywords)

			if draft.Subject == "" || draft.Body == "" {
				t.Fatalf("empty draft: %+v", draft)
			}
			if !strings.Contains(draft.Body, tt.keywords) {
				t.Errorf("body does not mention %q: %q", tt.keywords, draft.Body)
			}
			// Merge tags stay in place for the dispatcher to fill later
			if !strings.Contains(draft.Body, "{name}") {
				t.Errorf("body lost the {name} merge tag: %q", draft.Body)
			}
			if !strings.Contains(draft.Subject, "{company}") && !strings.Contains(draft.Subject, "{name}") {
				t.Errorf("subject has no merge tag: %q", draft.Subject)
			}
		})
	}
}

func TestGenerateUnknownToneFallsBack(t *testing.T) {
	g := New()

	got := g.Generate("aggressive", "retail")
	want := g.Generate(ToneProfessional, "retail")
	if got != want {
		t.Errorf("unknown tone draft = %+v, want the professional draft", got)
	}
}

func TestGenerateDefaultKeywords(t *testing.T) {
	g := New()

	draft := g.Generate(ToneProfessional, "")
	if !strings.Contains(draft.Body, "business automation") {
		t.Errorf("empty keywords should default to business automation: %q", draft.Body)
	}
}

func TestGenerateSubject(t *testing.T) {
	g := New()

	for _, tone := range []string{ToneProfessional, ToneFriendly, ToneCasual, ToneSales, "bogus"} {
		subject := g.GenerateSubject(tone)
		if subject == "" {
			t.Errorf("empty subject for tone %q", tone)
		}
	}

	// Subjects come from the tone's fixed pool
	pool := toneTemplates[ToneSales].subjects
	for i := 0; i < 20; i++ {
		subject := g.GenerateSubject(ToneSales)
		found := false
		for _, p := range pool {
			if subject == p {
				found = true
			}
		}
		if !found {
			t.Fatalf("subject %q not in the sales pool", subject)
		}
	}
}
