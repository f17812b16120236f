package classifier

import (
	"reflect"
	"testing"

	"github.com/ticketai/triage-service/internal/domain"
)

func TestParseResultPlainJSON(t *testing.T) {
	result, err := ParseResult(`{"priority": "high", "helpfulNotes": "check dns", "relatedSkills": ["networking"]}`)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Priority != "high" {
		t.Errorf("priority = %q", result.Priority)
	}
	if result.HelpfulNotes != "check dns" {
		t.Errorf("helpfulNotes = %q", result.HelpfulNotes)
	}
	if !reflect.DeepEqual(result.RelatedSkills, []string{"networking"}) {
		t.Errorf("relatedSkills = %v", result.RelatedSkills)
	}
}

func TestParseResultStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n{\"priority\": \"low\", \"helpfulNotes\": \"\", \"relatedSkills\": []}\n```"
	result, err := ParseResult(fenced)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Priority != "low" {
		t.Errorf("priority = %q", result.Priority)
	}

	bare := "```\n{\"priority\": \"critical\"}\n```"
	result, err = ParseResult(bare)
	if err != nil {
		t.Fatalf("ParseResult: %v", err)
	}
	if result.Priority != "critical" {
		t.Errorf("priority = %q", result.Priority)
	}
}

func TestParseResultRejectsNonJSON(t *testing.T) {
	if _, err := ParseResult("I think this is a high priority ticket."); err == nil {
		t.Fatal("ParseResult accepted prose")
	}
}

func TestNormalizedPriority(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.TicketPriority
	}{
		{"low", domain.TicketPriorityLow},
		{"HIGH", domain.TicketPriorityHigh},
		{" Critical ", domain.TicketPriorityCritical},
		{"urgent", domain.TicketPriorityMedium},
		{"", domain.TicketPriorityMedium},
	}
	for _, tc := range cases {
		r := &Result{Priority: tc.raw}
		if got := r.NormalizedPriority(); got != tc.want {
			t.Errorf("NormalizedPriority(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
	var nilResult *Result
	if got := nilResult.NormalizedPriority(); got != domain.TicketPriorityMedium {
		t.Errorf("nil NormalizedPriority = %s, want medium", got)
	}
}

func TestNormalizedSkills(t *testing.T) {
	r := &Result{RelatedSkills: []string{" Auth ", "", "BILLING"}}
	got := r.NormalizedSkills()
	if !reflect.DeepEqual(got, []string{"auth", "billing"}) {
		t.Errorf("NormalizedSkills = %v", got)
	}
}

func TestEmptyDefaults(t *testing.T) {
	r := Empty()
	if r.NormalizedPriority() != domain.TicketPriorityMedium {
		t.Errorf("priority = %s, want medium", r.NormalizedPriority())
	}
	if len(r.NormalizedSkills()) != 0 {
		t.Errorf("skills = %v, want empty", r.NormalizedSkills())
	}
	if r.HelpfulNotes != "" {
		t.Errorf("notes = %q, want empty", r.HelpfulNotes)
	}
}
