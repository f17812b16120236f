// Package classifier wraps the hosted AI call that guesses a ticket's
// priority, helpful notes and related skills. The call is best-effort:
// callers must tolerate errors and malformed output.
package classifier

import (
	"context"

	"github.com/ticketai/triage-service/internal/domain"
)

// Result is the transient classification judgement for one ticket. It is
// merged into the ticket record and then discarded.
type Result struct {
	Priority      string   `json:"priority"`
	HelpfulNotes  string   `json:"helpfulNotes"`
	RelatedSkills []string `json:"relatedSkills"`
}

// Classifier produces a best-effort judgement from a ticket's text.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (*Result, error)
}

// Empty returns the defaults used when classification fails: medium
// priority, no notes, no skills.
func Empty() *Result {
	return &Result{Priority: string(domain.TicketPriorityMedium)}
}

// NormalizedPriority validates the guessed priority against the ticket enum.
func (r *Result) NormalizedPriority() domain.TicketPriority {
	if r == nil {
		return domain.TicketPriorityMedium
	}
	return domain.NormalizePriority(r.Priority)
}

// NormalizedSkills returns the skill tags lowercased with empties dropped.
func (r *Result) NormalizedSkills() []string {
	if r == nil {
		return []string{}
	}
	return domain.NormalizeSkills(r.RelatedSkills)
}
