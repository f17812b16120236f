package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets. Transitions only
// move forward: created -> triaging -> classified -> assigned.
type TicketStatus string

const (
	TicketStatusCreated    TicketStatus = "created"
	TicketStatusTriaging   TicketStatus = "triaging"
	TicketStatusClassified TicketStatus = "classified"
	TicketStatusAssigned   TicketStatus = "assigned"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            string
	Title         string
	Description   string
	Status        TicketStatus
	Priority      TicketPriority
	HelpfulNotes  *string
	RelatedSkills []string
	AssigneeID    *string
	CreatorID     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var statusRank = map[TicketStatus]int{
	TicketStatusCreated:    0,
	TicketStatusTriaging:   1,
	TicketStatusClassified: 2,
	TicketStatusAssigned:   3,
}

// IsForwardTransition reports whether moving from current to next respects
// the one-way lifecycle. Staying in place is allowed (idempotent writes).
func IsForwardTransition(current, next TicketStatus) bool {
	cur, ok := statusRank[current]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt >= cur
}

// NormalizePriority validates a free-form priority label against the enum.
// Matching is case-insensitive; anything unrecognized falls back to medium.
func NormalizePriority(raw string) TicketPriority {
	switch TicketPriority(strings.ToLower(strings.TrimSpace(raw))) {
	case TicketPriorityLow:
		return TicketPriorityLow
	case TicketPriorityMedium:
		return TicketPriorityMedium
	case TicketPriorityHigh:
		return TicketPriorityHigh
	case TicketPriorityCritical:
		return TicketPriorityCritical
	default:
		return TicketPriorityMedium
	}
}

// NormalizeSkills trims and lowercases skill tags, dropping empties while
// preserving order. Skill comparison is case-insensitive everywhere.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" {
			continue
		}
		out = append(out, skill)
	}
	return out
}

// SkillsIntersect reports whether any ticket skill matches any of the
// candidate's declared skills, comparing case-insensitively.
func SkillsIntersect(ticketSkills, userSkills []string) bool {
	if len(ticketSkills) == 0 || len(userSkills) == 0 {
		return false
	}
	declared := make(map[string]struct{}, len(userSkills))
	for _, s := range NormalizeSkills(userSkills) {
		declared[s] = struct{}{}
	}
	for _, s := range NormalizeSkills(ticketSkills) {
		if _, ok := declared[s]; ok {
			return true
		}
	}
	return false
}
