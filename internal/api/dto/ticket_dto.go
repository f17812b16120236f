package dto

import (
	"time"

	"github.com/ticketai/triage-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	HelpfulNotes  *string               `json:"helpful_notes"`
	RelatedSkills []string              `json:"related_skills"`
	AssigneeID    *string               `json:"assignee_user_id"`
	CreatorID     string                `json:"creator_user_id"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketSummary is the list view.
type TicketSummary struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	AssigneeID *string               `json:"assignee_user_id"`
	CreatedAt  time.Time             `json:"created_at"`
}
