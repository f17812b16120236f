package events

import (
	"time"

	"github.com/ticketai/triage-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAssigned EventType = "ticket_assigned"
	EventUserSignedUp   EventType = "user_signed_up"
)

// Event represents a domain event emitted by services. The ticket-creation
// handler publishes EventTicketCreated exactly once, after the ticket row is
// durably written with status created.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title   string `json:"title"`
	Creator string `json:"creator_user_id"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string               `json:"assignee_user_id,omitempty"`
	Priority   domain.TicketPriority `json:"priority"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	Email string `json:"email"`
}
