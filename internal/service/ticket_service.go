package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/repository"
	apperrors "github.com/ticketai/triage-service/pkg/util/errorutil"
)

// TicketService coordinates ticket CRUD. Assignment itself happens
// asynchronously in the workflow package, triggered by the ticket_created
// event this service publishes.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket persists a new ticket and publishes the creation event after
// the row is durably written. The caller sees success regardless of how the
// asynchronous assignment later fares.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket := &domain.Ticket{
		Title:         title,
		Description:   description,
		Status:        domain.TicketStatusCreated,
		Priority:      domain.TicketPriorityMedium,
		RelatedSkills: []string{},
		CreatorID:     creatorID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCreated,
			TicketID:  ticket.ID,
			ActorID:   creatorID,
			Timestamp: time.Now(),
			Payload: events.TicketCreatedPayload{
				Title:   ticket.Title,
				Creator: ticket.CreatorID,
			},
		})
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the caller: end-users see their
// own, moderators and admins see everything.
func (s *TicketService) ListTickets(ctx context.Context, caller *domain.User, filter TicketListFilter) ([]domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !caller.IsStaff() {
		repoFilter.CreatorID = &caller.ID
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicket fetches a ticket visible to the caller: the creator, the
// assignee, or any staff member.
func (s *TicketService) GetTicket(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	if caller == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if !s.canAccess(caller, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

func (s *TicketService) canAccess(caller *domain.User, ticket *domain.Ticket) bool {
	if caller.IsStaff() {
		return true
	}
	if ticket.CreatorID == caller.ID {
		return true
	}
	return ticket.AssigneeID != nil && *ticket.AssigneeID == caller.ID
}
