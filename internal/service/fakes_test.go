package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/repository"
)

type fakeUserRepo struct {
	byID    map[string]*domain.User
	nextID  int
	updated []*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		r.byID[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.byID[user.ID] = &copied
	r.updated = append(r.updated, &copied)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.byID {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.byID))
	for _, user := range r.byID {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) FindModeratorBySkills(_ context.Context, skills []string) (*domain.User, error) {
	for _, user := range r.byID {
		if user.Role == domain.UserRoleModerator && domain.SkillsIntersect(skills, user.Skills) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) FindAnyAdmin(_ context.Context) (*domain.User, error) {
	for _, user := range r.byID {
		if user.Role == domain.UserRoleAdmin {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTicketRepo struct {
	byID       map[string]*domain.Ticket
	nextID     int
	lastFilter *repository.TicketFilter
}

func newFakeTicketRepo(tickets ...*domain.Ticket) *fakeTicketRepo {
	r := &fakeTicketRepo{byID: make(map[string]*domain.Ticket)}
	for _, t := range tickets {
		r.byID[t.ID] = t
	}
	return r
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.byID[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListByCreator(_ context.Context, creatorID string, _, _ int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.byID {
		if t.CreatorID == creatorID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.lastFilter = &filter
	var out []domain.Ticket
	for _, t := range r.byID {
		if filter.CreatorID != nil && t.CreatorID != *filter.CreatorID {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) MarkTriaging(_ context.Context, id string) error {
	ticket, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = domain.TicketStatusTriaging
	return nil
}

func (r *fakeTicketRepo) ApplyClassification(_ context.Context, id string, priority domain.TicketPriority, notes string, skills []string) error {
	ticket, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Priority = priority
	ticket.HelpfulNotes = &notes
	ticket.RelatedSkills = skills
	ticket.Status = domain.TicketStatusClassified
	return nil
}

func (r *fakeTicketRepo) Assign(_ context.Context, id string, assigneeID *string) error {
	ticket, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssigneeID = assigneeID
	ticket.Status = domain.TicketStatusAssigned
	return nil
}

// captureDispatcher records published events for assertions.
type captureDispatcher struct {
	published []events.Event
	handlers  map[events.EventType][]events.EventHandler
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{handlers: make(map[events.EventType][]events.EventHandler)}
}

func (d *captureDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	for _, handler := range d.handlers[event.Type] {
		_ = handler(ctx, event)
	}
	return nil
}

func (d *captureDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
