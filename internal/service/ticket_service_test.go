package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/events"
	apperrors "github.com/ticketai/triage-service/pkg/util/errorutil"
)

func TestCreateTicketPublishesCreationEvent(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := newCaptureDispatcher()
	svc := NewTicketService(TicketDependencies{TicketRepo: repo, Dispatcher: dispatcher})

	ticket, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{
		Title:       "  Payment fails  ",
		Description: "Checkout returns 502 on card payments",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.ID == "" {
		t.Fatal("ticket ID not set")
	}
	if ticket.Title != "Payment fails" {
		t.Errorf("title = %q, want trimmed", ticket.Title)
	}
	if ticket.Status != domain.TicketStatusCreated {
		t.Errorf("status = %s, want created", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %s, want medium", ticket.Priority)
	}

	created := dispatcher.byType(events.EventTicketCreated)
	if len(created) != 1 {
		t.Fatalf("published %d ticket_created events, want 1", len(created))
	}
	if created[0].TicketID != ticket.ID {
		t.Errorf("event ticket ID = %s, want %s", created[0].TicketID, ticket.ID)
	}
}

func TestCreateTicketRejectsEmptyFields(t *testing.T) {
	repo := newFakeTicketRepo()
	dispatcher := newCaptureDispatcher()
	svc := NewTicketService(TicketDependencies{TicketRepo: repo, Dispatcher: dispatcher})

	_, err := svc.CreateTicket(context.Background(), "user-1", TicketCreateInput{Title: "   ", Description: "x"})
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
	if len(dispatcher.published) != 0 {
		t.Errorf("published %d events for rejected create, want 0", len(dispatcher.published))
	}
	if len(repo.byID) != 0 {
		t.Errorf("repo holds %d tickets, want 0", len(repo.byID))
	}
}

func TestListTicketsScopesEndUsersToOwnTickets(t *testing.T) {
	repo := newFakeTicketRepo(
		&domain.Ticket{ID: "t1", CreatorID: "user-1"},
		&domain.Ticket{ID: "t2", CreatorID: "user-2"},
	)
	svc := NewTicketService(TicketDependencies{TicketRepo: repo})

	endUser := &domain.User{ID: "user-1", Role: domain.UserRoleUser}
	mine, err := svc.ListTickets(context.Background(), endUser, TicketListFilter{})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "t1" {
		t.Errorf("end user sees %v, want only t1", mine)
	}
	if repo.lastFilter == nil || repo.lastFilter.CreatorID == nil {
		t.Fatal("end-user listing did not scope by creator")
	}

	mod := &domain.User{ID: "m1", Role: domain.UserRoleModerator}
	all, err := svc.ListTickets(context.Background(), mod, TicketListFilter{})
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("moderator sees %d tickets, want 2", len(all))
	}
	if repo.lastFilter.CreatorID != nil {
		t.Error("staff listing unexpectedly scoped by creator")
	}
}

func TestGetTicketAccessControl(t *testing.T) {
	assignee := "m1"
	repo := newFakeTicketRepo(&domain.Ticket{ID: "t1", CreatorID: "user-1", AssigneeID: &assignee})
	svc := NewTicketService(TicketDependencies{TicketRepo: repo})

	cases := []struct {
		name    string
		caller  *domain.User
		allowed bool
	}{
		{"creator", &domain.User{ID: "user-1", Role: domain.UserRoleUser}, true},
		{"assignee", &domain.User{ID: "m1", Role: domain.UserRoleUser}, true},
		{"admin", &domain.User{ID: "a1", Role: domain.UserRoleAdmin}, true},
		{"stranger", &domain.User{ID: "user-9", Role: domain.UserRoleUser}, false},
	}
	for _, tc := range cases {
		_, err := svc.GetTicket(context.Background(), tc.caller, "t1")
		if tc.allowed && err != nil {
			t.Errorf("%s: GetTicket = %v, want access", tc.name, err)
		}
		if !tc.allowed {
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "FORBIDDEN" {
				t.Errorf("%s: err = %v, want FORBIDDEN", tc.name, err)
			}
		}
	}
}

func TestGetTicketNotFound(t *testing.T) {
	svc := NewTicketService(TicketDependencies{TicketRepo: newFakeTicketRepo()})
	_, err := svc.GetTicket(context.Background(), &domain.User{ID: "a1", Role: domain.UserRoleAdmin}, "missing")
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
