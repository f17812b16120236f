package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var created, assigned int
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		created++
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		assigned++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if created != 1 || assigned != 0 {
		t.Errorf("created = %d, assigned = %d", created, assigned)
	}
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var second bool
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("first handler failed")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		second = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !second {
		t.Error("second handler not invoked after first failed")
	}
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventUserSignedUp}); err != nil {
		t.Fatalf("Publish without subscribers: %v", err)
	}
}
