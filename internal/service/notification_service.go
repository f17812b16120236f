package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/notifier"
)

// NotificationService handles best-effort emails for domain events other
// than assignment (which the workflow notifies inline, after the terminal
// state is committed).
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     notifier.Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, mailer notifier.Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserSignedUp, n.handleUserSignedUp)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserSignedUpPayload)
	if !ok || payload.Email == "" {
		return nil
	}
	body := "Hi,\n\nThanks for signing up. We're glad to have you onboard!\n"
	if err := n.mailer.Send(ctx, payload.Email, "Welcome to the app", body); err != nil {
		n.logger.Warn("welcome email failed", zap.String("to", payload.Email), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}
