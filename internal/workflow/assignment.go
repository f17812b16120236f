// Package workflow drives a newly created ticket from created to assigned:
// mark triaging, classify with the AI collaborator, persist the judgement,
// match a moderator (admin fallback), persist the assignee and notify them.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketai/triage-service/internal/classifier"
	"github.com/ticketai/triage-service/internal/domain"
	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/notifier"
	"github.com/ticketai/triage-service/internal/observability"
)

// ErrTicketNotFound aborts a run: the ticket was deleted or the identifier
// is invalid. Runs failing with this error must not be retried.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrDuplicateRun is returned when another run already holds the per-ticket
// marker. The duplicate run is skipped, not an error to retry.
var ErrDuplicateRun = errors.New("assignment run already in progress")

// TicketStore is the subset of ticket persistence the workflow needs. All
// write methods are idempotent under the store's forward-only status guard.
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	MarkTriaging(ctx context.Context, id string) error
	ApplyClassification(ctx context.Context, id string, priority domain.TicketPriority, notes string, skills []string) error
	Assign(ctx context.Context, id string, assigneeID *string) error
}

// Directory resolves assignment candidates. Both queries report "none" with
// pgx.ErrNoRows.
type Directory interface {
	FindModeratorBySkills(ctx context.Context, skills []string) (*domain.User, error)
	FindAnyAdmin(ctx context.Context) (*domain.User, error)
}

// RunLocker guards against two concurrent runs for one ticket identifier.
type RunLocker interface {
	Acquire(ctx context.Context, ticketID string) (bool, error)
	Release(ctx context.Context, ticketID string) error
}

// Dependencies bundles collaborators for the workflow.
type Dependencies struct {
	Tickets           TicketStore
	Directory         Directory
	Classifier        classifier.Classifier
	Notifier          notifier.Notifier
	Locker            RunLocker
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	Metrics           *observability.Metrics
	StepRetryAttempts int
}

// AssignmentWorkflow runs the assignment pipeline once per ticket-creation
// event. Runs for distinct tickets are independent and may execute
// concurrently; each run only writes to its own ticket row.
type AssignmentWorkflow struct {
	tickets    TicketStore
	directory  Directory
	classifier classifier.Classifier
	notifier   notifier.Notifier
	locker     RunLocker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	attempts   int
}

// New constructs the workflow.
func New(deps Dependencies) *AssignmentWorkflow {
	attempts := deps.StepRetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentWorkflow{
		tickets:    deps.Tickets,
		directory:  deps.Directory,
		classifier: deps.Classifier,
		notifier:   deps.Notifier,
		locker:     deps.Locker,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		attempts:   attempts,
	}
}

// Run drives one ticket to its terminal state. Classification failure
// degrades to defaults; notification failure is swallowed; only a missing
// ticket aborts the run.
func (w *AssignmentWorkflow) Run(ctx context.Context, ticketID string) error {
	if w.locker != nil {
		acquired, err := w.locker.Acquire(ctx, ticketID)
		if err != nil {
			// The guard is best-effort: prefer running over blocking on a
			// broken lock backend.
			w.logger.Warn("run lock unavailable", zap.String("ticket_id", ticketID), zap.Error(err))
		} else if !acquired {
			w.metrics.RecordRun(observability.RunOutcomeDuplicate)
			w.logger.Info("skipping duplicate assignment run", zap.String("ticket_id", ticketID))
			return ErrDuplicateRun
		}
	}

	err := w.run(ctx, ticketID)
	if err != nil && w.locker != nil {
		// Release so a retried run can reacquire. Successful runs keep the
		// marker until it expires, absorbing late duplicate events.
		_ = w.locker.Release(ctx, ticketID)
	}
	return err
}

func (w *AssignmentWorkflow) run(ctx context.Context, ticketID string) error {
	// Step 1 — load.
	ticket, err := w.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.metrics.RecordRun(observability.RunOutcomeAborted)
			w.logger.Error("assignment aborted", zap.String("ticket_id", ticketID), zap.Error(ErrTicketNotFound))
			return fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
		}
		w.metrics.RecordRun(observability.RunOutcomeFailed)
		return fmt.Errorf("load ticket %s: %w", ticketID, err)
	}

	// Step 2 — mark triaging.
	if err := w.retryStep(ctx, "mark-triaging", func(ctx context.Context) error {
		return w.tickets.MarkTriaging(ctx, ticket.ID)
	}); err != nil {
		return err
	}

	// Step 3 — classify. Failure never blocks assignment.
	result, err := w.classifier.Classify(ctx, ticket.Title, ticket.Description)
	if err != nil || result == nil {
		w.metrics.RecordRun(observability.RunOutcomeDegraded)
		w.logger.Warn("classification degraded to defaults",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		result = classifier.Empty()
	}

	// Step 4 — normalize and persist classification.
	priority := result.NormalizedPriority()
	skills := result.NormalizedSkills()
	notes := strings.TrimSpace(result.HelpfulNotes)
	if err := w.retryStep(ctx, "apply-classification", func(ctx context.Context) error {
		return w.tickets.ApplyClassification(ctx, ticket.ID, priority, notes, skills)
	}); err != nil {
		return err
	}

	// Step 5 — match moderator, falling back to any admin.
	var assignee *domain.User
	if err := w.retryStep(ctx, "match-assignee", func(ctx context.Context) error {
		found, err := w.resolveAssignee(ctx, skills)
		if err != nil {
			return err
		}
		assignee = found
		return nil
	}); err != nil {
		return err
	}

	// Step 6 — persist assignment.
	var assigneeID *string
	if assignee != nil {
		assigneeID = &assignee.ID
	}
	if err := w.retryStep(ctx, "persist-assignment", func(ctx context.Context) error {
		return w.tickets.Assign(ctx, ticket.ID, assigneeID)
	}); err != nil {
		return err
	}
	if assignee == nil {
		w.metrics.RecordRun(observability.RunOutcomeUnassigned)
		w.logger.Warn("no eligible assignee in directory", zap.String("ticket_id", ticket.ID))
	}
	w.publishAssigned(ctx, ticket.ID, assigneeID, priority)

	// Step 7 — notify. Failure is logged and swallowed; it never reverts
	// or retries the assignment.
	if assignee != nil {
		subject := "Ticket Assigned"
		body := fmt.Sprintf("A new ticket is assigned to you: %s", ticket.Title)
		if err := w.notifier.Send(ctx, assignee.Email, subject, body); err != nil {
			w.logger.Warn("assignment notification failed",
				zap.String("ticket_id", ticket.ID),
				zap.String("to", assignee.Email),
				zap.Error(err))
		}
	}

	w.metrics.RecordRun(observability.RunOutcomeCompleted)
	w.logger.Info("assignment run completed",
		zap.String("ticket_id", ticket.ID),
		zap.String("priority", string(priority)),
		zap.Bool("assigned", assignee != nil))
	return nil
}

// resolveAssignee picks the first moderator whose skills intersect the
// ticket's, else any admin, else nil. An empty skill list never matches a
// moderator, so it goes straight to the fallback.
func (w *AssignmentWorkflow) resolveAssignee(ctx context.Context, skills []string) (*domain.User, error) {
	if len(skills) > 0 {
		moderator, err := w.directory.FindModeratorBySkills(ctx, skills)
		if err == nil {
			return moderator, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find moderator: %w", err)
		}
	}
	admin, err := w.directory.FindAnyAdmin(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find fallback admin: %w", err)
	}
	return admin, nil
}

// retryStep retries a step on transient errors with bounded attempts. A
// missing ticket row is never transient: the run aborts instead.
func (w *AssignmentWorkflow) retryStep(ctx context.Context, name string, fn func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			w.metrics.RecordRun(observability.RunOutcomeAborted)
			return fmt.Errorf("%s: %w", name, ErrTicketNotFound)
		}
		if attempt < w.attempts {
			w.logger.Warn("workflow step retrying",
				zap.String("step", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-ctx.Done():
				w.metrics.RecordRun(observability.RunOutcomeFailed)
				return fmt.Errorf("%s: %w", name, ctx.Err())
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	w.metrics.RecordRun(observability.RunOutcomeFailed)
	return fmt.Errorf("%s: %w", name, err)
}

func (w *AssignmentWorkflow) publishAssigned(ctx context.Context, ticketID string, assigneeID *string, priority domain.TicketPriority) {
	if w.dispatcher == nil {
		return
	}
	_ = w.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketAssigned,
		TicketID:  ticketID,
		Timestamp: time.Now(),
		Payload: events.TicketAssignedPayload{
			AssigneeID: assigneeID,
			Priority:   priority,
		},
	})
}
