package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ticketai/triage-service/internal/events"
	"github.com/ticketai/triage-service/internal/workflow"
)

// runRetryAttempts bounds whole-run retries after a retriable failure.
const runRetryAttempts = 2

// AssignmentRunner consumes ticket-creation events from a bounded in-process
// queue and executes one assignment workflow run per ticket. It replaces the
// original system's hosted event bus with an explicit task queue.
type AssignmentRunner struct {
	workflow *workflow.AssignmentWorkflow
	queue    chan string
	logger   *zap.Logger
	workers  int

	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
}

// NewAssignmentRunner builds the runner.
func NewAssignmentRunner(wf *workflow.AssignmentWorkflow, queueSize, workers int, logger *zap.Logger) *AssignmentRunner {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &AssignmentRunner{
		workflow: wf,
		queue:    make(chan string, queueSize),
		logger:   logger,
		workers:  workers,
	}
}

// BindDispatcher subscribes the runner to ticket-creation events.
func (r *AssignmentRunner) BindDispatcher(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, event events.Event) error {
		return r.Enqueue(event.TicketID)
	})
}

// Enqueue schedules an assignment run. A full queue is reported rather than
// blocking the ticket-creation request path.
func (r *AssignmentRunner) Enqueue(ticketID string) error {
	select {
	case r.queue <- ticketID:
		return nil
	default:
		r.logger.Error("assignment queue full, dropping run", zap.String("ticket_id", ticketID))
		return fmt.Errorf("assignment queue full")
	}
}

// Start launches the worker pool. Runs for distinct tickets proceed
// concurrently; ordering between tickets is not guaranteed.
func (r *AssignmentRunner) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ticketID := <-r.queue:
					r.process(ctx, ticketID)
				}
			}
		}()
	}
}

// Stop signals workers to finish and waits for in-flight runs.
func (r *AssignmentRunner) Stop() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		r.wg.Wait()
	})
}

// process executes one run with bounded whole-run retries. Aborts (missing
// ticket) and duplicate runs are terminal.
func (r *AssignmentRunner) process(ctx context.Context, ticketID string) {
	var err error
	for attempt := 0; attempt <= runRetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempt) * time.Second):
			}
			r.logger.Warn("retrying assignment run",
				zap.String("ticket_id", ticketID), zap.Int("attempt", attempt))
		}
		err = r.workflow.Run(ctx, ticketID)
		if err == nil ||
			errors.Is(err, workflow.ErrTicketNotFound) ||
			errors.Is(err, workflow.ErrDuplicateRun) {
			return
		}
	}
	r.logger.Error("assignment run failed permanently",
		zap.String("ticket_id", ticketID), zap.Error(err))
}
