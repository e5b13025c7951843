// Package main provides the background worker: it runs the scheduled jobs and consumes domain events.
package main

import (
	"context"
	"log/slog"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/jobs"
	"github.com/dukex/formreport/pkg/metrics"
)

type Worker struct {
	id        string
	logger    *slog.Logger
	eventBus  eventbus.EventBus
	scheduler *jobs.Scheduler
	metrics   *metrics.Metrics
}

func NewWorker(
	id string,
	eventBus eventbus.EventBus,
	scheduler *jobs.Scheduler,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		id:        id,
		logger:    logger.With("module", "formreport-worker", "worker_id", id),
		eventBus:  eventBus,
		scheduler: scheduler,
		metrics:   m,
	}
}

// Start subscribes to the event bus, starts the scheduler and blocks until ctx is done.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting worker")

	err := w.Subscribe(ctx)
	if err != nil {
		return err
	}

	err = w.scheduler.Start(ctx)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Worker started successfully")

	<-ctx.Done()

	w.logger.Info("Shutting down worker...")
	w.scheduler.Stop()

	return nil
}

// Subscribe registers a handler for every known event type and starts consuming.
func (w *Worker) Subscribe(ctx context.Context) error {
	for _, eventType := range events.EventTypes {
		err := w.eventBus.Handle(eventType, w.handleEvent)
		if err != nil {
			return err
		}
	}

	err := w.eventBus.Subscribe(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	return nil
}

func (w *Worker) handleEvent(ctx context.Context, event any) error {
	typed, ok := event.(eventbus.Event)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event received", "event", event)

		return nil
	}

	w.metrics.EventConsumed(string(typed.GetType()))

	w.logger.InfoContext(ctx, "Event received", append([]any{"event_type", typed.GetType()}, eventAttrs(event)...)...)

	return nil
}

func eventAttrs(event any) []any {
	switch e := event.(type) {
	case *events.SubmissionSubmitted:
		return []any{"event_id", e.ID, "submission_id", e.SubmissionID, "template_id", e.TemplateID, "status", e.Status}
	case *events.SubmissionApproved:
		return []any{"event_id", e.ID, "submission_id", e.SubmissionID, "approved_by", e.ApprovedBy}
	case *events.SubmissionReminderDue:
		return []any{"event_id", e.ID, "rule_id", e.RuleID, "user_id", e.UserID, "due_date", e.DueDate}
	case *events.WorkflowStepCompleted:
		return []any{"event_id", e.ID, "submission_id", e.SubmissionID, "progress_id", e.ProgressID, "action", e.ActionCode}
	case *events.WorkflowStepRejected:
		return []any{"event_id", e.ID, "submission_id", e.SubmissionID, "progress_id", e.ProgressID, "reason", e.Reason}
	case *events.WorkflowStepDelegated:
		return []any{"event_id", e.ID, "progress_id", e.ProgressID, "delegated_to", e.DelegatedTo}
	case *events.WorkflowStepEscalated:
		return []any{"event_id", e.ID, "progress_id", e.ProgressID, "escalated_to", e.EscalatedTo}
	case *events.AssignmentExpired:
		return []any{"event_id", e.ID, "assignment_id", e.AssignmentID, "template_id", e.TemplateID}
	default:
		return nil
	}
}
