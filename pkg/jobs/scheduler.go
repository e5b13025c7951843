// Package jobs runs the periodic background work of the worker: expiring assignments, escalating and
// auto-approving workflow steps, and publishing submission reminders.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/otelhelper"
	"github.com/dukex/formreport/pkg/persistence"
	"github.com/dukex/formreport/pkg/services"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Job names, used as metric labels and span attributes.
const (
	JobExpireAssignments = "expire_assignments"
	JobEscalations       = "escalations"
	JobAutoApprovals     = "auto_approvals"
	JobReminders         = "reminders"
)

var ErrUnknownJob = errors.New("unknown job")

// Schedule holds the standard cron expression of each job. An empty expression disables the job.
type Schedule struct {
	ExpireAssignments string
	Escalations       string
	AutoApprovals     string
	Reminders         string
}

func DefaultSchedule() Schedule {
	return Schedule{
		ExpireAssignments: "0 * * * *",
		Escalations:       "*/15 * * * *",
		AutoApprovals:     "*/5 * * * *",
		Reminders:         "0 8 * * *",
	}
}

type Scheduler struct {
	services  *services.Services
	publisher eventbus.EventPublisher
	ledger    Ledger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
	schedule  Schedule
	cron      *cron.Cron
	now       func() time.Time
}

// New builds a scheduler. A nil ledger keeps reminder claims in memory; a nil tracer disables tracing.
func New(
	svc *services.Services,
	publisher eventbus.EventPublisher,
	ledger Ledger,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
	schedule Schedule,
) *Scheduler {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}

	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Scheduler{
		services:  svc,
		publisher: publisher,
		ledger:    ledger,
		metrics:   m,
		tracer:    tracer,
		logger:    logger.With("module", "scheduler"),
		schedule:  schedule,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start registers every enabled job and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	cronLogger := cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	entries := []struct {
		job  string
		spec string
	}{
		{JobExpireAssignments, s.schedule.ExpireAssignments},
		{JobEscalations, s.schedule.Escalations},
		{JobAutoApprovals, s.schedule.AutoApprovals},
		{JobReminders, s.schedule.Reminders},
	}

	for _, entry := range entries {
		if entry.spec == "" {
			s.logger.Info("Job disabled", "job", entry.job)
			continue
		}

		job := entry.job

		id, err := s.cron.AddFunc(entry.spec, func() {
			_, _ = s.Run(ctx, job)
		})
		if err != nil {
			return fmt.Errorf("invalid schedule for job %s: %w", job, err)
		}

		s.logger.Info("Scheduled job", "job", job, "cron", entry.spec, "entry_id", id)
	}

	s.cron.Start()

	return nil
}

// Stop stops the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.logger.Info("Stopped scheduler")
}

// Run executes one job now and returns how many records it processed.
func (s *Scheduler) Run(ctx context.Context, job string) (int, error) {
	var run func(context.Context, time.Time) (int, error)

	switch job {
	case JobExpireAssignments:
		run = s.services.Assignments.ProcessExpired
	case JobEscalations:
		run = s.services.Engine.ProcessEscalations
	case JobAutoApprovals:
		run = s.services.Engine.ProcessAutoApprovals
	case JobReminders:
		run = s.SendReminders
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}

	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "job."+job, attribute.String(otelhelper.JobNameKey, job))
	defer span.End()

	started := time.Now()
	processed, err := run(ctx, s.now())
	s.metrics.JobRun(job, time.Since(started), err)

	span.SetAttributes(attribute.Int(otelhelper.JobResultKey, processed))

	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.JobNameKey, job))
		s.logger.ErrorContext(ctx, "Job failed", "job", job, "processed", processed, "error", err)

		return processed, err
	}

	s.logger.InfoContext(ctx, "Job finished", "job", job, "processed", processed, "duration", time.Since(started))

	return processed, nil
}

// SendReminders publishes one reminder per rule, user, due date and reminder day to every user with
// access who has not submitted for the due date's reporting month. A failed rule or user is logged and
// skipped; the failures are returned together after the run.
func (s *Scheduler) SendReminders(ctx context.Context, now time.Time) (int, error) {
	reminders, err := s.services.Rules.RulesNeedingReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	var (
		sent int
		errs []error
	)

	for _, reminder := range reminders {
		users, err := s.services.Assignments.UsersWithAccess(ctx, reminder.Rule.TemplateID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to resolve reminder recipients", "rule_id", reminder.Rule.ID, "error", err)
			errs = append(errs, err)

			continue
		}

		for _, userID := range users {
			ok, err := s.remind(ctx, reminder, userID, now)
			if err != nil {
				s.logger.ErrorContext(ctx, "Failed to send reminder",
					"rule_id", reminder.Rule.ID, "user_id", userID, "days_before", reminder.DaysBefore, "error", err)
				errs = append(errs, err)

				continue
			}

			if ok {
				sent++
			}
		}
	}

	return sent, errors.Join(errs...)
}

// remind claims the reminder in the ledger and publishes it. The claim is released when publishing fails.
func (s *Scheduler) remind(ctx context.Context, reminder *services.RuleReminder, userID string, now time.Time) (bool, error) {
	submitted, err := s.hasSubmitted(ctx, reminder, userID)
	if err != nil || submitted {
		return false, err
	}

	key := reminderKey(reminder, userID)

	claimed, err := s.ledger.Claim(ctx, key, now, time.Duration(reminder.DaysBefore+1)*24*time.Hour)
	if err != nil || !claimed {
		return false, err
	}

	err = s.publish(ctx, reminder, userID)
	if err != nil {
		releaseErr := s.ledger.Release(ctx, key)

		return false, errors.Join(err, releaseErr)
	}

	return true, nil
}

func reminderKey(reminder *services.RuleReminder, userID string) string {
	return fmt.Sprintf("reminder:%s:%s:%s:%d",
		reminder.Rule.ID, userID, reminder.DueDate.Format(time.DateOnly), reminder.DaysBefore)
}

func (s *Scheduler) hasSubmitted(ctx context.Context, reminder *services.RuleReminder, userID string) (bool, error) {
	submissions, err := s.services.Submissions.List(ctx, persistence.SubmissionFilter{
		TemplateID:  reminder.Rule.TemplateID,
		SubmittedBy: userID,
	})
	if err != nil {
		return false, err
	}

	for _, submission := range submissions {
		if submission.Status.IsSubmitted() && samePeriod(submission, reminder.DueDate) {
			return true, nil
		}
	}

	return false, nil
}

func samePeriod(submission *models.Submission, due time.Time) bool {
	return submission.ReportingYear == due.Year() && submission.ReportingMonth == int(due.Month())
}

func (s *Scheduler) publish(ctx context.Context, reminder *services.RuleReminder, userID string) error {
	if s.publisher == nil {
		return nil
	}

	err := s.publisher.Publish(ctx, userID, events.SubmissionReminderDue{
		BaseEvent:  events.NewBaseEvent(events.SubmissionReminderDueEvent, ""),
		RuleID:     reminder.Rule.ID,
		TemplateID: reminder.Rule.TemplateID,
		UserID:     userID,
		DueDate:    reminder.DueDate,
		DaysBefore: reminder.DaysBefore,
	})
	if err != nil {
		return fmt.Errorf("failed to publish reminder: %w", err)
	}

	return nil
}

// cronLogger routes cron's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
