package main

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/formreport/pkg/channels/gochannel"
	"github.com/dukex/formreport/pkg/eventbus"
	"github.com/dukex/formreport/pkg/events"
	"github.com/dukex/formreport/pkg/jobs"
	"github.com/dukex/formreport/pkg/metrics"
	"github.com/dukex/formreport/pkg/persistence/file"
	"github.com/dukex/formreport/pkg/services"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestWorker(t *testing.T, schedule jobs.Schedule) (*Worker, eventbus.EventBus, *metrics.Metrics) {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(testLogger))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, testLogger)
	t.Cleanup(func() { _ = bus.Close() })

	m := metrics.New()
	svc := services.New(file.NewPersistence(t.TempDir()), bus, m, testLogger)
	scheduler := jobs.New(svc, bus, nil, m, nil, testLogger, schedule)

	return NewWorker("worker-test", bus, scheduler, m, testLogger), bus, m
}

func TestWorker_ConsumesEvents(t *testing.T) {
	worker, bus, m := newTestWorker(t, jobs.Schedule{})

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, worker.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "sub-1", events.SubmissionSubmitted{
		BaseEvent:    events.NewBaseEvent(events.SubmissionSubmittedEvent, "u-ann"),
		SubmissionID: "sub-1",
		TemplateID:   "tpl-1",
		Status:       "Submitted",
	}))

	require.NoError(t, bus.Publish(ctx, "a-1", events.AssignmentExpired{
		BaseEvent:    events.NewBaseEvent(events.AssignmentExpiredEvent, ""),
		AssignmentID: "a-1",
		TemplateID:   "tpl-1",
	}))

	assert.Eventually(t, func() bool {
		count, err := testutil.GatherAndCount(m.Registry(), "formreport_events_total")

		return err == nil && count == 2
	}, time.Second, 10*time.Millisecond)
}

func TestWorker_StartStopsWithContext(t *testing.T) {
	worker, _, _ := newTestWorker(t, jobs.DefaultSchedule())

	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)

	go func() {
		done <- worker.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_InvalidSchedule(t *testing.T) {
	worker, _, _ := newTestWorker(t, jobs.Schedule{Reminders: "not a cron"})

	err := worker.Start(t.Context())
	assert.Error(t, err)
}

func TestEventAttrs(t *testing.T) {
	t.Parallel()

	attrs := eventAttrs(&events.WorkflowStepDelegated{
		StepEvent:   events.StepEvent{ProgressID: "p-1"},
		DelegatedTo: "u-bob",
	})

	assert.Contains(t, attrs, "p-1")
	assert.Contains(t, attrs, "u-bob")
	assert.Nil(t, eventAttrs("unknown"))
}
