package eventbus

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/formreport/pkg/channels/gochannel"
	"github.com/dukex/formreport/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(logger))
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub, logger)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.WorkflowStepCompleted, 1)

	require.NoError(t, bus.Handle(events.WorkflowStepCompletedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowStepCompleted)

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	published := events.WorkflowStepCompleted{
		BaseEvent:  events.NewBaseEvent(events.WorkflowStepCompletedEvent, "user-1"),
		StepEvent:  events.StepEvent{SubmissionID: "sub-1", ProgressID: "prog-1", StepID: "step-1", StepOrder: 1},
		ActionCode: "Approve",
		Status:     "Approved",
	}

	require.NoError(t, bus.Publish(ctx, "sub-1", published))

	select {
	case event := <-received:
		assert.Equal(t, "sub-1", event.SubmissionID)
		assert.Equal(t, "Approve", event.ActionCode)
		assert.Equal(t, "user-1", event.ActorID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_UnhandledEventsAreAcked(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.AssignmentExpired, 1)

	require.NoError(t, bus.Handle(events.AssignmentExpiredEvent, func(_ context.Context, event any) error {
		received <- event.(*events.AssignmentExpired)

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "sub-1", events.SubmissionApproved{
		BaseEvent:    events.NewBaseEvent(events.SubmissionApprovedEvent, ""),
		SubmissionID: "sub-1",
	}))
	require.NoError(t, bus.Publish(ctx, "asg-1", events.AssignmentExpired{
		BaseEvent:    events.NewBaseEvent(events.AssignmentExpiredEvent, ""),
		AssignmentID: "asg-1",
		TemplateID:   "tpl-1",
	}))

	select {
	case event := <-received:
		assert.Equal(t, "asg-1", event.AssignmentID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNewEvent_KnowsEveryEventType(t *testing.T) {
	t.Parallel()

	for _, eventType := range events.EventTypes {
		event := newEvent(eventType)
		require.NotNil(t, event, eventType)
		assert.Equal(t, eventType, event.(Event).GetType())
	}

	assert.Nil(t, newEvent("unknown.event"))
}
