package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	event := NewBaseEvent(WorkflowStepCompletedEvent, "user-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, WorkflowStepCompletedEvent, event.Type)
	assert.Equal(t, "user-1", event.ActorID)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Second)
	assert.NotNil(t, event.Metadata)
}

func TestWorkflowStepDelegated_JSON(t *testing.T) {
	original := WorkflowStepDelegated{
		BaseEvent:   NewBaseEvent(WorkflowStepDelegatedEvent, "user-1"),
		StepEvent:   StepEvent{SubmissionID: "sub-1", ProgressID: "prog-1", StepID: "step-1", StepOrder: 2},
		DelegatedBy: "user-1",
		DelegatedTo: "user-2",
		Reason:      "on leave",
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"submission_id":"sub-1"`)
	assert.Contains(t, string(data), `"step_order":2`)
	assert.Contains(t, string(data), `"delegated_to":"user-2"`)

	var decoded WorkflowStepDelegated

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.StepEvent, decoded.StepEvent)
	assert.Equal(t, WorkflowStepDelegatedEvent, decoded.GetType())
}

func TestEventTypes_AreDistinct(t *testing.T) {
	seen := make(map[EventType]bool)
	for _, eventType := range EventTypes {
		assert.False(t, seen[eventType], "duplicate event type %s", eventType)
		seen[eventType] = true
	}

	assert.Len(t, seen, 8)
}
