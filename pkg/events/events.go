// Package events defines the domain events published when submissions, workflow steps and assignments change state.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Topic carries every formreport domain event.
const Topic = "formreport.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Submission lifecycle events.
	SubmissionSubmittedEvent   EventType = "submission.submitted"
	SubmissionApprovedEvent    EventType = "submission.approved"
	SubmissionReminderDueEvent EventType = "submission.reminder.due"

	// Workflow step events.
	WorkflowStepCompletedEvent EventType = "workflow.step.completed"
	WorkflowStepRejectedEvent  EventType = "workflow.step.rejected"
	WorkflowStepDelegatedEvent EventType = "workflow.step.delegated"
	WorkflowStepEscalatedEvent EventType = "workflow.step.escalated"

	// Assignment events.
	AssignmentExpiredEvent EventType = "assignment.expired"
)

// EventTypes lists every event type the bus knows how to decode.
var EventTypes = []EventType{
	SubmissionSubmittedEvent,
	SubmissionApprovedEvent,
	SubmissionReminderDueEvent,
	WorkflowStepCompletedEvent,
	WorkflowStepRejectedEvent,
	WorkflowStepDelegatedEvent,
	WorkflowStepEscalatedEvent,
	AssignmentExpiredEvent,
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	ActorID   string         `json:"actor_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent returns a BaseEvent with a fresh ID and the current time.
func NewBaseEvent(eventType EventType, actorID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		Metadata:  make(map[string]any),
	}
}

type SubmissionSubmitted struct {
	BaseEvent

	SubmissionID string `json:"submission_id"`
	TemplateID   string `json:"template_id"`
	TenantID     string `json:"tenant_id,omitempty"`
	Status       string `json:"status"`
}

func (s SubmissionSubmitted) GetType() EventType {
	return SubmissionSubmittedEvent
}

type SubmissionApproved struct {
	BaseEvent

	SubmissionID string `json:"submission_id"`
	TemplateID   string `json:"template_id"`
	ApprovedBy   string `json:"approved_by,omitempty"`
}

func (s SubmissionApproved) GetType() EventType {
	return SubmissionApprovedEvent
}

// SubmissionReminderDue asks a consumer to remind a user about an upcoming due date.
type SubmissionReminderDue struct {
	BaseEvent

	RuleID     string    `json:"rule_id"`
	TemplateID string    `json:"template_id"`
	UserID     string    `json:"user_id"`
	DueDate    time.Time `json:"due_date"`
	DaysBefore int       `json:"days_before"`
}

func (s SubmissionReminderDue) GetType() EventType {
	return SubmissionReminderDueEvent
}

// StepEvent identifies the workflow step instance an event is about.
type StepEvent struct {
	SubmissionID string `json:"submission_id"`
	ProgressID   string `json:"progress_id"`
	StepID       string `json:"step_id"`
	StepOrder    int    `json:"step_order"`
}

type WorkflowStepCompleted struct {
	BaseEvent
	StepEvent

	ActionCode string `json:"action_code"`
	Status     string `json:"status"`
}

func (w WorkflowStepCompleted) GetType() EventType {
	return WorkflowStepCompletedEvent
}

type WorkflowStepRejected struct {
	BaseEvent
	StepEvent

	Reason string `json:"reason"`
}

func (w WorkflowStepRejected) GetType() EventType {
	return WorkflowStepRejectedEvent
}

type WorkflowStepDelegated struct {
	BaseEvent
	StepEvent

	DelegatedBy string `json:"delegated_by"`
	DelegatedTo string `json:"delegated_to"`
	Reason      string `json:"reason,omitempty"`
}

func (w WorkflowStepDelegated) GetType() EventType {
	return WorkflowStepDelegatedEvent
}

type WorkflowStepEscalated struct {
	BaseEvent
	StepEvent

	EscalatedTo      string     `json:"escalated_to"`
	EscalationRoleID string     `json:"escalation_role_id"`
	DueDate          *time.Time `json:"due_date,omitempty"`
}

func (w WorkflowStepEscalated) GetType() EventType {
	return WorkflowStepEscalatedEvent
}

type AssignmentExpired struct {
	BaseEvent

	AssignmentID   string     `json:"assignment_id"`
	TemplateID     string     `json:"template_id"`
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`
}

func (a AssignmentExpired) GetType() EventType {
	return AssignmentExpiredEvent
}
