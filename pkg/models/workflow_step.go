package models

import "time"

// AssigneeType is how a step resolves who must act on it.
type AssigneeType string

const (
	AssigneeRole          AssigneeType = "Role"
	AssigneeUser          AssigneeType = "User"
	AssigneeDepartment    AssigneeType = "Department"
	AssigneeSubmitter     AssigneeType = "Submitter"
	AssigneePreviousActor AssigneeType = "PreviousActor"
	AssigneeFieldValue    AssigneeType = "FieldValue"
)

// TargetType is the part of a submission a step acts on.
type TargetType string

const (
	TargetSubmission TargetType = "Submission"
	TargetSection    TargetType = "Section"
	TargetField      TargetType = "Field"
)

// WorkflowStep is one approval step of a workflow.
type WorkflowStep struct {
	ID                   string       `json:"id"`
	WorkflowID           string       `json:"workflow_id"`
	StepOrder            int          `json:"step_order"`
	StepName             string       `json:"step_name"                         validate:"required"`
	ActionID             string       `json:"action_id"                         validate:"required"`
	TargetType           TargetType   `json:"target_type,omitempty"`
	TargetID             string       `json:"target_id,omitempty"`
	AssigneeType         AssigneeType `json:"assignee_type"                     validate:"required"`
	ApproverRoleID       string       `json:"approver_role_id,omitempty"`
	ApproverUserID       string       `json:"approver_user_id,omitempty"`
	AssigneeDepartmentID string       `json:"assignee_department_id,omitempty"`
	AssigneeFieldID      string       `json:"assignee_field_id,omitempty"`
	IsMandatory          bool         `json:"is_mandatory"`
	IsParallel           bool         `json:"is_parallel"`
	DueDays              int          `json:"due_days,omitempty"`
	EscalationRoleID     string       `json:"escalation_role_id,omitempty"`
	ConditionLogic       string       `json:"condition_logic,omitempty"`
	AutoApproveCondition string       `json:"auto_approve_condition,omitempty"`
	DependsOnStepIDs     []string     `json:"depends_on_step_ids,omitempty"`
}

// ProgressStatus is the state of one step instance for one submission.
type ProgressStatus string

const (
	ProgressPending    ProgressStatus = "Pending"
	ProgressInProgress ProgressStatus = "InProgress"
	ProgressCompleted  ProgressStatus = "Completed"
	ProgressApproved   ProgressStatus = "Approved"
	ProgressRejected   ProgressStatus = "Rejected"
	ProgressSkipped    ProgressStatus = "Skipped"
	ProgressDelegated  ProgressStatus = "Delegated"
)

// IsOpen reports whether the step still waits for an actor.
func (s ProgressStatus) IsOpen() bool {
	return s == ProgressPending || s == ProgressInProgress
}

// IsDone reports whether the step counts as finished for dependencies and completion.
func (s ProgressStatus) IsDone() bool {
	return s == ProgressCompleted || s == ProgressApproved || s == ProgressSkipped
}

// StepProgress is the state of one workflow step for one submission.
type StepProgress struct {
	ID                 string         `json:"id"`
	SubmissionID       string         `json:"submission_id"`
	StepID             string         `json:"step_id"`
	StepOrder          int            `json:"step_order"`
	Status             ProgressStatus `json:"status"`
	ActionID           string         `json:"action_id"`
	TargetType         TargetType     `json:"target_type,omitempty"`
	TargetID           string         `json:"target_id,omitempty"`
	AssignedTo         string         `json:"assigned_to,omitempty"`
	AssignedDate       *time.Time     `json:"assigned_date,omitempty"`
	DueDate            *time.Time     `json:"due_date,omitempty"`
	ReviewedBy         string         `json:"reviewed_by,omitempty"`
	ReviewedDate       *time.Time     `json:"reviewed_date,omitempty"`
	Comments           string         `json:"comments,omitempty"`
	SignatureType      string         `json:"signature_type,omitempty"`
	SignatureData      string         `json:"signature_data,omitempty"`
	SignatureIP        string         `json:"signature_ip,omitempty"`
	SignatureTimestamp *time.Time     `json:"signature_timestamp,omitempty"`
	DelegatedTo        string         `json:"delegated_to,omitempty"`
	DelegatedBy        string         `json:"delegated_by,omitempty"`
	DelegatedDate      *time.Time     `json:"delegated_date,omitempty"`
	DelegationReason   string         `json:"delegation_reason,omitempty"`
	EscalatedTo        string         `json:"escalated_to,omitempty"`
	EscalatedDate      *time.Time     `json:"escalated_date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
