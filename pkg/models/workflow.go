// Package models defines the domain models for form templates, assignments, approval workflows and submissions.
package models

import (
	"slices"
	"time"
)

// Workflow is an ordered sequence of approval steps attached to a template.
type Workflow struct {
	ID           string          `json:"id"`
	WorkflowName string          `json:"workflow_name"        validate:"required,max=200"`
	Description  string          `json:"description,omitempty"`
	IsActive     bool            `json:"is_active"`
	Steps        []*WorkflowStep `json:"steps"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ModifiedBy   string          `json:"modified_by,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SortSteps orders the steps by StepOrder.
func (w *Workflow) SortSteps() {
	slices.SortStableFunc(w.Steps, func(a, b *WorkflowStep) int {
		return a.StepOrder - b.StepOrder
	})
}

// Step returns the step with the given ID.
func (w *Workflow) Step(stepID string) *WorkflowStep {
	for _, step := range w.Steps {
		if step.ID == stepID {
			return step
		}
	}

	return nil
}

// MaxStepOrder returns the highest step order, or 0 without steps.
func (w *Workflow) MaxStepOrder() int {
	highest := 0
	for _, step := range w.Steps {
		highest = max(highest, step.StepOrder)
	}

	return highest
}

// WorkflowAction is a kind of work a step asks for: Fill, Sign, Approve, Reject, Review or Verify.
type WorkflowAction struct {
	ID                string `json:"id"`
	ActionCode        string `json:"action_code"`
	ActionName        string `json:"action_name"`
	Description       string `json:"description,omitempty"`
	RequiresSignature bool   `json:"requires_signature"`
	RequiresComment   bool   `json:"requires_comment"`
	AllowDelegate     bool   `json:"allow_delegate"`
	IconClass         string `json:"icon_class,omitempty"`
	CssClass          string `json:"css_class,omitempty"`
	DisplayOrder      int    `json:"display_order"`
	IsActive          bool   `json:"is_active"`
}

const (
	ActionFill    = "Fill"
	ActionSign    = "Sign"
	ActionApprove = "Approve"
	ActionReject  = "Reject"
	ActionReview  = "Review"
	ActionVerify  = "Verify"
)

// DefaultWorkflowActions returns the seeded action catalogue.
func DefaultWorkflowActions() []*WorkflowAction {
	return []*WorkflowAction{
		{ID: "action-fill", ActionCode: ActionFill, ActionName: "Fill", Description: "Fill in the assigned part of the form", IconClass: "ri-edit-line", CssClass: "primary", DisplayOrder: 1, AllowDelegate: true, IsActive: true},
		{ID: "action-sign", ActionCode: ActionSign, ActionName: "Sign", Description: "Sign off the submission", IconClass: "ri-quill-pen-line", CssClass: "info", DisplayOrder: 2, RequiresSignature: true, IsActive: true},
		{ID: "action-approve", ActionCode: ActionApprove, ActionName: "Approve", Description: "Approve the submission", IconClass: "ri-checkbox-circle-line", CssClass: "success", DisplayOrder: 3, AllowDelegate: true, IsActive: true},
		{ID: "action-reject", ActionCode: ActionReject, ActionName: "Reject", Description: "Reject the submission", IconClass: "ri-close-circle-line", CssClass: "danger", DisplayOrder: 4, RequiresComment: true, IsActive: true},
		{ID: "action-review", ActionCode: ActionReview, ActionName: "Review", Description: "Review the submission", IconClass: "ri-eye-line", CssClass: "warning", DisplayOrder: 5, AllowDelegate: true, IsActive: true},
		{ID: "action-verify", ActionCode: ActionVerify, ActionName: "Verify", Description: "Verify the submitted data", IconClass: "ri-shield-check-line", CssClass: "secondary", DisplayOrder: 6, AllowDelegate: true, IsActive: true},
	}
}
