// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrCategoryNotFound indicates a category was not found by the given identifier.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrTemplateNotFound indicates a form template was not found by the given identifier.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrOptionTemplateNotFound indicates an option template was not found.
	ErrOptionTemplateNotFound = errors.New("option template not found")

	// ErrAssignmentNotFound indicates an assignment was not found.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrStepNotFound indicates a workflow step was not found.
	ErrStepNotFound = errors.New("workflow step not found")

	// ErrProgressNotFound indicates a workflow progress record was not found.
	ErrProgressNotFound = errors.New("workflow progress not found")

	// ErrSubmissionRuleNotFound indicates a submission rule was not found.
	ErrSubmissionRuleNotFound = errors.New("submission rule not found")

	// ErrSubmissionNotFound indicates a submission was not found.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrUserNotFound indicates a directory user was not found.
	ErrUserNotFound = errors.New("user not found")

	// ErrTenantNotFound indicates a directory tenant was not found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidSortField indicates a list request used a sort field outside the allowlist.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// EntityError wraps repository errors with the entity and identifier involved.
type EntityError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	Entity string // Entity kind, e.g. "template"
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *EntityError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for entity errors.
func (e *EntityError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewEntityError creates a new entity error with context.
func NewEntityError(op, entity, id string, err error) *EntityError {
	return &EntityError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// IsNotFound checks if an error indicates any entity was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrOptionTemplateNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrStepNotFound) ||
		errors.Is(err, ErrProgressNotFound) ||
		errors.Is(err, ErrSubmissionRuleNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTenantNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsSubmissionNotFound checks if an error indicates a submission was not found.
func IsSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound)
}

// IsInvalidSortField checks if an error indicates an unsupported sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
