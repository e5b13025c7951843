// Package services implements the form, assignment, workflow and submission business rules on top of persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/formreport/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidSortField      = errors.New("invalid sort field")
	ErrInvalidSortOrder      = errors.New("invalid sort order")
	ErrNameRequired          = errors.New("name is required")
	ErrInvalidTemplateCode   = errors.New("invalid template code")
	ErrInvalidCondition      = errors.New("invalid condition")
	ErrTemplateIncomplete    = errors.New("template is not ready to publish")
	ErrInvalidAssignment     = errors.New("invalid assignment")
	ErrInvalidEffectiveRange = errors.New("effective until must be after effective from")
	ErrInvalidSchedule       = errors.New("invalid schedule")
	ErrCommentRequired       = errors.New("a comment is required for this action")
	ErrInvalidResponses      = errors.New("submission has invalid responses")
	ErrSubmissionTiming      = errors.New("submission is not allowed at this time")

	// Business Logic Conflicts (409 Conflict).
	ErrDuplicateCode          = errors.New("code already in use")
	ErrTemplateNotDraft       = errors.New("only draft templates can be modified")
	ErrTemplateNotPublished   = errors.New("template is not published")
	ErrTemplateArchived       = errors.New("template is archived")
	ErrTemplateHasSubmissions = errors.New("template has submissions")
	ErrTemplateNoWorkflow     = errors.New("template has no workflow")
	ErrCategoryInUse          = errors.New("category is used by templates")
	ErrSystemOptionTemplate   = errors.New("system option templates cannot be deleted")
	ErrStepInUse              = errors.New("workflow step has progress records")
	ErrAssignmentExpired      = errors.New("assignment has expired")
	ErrAssignmentNotSuspended = errors.New("assignment is not suspended")
	ErrAlreadySubmitted       = errors.New("submission already submitted")
	ErrStepNotActionable      = errors.New("workflow step cannot be acted on")
	ErrDependenciesNotMet     = errors.New("workflow step dependencies are not met")
	ErrDelegationNotAllowed   = errors.New("workflow action does not allow delegation")

	// Authorization Errors (403 Forbidden).
	ErrForbidden       = errors.New("forbidden")
	ErrNotOwner        = errors.New("submission belongs to another user")
	ErrCannotSubmitFor = errors.New("user cannot create submissions for this template")
)

// Not-found errors are the persistence sentinels so callers can match either layer.
var (
	ErrCategoryNotFound       = persistence.ErrCategoryNotFound
	ErrTemplateNotFound       = persistence.ErrTemplateNotFound
	ErrOptionTemplateNotFound = persistence.ErrOptionTemplateNotFound
	ErrAssignmentNotFound     = persistence.ErrAssignmentNotFound
	ErrWorkflowNotFound       = persistence.ErrWorkflowNotFound
	ErrStepNotFound           = persistence.ErrStepNotFound
	ErrProgressNotFound       = persistence.ErrProgressNotFound
	ErrSubmissionRuleNotFound = persistence.ErrSubmissionRuleNotFound
	ErrSubmissionNotFound     = persistence.ErrSubmissionNotFound
	ErrUserNotFound           = persistence.ErrUserNotFound
	ErrTenantNotFound         = persistence.ErrTenantNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidTemplateCode) ||
		errors.Is(err, ErrInvalidCondition) ||
		errors.Is(err, ErrTemplateIncomplete) ||
		errors.Is(err, ErrInvalidAssignment) ||
		errors.Is(err, ErrInvalidEffectiveRange) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrCommentRequired) ||
		errors.Is(err, ErrInvalidResponses) ||
		errors.Is(err, ErrSubmissionTiming)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrTemplateNotDraft) ||
		errors.Is(err, ErrTemplateNotPublished) ||
		errors.Is(err, ErrTemplateArchived) ||
		errors.Is(err, ErrTemplateHasSubmissions) ||
		errors.Is(err, ErrTemplateNoWorkflow) ||
		errors.Is(err, ErrCategoryInUse) ||
		errors.Is(err, ErrSystemOptionTemplate) ||
		errors.Is(err, ErrStepInUse) ||
		errors.Is(err, ErrAssignmentExpired) ||
		errors.Is(err, ErrAssignmentNotSuspended) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrStepNotActionable) ||
		errors.Is(err, ErrDependenciesNotMet) ||
		errors.Is(err, ErrDelegationNotAllowed)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsNotFound(err)
}

// IsForbiddenError checks if an error should return HTTP 403.
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrCannotSubmitFor)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func newConflictError(op, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: "CONFLICT", Message: message, Err: err}
}

func newForbiddenError(op, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Code: "FORBIDDEN", Message: message, Err: err}
}
