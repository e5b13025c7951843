// Package persistence provides the data storage abstraction layer for templates, workflows and submissions.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

type Persistence interface {
	CategoryRepository() CategoryRepository
	TemplateRepository() TemplateRepository
	OptionTemplateRepository() OptionTemplateRepository
	AssignmentRepository() AssignmentRepository
	WorkflowRepository() WorkflowRepository
	WorkflowActionRepository() WorkflowActionRepository
	ProgressRepository() ProgressRepository
	SubmissionRuleRepository() SubmissionRuleRepository
	SubmissionRepository() SubmissionRepository
	DirectoryRepository() DirectoryRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// CategoryRepository stores template categories.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository stores form templates together with their sections and items.
type TemplateRepository interface {
	GetAll(ctx context.Context) ([]*models.FormTemplate, error)
	GetByID(ctx context.Context, id string) (*models.FormTemplate, error)
	GetByCode(ctx context.Context, code string) (*models.FormTemplate, error)
	ListTemplates(ctx context.Context, opts ListTemplatesOptions) (*TemplateListResult, error)
	Save(ctx context.Context, template *models.FormTemplate) error
	Delete(ctx context.Context, id string) error
}

// OptionTemplateRepository stores reusable option lists.
type OptionTemplateRepository interface {
	GetAll(ctx context.Context) ([]*models.OptionTemplate, error)
	GetByID(ctx context.Context, id string) (*models.OptionTemplate, error)
	GetByCode(ctx context.Context, code string) (*models.OptionTemplate, error)
	Save(ctx context.Context, optionTemplate *models.OptionTemplate) error
	Delete(ctx context.Context, id string) error
}

// AssignmentRepository stores template assignments.
type AssignmentRepository interface {
	GetAll(ctx context.Context) ([]*models.Assignment, error)
	GetByTemplate(ctx context.Context, templateID string) ([]*models.Assignment, error)
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	Save(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

// WorkflowRepository stores workflows together with their steps.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// WorkflowActionRepository stores the workflow action catalogue.
type WorkflowActionRepository interface {
	GetAll(ctx context.Context) ([]*models.WorkflowAction, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowAction, error)
	Save(ctx context.Context, action *models.WorkflowAction) error
}

// ProgressRepository stores per-submission workflow step progress.
type ProgressRepository interface {
	GetBySubmission(ctx context.Context, submissionID string) ([]*models.StepProgress, error)
	GetByID(ctx context.Context, id string) (*models.StepProgress, error)
	GetOpen(ctx context.Context) ([]*models.StepProgress, error)
	CountByStep(ctx context.Context, stepID string) (int, error)
	Save(ctx context.Context, progress *models.StepProgress) error
	DeleteBySubmission(ctx context.Context, submissionID string) error
}

// SubmissionRuleRepository stores submission rules.
type SubmissionRuleRepository interface {
	GetAll(ctx context.Context) ([]*models.SubmissionRule, error)
	GetByTemplate(ctx context.Context, templateID string) ([]*models.SubmissionRule, error)
	GetByID(ctx context.Context, id string) (*models.SubmissionRule, error)
	Save(ctx context.Context, rule *models.SubmissionRule) error
	Delete(ctx context.Context, id string) error
}

// SubmissionRepository stores submissions together with their responses.
type SubmissionRepository interface {
	Find(ctx context.Context, filter SubmissionFilter) ([]*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	Save(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id string) error
}

// DirectoryRepository stores the users and tenants that assignments resolve against.
type DirectoryRepository interface {
	Users(ctx context.Context) ([]*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	Tenants(ctx context.Context) ([]*models.Tenant, error)
	TenantByID(ctx context.Context, id string) (*models.Tenant, error)
	SaveTenant(ctx context.Context, tenant *models.Tenant) error
}

// ListTemplatesOptions contains filtering, sorting and pagination options for listing templates.
type ListTemplatesOptions struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	CategoryID    string
	PublishStatus *models.PublishStatus
	TemplateType  *models.TemplateType
	Search        string

	// Sorting
	SortBy    string // "created_at", "updated_at", "name"
	SortOrder string // "asc", "desc"
}

// TemplateListResult contains paginated templates with metadata.
type TemplateListResult struct {
	Templates   []*models.FormTemplate `json:"templates"`
	TotalCount  int64                  `json:"total_count"`
	HasNextPage bool                   `json:"has_next_page"`
}

// SubmissionFilter selects submissions. Zero values do not filter.
type SubmissionFilter struct {
	TemplateID  string
	TenantID    string
	SubmittedBy string
	Status      *models.SubmissionStatus
	From        *time.Time
	To          *time.Time
}

// Matches reports whether the submission passes the filter. Dates compare against the effective date.
func (f SubmissionFilter) Matches(submission *models.Submission) bool {
	if f.TemplateID != "" && submission.TemplateID != f.TemplateID {
		return false
	}

	if f.TenantID != "" && submission.TenantID != f.TenantID {
		return false
	}

	if f.SubmittedBy != "" && submission.SubmittedBy != f.SubmittedBy {
		return false
	}

	if f.Status != nil && submission.Status != *f.Status {
		return false
	}

	effective := submission.EffectiveDate()
	if f.From != nil && effective.Before(*f.From) {
		return false
	}

	if f.To != nil && effective.After(*f.To) {
		return false
	}

	return true
}

// TemplateSortFields are the allowed sort fields for template listing.
var TemplateSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
}
