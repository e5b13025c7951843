package web

import (
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/services"
)

// CreateTemplateRequest is the body of POST /templates. RequiresApproval defaults to true.
type CreateTemplateRequest struct {
	TemplateName         string                `json:"template_name"                    validate:"required,max=200"`
	TemplateCode         string                `json:"template_code,omitempty"          validate:"omitempty,max=50"`
	Description          string                `json:"description,omitempty"`
	CategoryID           string                `json:"category_id"                      validate:"required"`
	TemplateType         models.TemplateType   `json:"template_type"                    validate:"required,oneof=Daily Weekly Monthly Quarterly Annual"`
	RequiresApproval     *bool                 `json:"requires_approval,omitempty"`
	WorkflowID           string                `json:"workflow_id,omitempty"`
	SubmissionMode       models.SubmissionMode `json:"submission_mode,omitempty"        validate:"omitempty,oneof=Individual Collaborative"`
	AllowAnonymousAccess bool                  `json:"allow_anonymous_access"`
}

// Template converts the request to a model.
func (r *CreateTemplateRequest) Template() *models.FormTemplate {
	requiresApproval := true
	if r.RequiresApproval != nil {
		requiresApproval = *r.RequiresApproval
	}

	return &models.FormTemplate{
		TemplateName:         r.TemplateName,
		TemplateCode:         r.TemplateCode,
		Description:          r.Description,
		CategoryID:           r.CategoryID,
		TemplateType:         r.TemplateType,
		RequiresApproval:     requiresApproval,
		WorkflowID:           r.WorkflowID,
		SubmissionMode:       r.SubmissionMode,
		AllowAnonymousAccess: r.AllowAnonymousAccess,
	}
}

// UpdateTemplateRequest is a partial template update. Omitted fields are left untouched.
type UpdateTemplateRequest struct {
	TemplateName         *string                `json:"template_name,omitempty"          validate:"omitempty,min=1,max=200"`
	TemplateCode         *string                `json:"template_code,omitempty"          validate:"omitempty,max=50"`
	Description          *string                `json:"description,omitempty"`
	CategoryID           *string                `json:"category_id,omitempty"`
	TemplateType         *models.TemplateType   `json:"template_type,omitempty"          validate:"omitempty,oneof=Daily Weekly Monthly Quarterly Annual"`
	RequiresApproval     *bool                  `json:"requires_approval,omitempty"`
	WorkflowID           *string                `json:"workflow_id,omitempty"`
	SubmissionMode       *models.SubmissionMode `json:"submission_mode,omitempty"        validate:"omitempty,oneof=Individual Collaborative"`
	AllowAnonymousAccess *bool                  `json:"allow_anonymous_access,omitempty"`
	IsActive             *bool                  `json:"is_active,omitempty"`
}

func (r *UpdateTemplateRequest) Update() services.TemplateUpdate {
	return services.TemplateUpdate{
		TemplateName:         r.TemplateName,
		TemplateCode:         r.TemplateCode,
		Description:          r.Description,
		CategoryID:           r.CategoryID,
		TemplateType:         r.TemplateType,
		RequiresApproval:     r.RequiresApproval,
		WorkflowID:           r.WorkflowID,
		SubmissionMode:       r.SubmissionMode,
		AllowAnonymousAccess: r.AllowAnonymousAccess,
		IsActive:             r.IsActive,
	}
}

// UpdateStructureRequest replaces the sections of a Draft template.
type UpdateStructureRequest struct {
	Sections []*models.Section `json:"sections"`
}

type ArchiveRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ApplyOptionTemplateRequest struct {
	OptionTemplateID string `json:"option_template_id" validate:"required"`
}

// UpdateAssignmentRequest is a partial assignment update. Omitted fields are left untouched.
type UpdateAssignmentRequest struct {
	AssignmentType *models.AssignmentType `json:"assignment_type,omitempty" validate:"omitempty,oneof=All TenantType TenantGroup SpecificTenant Role Department UserGroup SpecificUser"`
	TenantType     *string                `json:"tenant_type,omitempty"`
	TenantGroupID  *string                `json:"tenant_group_id,omitempty"`
	TenantID       *string                `json:"tenant_id,omitempty"`
	RoleID         *string                `json:"role_id,omitempty"`
	DepartmentID   *string                `json:"department_id,omitempty"`
	UserGroupID    *string                `json:"user_group_id,omitempty"`
	UserID         *string                `json:"user_id,omitempty"`
	EffectiveFrom  *time.Time             `json:"effective_from,omitempty"`
	EffectiveUntil *time.Time             `json:"effective_until,omitempty"`
	AllowAnonymous *bool                  `json:"allow_anonymous,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
}

func (r *UpdateAssignmentRequest) Update() services.AssignmentUpdate {
	return services.AssignmentUpdate{
		AssignmentType: r.AssignmentType,
		TenantType:     r.TenantType,
		TenantGroupID:  r.TenantGroupID,
		TenantID:       r.TenantID,
		RoleID:         r.RoleID,
		DepartmentID:   r.DepartmentID,
		UserGroupID:    r.UserGroupID,
		UserID:         r.UserID,
		EffectiveFrom:  r.EffectiveFrom,
		EffectiveUntil: r.EffectiveUntil,
		AllowAnonymous: r.AllowAnonymous,
		Notes:          r.Notes,
	}
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type ExtendRequest struct {
	Until time.Time `json:"until" validate:"required"`
}

type BulkExtendRequest struct {
	IDs   []string  `json:"ids"   validate:"required,min=1"`
	Until time.Time `json:"until" validate:"required"`
}

type BulkCancelRequest struct {
	IDs    []string `json:"ids"    validate:"required,min=1"`
	Reason string   `json:"reason"`
}

// UpdateWorkflowRequest is a partial workflow update. Omitted fields are left untouched.
type UpdateWorkflowRequest struct {
	WorkflowName *string `json:"workflow_name,omitempty" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r *UpdateWorkflowRequest) Update() services.WorkflowUpdate {
	return services.WorkflowUpdate{
		WorkflowName: r.WorkflowName,
		Description:  r.Description,
		IsActive:     r.IsActive,
	}
}

// UpdateStepRequest is a partial step update. Omitted fields are left untouched.
type UpdateStepRequest struct {
	StepOrder            *int                 `json:"step_order,omitempty"`
	StepName             *string              `json:"step_name,omitempty"              validate:"omitempty,min=1"`
	ActionID             *string              `json:"action_id,omitempty"`
	TargetType           *models.TargetType   `json:"target_type,omitempty"`
	TargetID             *string              `json:"target_id,omitempty"`
	AssigneeType         *models.AssigneeType `json:"assignee_type,omitempty"`
	ApproverRoleID       *string              `json:"approver_role_id,omitempty"`
	ApproverUserID       *string              `json:"approver_user_id,omitempty"`
	AssigneeDepartmentID *string              `json:"assignee_department_id,omitempty"`
	AssigneeFieldID      *string              `json:"assignee_field_id,omitempty"`
	IsMandatory          *bool                `json:"is_mandatory,omitempty"`
	IsParallel           *bool                `json:"is_parallel,omitempty"`
	DueDays              *int                 `json:"due_days,omitempty"               validate:"omitempty,min=0"`
	EscalationRoleID     *string              `json:"escalation_role_id,omitempty"`
	ConditionLogic       *string              `json:"condition_logic,omitempty"`
	AutoApproveCondition *string              `json:"auto_approve_condition,omitempty"`
	DependsOnStepIDs     []string             `json:"depends_on_step_ids,omitempty"`
}

func (r *UpdateStepRequest) Update() services.StepUpdate {
	return services.StepUpdate{
		StepOrder:            r.StepOrder,
		StepName:             r.StepName,
		ActionID:             r.ActionID,
		TargetType:           r.TargetType,
		TargetID:             r.TargetID,
		AssigneeType:         r.AssigneeType,
		ApproverRoleID:       r.ApproverRoleID,
		ApproverUserID:       r.ApproverUserID,
		AssigneeDepartmentID: r.AssigneeDepartmentID,
		AssigneeFieldID:      r.AssigneeFieldID,
		IsMandatory:          r.IsMandatory,
		IsParallel:           r.IsParallel,
		DueDays:              r.DueDays,
		EscalationRoleID:     r.EscalationRoleID,
		ConditionLogic:       r.ConditionLogic,
		AutoApproveCondition: r.AutoApproveCondition,
		DependsOnStepIDs:     r.DependsOnStepIDs,
	}
}

type ReorderStepsRequest struct {
	Orders []services.StepOrder `json:"orders" validate:"required,min=1"`
}

type CloneWorkflowRequest struct {
	WorkflowName string `json:"workflow_name" validate:"required,max=200"`
}

// RulePreview describes the schedule of a rule without saving it.
type RulePreview struct {
	Valid        bool        `json:"valid"`
	Error        string      `json:"error,omitempty"`
	Description  string      `json:"description"`
	NextDueDates []time.Time `json:"next_due_dates"`
}

type ReminderResponse struct {
	RuleID     string    `json:"rule_id"`
	RuleName   string    `json:"rule_name"`
	TemplateID string    `json:"template_id"`
	DueDate    time.Time `json:"due_date"`
	DaysBefore int       `json:"days_before"`
}

// SaveDraftRequest is the body of POST /submissions/draft. Values are keyed by item ID.
type SaveDraftRequest struct {
	SubmissionID    string            `json:"submission_id,omitempty"`
	TemplateID      string            `json:"template_id"                validate:"required_without=SubmissionID"`
	TenantID        string            `json:"tenant_id,omitempty"`
	ReportingPeriod *time.Time        `json:"reporting_period,omitempty"`
	Values          map[string]string `json:"values"`
	CurrentSection  int               `json:"current_section"            validate:"min=0"`
}

func (r *SaveDraftRequest) Draft() services.DraftRequest {
	return services.DraftRequest{
		SubmissionID:    r.SubmissionID,
		TemplateID:      r.TemplateID,
		TenantID:        r.TenantID,
		ReportingPeriod: r.ReportingPeriod,
		Values:          r.Values,
		CurrentSection:  r.CurrentSection,
	}
}

type CompleteStepRequest struct {
	Comments      string `json:"comments,omitempty"`
	SignatureType string `json:"signature_type,omitempty"`
	SignatureData string `json:"signature_data,omitempty"`
}

type RejectStepRequest struct {
	Reason string `json:"reason"`
}

type DelegateStepRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	Reason   string `json:"reason"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
