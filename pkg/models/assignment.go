package models

import "time"

// AssignmentType is the kind of target an assignment binds a template to.
type AssignmentType string

const (
	AssignmentAll            AssignmentType = "All"
	AssignmentTenantType     AssignmentType = "TenantType"
	AssignmentTenantGroup    AssignmentType = "TenantGroup"
	AssignmentSpecificTenant AssignmentType = "SpecificTenant"
	AssignmentRole           AssignmentType = "Role"
	AssignmentDepartment     AssignmentType = "Department"
	AssignmentUserGroup      AssignmentType = "UserGroup"
	AssignmentSpecificUser   AssignmentType = "SpecificUser"
)

// AssignmentStatus is the lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "Active"
	AssignmentStatusSuspended AssignmentStatus = "Suspended"
	AssignmentStatusRevoked   AssignmentStatus = "Revoked"
)

// Assignment states who may or must submit a template.
type Assignment struct {
	ID              string           `json:"id"`
	TemplateID      string           `json:"template_id"                validate:"required"`
	AssignmentType  AssignmentType   `json:"assignment_type"            validate:"required,oneof=All TenantType TenantGroup SpecificTenant Role Department UserGroup SpecificUser"`
	TenantType      string           `json:"tenant_type,omitempty"`
	TenantGroupID   string           `json:"tenant_group_id,omitempty"`
	TenantID        string           `json:"tenant_id,omitempty"`
	RoleID          string           `json:"role_id,omitempty"`
	DepartmentID    string           `json:"department_id,omitempty"`
	UserGroupID     string           `json:"user_group_id,omitempty"`
	UserID          string           `json:"user_id,omitempty"`
	EffectiveFrom   time.Time        `json:"effective_from"`
	EffectiveUntil  *time.Time       `json:"effective_until,omitempty"`
	AllowAnonymous  bool             `json:"allow_anonymous"`
	Status          AssignmentStatus `json:"status"`
	CancelledBy     string           `json:"cancelled_by,omitempty"`
	CancelledDate   *time.Time       `json:"cancelled_date,omitempty"`
	CancelledReason string           `json:"cancelled_reason,omitempty"`
	AssignedBy      string           `json:"assigned_by,omitempty"`
	AssignedDate    time.Time        `json:"assigned_date"`
	Notes           string           `json:"notes,omitempty"`
}

// IsEffective reports whether the assignment is active and inside its effective window at now.
func (a *Assignment) IsEffective(now time.Time) bool {
	if a.Status != AssignmentStatusActive {
		return false
	}

	if a.EffectiveFrom.After(now) {
		return false
	}

	return a.EffectiveUntil == nil || !a.EffectiveUntil.Before(now)
}

// IsExpired reports whether the effective window has ended before now.
func (a *Assignment) IsExpired(now time.Time) bool {
	return a.EffectiveUntil != nil && a.EffectiveUntil.Before(now)
}
