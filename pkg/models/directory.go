package models

import "slices"

// User is a member of the organization directory.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"                    validate:"required"`
	Email        string   `json:"email,omitempty"         validate:"omitempty,email"`
	TenantID     string   `json:"tenant_id,omitempty"`
	DepartmentID string   `json:"department_id,omitempty"`
	RoleIDs      []string `json:"role_ids,omitempty"`
	GroupIDs     []string `json:"group_ids,omitempty"`
	IsActive     bool     `json:"is_active"`
}

// HasRole reports whether the user holds roleID.
func (u *User) HasRole(roleID string) bool {
	return roleID != "" && slices.Contains(u.RoleIDs, roleID)
}

// InGroup reports whether the user belongs to the user group.
func (u *User) InGroup(groupID string) bool {
	return groupID != "" && slices.Contains(u.GroupIDs, groupID)
}

// Tenant is an organizational unit that submits reports.
type Tenant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"               validate:"required"`
	Code     string   `json:"code,omitempty"`
	Type     string   `json:"type,omitempty"`
	GroupIDs []string `json:"group_ids,omitempty"`
	IsActive bool     `json:"is_active"`
}

// InGroup reports whether the tenant belongs to the tenant group.
func (t *Tenant) InGroup(groupID string) bool {
	return groupID != "" && slices.Contains(t.GroupIDs, groupID)
}
