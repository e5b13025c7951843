package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// Directory resolves users, tenants and role membership.
type Directory struct {
	persistence persistence.Persistence
}

func NewDirectory(persistence persistence.Persistence) *Directory {
	return &Directory{persistence: persistence}
}

func (d *Directory) Users(ctx context.Context) ([]*models.User, error) {
	users, err := d.persistence.DirectoryRepository().Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (d *Directory) User(ctx context.Context, id string) (*models.User, error) {
	user, err := d.persistence.DirectoryRepository().UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (d *Directory) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		return nil, NewValidationError("SaveUser", "NAME_REQUIRED", "user name is required", ErrNameRequired)
	}

	err := d.persistence.DirectoryRepository().SaveUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

func (d *Directory) Tenants(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := d.persistence.DirectoryRepository().Tenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	return tenants, nil
}

func (d *Directory) Tenant(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := d.persistence.DirectoryRepository().TenantByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	return tenant, nil
}

func (d *Directory) SaveTenant(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error) {
	if strings.TrimSpace(tenant.Name) == "" {
		return nil, NewValidationError("SaveTenant", "NAME_REQUIRED", "tenant name is required", ErrNameRequired)
	}

	err := d.persistence.DirectoryRepository().SaveTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	return tenant, nil
}

// UsersInRole returns the active users holding roleID, ordered by name.
func (d *Directory) UsersInRole(ctx context.Context, roleID string) ([]*models.User, error) {
	users, err := d.Users(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]*models.User, 0)
	for _, user := range users {
		if user.IsActive && user.HasRole(roleID) {
			members = append(members, user)
		}
	}

	slices.SortStableFunc(members, func(a, b *models.User) int {
		return strings.Compare(a.Name, b.Name)
	})

	return members, nil
}

// HasRole reports whether the user exists and holds roleID.
func (d *Directory) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	user, err := d.persistence.DirectoryRepository().UserByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	return user != nil && user.HasRole(roleID), nil
}

// FirstActiveUserInRole returns nil when nobody active holds the role.
func (d *Directory) FirstActiveUserInRole(ctx context.Context, roleID string) (*models.User, error) {
	members, err := d.UsersInRole(ctx, roleID)
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, nil
	}

	return members[0], nil
}

// tenantOf returns the user's tenant, or nil.
func (d *Directory) tenantOf(ctx context.Context, user *models.User) (*models.Tenant, error) {
	if user.TenantID == "" {
		return nil, nil
	}

	tenant, err := d.persistence.DirectoryRepository().TenantByID(ctx, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}
