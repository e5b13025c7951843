package file

import (
	"context"
	"slices"
	"strings"

	"github.com/dukex/formreport/pkg/models"
)

// DirectoryRepository handles user and tenant file operations.
type DirectoryRepository struct {
	users   *collection[models.User]
	tenants *collection[models.Tenant]
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(root string) *DirectoryRepository {
	return &DirectoryRepository{
		users:   newCollection[models.User](root, "users"),
		tenants: newCollection[models.Tenant](root, "tenants"),
	}
}

// Users returns every user sorted by name.
func (r *DirectoryRepository) Users(_ context.Context) ([]*models.User, error) {
	users, err := r.users.all()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(users, func(a, b *models.User) int {
		return strings.Compare(a.Name, b.Name)
	})

	return users, nil
}

func (r *DirectoryRepository) UserByID(_ context.Context, id string) (*models.User, error) {
	return r.users.get(id)
}

func (r *DirectoryRepository) SaveUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		id, err := newID("user")
		if err != nil {
			return err
		}

		user.ID = id
	}

	return r.users.save(user.ID, user)
}

// Tenants returns every tenant sorted by name.
func (r *DirectoryRepository) Tenants(_ context.Context) ([]*models.Tenant, error) {
	tenants, err := r.tenants.all()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(tenants, func(a, b *models.Tenant) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tenants, nil
}

func (r *DirectoryRepository) TenantByID(_ context.Context, id string) (*models.Tenant, error) {
	return r.tenants.get(id)
}

func (r *DirectoryRepository) SaveTenant(_ context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		id, err := newID("tenant")
		if err != nil {
			return err
		}

		tenant.ID = id
	}

	return r.tenants.save(tenant.ID, tenant)
}
