package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/formreport/pkg/models"
	"github.com/lib/pq"
)

// DirectoryRepository handles user and tenant database operations.
type DirectoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sql.DB, logger *slog.Logger) *DirectoryRepository {
	return &DirectoryRepository{db: db, logger: logger}
}

const userColumns = `
			id
		  , name
		  , COALESCE(email, '')
		  , COALESCE(tenant_id, '')
		  , COALESCE(department_id, '')
		  , role_ids
		  , group_ids
		  , is_active`

const tenantColumns = `
			id
		  , name
		  , COALESCE(code, '')
		  , COALESCE(type, '')
		  , group_ids
		  , is_active`

func (r *DirectoryRepository) Users(ctx context.Context) ([]*models.User, error) {
	users, err := queryAll(ctx, r.db, r.logger, scanUser, `SELECT`+userColumns+` FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return users, nil
}

func (r *DirectoryRepository) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return user, nil
}

func (r *DirectoryRepository) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		id, err := newID("user")
		if err != nil {
			return err
		}

		user.ID = id
	}

	query := `
		INSERT INTO users (id, name, email, tenant_id, department_id, role_ids, group_ids, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			tenant_id = EXCLUDED.tenant_id,
			department_id = EXCLUDED.department_id,
			role_ids = EXCLUDED.role_ids,
			group_ids = EXCLUDED.group_ids,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.TenantID,
		user.DepartmentID,
		stringArray(user.RoleIDs),
		stringArray(user.GroupIDs),
		user.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

func (r *DirectoryRepository) Tenants(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := queryAll(ctx, r.db, r.logger, scanTenant, `SELECT`+tenantColumns+` FROM tenants ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}

	return tenants, nil
}

func (r *DirectoryRepository) TenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	tenant, err := scanTenant(r.db.QueryRowContext(ctx, `SELECT`+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return tenant, nil
}

func (r *DirectoryRepository) SaveTenant(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		id, err := newID("tenant")
		if err != nil {
			return err
		}

		tenant.ID = id
	}

	query := `
		INSERT INTO tenants (id, name, code, type, group_ids, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			type = EXCLUDED.type,
			group_ids = EXCLUDED.group_ids,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Code,
		tenant.Type,
		stringArray(tenant.GroupIDs),
		tenant.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}

	return nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.TenantID,
		&user.DepartmentID,
		pq.Array(&user.RoleIDs),
		pq.Array(&user.GroupIDs),
		&user.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var tenant models.Tenant

	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Code,
		&tenant.Type,
		pq.Array(&tenant.GroupIDs),
		&tenant.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}

	return &tenant, nil
}
