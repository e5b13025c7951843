package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// AssignmentRepository handles assignment database operations.
type AssignmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sql.DB, logger *slog.Logger) *AssignmentRepository {
	return &AssignmentRepository{db: db, logger: logger}
}

const assignmentColumns = `
			id
		  , template_id
		  , assignment_type
		  , COALESCE(tenant_type, '')
		  , COALESCE(tenant_group_id, '')
		  , COALESCE(tenant_id, '')
		  , COALESCE(role_id, '')
		  , COALESCE(department_id, '')
		  , COALESCE(user_group_id, '')
		  , COALESCE(user_id, '')
		  , effective_from
		  , effective_until
		  , allow_anonymous
		  , status
		  , COALESCE(cancelled_by, '')
		  , cancelled_date
		  , COALESCE(cancelled_reason, '')
		  , COALESCE(assigned_by, '')
		  , assigned_date
		  , COALESCE(notes, '')`

func (r *AssignmentRepository) GetAll(ctx context.Context) ([]*models.Assignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM assignments
		ORDER BY assigned_date DESC
	`

	assignments, err := queryAll(ctx, r.db, r.logger, scanAssignment, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}

	return assignments, nil
}

func (r *AssignmentRepository) GetByTemplate(ctx context.Context, templateID string) ([]*models.Assignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM assignments
		WHERE template_id = $1
		ORDER BY assigned_date DESC
	`

	assignments, err := queryAll(ctx, r.db, r.logger, scanAssignment, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for template %s: %w", templateID, err)
	}

	return assignments, nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM assignments
		WHERE id = $1
	`

	assignment, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return assignment, nil
}

func (r *AssignmentRepository) Save(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		id, err := newID("assignment")
		if err != nil {
			return err
		}

		assignment.ID = id
	}

	if assignment.AssignedDate.IsZero() {
		assignment.AssignedDate = time.Now().UTC()
	}

	query := `
		INSERT INTO assignments (id, template_id, assignment_type, tenant_type, tenant_group_id, tenant_id, role_id,
department_id, user_group_id, user_id, effective_from, effective_until, allow_anonymous, status, cancelled_by,
cancelled_date, cancelled_reason, assigned_by, assigned_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			assignment_type = EXCLUDED.assignment_type,
			tenant_type = EXCLUDED.tenant_type,
			tenant_group_id = EXCLUDED.tenant_group_id,
			tenant_id = EXCLUDED.tenant_id,
			role_id = EXCLUDED.role_id,
			department_id = EXCLUDED.department_id,
			user_group_id = EXCLUDED.user_group_id,
			user_id = EXCLUDED.user_id,
			effective_from = EXCLUDED.effective_from,
			effective_until = EXCLUDED.effective_until,
			allow_anonymous = EXCLUDED.allow_anonymous,
			status = EXCLUDED.status,
			cancelled_by = EXCLUDED.cancelled_by,
			cancelled_date = EXCLUDED.cancelled_date,
			cancelled_reason = EXCLUDED.cancelled_reason,
			notes = EXCLUDED.notes
	`

	_, err := r.db.ExecContext(ctx, query,
		assignment.ID,
		assignment.TemplateID,
		assignment.AssignmentType,
		assignment.TenantType,
		assignment.TenantGroupID,
		assignment.TenantID,
		assignment.RoleID,
		assignment.DepartmentID,
		assignment.UserGroupID,
		assignment.UserID,
		assignment.EffectiveFrom,
		assignment.EffectiveUntil,
		assignment.AllowAnonymous,
		assignment.Status,
		assignment.CancelledBy,
		assignment.CancelledDate,
		assignment.CancelledReason,
		assignment.AssignedBy,
		assignment.AssignedDate,
		assignment.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}

	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	return nil
}

func scanAssignment(row rowScanner) (*models.Assignment, error) {
	var assignment models.Assignment

	err := row.Scan(
		&assignment.ID,
		&assignment.TemplateID,
		&assignment.AssignmentType,
		&assignment.TenantType,
		&assignment.TenantGroupID,
		&assignment.TenantID,
		&assignment.RoleID,
		&assignment.DepartmentID,
		&assignment.UserGroupID,
		&assignment.UserID,
		&assignment.EffectiveFrom,
		&assignment.EffectiveUntil,
		&assignment.AllowAnonymous,
		&assignment.Status,
		&assignment.CancelledBy,
		&assignment.CancelledDate,
		&assignment.CancelledReason,
		&assignment.AssignedBy,
		&assignment.AssignedDate,
		&assignment.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}

	return &assignment, nil
}
