package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/formreport/pkg/models"
)

// WorkflowActionRepository handles the workflow action catalogue. The default actions are seeded by migration.
type WorkflowActionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowActionRepository creates a new workflow action repository.
func NewWorkflowActionRepository(db *sql.DB, logger *slog.Logger) *WorkflowActionRepository {
	return &WorkflowActionRepository{db: db, logger: logger}
}

const workflowActionColumns = `
			id
		  , action_code
		  , action_name
		  , COALESCE(description, '')
		  , requires_signature
		  , requires_comment
		  , allow_delegate
		  , COALESCE(icon_class, '')
		  , COALESCE(css_class, '')
		  , display_order
		  , is_active`

func (r *WorkflowActionRepository) GetAll(ctx context.Context) ([]*models.WorkflowAction, error) {
	query := `SELECT` + workflowActionColumns + `
		FROM workflow_actions
		ORDER BY display_order, action_name
	`

	actions, err := queryAll(ctx, r.db, r.logger, scanWorkflowAction, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow actions: %w", err)
	}

	return actions, nil
}

func (r *WorkflowActionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowAction, error) {
	query := `SELECT` + workflowActionColumns + `
		FROM workflow_actions
		WHERE id = $1
	`

	action, err := scanWorkflowAction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return action, nil
}

func (r *WorkflowActionRepository) Save(ctx context.Context, action *models.WorkflowAction) error {
	if action.ID == "" {
		action.ID = "action-" + strings.ToLower(action.ActionCode)
	}

	query := `
		INSERT INTO workflow_actions (id, action_code, action_name, description, requires_signature, requires_comment,
allow_delegate, icon_class, css_class, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			action_code = EXCLUDED.action_code,
			action_name = EXCLUDED.action_name,
			description = EXCLUDED.description,
			requires_signature = EXCLUDED.requires_signature,
			requires_comment = EXCLUDED.requires_comment,
			allow_delegate = EXCLUDED.allow_delegate,
			icon_class = EXCLUDED.icon_class,
			css_class = EXCLUDED.css_class,
			display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active
	`

	_, err := r.db.ExecContext(ctx, query,
		action.ID,
		action.ActionCode,
		action.ActionName,
		action.Description,
		action.RequiresSignature,
		action.RequiresComment,
		action.AllowDelegate,
		action.IconClass,
		action.CssClass,
		action.DisplayOrder,
		action.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow action: %w", err)
	}

	return nil
}

func scanWorkflowAction(row rowScanner) (*models.WorkflowAction, error) {
	var action models.WorkflowAction

	err := row.Scan(
		&action.ID,
		&action.ActionCode,
		&action.ActionName,
		&action.Description,
		&action.RequiresSignature,
		&action.RequiresComment,
		&action.AllowDelegate,
		&action.IconClass,
		&action.CssClass,
		&action.DisplayOrder,
		&action.IsActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow action: %w", err)
	}

	return &action, nil
}
