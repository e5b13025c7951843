package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/lib/pq"
)

// WorkflowRepository handles workflow and workflow step database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

const workflowColumns = `
			id
		  , workflow_name
		  , COALESCE(description, '')
		  , is_active
		  , COALESCE(created_by, '')
		  , created_at
		  , COALESCE(modified_by, '')
		  , updated_at`

const workflowStepColumns = `
			id
		  , workflow_id
		  , step_order
		  , step_name
		  , action_id
		  , COALESCE(target_type, '')
		  , COALESCE(target_id, '')
		  , assignee_type
		  , COALESCE(approver_role_id, '')
		  , COALESCE(approver_user_id, '')
		  , COALESCE(assignee_department_id, '')
		  , COALESCE(assignee_field_id, '')
		  , is_mandatory
		  , is_parallel
		  , due_days
		  , COALESCE(escalation_role_id, '')
		  , COALESCE(condition_logic, '')
		  , COALESCE(auto_approve_condition, '')
		  , depends_on_step_ids`

// GetAll returns all workflows with their steps, newest first.
func (r *WorkflowRepository) GetAll(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		ORDER BY created_at DESC
	`

	workflows, err := queryAll(ctx, r.db, r.logger, scanWorkflow, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	stepsQuery := `SELECT` + workflowStepColumns + `
		FROM workflow_steps
		ORDER BY workflow_id, step_order
	`

	steps, err := queryAll(ctx, r.db, r.logger, scanWorkflowStep, stepsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflow steps: %w", err)
	}

	byWorkflow := make(map[string][]*models.WorkflowStep, len(workflows))
	for _, step := range steps {
		byWorkflow[step.WorkflowID] = append(byWorkflow[step.WorkflowID], step)
	}

	for _, workflow := range workflows {
		workflow.Steps = byWorkflow[workflow.ID]
		if workflow.Steps == nil {
			workflow.Steps = []*models.WorkflowStep{}
		}
	}

	return workflows, nil
}

// GetByID returns a workflow with its steps ordered by step order.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT` + workflowColumns + `
		FROM workflows
		WHERE id = $1
	`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	stepsQuery := `SELECT` + workflowStepColumns + `
		FROM workflow_steps
		WHERE workflow_id = $1
		ORDER BY step_order
	`

	workflow.Steps, err = queryAll(ctx, r.db, r.logger, scanWorkflowStep, stepsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps of workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Save inserts or updates a workflow and replaces its steps in one transaction.
// Steps keep their IDs so step progress stays attached across edits.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	if workflow.ID == "" {
		id, err := newID("workflow")
		if err != nil {
			return err
		}

		workflow.ID = id
	}

	for _, step := range workflow.Steps {
		if step.ID == "" {
			id, err := newID("workflow step")
			if err != nil {
				return err
			}

			step.ID = id
		}

		step.WorkflowID = workflow.ID
	}

	now := time.Now().UTC()
	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	workflowQuery := `
		INSERT INTO workflows (id, workflow_name, description, is_active, created_by, created_at, modified_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			workflow_name = EXCLUDED.workflow_name,
			description = EXCLUDED.description,
			is_active = EXCLUDED.is_active,
			modified_by = EXCLUDED.modified_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, workflowQuery,
		workflow.ID,
		workflow.WorkflowName,
		workflow.Description,
		workflow.IsActive,
		workflow.CreatedBy,
		workflow.CreatedAt,
		workflow.ModifiedBy,
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM workflow_steps WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to delete existing steps: %w", err)
	}

	err = r.saveSteps(ctx, tx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow steps: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *WorkflowRepository) saveSteps(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	query := `
		INSERT INTO workflow_steps (id, workflow_id, step_order, step_name, action_id, target_type, target_id,
assignee_type, approver_role_id, approver_user_id, assignee_department_id, assignee_field_id, is_mandatory,
is_parallel, due_days, escalation_role_id, condition_logic, auto_approve_condition, depends_on_step_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	for _, step := range workflow.Steps {
		_, err := tx.ExecContext(ctx, query,
			step.ID,
			workflow.ID,
			step.StepOrder,
			step.StepName,
			step.ActionID,
			step.TargetType,
			step.TargetID,
			step.AssigneeType,
			step.ApproverRoleID,
			step.ApproverUserID,
			step.AssigneeDepartmentID,
			step.AssigneeFieldID,
			step.IsMandatory,
			step.IsParallel,
			step.DueDays,
			step.EscalationRoleID,
			step.ConditionLogic,
			step.AutoApproveCondition,
			stringArray(step.DependsOnStepIDs),
		)
		if err != nil {
			return fmt.Errorf("failed to save step %s: %w", step.StepName, err)
		}
	}

	return nil
}

// Delete removes a workflow. Its steps are removed by cascade.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var workflow models.Workflow

	err := row.Scan(
		&workflow.ID,
		&workflow.WorkflowName,
		&workflow.Description,
		&workflow.IsActive,
		&workflow.CreatedBy,
		&workflow.CreatedAt,
		&workflow.ModifiedBy,
		&workflow.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	return &workflow, nil
}

func scanWorkflowStep(row rowScanner) (*models.WorkflowStep, error) {
	var step models.WorkflowStep

	err := row.Scan(
		&step.ID,
		&step.WorkflowID,
		&step.StepOrder,
		&step.StepName,
		&step.ActionID,
		&step.TargetType,
		&step.TargetID,
		&step.AssigneeType,
		&step.ApproverRoleID,
		&step.ApproverUserID,
		&step.AssigneeDepartmentID,
		&step.AssigneeFieldID,
		&step.IsMandatory,
		&step.IsParallel,
		&step.DueDays,
		&step.EscalationRoleID,
		&step.ConditionLogic,
		&step.AutoApproveCondition,
		pq.Array(&step.DependsOnStepIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow step: %w", err)
	}

	return &step, nil
}
