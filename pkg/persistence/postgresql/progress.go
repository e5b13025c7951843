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

// ProgressRepository handles workflow step progress database operations.
type ProgressRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *sql.DB, logger *slog.Logger) *ProgressRepository {
	return &ProgressRepository{db: db, logger: logger}
}

const progressColumns = `
			id
		  , submission_id
		  , step_id
		  , step_order
		  , status
		  , action_id
		  , COALESCE(target_type, '')
		  , COALESCE(target_id, '')
		  , COALESCE(assigned_to, '')
		  , assigned_date
		  , due_date
		  , COALESCE(reviewed_by, '')
		  , reviewed_date
		  , COALESCE(comments, '')
		  , COALESCE(signature_type, '')
		  , COALESCE(signature_data, '')
		  , COALESCE(signature_ip, '')
		  , signature_timestamp
		  , COALESCE(delegated_to, '')
		  , COALESCE(delegated_by, '')
		  , delegated_date
		  , COALESCE(delegation_reason, '')
		  , COALESCE(escalated_to, '')
		  , escalated_date
		  , created_at
		  , updated_at`

// GetBySubmission returns the progress records of a submission ordered by step order.
func (r *ProgressRepository) GetBySubmission(ctx context.Context, submissionID string) ([]*models.StepProgress, error) {
	query := `SELECT` + progressColumns + `
		FROM workflow_progress
		WHERE submission_id = $1
		ORDER BY step_order, created_at
	`

	records, err := queryAll(ctx, r.db, r.logger, scanProgress, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress of submission %s: %w", submissionID, err)
	}

	return records, nil
}

func (r *ProgressRepository) GetByID(ctx context.Context, id string) (*models.StepProgress, error) {
	query := `SELECT` + progressColumns + `
		FROM workflow_progress
		WHERE id = $1
	`

	record, err := scanProgress(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return record, nil
}

// GetOpen returns every Pending or InProgress record.
func (r *ProgressRepository) GetOpen(ctx context.Context) ([]*models.StepProgress, error) {
	query := `SELECT` + progressColumns + `
		FROM workflow_progress
		WHERE status IN ($1, $2)
		ORDER BY due_date NULLS LAST, created_at
	`

	records, err := queryAll(ctx, r.db, r.logger, scanProgress, query, models.ProgressPending, models.ProgressInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to query open progress: %w", err)
	}

	return records, nil
}

// CountByStep returns how many progress records reference the step.
func (r *ProgressRepository) CountByStep(ctx context.Context, stepID string) (int, error) {
	var count int

	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workflow_progress WHERE step_id = $1`, stepID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count progress for step %s: %w", stepID, err)
	}

	return count, nil
}

func (r *ProgressRepository) Save(ctx context.Context, progress *models.StepProgress) error {
	if progress.ID == "" {
		id, err := newID("workflow progress")
		if err != nil {
			return err
		}

		progress.ID = id
	}

	now := time.Now().UTC()
	if progress.CreatedAt.IsZero() {
		progress.CreatedAt = now
	}

	progress.UpdatedAt = now

	query := `
		INSERT INTO workflow_progress (id, submission_id, step_id, step_order, status, action_id, target_type, target_id,
assigned_to, assigned_date, due_date, reviewed_by, reviewed_date, comments, signature_type, signature_data, signature_ip,
signature_timestamp, delegated_to, delegated_by, delegated_date, delegation_reason, escalated_to, escalated_date,
created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23,
$24, $25, $26)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			target_type = EXCLUDED.target_type,
			target_id = EXCLUDED.target_id,
			assigned_to = EXCLUDED.assigned_to,
			assigned_date = EXCLUDED.assigned_date,
			due_date = EXCLUDED.due_date,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_date = EXCLUDED.reviewed_date,
			comments = EXCLUDED.comments,
			signature_type = EXCLUDED.signature_type,
			signature_data = EXCLUDED.signature_data,
			signature_ip = EXCLUDED.signature_ip,
			signature_timestamp = EXCLUDED.signature_timestamp,
			delegated_to = EXCLUDED.delegated_to,
			delegated_by = EXCLUDED.delegated_by,
			delegated_date = EXCLUDED.delegated_date,
			delegation_reason = EXCLUDED.delegation_reason,
			escalated_to = EXCLUDED.escalated_to,
			escalated_date = EXCLUDED.escalated_date,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		progress.ID,
		progress.SubmissionID,
		progress.StepID,
		progress.StepOrder,
		progress.Status,
		progress.ActionID,
		progress.TargetType,
		progress.TargetID,
		progress.AssignedTo,
		progress.AssignedDate,
		progress.DueDate,
		progress.ReviewedBy,
		progress.ReviewedDate,
		progress.Comments,
		progress.SignatureType,
		progress.SignatureData,
		progress.SignatureIP,
		progress.SignatureTimestamp,
		progress.DelegatedTo,
		progress.DelegatedBy,
		progress.DelegatedDate,
		progress.DelegationReason,
		progress.EscalatedTo,
		progress.EscalatedDate,
		progress.CreatedAt,
		progress.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow progress: %w", err)
	}

	return nil
}

func (r *ProgressRepository) DeleteBySubmission(ctx context.Context, submissionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workflow_progress WHERE submission_id = $1`, submissionID)
	if err != nil {
		return fmt.Errorf("failed to delete progress of submission %s: %w", submissionID, err)
	}

	return nil
}

func scanProgress(row rowScanner) (*models.StepProgress, error) {
	var progress models.StepProgress

	err := row.Scan(
		&progress.ID,
		&progress.SubmissionID,
		&progress.StepID,
		&progress.StepOrder,
		&progress.Status,
		&progress.ActionID,
		&progress.TargetType,
		&progress.TargetID,
		&progress.AssignedTo,
		&progress.AssignedDate,
		&progress.DueDate,
		&progress.ReviewedBy,
		&progress.ReviewedDate,
		&progress.Comments,
		&progress.SignatureType,
		&progress.SignatureData,
		&progress.SignatureIP,
		&progress.SignatureTimestamp,
		&progress.DelegatedTo,
		&progress.DelegatedBy,
		&progress.DelegatedDate,
		&progress.DelegationReason,
		&progress.EscalatedTo,
		&progress.EscalatedDate,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan workflow progress: %w", err)
	}

	return &progress, nil
}
