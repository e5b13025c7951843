package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// SubmissionRepository handles submission database operations. Responses are stored as JSONB.
type SubmissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sql.DB, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

const submissionColumns = `
			id
		  , template_id
		  , COALESCE(tenant_id, '')
		  , reporting_year
		  , reporting_month
		  , reporting_period
		  , snapshot_date
		  , status
		  , COALESCE(submitted_by, '')
		  , submitted_date
		  , COALESCE(reviewed_by, '')
		  , reviewed_date
		  , COALESCE(approval_comments, '')
		  , COALESCE(created_by, '')
		  , created_date
		  , COALESCE(modified_by, '')
		  , modified_date
		  , last_saved_date
		  , current_section
		  , responses`

// Find returns the submissions matching filter, newest first.
// Date bounds apply to the submitted date, falling back to the created date.
func (r *SubmissionRepository) Find(ctx context.Context, filter persistence.SubmissionFilter) ([]*models.Submission, error) {
	conditions := make([]string, 0)
	args := make([]any, 0)

	addCondition := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if filter.TemplateID != "" {
		addCondition("template_id = $%d", filter.TemplateID)
	}

	if filter.TenantID != "" {
		addCondition("tenant_id = $%d", filter.TenantID)
	}

	if filter.SubmittedBy != "" {
		addCondition("submitted_by = $%d", filter.SubmittedBy)
	}

	if filter.Status != nil {
		addCondition("status = $%d", string(*filter.Status))
	}

	if filter.From != nil {
		addCondition("COALESCE(submitted_date, created_date) >= $%d", *filter.From)
	}

	if filter.To != nil {
		addCondition("COALESCE(submitted_date, created_date) <= $%d", *filter.To)
	}

	query := `SELECT` + submissionColumns + `
		FROM submissions`

	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}

	query += "\n\t\tORDER BY created_date DESC"

	submissions, err := queryAll(ctx, r.db, r.logger, scanSubmission, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT` + submissionColumns + `
		FROM submissions
		WHERE id = $1
	`

	submission, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return submission, nil
}

// Save inserts or updates a submission, generating missing response IDs.
func (r *SubmissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		id, err := newID("submission")
		if err != nil {
			return err
		}

		submission.ID = id
	}

	now := time.Now().UTC()
	if submission.CreatedDate.IsZero() {
		submission.CreatedDate = now
	}

	for _, response := range submission.Responses {
		if response.ID == "" {
			id, err := newID("response")
			if err != nil {
				return err
			}

			response.ID = id
		}

		if response.CreatedDate.IsZero() {
			response.CreatedDate = now
		}
	}

	responses := submission.Responses
	if responses == nil {
		responses = []*models.Response{}
	}

	responsesJSON, err := json.Marshal(responses)
	if err != nil {
		return fmt.Errorf("failed to marshal responses: %w", err)
	}

	query := `
		INSERT INTO submissions (id, template_id, tenant_id, reporting_year, reporting_month, reporting_period,
snapshot_date, status, submitted_by, submitted_date, reviewed_by, reviewed_date, approval_comments, created_by,
created_date, modified_by, modified_date, last_saved_date, current_section, responses)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			reporting_year = EXCLUDED.reporting_year,
			reporting_month = EXCLUDED.reporting_month,
			reporting_period = EXCLUDED.reporting_period,
			snapshot_date = EXCLUDED.snapshot_date,
			status = EXCLUDED.status,
			submitted_by = EXCLUDED.submitted_by,
			submitted_date = EXCLUDED.submitted_date,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_date = EXCLUDED.reviewed_date,
			approval_comments = EXCLUDED.approval_comments,
			modified_by = EXCLUDED.modified_by,
			modified_date = EXCLUDED.modified_date,
			last_saved_date = EXCLUDED.last_saved_date,
			current_section = EXCLUDED.current_section,
			responses = EXCLUDED.responses
	`

	_, err = r.db.ExecContext(ctx, query,
		submission.ID,
		submission.TemplateID,
		submission.TenantID,
		submission.ReportingYear,
		submission.ReportingMonth,
		submission.ReportingPeriod,
		submission.SnapshotDate,
		submission.Status,
		submission.SubmittedBy,
		submission.SubmittedDate,
		submission.ReviewedBy,
		submission.ReviewedDate,
		submission.ApprovalComments,
		submission.CreatedBy,
		submission.CreatedDate,
		submission.ModifiedBy,
		submission.ModifiedDate,
		submission.LastSavedDate,
		submission.CurrentSection,
		responsesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// Delete removes a submission. Its workflow progress is removed by cascade.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	return nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		submission    models.Submission
		responsesJSON []byte
	)

	err := row.Scan(
		&submission.ID,
		&submission.TemplateID,
		&submission.TenantID,
		&submission.ReportingYear,
		&submission.ReportingMonth,
		&submission.ReportingPeriod,
		&submission.SnapshotDate,
		&submission.Status,
		&submission.SubmittedBy,
		&submission.SubmittedDate,
		&submission.ReviewedBy,
		&submission.ReviewedDate,
		&submission.ApprovalComments,
		&submission.CreatedBy,
		&submission.CreatedDate,
		&submission.ModifiedBy,
		&submission.ModifiedDate,
		&submission.LastSavedDate,
		&submission.CurrentSection,
		&responsesJSON,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission: %w", err)
	}

	if responsesJSON != nil {
		err = json.Unmarshal(responsesJSON, &submission.Responses)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
		}
	}

	return &submission, nil
}
