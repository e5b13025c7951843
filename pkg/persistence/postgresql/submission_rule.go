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

// SubmissionRuleRepository handles submission rule database operations.
type SubmissionRuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubmissionRuleRepository creates a new submission rule repository.
func NewSubmissionRuleRepository(db *sql.DB, logger *slog.Logger) *SubmissionRuleRepository {
	return &SubmissionRuleRepository{db: db, logger: logger}
}

const submissionRuleColumns = `
			id
		  , template_id
		  , rule_name
		  , COALESCE(description, '')
		  , frequency
		  , due_day
		  , due_month
		  , COALESCE(due_time, '')
		  , specific_due_date
		  , COALESCE(cron_expression, '')
		  , grace_period_days
		  , allow_late_submission
		  , COALESCE(reminder_days_before, '')
		  , send_reminders
		  , status
		  , COALESCE(created_by, '')
		  , created_at
		  , COALESCE(modified_by, '')
		  , updated_at`

func (r *SubmissionRuleRepository) GetAll(ctx context.Context) ([]*models.SubmissionRule, error) {
	query := `SELECT` + submissionRuleColumns + `
		FROM submission_rules
		ORDER BY created_at DESC
	`

	rules, err := queryAll(ctx, r.db, r.logger, scanSubmissionRule, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission rules: %w", err)
	}

	return rules, nil
}

func (r *SubmissionRuleRepository) GetByTemplate(ctx context.Context, templateID string) ([]*models.SubmissionRule, error) {
	query := `SELECT` + submissionRuleColumns + `
		FROM submission_rules
		WHERE template_id = $1
		ORDER BY created_at DESC
	`

	rules, err := queryAll(ctx, r.db, r.logger, scanSubmissionRule, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission rules for template %s: %w", templateID, err)
	}

	return rules, nil
}

func (r *SubmissionRuleRepository) GetByID(ctx context.Context, id string) (*models.SubmissionRule, error) {
	query := `SELECT` + submissionRuleColumns + `
		FROM submission_rules
		WHERE id = $1
	`

	rule, err := scanSubmissionRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return rule, nil
}

func (r *SubmissionRuleRepository) Save(ctx context.Context, rule *models.SubmissionRule) error {
	if rule.ID == "" {
		id, err := newID("submission rule")
		if err != nil {
			return err
		}

		rule.ID = id
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	query := `
		INSERT INTO submission_rules (id, template_id, rule_name, description, frequency, due_day, due_month, due_time,
specific_due_date, cron_expression, grace_period_days, allow_late_submission, reminder_days_before, send_reminders,
status, created_by, created_at, modified_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			rule_name = EXCLUDED.rule_name,
			description = EXCLUDED.description,
			frequency = EXCLUDED.frequency,
			due_day = EXCLUDED.due_day,
			due_month = EXCLUDED.due_month,
			due_time = EXCLUDED.due_time,
			specific_due_date = EXCLUDED.specific_due_date,
			cron_expression = EXCLUDED.cron_expression,
			grace_period_days = EXCLUDED.grace_period_days,
			allow_late_submission = EXCLUDED.allow_late_submission,
			reminder_days_before = EXCLUDED.reminder_days_before,
			send_reminders = EXCLUDED.send_reminders,
			status = EXCLUDED.status,
			modified_by = EXCLUDED.modified_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.TemplateID,
		rule.RuleName,
		rule.Description,
		rule.Frequency,
		rule.DueDay,
		rule.DueMonth,
		rule.DueTime,
		rule.SpecificDueDate,
		rule.CronExpression,
		rule.GracePeriodDays,
		rule.AllowLateSubmission,
		rule.ReminderDaysBefore,
		rule.SendReminders,
		rule.Status,
		rule.CreatedBy,
		rule.CreatedAt,
		rule.ModifiedBy,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission rule: %w", err)
	}

	return nil
}

func (r *SubmissionRuleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM submission_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission rule: %w", err)
	}

	return nil
}

func scanSubmissionRule(row rowScanner) (*models.SubmissionRule, error) {
	var rule models.SubmissionRule

	err := row.Scan(
		&rule.ID,
		&rule.TemplateID,
		&rule.RuleName,
		&rule.Description,
		&rule.Frequency,
		&rule.DueDay,
		&rule.DueMonth,
		&rule.DueTime,
		&rule.SpecificDueDate,
		&rule.CronExpression,
		&rule.GracePeriodDays,
		&rule.AllowLateSubmission,
		&rule.ReminderDaysBefore,
		&rule.SendReminders,
		&rule.Status,
		&rule.CreatedBy,
		&rule.CreatedAt,
		&rule.ModifiedBy,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan submission rule: %w", err)
	}

	return &rule, nil
}
