package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// TemplateRepository handles form template database operations.
// Sections, items, options and validations are stored as a JSONB document on the template row.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

const templateColumns = `
			id
		  , category_id
		  , template_name
		  , template_code
		  , COALESCE(description, '')
		  , template_type
		  , version
		  , is_active
		  , requires_approval
		  , COALESCE(workflow_id::text, '')
		  , publish_status
		  , published_date
		  , COALESCE(published_by, '')
		  , archived_date
		  , COALESCE(archived_by, '')
		  , COALESCE(archived_reason, '')
		  , submission_mode
		  , allow_anonymous_access
		  , sections
		  , COALESCE(created_by, '')
		  , created_at
		  , COALESCE(modified_by, '')
		  , updated_at`

var templateSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "template_name",
}

func (r *TemplateRepository) GetAll(ctx context.Context) ([]*models.FormTemplate, error) {
	query := `SELECT` + templateColumns + `
		FROM form_templates
		ORDER BY created_at DESC
	`

	templates, err := queryAll(ctx, r.db, r.logger, scanTemplate, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	return templates, nil
}

func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.FormTemplate, error) {
	query := `SELECT` + templateColumns + `
		FROM form_templates
		WHERE id = $1
	`

	return r.getOne(ctx, query, id)
}

func (r *TemplateRepository) GetByCode(ctx context.Context, code string) (*models.FormTemplate, error) {
	query := `SELECT` + templateColumns + `
		FROM form_templates
		WHERE UPPER(template_code) = UPPER($1)
	`

	return r.getOne(ctx, query, code)
}

func (r *TemplateRepository) getOne(ctx context.Context, query string, args ...any) (*models.FormTemplate, error) {
	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return template, nil
}

// ListTemplates returns paginated and filtered templates.
func (r *TemplateRepository) ListTemplates(ctx context.Context, opts persistence.ListTemplatesOptions) (*persistence.TemplateListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	sortColumn, ok := templateSortColumns[opts.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	sortOrder := "DESC"
	if strings.EqualFold(opts.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	conditions := make([]string, 0)
	args := make([]any, 0)

	addCondition := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if opts.CategoryID != "" {
		addCondition("category_id = $%d", opts.CategoryID)
	}

	if opts.PublishStatus != nil {
		addCondition("publish_status = $%d", string(*opts.PublishStatus))
	}

	if opts.TemplateType != nil {
		addCondition("template_type = $%d", string(*opts.TemplateType))
	}

	if search := strings.TrimSpace(opts.Search); search != "" {
		args = append(args, "%"+search+"%")
		position := strconv.Itoa(len(args))
		conditions = append(conditions, "(template_name ILIKE $"+position+" OR template_code ILIKE $"+position+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_templates "+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	query := `SELECT` + templateColumns + `
		FROM form_templates ` + where + `
		ORDER BY ` + sortColumn + ` ` + sortOrder + `
		LIMIT ` + strconv.Itoa(opts.Limit) + ` OFFSET ` + strconv.Itoa(max(opts.Offset, 0))

	templates, err := queryAll(ctx, r.db, r.logger, scanTemplate, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return &persistence.TemplateListResult{
		Templates:   templates,
		TotalCount:  totalCount,
		HasNextPage: int64(max(opts.Offset, 0)+len(templates)) < totalCount,
	}, nil
}

// Save inserts or updates a template with its sections.
func (r *TemplateRepository) Save(ctx context.Context, template *models.FormTemplate) error {
	if template.ID == "" {
		id, err := newID("template")
		if err != nil {
			return err
		}

		template.ID = id
	}

	now := time.Now().UTC()
	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	sections := template.Sections
	if sections == nil {
		sections = []*models.Section{}
	}

	sectionsJSON, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	query := `
		INSERT INTO form_templates (id, category_id, template_name, template_code, description, template_type,
version, is_active, requires_approval, workflow_id, publish_status, published_date, published_by, archived_date,
archived_by, archived_reason, submission_mode, allow_anonymous_access, sections, created_by, created_at, modified_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			template_name = EXCLUDED.template_name,
			template_code = EXCLUDED.template_code,
			description = EXCLUDED.description,
			template_type = EXCLUDED.template_type,
			version = EXCLUDED.version,
			is_active = EXCLUDED.is_active,
			requires_approval = EXCLUDED.requires_approval,
			workflow_id = EXCLUDED.workflow_id,
			publish_status = EXCLUDED.publish_status,
			published_date = EXCLUDED.published_date,
			published_by = EXCLUDED.published_by,
			archived_date = EXCLUDED.archived_date,
			archived_by = EXCLUDED.archived_by,
			archived_reason = EXCLUDED.archived_reason,
			submission_mode = EXCLUDED.submission_mode,
			allow_anonymous_access = EXCLUDED.allow_anonymous_access,
			sections = EXCLUDED.sections,
			modified_by = EXCLUDED.modified_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.CategoryID,
		template.TemplateName,
		template.TemplateCode,
		template.Description,
		template.TemplateType,
		template.Version,
		template.IsActive,
		template.RequiresApproval,
		nullString(template.WorkflowID),
		template.PublishStatus,
		template.PublishedDate,
		template.PublishedBy,
		template.ArchivedDate,
		template.ArchivedBy,
		template.ArchivedReason,
		template.SubmissionMode,
		template.AllowAnonymousAccess,
		sectionsJSON,
		template.CreatedBy,
		template.CreatedAt,
		template.ModifiedBy,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM form_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	return nil
}

func scanTemplate(row rowScanner) (*models.FormTemplate, error) {
	var (
		template     models.FormTemplate
		sectionsJSON []byte
	)

	err := row.Scan(
		&template.ID,
		&template.CategoryID,
		&template.TemplateName,
		&template.TemplateCode,
		&template.Description,
		&template.TemplateType,
		&template.Version,
		&template.IsActive,
		&template.RequiresApproval,
		&template.WorkflowID,
		&template.PublishStatus,
		&template.PublishedDate,
		&template.PublishedBy,
		&template.ArchivedDate,
		&template.ArchivedBy,
		&template.ArchivedReason,
		&template.SubmissionMode,
		&template.AllowAnonymousAccess,
		&sectionsJSON,
		&template.CreatedBy,
		&template.CreatedAt,
		&template.ModifiedBy,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	if sectionsJSON != nil {
		err = json.Unmarshal(sectionsJSON, &template.Sections)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal template sections: %w", err)
		}
	}

	return &template, nil
}
