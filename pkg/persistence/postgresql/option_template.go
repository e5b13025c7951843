package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/lib/pq"
)

// OptionTemplateRepository handles option template database operations.
type OptionTemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewOptionTemplateRepository creates a new option template repository.
func NewOptionTemplateRepository(db *sql.DB, logger *slog.Logger) *OptionTemplateRepository {
	return &OptionTemplateRepository{db: db, logger: logger}
}

const optionTemplateColumns = `
			id
		  , name
		  , code
		  , category
		  , COALESCE(sub_category, '')
		  , COALESCE(description, '')
		  , usage_count
		  , display_order
		  , applicable_field_types
		  , COALESCE(recommended_for, '')
		  , has_scoring
		  , COALESCE(scoring_type, '')
		  , is_system_template
		  , COALESCE(tenant_id, '')
		  , is_active
		  , items
		  , COALESCE(created_by, '')
		  , created_at
		  , COALESCE(modified_by, '')
		  , updated_at`

func (r *OptionTemplateRepository) GetAll(ctx context.Context) ([]*models.OptionTemplate, error) {
	query := `SELECT` + optionTemplateColumns + `
		FROM option_templates
		ORDER BY category, display_order, name
	`

	optionTemplates, err := queryAll(ctx, r.db, r.logger, scanOptionTemplate, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query option templates: %w", err)
	}

	return optionTemplates, nil
}

func (r *OptionTemplateRepository) GetByID(ctx context.Context, id string) (*models.OptionTemplate, error) {
	return r.getOne(ctx, `SELECT`+optionTemplateColumns+` FROM option_templates WHERE id = $1`, id)
}

func (r *OptionTemplateRepository) GetByCode(ctx context.Context, code string) (*models.OptionTemplate, error) {
	return r.getOne(ctx, `SELECT`+optionTemplateColumns+` FROM option_templates WHERE UPPER(code) = UPPER($1)`, code)
}

func (r *OptionTemplateRepository) getOne(ctx context.Context, query string, args ...any) (*models.OptionTemplate, error) {
	optionTemplate, err := scanOptionTemplate(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return optionTemplate, nil
}

// Save inserts or updates an option template with its items.
func (r *OptionTemplateRepository) Save(ctx context.Context, optionTemplate *models.OptionTemplate) error {
	if optionTemplate.ID == "" {
		id, err := newID("option template")
		if err != nil {
			return err
		}

		optionTemplate.ID = id
	}

	now := time.Now().UTC()
	if optionTemplate.CreatedAt.IsZero() {
		optionTemplate.CreatedAt = now
	}

	optionTemplate.UpdatedAt = now

	items := optionTemplate.Items
	if items == nil {
		items = []*models.OptionTemplateItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal option template items: %w", err)
	}

	query := `
		INSERT INTO option_templates (id, name, code, category, sub_category, description, usage_count, display_order,
applicable_field_types, recommended_for, has_scoring, scoring_type, is_system_template, tenant_id, is_active, items,
created_by, created_at, modified_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			description = EXCLUDED.description,
			usage_count = EXCLUDED.usage_count,
			display_order = EXCLUDED.display_order,
			applicable_field_types = EXCLUDED.applicable_field_types,
			recommended_for = EXCLUDED.recommended_for,
			has_scoring = EXCLUDED.has_scoring,
			scoring_type = EXCLUDED.scoring_type,
			is_system_template = EXCLUDED.is_system_template,
			tenant_id = EXCLUDED.tenant_id,
			is_active = EXCLUDED.is_active,
			items = EXCLUDED.items,
			modified_by = EXCLUDED.modified_by,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		optionTemplate.ID,
		optionTemplate.Name,
		optionTemplate.Code,
		optionTemplate.Category,
		optionTemplate.SubCategory,
		optionTemplate.Description,
		optionTemplate.UsageCount,
		optionTemplate.DisplayOrder,
		stringArray(optionTemplate.ApplicableFieldTypes),
		optionTemplate.RecommendedFor,
		optionTemplate.HasScoring,
		optionTemplate.ScoringType,
		optionTemplate.IsSystemTemplate,
		optionTemplate.TenantID,
		optionTemplate.IsActive,
		itemsJSON,
		optionTemplate.CreatedBy,
		optionTemplate.CreatedAt,
		optionTemplate.ModifiedBy,
		optionTemplate.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save option template: %w", err)
	}

	return nil
}

func (r *OptionTemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM option_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete option template: %w", err)
	}

	return nil
}

func scanOptionTemplate(row rowScanner) (*models.OptionTemplate, error) {
	var (
		optionTemplate models.OptionTemplate
		itemsJSON      []byte
	)

	err := row.Scan(
		&optionTemplate.ID,
		&optionTemplate.Name,
		&optionTemplate.Code,
		&optionTemplate.Category,
		&optionTemplate.SubCategory,
		&optionTemplate.Description,
		&optionTemplate.UsageCount,
		&optionTemplate.DisplayOrder,
		pq.Array(&optionTemplate.ApplicableFieldTypes),
		&optionTemplate.RecommendedFor,
		&optionTemplate.HasScoring,
		&optionTemplate.ScoringType,
		&optionTemplate.IsSystemTemplate,
		&optionTemplate.TenantID,
		&optionTemplate.IsActive,
		&itemsJSON,
		&optionTemplate.CreatedBy,
		&optionTemplate.CreatedAt,
		&optionTemplate.ModifiedBy,
		&optionTemplate.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan option template: %w", err)
	}

	if itemsJSON != nil {
		err = json.Unmarshal(itemsJSON, &optionTemplate.Items)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal option template items: %w", err)
		}
	}

	return &optionTemplate, nil
}
