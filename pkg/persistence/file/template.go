package file

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// TemplateRepository handles form template file operations.
type TemplateRepository struct {
	templates *collection[models.FormTemplate]
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(root string) *TemplateRepository {
	return &TemplateRepository{templates: newCollection[models.FormTemplate](root, "templates")}
}

func (r *TemplateRepository) GetAll(_ context.Context) ([]*models.FormTemplate, error) {
	return r.templates.all()
}

func (r *TemplateRepository) GetByID(_ context.Context, id string) (*models.FormTemplate, error) {
	return r.templates.get(id)
}

func (r *TemplateRepository) GetByCode(_ context.Context, code string) (*models.FormTemplate, error) {
	return r.templates.first(func(t *models.FormTemplate) bool {
		return strings.EqualFold(t.TemplateCode, code)
	})
}

// ListTemplates returns paginated and filtered templates with in-memory operations.
func (r *TemplateRepository) ListTemplates(_ context.Context, opts persistence.ListTemplatesOptions) (*persistence.TemplateListResult, error) {
	// Set defaults
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	if !persistence.TemplateSortFields[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	search := strings.ToLower(strings.TrimSpace(opts.Search))

	filtered, err := r.templates.filter(func(t *models.FormTemplate) bool {
		if opts.CategoryID != "" && t.CategoryID != opts.CategoryID {
			return false
		}

		if opts.PublishStatus != nil && t.PublishStatus != *opts.PublishStatus {
			return false
		}

		if opts.TemplateType != nil && t.TemplateType != *opts.TemplateType {
			return false
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(t.TemplateName), search) &&
			!strings.Contains(strings.ToLower(t.TemplateCode), search) {
			return false
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	sortTemplates(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	if opts.Offset >= len(filtered) {
		return &persistence.TemplateListResult{
			Templates:   make([]*models.FormTemplate, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	endIdx := min(opts.Offset+opts.Limit, len(filtered))

	return &persistence.TemplateListResult{
		Templates:   filtered[opts.Offset:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// sortTemplates sorts templates in-place based on the specified field and order.
func sortTemplates(templates []*models.FormTemplate, sortBy, sortOrder string) {
	sort.Slice(templates, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "updated_at":
			less = templates[i].UpdatedAt.Before(templates[j].UpdatedAt)
		case "name":
			less = templates[i].TemplateName < templates[j].TemplateName
		default:
			less = templates[i].CreatedAt.Before(templates[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}

func (r *TemplateRepository) Save(_ context.Context, template *models.FormTemplate) error {
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

	return r.templates.save(template.ID, template)
}

func (r *TemplateRepository) Delete(_ context.Context, id string) error {
	return r.templates.delete(id)
}
