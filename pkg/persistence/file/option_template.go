package file

import (
	"context"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// OptionTemplateRepository handles option template file operations.
type OptionTemplateRepository struct {
	optionTemplates *collection[models.OptionTemplate]
}

// NewOptionTemplateRepository creates a new option template repository.
func NewOptionTemplateRepository(root string) *OptionTemplateRepository {
	return &OptionTemplateRepository{optionTemplates: newCollection[models.OptionTemplate](root, "option_templates")}
}

func (r *OptionTemplateRepository) GetAll(_ context.Context) ([]*models.OptionTemplate, error) {
	return r.optionTemplates.all()
}

func (r *OptionTemplateRepository) GetByID(_ context.Context, id string) (*models.OptionTemplate, error) {
	return r.optionTemplates.get(id)
}

func (r *OptionTemplateRepository) GetByCode(_ context.Context, code string) (*models.OptionTemplate, error) {
	return r.optionTemplates.first(func(o *models.OptionTemplate) bool {
		return strings.EqualFold(o.Code, code)
	})
}

func (r *OptionTemplateRepository) Save(_ context.Context, optionTemplate *models.OptionTemplate) error {
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

	return r.optionTemplates.save(optionTemplate.ID, optionTemplate)
}

func (r *OptionTemplateRepository) Delete(_ context.Context, id string) error {
	return r.optionTemplates.delete(id)
}
