package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dukex/formreport/pkg/models"
	"github.com/dukex/formreport/pkg/persistence"
)

// optionFieldTypes are the item data types that carry a choice list.
var optionFieldTypes = []string{"dropdown", "select", "radio", "checkbox", "checkboxgroup", "multiselect"}

type OptionTemplate struct {
	persistence persistence.Persistence
}

func NewOptionTemplate(persistence persistence.Persistence) *OptionTemplate {
	return &OptionTemplate{persistence: persistence}
}

func (o *OptionTemplate) all(ctx context.Context) ([]*models.OptionTemplate, error) {
	optionTemplates, err := o.persistence.OptionTemplateRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list option templates: %w", err)
	}

	slices.SortStableFunc(optionTemplates, func(a, b *models.OptionTemplate) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}

		return strings.Compare(a.Name, b.Name)
	})

	return optionTemplates, nil
}

func (o *OptionTemplate) activeWhere(ctx context.Context, keep func(*models.OptionTemplate) bool) ([]*models.OptionTemplate, error) {
	optionTemplates, err := o.all(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(optionTemplates, func(ot *models.OptionTemplate) bool {
		return !ot.IsActive || !keep(ot)
	}), nil
}

// Active returns active option templates ordered by display order, then name.
func (o *OptionTemplate) Active(ctx context.Context) ([]*models.OptionTemplate, error) {
	return o.activeWhere(ctx, func(*models.OptionTemplate) bool { return true })
}

func (o *OptionTemplate) ByCategory(ctx context.Context, category string) ([]*models.OptionTemplate, error) {
	return o.activeWhere(ctx, func(ot *models.OptionTemplate) bool {
		return strings.EqualFold(ot.Category, category)
	})
}

// ByFieldType returns the active option templates usable for a field type.
func (o *OptionTemplate) ByFieldType(ctx context.Context, fieldType string) ([]*models.OptionTemplate, error) {
	return o.activeWhere(ctx, func(ot *models.OptionTemplate) bool {
		return ot.AppliesTo(fieldType)
	})
}

func (o *OptionTemplate) ByCode(ctx context.Context, code string) (*models.OptionTemplate, error) {
	optionTemplate, err := o.persistence.OptionTemplateRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get option template: %w", err)
	}

	if optionTemplate == nil {
		return nil, ErrOptionTemplateNotFound
	}

	return optionTemplate, nil
}

func (o *OptionTemplate) Get(ctx context.Context, id string) (*models.OptionTemplate, error) {
	optionTemplate, err := o.persistence.OptionTemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get option template: %w", err)
	}

	if optionTemplate == nil {
		return nil, ErrOptionTemplateNotFound
	}

	return optionTemplate, nil
}

// Categories returns the distinct categories of active option templates, sorted.
func (o *OptionTemplate) Categories(ctx context.Context) ([]string, error) {
	optionTemplates, err := o.Active(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0)
	for _, ot := range optionTemplates {
		if ot.Category != "" && !slices.Contains(categories, ot.Category) {
			categories = append(categories, ot.Category)
		}
	}

	slices.Sort(categories)

	return categories, nil
}

func (o *OptionTemplate) SelectList(ctx context.Context) ([]models.SelectItem, error) {
	optionTemplates, err := o.Active(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.SelectItem, 0, len(optionTemplates))
	for _, ot := range optionTemplates {
		items = append(items, models.SelectItem{Value: ot.ID, Text: ot.Name})
	}

	return items, nil
}

func (o *OptionTemplate) IncrementUsage(ctx context.Context, id string) error {
	optionTemplate, err := o.Get(ctx, id)
	if err != nil {
		return err
	}

	optionTemplate.UsageCount++

	err = o.persistence.OptionTemplateRepository().Save(ctx, optionTemplate)
	if err != nil {
		return fmt.Errorf("failed to update option template usage: %w", err)
	}

	return nil
}

// CodeExists reports whether an option template other than excludeID uses code.
func (o *OptionTemplate) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	existing, err := o.persistence.OptionTemplateRepository().GetByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("failed to look up option template code: %w", err)
	}

	return existing != nil && existing.ID != excludeID, nil
}

// OptionTemplateSearch pages through option templates. Status is "active", "inactive" or empty for both.
type OptionTemplateSearch struct {
	Page     int
	PageSize int
	Search   string
	Category string
	Status   string
}

type OptionTemplatePage struct {
	Items      []*models.OptionTemplate `json:"items"`
	TotalCount int                      `json:"total_count"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
}

// Search matches name, code and description case-insensitively.
func (o *OptionTemplate) Search(ctx context.Context, req OptionTemplateSearch) (*OptionTemplatePage, error) {
	if req.Page < 1 {
		req.Page = 1
	}

	if req.PageSize < 1 {
		req.PageSize = 20
	}

	req.PageSize = min(req.PageSize, 100)

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "" && status != "active" && status != "inactive" {
		return nil, NewValidationError("SearchOptionTemplates", "INVALID_STATUS",
			fmt.Sprintf("invalid status '%s', allowed: active, inactive", req.Status), ErrInvalidRequest)
	}

	optionTemplates, err := o.all(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))

	matched := slices.DeleteFunc(optionTemplates, func(ot *models.OptionTemplate) bool {
		if req.Category != "" && !strings.EqualFold(ot.Category, req.Category) {
			return true
		}

		if status == "active" && !ot.IsActive || status == "inactive" && ot.IsActive {
			return true
		}

		return search != "" &&
			!strings.Contains(strings.ToLower(ot.Name), search) &&
			!strings.Contains(strings.ToLower(ot.Code), search) &&
			!strings.Contains(strings.ToLower(ot.Description), search)
	})

	page := &OptionTemplatePage{
		TotalCount: len(matched),
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: (len(matched) + req.PageSize - 1) / req.PageSize,
	}

	start := min((req.Page-1)*req.PageSize, len(matched))
	end := min(start+req.PageSize, len(matched))
	page.Items = matched[start:end]

	return page, nil
}

func (o *OptionTemplate) Create(ctx context.Context, optionTemplate *models.OptionTemplate, userID string) (*models.OptionTemplate, error) {
	optionTemplate.ID = ""

	err := o.validate(ctx, optionTemplate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	optionTemplate.UsageCount = 0
	optionTemplate.CreatedBy = userID
	optionTemplate.CreatedAt = now
	optionTemplate.ModifiedBy = userID
	optionTemplate.UpdatedAt = now

	err = o.persistence.OptionTemplateRepository().Save(ctx, optionTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to create option template: %w", err)
	}

	return optionTemplate, nil
}

func (o *OptionTemplate) Update(ctx context.Context, id string, optionTemplate *models.OptionTemplate, userID string) (*models.OptionTemplate, error) {
	existing, err := o.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	optionTemplate.ID = id

	err = o.validate(ctx, optionTemplate)
	if err != nil {
		return nil, err
	}

	optionTemplate.UsageCount = existing.UsageCount
	optionTemplate.CreatedBy = existing.CreatedBy
	optionTemplate.CreatedAt = existing.CreatedAt
	optionTemplate.ModifiedBy = userID
	optionTemplate.UpdatedAt = time.Now().UTC()

	err = o.persistence.OptionTemplateRepository().Save(ctx, optionTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to update option template: %w", err)
	}

	return optionTemplate, nil
}

// Delete refuses system option templates.
func (o *OptionTemplate) Delete(ctx context.Context, id string) error {
	optionTemplate, err := o.Get(ctx, id)
	if err != nil {
		return err
	}

	if optionTemplate.IsSystemTemplate {
		return newConflictError("DeleteOptionTemplate", "system option templates cannot be deleted", ErrSystemOptionTemplate)
	}

	err = o.persistence.OptionTemplateRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete option template: %w", err)
	}

	return nil
}

// ApplyToItem replaces an item's options on a Draft template with the option template's items.
func (o *OptionTemplate) ApplyToItem(ctx context.Context, templateID, optionTemplateID, sectionID, itemID, userID string) (*models.Item, error) {
	template, err := o.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	if template.PublishStatus != models.PublishStatusDraft {
		return nil, newConflictError("ApplyOptionTemplate", "only draft templates can be changed", ErrTemplateNotDraft)
	}

	section := template.FindSection(sectionID)
	if section == nil {
		return nil, NewValidationError("ApplyOptionTemplate", "SECTION_NOT_FOUND",
			fmt.Sprintf("section '%s' is not part of the template", sectionID), ErrInvalidRequest)
	}

	itemIndex := slices.IndexFunc(section.Items, func(item *models.Item) bool { return item.ID == itemID })
	if itemIndex < 0 {
		return nil, NewValidationError("ApplyOptionTemplate", "ITEM_NOT_FOUND",
			fmt.Sprintf("item '%s' is not part of the section", itemID), ErrInvalidRequest)
	}

	item := section.Items[itemIndex]
	if !slices.Contains(optionFieldTypes, strings.ToLower(item.DataType)) {
		return nil, NewValidationError("ApplyOptionTemplate", "FIELD_TYPE",
			fmt.Sprintf("field type '%s' does not support options", item.DataType), ErrInvalidRequest)
	}

	optionTemplate, err := o.Get(ctx, optionTemplateID)
	if err != nil {
		return nil, err
	}

	sourceItems := slices.Clone(optionTemplate.Items)
	slices.SortStableFunc(sourceItems, func(a, b *models.OptionTemplateItem) int {
		return a.DisplayOrder - b.DisplayOrder
	})

	item.Options = make([]*models.Option, 0, len(sourceItems))
	for _, source := range sourceItems {
		item.Options = append(item.Options, &models.Option{
			ID:           newUUID(),
			Value:        source.Value,
			Label:        source.Label,
			DisplayOrder: source.DisplayOrder,
			IsDefault:    source.IsDefault,
			IsActive:     true,
			ScoreValue:   source.ScoreValue,
			ScoreWeight:  source.ScoreWeight,
		})
	}

	template.ModifiedBy = userID
	template.UpdatedAt = time.Now().UTC()

	err = o.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	err = o.IncrementUsage(ctx, optionTemplateID)
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (o *OptionTemplate) validate(ctx context.Context, optionTemplate *models.OptionTemplate) error {
	optionTemplate.Name = strings.TrimSpace(optionTemplate.Name)
	optionTemplate.Code = strings.TrimSpace(optionTemplate.Code)

	if optionTemplate.Name == "" {
		return NewValidationError("validateOptionTemplate", "NAME_REQUIRED", "option template name is required", ErrNameRequired)
	}

	if optionTemplate.Code == "" {
		return NewValidationError("validateOptionTemplate", "CODE_REQUIRED", "option template code is required", ErrInvalidRequest)
	}

	exists, err := o.CodeExists(ctx, optionTemplate.Code, optionTemplate.ID)
	if err != nil {
		return err
	}

	if exists {
		return newConflictError("validateOptionTemplate",
			fmt.Sprintf("option template code '%s' is already in use", optionTemplate.Code), ErrDuplicateCode)
	}

	for index, item := range optionTemplate.Items {
		if item.ID == "" {
			item.ID = newUUID()
		}

		if item.DisplayOrder == 0 {
			item.DisplayOrder = index + 1
		}
	}

	return nil
}
