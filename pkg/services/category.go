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

type Category struct {
	persistence persistence.Persistence
}

func NewCategory(persistence persistence.Persistence) *Category {
	return &Category{persistence: persistence}
}

// All returns every category ordered by display order, then name.
func (c *Category) All(ctx context.Context) ([]*models.Category, error) {
	categories, err := c.persistence.CategoryRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	slices.SortStableFunc(categories, func(a, b *models.Category) int {
		if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder - b.DisplayOrder
		}

		return strings.Compare(a.Name, b.Name)
	})

	return categories, nil
}

func (c *Category) Active(ctx context.Context) ([]*models.Category, error) {
	categories, err := c.All(ctx)
	if err != nil {
		return nil, err
	}

	return slices.DeleteFunc(categories, func(category *models.Category) bool {
		return !category.IsActive
	}), nil
}

func (c *Category) SelectList(ctx context.Context) ([]models.SelectItem, error) {
	categories, err := c.Active(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.SelectItem, 0, len(categories))
	for _, category := range categories {
		items = append(items, models.SelectItem{Value: category.ID, Text: category.Name})
	}

	return items, nil
}

func (c *Category) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := c.persistence.CategoryRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if category == nil {
		return nil, ErrCategoryNotFound
	}

	return category, nil
}

func (c *Category) IsActive(ctx context.Context, id string) (bool, error) {
	category, err := c.Get(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return false, nil
		}

		return false, err
	}

	return category.IsActive, nil
}

// NameOf returns an empty name for unknown categories.
func (c *Category) NameOf(ctx context.Context, id string) (string, error) {
	category, err := c.Get(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return "", nil
		}

		return "", err
	}

	return category.Name, nil
}

func (c *Category) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	category.ID = ""

	err := c.validate(ctx, category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	err = c.persistence.CategoryRepository().Save(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (c *Category) Update(ctx context.Context, id string, category *models.Category) (*models.Category, error) {
	existing, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.ID = id

	err = c.validate(ctx, category)
	if err != nil {
		return nil, err
	}

	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now().UTC()

	err = c.persistence.CategoryRepository().Save(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// Delete refuses categories still referenced by a template.
func (c *Category) Delete(ctx context.Context, id string) error {
	_, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	templates, err := c.persistence.TemplateRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	inUse := slices.ContainsFunc(templates, func(t *models.FormTemplate) bool {
		return t.CategoryID == id
	})
	if inUse {
		return newConflictError("DeleteCategory", "category is used by one or more templates", ErrCategoryInUse)
	}

	err = c.persistence.CategoryRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (c *Category) validate(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	category.Code = strings.TrimSpace(category.Code)

	if category.Name == "" {
		return NewValidationError("validateCategory", "NAME_REQUIRED", "category name is required", ErrNameRequired)
	}

	if category.Code == "" {
		return nil
	}

	categories, err := c.persistence.CategoryRepository().GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	for _, other := range categories {
		if other.ID != category.ID && strings.EqualFold(other.Code, category.Code) {
			return newConflictError("validateCategory",
				fmt.Sprintf("category code '%s' is already in use", category.Code), ErrDuplicateCode)
		}
	}

	return nil
}
