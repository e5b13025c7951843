package file

import (
	"context"
	"time"

	"github.com/dukex/formreport/pkg/models"
)

// CategoryRepository handles category file operations.
type CategoryRepository struct {
	categories *collection[models.Category]
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(root string) *CategoryRepository {
	return &CategoryRepository{categories: newCollection[models.Category](root, "categories")}
}

func (r *CategoryRepository) GetAll(_ context.Context) ([]*models.Category, error) {
	return r.categories.all()
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*models.Category, error) {
	return r.categories.get(id)
}

func (r *CategoryRepository) Save(_ context.Context, category *models.Category) error {
	if category.ID == "" {
		id, err := newID("category")
		if err != nil {
			return err
		}

		category.ID = id
	}

	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}

	category.UpdatedAt = now

	return r.categories.save(category.ID, category)
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	return r.categories.delete(id)
}
