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

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sql.DB, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

const categoryColumns = `
			id
		  , name
		  , COALESCE(code, '')
		  , COALESCE(description, '')
		  , COALESCE(icon_class, '')
		  , COALESCE(color, '')
		  , display_order
		  , is_active
		  , created_at
		  , updated_at`

// GetAll returns all categories ordered by display order and name.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT` + categoryColumns + `
		FROM categories
		ORDER BY display_order, name
	`

	categories, err := queryAll(ctx, r.db, r.logger, scanCategory, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT` + categoryColumns + `
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return category, nil
}

// Save inserts or updates a category.
func (r *CategoryRepository) Save(ctx context.Context, category *models.Category) error {
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

	query := `
		INSERT INTO categories (id, name, code, description, icon_class, color, display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			code = EXCLUDED.code,
			description = EXCLUDED.description,
			icon_class = EXCLUDED.icon_class,
			color = EXCLUDED.color,
			display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Code,
		category.Description,
		category.IconClass,
		category.Color,
		category.DisplayOrder,
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category

	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Code,
		&category.Description,
		&category.IconClass,
		&category.Color,
		&category.DisplayOrder,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	return &category, nil
}
