package repository

import (
	"context"

	"catalogapi/internal/model"
)

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	// Create inserts a new category and returns the stored row.
	Create(ctx context.Context, c *model.Category) (*model.Category, error)

	// FindByID returns a category by its ID.
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]model.Category, error)
}
