package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

import (
	"context"

	"catalogapi/internal/model"
)

// ProductRepository defines data access for products using SQL queries only.
// No business logic here — strictly persistence operations.
type ProductRepository interface {
	// Create inserts a new product record and returns the stored row
	// (may include values set by the DB).
	Create(ctx context.Context, p *model.Product) (*model.Product, error)

	// FindByID returns a product by its ID.
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// Update overwrites all mutable columns of an existing row and returns
	// the stored result.
	Update(ctx context.Context, p *model.Product) (*model.Product, error)

	// List returns a paginated list of products and total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Product], error)

	// Delete removes a product by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
