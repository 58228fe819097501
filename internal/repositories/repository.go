package repositories

import (
	"context"

	"catalog/internal/models"
)

// Repository is the generic CRUD capability over an entity type T keyed by
// ID. GetByID returns (nil, nil) when no record exists; Update and Delete
// return an *apperror.NotFoundError instead.
type Repository[T any, ID comparable] interface {
	GetByID(ctx context.Context, id ID) (*T, error)
	GetAll(ctx context.Context) ([]*T, error)
	Add(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id ID) error
}

// ProductRepository is the product query contract: generic CRUD plus the
// catalog read patterns. Results are returned in ascending id order.
type ProductRepository interface {
	Repository[models.Product, uint]

	// FindActive returns every product with IsActive set.
	FindActive(ctx context.Context) ([]*models.Product, error)
	// FindByCategory returns the active products in category.
	FindByCategory(ctx context.Context, category string) ([]*models.Product, error)
	// FindBySku returns the product holding sku whatever its active flag,
	// or (nil, nil).
	FindBySku(ctx context.Context, sku string) (*models.Product, error)
}
