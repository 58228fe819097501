package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is a plain copy of a Product's state, used by stores and
// caches to persist and rehydrate the entity.
type ProductSnapshot struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    *string         `json:"category,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	SKU         *string         `json:"sku,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// Snapshot returns a copy of the product's state.
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Price:       p.price,
		Stock:       p.stock,
		Category:    clone(p.category),
		Brand:       clone(p.brand),
		SKU:         clone(p.sku),
		IsActive:    p.isActive,
		CreatedAt:   p.createdAt,
		UpdatedAt:   cloneTime(p.updatedAt),
	}
}

// RestoreProduct rebuilds a Product from stored state. Stored state was
// validated when it was written, so no checks run here.
func RestoreProduct(s ProductSnapshot) *Product {
	return &Product{
		id:          s.ID,
		name:        s.Name,
		description: s.Description,
		price:       s.Price,
		stock:       s.Stock,
		category:    clone(s.Category),
		brand:       clone(s.Brand),
		sku:         clone(s.SKU),
		isActive:    s.IsActive,
		createdAt:   s.CreatedAt,
		updatedAt:   cloneTime(s.UpdatedAt),
	}
}
