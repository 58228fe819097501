// Package dto holds the product transfer shapes used at the HTTP boundary
// and the mapping between them and models.Product.
package dto

import (
	"errors"
	"time"

	"catalog/internal/models"

	"github.com/shopspring/decimal"
)

// ErrNilProduct is returned when a mapping is given no product.
var ErrNilProduct = errors.New("dto: product is nil")

// ProductResponse is the outbound view of a product.
type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    *string         `json:"category"`
	Brand       *string         `json:"brand"`
	SKU         *string         `json:"sku"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
}

// CreateProductRequest is the inbound shape for creating a product.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"notblank,min=2,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" validate:"dgt=0,dlt=999999.99,dscale=2"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    *string         `json:"category" validate:"omitempty,max=50"`
	Brand       *string         `json:"brand" validate:"omitempty,max=100"`
	SKU         *string         `json:"sku" validate:"omitempty,max=50"`
	IsActive    *bool           `json:"isActive"`
}

// UpdateProductRequest is the inbound shape for updating a product. Optional
// fields left out of the body keep their stored value.
type UpdateProductRequest struct {
	Name        string          `json:"name" validate:"notblank,min=2,max=100"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price" validate:"dgt=0,dlt=999999.99,dscale=2"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    *string         `json:"category" validate:"omitempty,max=50"`
	Brand       *string         `json:"brand" validate:"omitempty,max=100"`
	SKU         *string         `json:"sku" validate:"omitempty,max=50"`
	IsActive    *bool           `json:"isActive"`
}

// ToProductResponse copies every field of p into a ProductResponse.
func ToProductResponse(p *models.Product) (ProductResponse, error) {
	if p == nil {
		return ProductResponse{}, ErrNilProduct
	}
	return ProductResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Price:       p.Price(),
		Stock:       p.Stock(),
		Category:    p.Category(),
		Brand:       p.Brand(),
		SKU:         p.SKU(),
		IsActive:    p.IsActive(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}, nil
}

// ToProductResponses maps a list of products, skipping nothing.
func ToProductResponses(products []*models.Product) ([]ProductResponse, error) {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp, err := ToProductResponse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// ToEntity builds a new product from the request through the entity
// constructor.
func (r CreateProductRequest) ToEntity() (*models.Product, error) {
	return models.NewProduct(models.ProductParams{
		Name:        r.Name,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		Category:    r.Category,
		Brand:       r.Brand,
		SKU:         r.SKU,
		IsActive:    r.IsActive,
	})
}

// ApplyUpdate applies the request to p through the entity's Update.
func ApplyUpdate(p *models.Product, r UpdateProductRequest) error {
	if p == nil {
		return ErrNilProduct
	}
	return p.Update(models.ProductUpdate{
		Name:        r.Name,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		Category:    r.Category,
		Brand:       r.Brand,
		SKU:         r.SKU,
		IsActive:    r.IsActive,
	})
}
