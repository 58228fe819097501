package models

import (
	"strings"
	"time"

	"catalog/internal/apperror"

	"github.com/shopspring/decimal"
)

// now is the entity clock. Timestamps are always UTC.
var now = func() time.Time { return time.Now().UTC() }

// Product is a single catalog item. Its fields are only reachable through
// accessors; NewProduct and Update are the only ways to change them, so a
// Product is never observable in an invalid state.
type Product struct {
	id          uint
	name        string
	description string
	price       decimal.Decimal
	stock       int
	category    *string
	brand       *string
	sku         *string
	isActive    bool
	createdAt   time.Time
	updatedAt   *time.Time
}

// ProductParams carries the values for NewProduct. Nil optional fields are
// treated as not supplied.
type ProductParams struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description *string
	Category    *string
	Brand       *string
	SKU         *string
	IsActive    *bool
}

// ProductUpdate carries the values for Product.Update. Name, Price and Stock
// are always applied; a nil optional field leaves the stored value as is.
type ProductUpdate struct {
	Name        string
	Price       decimal.Decimal
	Stock       int
	Description *string
	Category    *string
	Brand       *string
	SKU         *string
	IsActive    *bool
}

// NewProduct validates params and returns a new, not yet persisted Product.
// Description defaults to "" and IsActive to true.
func NewProduct(params ProductParams) (*Product, error) {
	if err := validate(params.Name, params.Price, params.Stock); err != nil {
		return nil, err
	}

	p := &Product{
		name:      params.Name,
		price:     params.Price,
		stock:     params.Stock,
		category:  optional(params.Category),
		brand:     optional(params.Brand),
		sku:       optional(params.SKU),
		isActive:  true,
		createdAt: now(),
	}
	if params.Description != nil {
		p.description = *params.Description
	}
	if params.IsActive != nil {
		p.isActive = *params.IsActive
	}
	return p, nil
}

// Update validates u and applies it. On a validation error the product is
// left untouched. UpdatedAt is stamped on every successful call.
func (p *Product) Update(u ProductUpdate) error {
	if err := validate(u.Name, u.Price, u.Stock); err != nil {
		return err
	}

	p.name = u.Name
	p.price = u.Price
	p.stock = u.Stock
	if u.Description != nil {
		p.description = *u.Description
	}
	if u.Category != nil {
		p.category = optional(u.Category)
	}
	if u.Brand != nil {
		p.brand = optional(u.Brand)
	}
	if u.SKU != nil {
		p.sku = optional(u.SKU)
	}
	if u.IsActive != nil {
		p.isActive = *u.IsActive
	}

	t := now()
	if p.updatedAt != nil && t.Before(*p.updatedAt) {
		t = *p.updatedAt
	}
	p.updatedAt = &t
	return nil
}

// AssignID records the identifier given by the store on insert. It only
// succeeds once.
func (p *Product) AssignID(id uint) error {
	if p.id != 0 {
		return apperror.NewValidation("id", "id is already assigned")
	}
	if id == 0 {
		return apperror.NewValidation("id", "id must be greater than 0")
	}
	p.id = id
	return nil
}

func (p *Product) ID() uint { return p.id }
func (p *Product) Name() string { return p.name }
func (p *Product) Description() string { return p.description }
func (p *Product) Price() decimal.Decimal { return p.price }
func (p *Product) Stock() int { return p.stock }
func (p *Product) Category() *string { return clone(p.category) }
func (p *Product) Brand() *string { return clone(p.brand) }
func (p *Product) SKU() *string { return clone(p.sku) }
func (p *Product) IsActive() bool { return p.isActive }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() *time.Time { return cloneTime(p.updatedAt) }
func (p *Product) HasSKU(sku string) bool { return p.sku != nil && *p.sku == sku }
func (p *Product) InCategory(c string) bool { return p.category != nil && *p.category == c }

func validate(name string, price decimal.Decimal, stock int) error {
	verr := &apperror.ValidationError{}
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "name is required")
	}
	if price.IsNegative() {
		verr.Add("price", "price must be greater than or equal to 0")
	}
	if stock < 0 {
		verr.Add("stock", "stock must be greater than or equal to 0")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// optional trims s and stores a blank value as absent.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func clone(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
