package repositories

import (
	"context"
	"sort"
	"sync"

	"catalog/internal/apperror"
	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository. It stores snapshots, so callers never share state with
// the store, and enforces SKU uniqueness like the database index does.
type MemoryProductRepository struct {
	products map[uint]models.ProductSnapshot
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.ProductSnapshot),
		nextID:   1,
	}
}

// GetAll returns all products.
func (r *MemoryProductRepository) GetAll(_ context.Context) ([]*models.Product, error) {
	return r.filter(func(models.ProductSnapshot) bool { return true }), nil
}

// GetByID returns a product by its ID, or nil when absent.
func (r *MemoryProductRepository) GetByID(_ context.Context, id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return models.RestoreProduct(s), nil
}

// Add stores a new product and assigns it the next id.
func (r *MemoryProductRepository) Add(_ context.Context, product *models.Product) error {
	if product.ID() != 0 {
		return apperror.NewValidation("id", "id is already assigned")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s := product.Snapshot()
	if err := r.checkSKU(s, 0); err != nil {
		return err
	}
	id := r.nextID
	if err := product.AssignID(id); err != nil {
		return err
	}
	s.ID = id
	r.products[id] = s
	r.nextID++
	return nil
}

// Update replaces an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := product.Snapshot()
	existing, ok := r.products[s.ID]
	if !ok {
		return apperror.NewNotFound("product", "id", s.ID)
	}
	if err := r.checkSKU(s, s.ID); err != nil {
		return err
	}
	s.CreatedAt = existing.CreatedAt
	r.products[s.ID] = s
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperror.NewNotFound("product", "id", id)
	}
	delete(r.products, id)
	return nil
}

// FindActive returns the active products.
func (r *MemoryProductRepository) FindActive(_ context.Context) ([]*models.Product, error) {
	return r.filter(func(s models.ProductSnapshot) bool { return s.IsActive }), nil
}

// FindByCategory returns the active products in category.
func (r *MemoryProductRepository) FindByCategory(_ context.Context, category string) ([]*models.Product, error) {
	return r.filter(func(s models.ProductSnapshot) bool {
		return s.IsActive && s.Category != nil && *s.Category == category
	}), nil
}

// FindBySku returns the product holding sku, or nil.
func (r *MemoryProductRepository) FindBySku(_ context.Context, sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.products {
		if s.SKU != nil && *s.SKU == sku {
			return models.RestoreProduct(s), nil
		}
	}
	return nil, nil
}

func (r *MemoryProductRepository) filter(keep func(models.ProductSnapshot) bool) []*models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.products))
	for id, s := range r.products {
		if keep(s) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.RestoreProduct(r.products[id]))
	}
	return out
}

// checkSKU must be called with the write lock held.
func (r *MemoryProductRepository) checkSKU(s models.ProductSnapshot, self uint) error {
	if s.SKU == nil {
		return nil
	}
	for id, other := range r.products {
		if id != self && other.SKU != nil && *other.SKU == *s.SKU {
			return apperror.NewConflict("product", "sku", *s.SKU)
		}
	}
	return nil
}
