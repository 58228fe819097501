package repositories

import (
	"context"
	"fmt"
	"time"

	"catalog/internal/models"

	"go.uber.org/zap"
)

// Cache is the key/value store used by CachedProductRepository.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedProductRepository caches GetByID and FindBySku in front of another
// ProductRepository. SKU entries only hold the product id, and a hit is
// re-checked against the cached product, so a SKU change never serves a
// stale match. Cache failures fall through to the wrapped repository.
type CachedProductRepository struct {
	ProductRepository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductRepository wraps next with cache.
func NewCachedProductRepository(next ProductRepository, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		ProductRepository: next,
		cache:             cache,
		ttl:               ttl,
		logger:            logger,
	}
}

func idKey(id uint) string { return fmt.Sprintf("product:id:%d", id) }
func skuKey(sku string) string { return "product:sku:" + sku }

// GetByID serves from cache when possible.
func (r *CachedProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var snap models.ProductSnapshot
	hit, err := r.cache.Get(ctx, idKey(id), &snap)
	if err != nil {
		r.logger.Warn("product cache read failed", zap.Uint("product_id", id), zap.Error(err))
	}
	if hit {
		return models.RestoreProduct(snap), nil
	}

	p, err := r.ProductRepository.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	r.store(ctx, p)
	return p, nil
}

// FindBySku resolves the sku to an id through the cache when possible.
func (r *CachedProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	var id uint
	hit, err := r.cache.Get(ctx, skuKey(sku), &id)
	if err != nil {
		r.logger.Warn("product sku cache read failed", zap.String("sku", sku), zap.Error(err))
	}
	if hit {
		p, err := r.GetByID(ctx, id)
		if err == nil && p != nil && p.HasSKU(sku) {
			return p, nil
		}
	}

	p, err := r.ProductRepository.FindBySku(ctx, sku)
	if err != nil || p == nil {
		return p, err
	}
	r.store(ctx, p)
	return p, nil
}

// Add inserts through the wrapped repository. Nothing is cached until the
// product is read.
func (r *CachedProductRepository) Add(ctx context.Context, product *models.Product) error {
	return r.ProductRepository.Add(ctx, product)
}

// Update writes through and evicts the cached product.
func (r *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.evict(ctx, product.ID())
	return nil
}

// Delete removes through and evicts the cached product.
func (r *CachedProductRepository) Delete(ctx context.Context, id uint) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedProductRepository) store(ctx context.Context, p *models.Product) {
	if err := r.cache.Set(ctx, idKey(p.ID()), p.Snapshot(), r.ttl); err != nil {
		r.logger.Warn("product cache write failed", zap.Uint("product_id", p.ID()), zap.Error(err))
		return
	}
	if sku := p.SKU(); sku != nil {
		if err := r.cache.Set(ctx, skuKey(*sku), p.ID(), r.ttl); err != nil {
			r.logger.Warn("product sku cache write failed", zap.String("sku", *sku), zap.Error(err))
		}
	}
}

func (r *CachedProductRepository) evict(ctx context.Context, id uint) {
	if err := r.cache.Delete(ctx, idKey(id)); err != nil {
		r.logger.Warn("product cache eviction failed", zap.Uint("product_id", id), zap.Error(err))
	}
}
