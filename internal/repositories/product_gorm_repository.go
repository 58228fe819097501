package repositories

import (
	"context"
	"errors"
	"time"

	"catalog/internal/apperror"
	"catalog/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRecord is the storage row for a product.
type ProductRecord struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:varchar(500);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Stock       int             `gorm:"not null"`
	Category    *string         `gorm:"type:varchar(50);index:idx_products_category"`
	Brand       *string         `gorm:"type:varchar(100)"`
	SKU         *string         `gorm:"column:sku;type:varchar(50);uniqueIndex:idx_products_sku,where:sku IS NOT NULL"`
	IsActive    bool            `gorm:"not null;index:idx_products_is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime:false;index:idx_products_created_at"`
	UpdatedAt   *time.Time      `gorm:"autoUpdateTime:false"`
}

// TableName overrides the table name used by GORM.
func (ProductRecord) TableName() string {
	return "products"
}

func toRecord(p *models.Product) ProductRecord {
	s := p.Snapshot()
	return ProductRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Stock:       s.Stock,
		Category:    s.Category,
		Brand:       s.Brand,
		SKU:         s.SKU,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r ProductRecord) toEntity() *models.Product {
	return models.RestoreProduct(models.ProductSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		Brand:       r.Brand,
		SKU:         r.SKU,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   utcPtr(r.UpdatedAt),
	})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// The db should be opened with TranslateError so duplicate SKUs surface as
// conflicts.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	return r.list("get all products", r.db.WithContext(ctx))
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var rec ProductRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewInfrastructure("get product by id", err)
	}
	return rec.toEntity(), nil
}

// Add inserts a new product and assigns it the generated id.
func (r *GORMProductRepository) Add(ctx context.Context, product *models.Product) error {
	if product.ID() != 0 {
		return apperror.NewValidation("id", "id is already assigned")
	}
	rec := toRecord(product)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return r.writeError("create product", rec, err)
	}
	return product.AssignID(rec.ID)
}

// Update writes every field of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	rec := toRecord(product)
	if rec.ID == 0 {
		return apperror.NewNotFound("product", "id", rec.ID)
	}
	res := r.db.WithContext(ctx).Model(&rec).Select("*").Omit("id", "created_at").Updates(&rec)
	if res.Error != nil {
		return r.writeError("update product", rec, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("product", "id", rec.ID)
	}
	return nil
}

// Delete removes a product by its ID. The delete is physical.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&ProductRecord{}, "id = ?", id)
	if res.Error != nil {
		return apperror.NewInfrastructure("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NewNotFound("product", "id", id)
	}
	return nil
}

// FindActive retrieves all active products.
func (r *GORMProductRepository) FindActive(ctx context.Context) ([]*models.Product, error) {
	return r.list("find active products", r.db.WithContext(ctx).Where("is_active = ?", true))
}

// FindByCategory retrieves the active products in a category.
func (r *GORMProductRepository) FindByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	q := r.db.WithContext(ctx).Where("category = ? AND is_active = ?", category, true)
	return r.list("find products by category", q)
}

// FindBySku retrieves the product holding sku, active or not.
func (r *GORMProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	var rec ProductRecord
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.NewInfrastructure("find product by sku", err)
	}
	return rec.toEntity(), nil
}

func (r *GORMProductRepository) list(op string, q *gorm.DB) ([]*models.Product, error) {
	var recs []ProductRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, apperror.NewInfrastructure(op, err)
	}
	products := make([]*models.Product, 0, len(recs))
	for _, rec := range recs {
		products = append(products, rec.toEntity())
	}
	return products, nil
}

func (r *GORMProductRepository) writeError(op string, rec ProductRecord, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) && rec.SKU != nil {
		return apperror.NewConflict("product", "sku", *rec.SKU)
	}
	return apperror.NewInfrastructure(op, err)
}
