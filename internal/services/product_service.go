package services

import (
	"context"
	"strings"

	"catalog/internal/apperror"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"
	"catalog/pkg/rabbitmq"

	"go.uber.org/zap"
)

// EventPublisher sends product change events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishProductEvent(ctx context.Context, event rabbitmq.ProductEvent) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	publisher EventPublisher
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. publisher may be nil, in
// which case no change events are sent.
func NewProductService(repo repositories.ProductRepository, v *validation.Validator, publisher EventPublisher, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:      repo,
		validator: v,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAllProducts retrieves all products ordered by id.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponses(products)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (dto.ProductResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return dto.ProductResponse{}, err
	}
	return dto.ToProductResponse(p)
}

// GetProductBySku retrieves a product by SKU regardless of its active flag.
func (s *ProductService) GetProductBySku(ctx context.Context, sku string) (dto.ProductResponse, error) {
	if strings.TrimSpace(sku) == "" {
		return dto.ProductResponse{}, apperror.NewValidation("sku", "sku is required")
	}
	p, err := s.repo.FindBySku(ctx, sku)
	if err != nil {
		return dto.ProductResponse{}, err
	}
	if p == nil {
		return dto.ProductResponse{}, apperror.NewNotFound("Product", "SKU", sku)
	}
	return dto.ToProductResponse(p)
}

// GetActiveProducts retrieves the products that are currently active.
func (s *ProductService) GetActiveProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponses(products)
}

// GetProductsByCategory retrieves the active products in category.
func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]dto.ProductResponse, error) {
	if strings.TrimSpace(category) == "" {
		return nil, apperror.NewValidation("category", "category is required")
	}
	products, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponses(products)
}

// CreateProduct validates req, stores a new product and returns its view.
func (s *ProductService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (dto.ProductResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProductResponse{}, err
	}
	if err := s.ensureSKUFree(ctx, req.SKU, 0); err != nil {
		return dto.ProductResponse{}, err
	}

	p, err := req.ToEntity()
	if err != nil {
		return dto.ProductResponse{}, err
	}
	if err := s.repo.Add(ctx, p); err != nil {
		return dto.ProductResponse{}, err
	}

	s.logger.Info("product created", zap.Uint("product_id", p.ID()), zap.String("name", p.Name()))
	return s.respondAndPublish(ctx, rabbitmq.ProductCreated, p)
}

// UpdateProduct validates req and applies it to the product with id.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, req dto.UpdateProductRequest) (dto.ProductResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ProductResponse{}, err
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return dto.ProductResponse{}, err
	}
	if err := s.ensureSKUFree(ctx, req.SKU, id); err != nil {
		return dto.ProductResponse{}, err
	}
	if err := dto.ApplyUpdate(p, req); err != nil {
		return dto.ProductResponse{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return dto.ProductResponse{}, err
	}

	s.logger.Info("product updated", zap.Uint("product_id", id))
	return s.respondAndPublish(ctx, rabbitmq.ProductUpdated, p)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", zap.Uint("product_id", id))
	_, err = s.respondAndPublish(ctx, rabbitmq.ProductDeleted, p)
	return err
}

func (s *ProductService) load(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, apperror.NewValidation("id", "id must be a positive integer")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("Product", "ID", id)
	}
	return p, nil
}

// ensureSKUFree fails with a ConflictError when sku belongs to a product
// other than self. An absent or empty sku never conflicts.
func (s *ProductService) ensureSKUFree(ctx context.Context, sku *string, self uint) error {
	if sku == nil || strings.TrimSpace(*sku) == "" {
		return nil
	}
	existing, err := s.repo.FindBySku(ctx, *sku)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID() != self {
		return apperror.NewConflict("Product", "SKU", *sku)
	}
	return nil
}

func (s *ProductService) respondAndPublish(ctx context.Context, t rabbitmq.EventType, p *models.Product) (dto.ProductResponse, error) {
	resp, err := dto.ToProductResponse(p)
	if err != nil {
		return dto.ProductResponse{}, err
	}
	if s.publisher == nil {
		return resp, nil
	}

	event, err := rabbitmq.NewProductEvent(t, p.ID(), resp)
	if err == nil {
		err = s.publisher.PublishProductEvent(ctx, event)
	}
	if err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", string(t)),
			zap.Uint("product_id", p.ID()),
			zap.Error(err),
		)
	}
	return resp, nil
}
