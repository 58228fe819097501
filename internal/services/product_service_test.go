package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"catalog/internal/apperror"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/services"
	"catalog/internal/validation"
	"catalog/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Add(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindActive(ctx context.Context) ([]*models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string) ([]*models.Product, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

// MockPublisher records published events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishProductEvent(ctx context.Context, event rabbitmq.ProductEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func storedProduct(t *testing.T, id uint, name string, sku *string) *models.Product {
	t.Helper()
	p, err := models.NewProduct(models.ProductParams{Name: name, Price: decimal.RequireFromString("10.00"), Stock: 5, SKU: sku})
	require.NoError(t, err)
	require.NoError(t, p.AssignID(id))
	return p
}

func newService(repo *MockProductRepository, pub services.EventPublisher) *services.ProductService {
	return services.NewProductService(repo, validation.New(), pub, zap.NewNop())
}

func eventOfType(t rabbitmq.EventType) any {
	return mock.MatchedBy(func(e rabbitmq.ProductEvent) bool { return e.Type == t && e.EventID != "" })
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	stored := []*models.Product{
		storedProduct(t, 1, "Product A", nil),
		storedProduct(t, 2, "Product B", nil),
	}
	mockRepo.On("GetAll", mock.Anything).Return(stored, nil).Once()

	products, err := service.GetAllProducts(context.Background())

	assert.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, uint(1), products[0].ID)
	assert.Equal(t, "Product B", products[1].Name)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(storedProduct(t, 1, "Product A", nil), nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Product A", product.Name)

	mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, nil).Once()
	_, err = service.GetProductByID(ctx, 99)
	assert.True(t, apperror.IsNotFound(err))
	assert.Contains(t, err.Error(), "not found")

	_, err = service.GetProductByID(ctx, 0)
	assert.True(t, apperror.IsValidation(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductBySku(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("FindBySku", mock.Anything, "ABC").Return(storedProduct(t, 3, "Gizmo", strPtr("ABC")), nil).Once()
	product, err := service.GetProductBySku(ctx, "ABC")
	require.NoError(t, err)
	assert.Equal(t, "ABC", *product.SKU)

	mockRepo.On("FindBySku", mock.Anything, "NOPE").Return(nil, nil).Once()
	_, err = service.GetProductBySku(ctx, "NOPE")
	assert.True(t, apperror.IsNotFound(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsByCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("FindByCategory", mock.Anything, "tools").Return([]*models.Product{storedProduct(t, 1, "Hammer", nil)}, nil).Once()
	products, err := service.GetProductsByCategory(ctx, "tools")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	_, err = service.GetProductsByCategory(ctx, "   ")
	assert.True(t, apperror.IsValidation(err))
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetActiveProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("FindActive", mock.Anything).Return([]*models.Product{}, nil).Once()
	products, err := service.GetActiveProducts(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)
	ctx := context.Background()

	req := dto.CreateProductRequest{Name: "New Product", Price: decimal.RequireFromString("50.00"), Stock: 20, SKU: strPtr("NP-1")}

	mockRepo.On("FindBySku", mock.Anything, "NP-1").Return(nil, nil).Once()
	mockRepo.On("Add", mock.Anything, mock.AnythingOfType("*models.Product")).
		Run(func(args mock.Arguments) {
			require.NoError(t, args.Get(1).(*models.Product).AssignID(7))
		}).
		Return(nil).Once()
	pub.On("PublishProductEvent", mock.Anything, eventOfType(rabbitmq.ProductCreated)).Return(nil).Once()

	resp, err := service.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint(7), resp.ID)
	assert.True(t, resp.IsActive)
	assert.Nil(t, resp.UpdatedAt)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)

	// Test creation failure (e.g., database error)
	mockRepo.On("FindBySku", mock.Anything, "NP-1").Return(nil, nil).Once()
	mockRepo.On("Add", mock.Anything, mock.Anything).Return(apperror.NewInfrastructure("add product", errors.New("database error"))).Once()
	_, err = service.CreateProduct(ctx, req)
	assert.True(t, apperror.IsInfrastructure(err))
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
	pub.AssertNumberOfCalls(t, "PublishProductEvent", 1)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	_, err := service.CreateProduct(context.Background(), dto.CreateProductRequest{Name: " ", Price: decimal.Zero, Stock: -1})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "stock")
	mockRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductDuplicateSku(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("FindBySku", mock.Anything, "DUP").Return(storedProduct(t, 1, "Existing", strPtr("DUP")), nil).Once()

	_, err := service.CreateProduct(context.Background(), dto.CreateProductRequest{
		Name: "Another", Price: decimal.NewFromInt(1), Stock: 1, SKU: strPtr("DUP"),
	})
	assert.True(t, apperror.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)
	ctx := context.Background()

	existing := storedProduct(t, 1, "Product A", strPtr("A-1"))
	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(existing, nil).Once()
	mockRepo.On("FindBySku", mock.Anything, "A-1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.Anything, existing).Return(nil).Once()
	pub.On("PublishProductEvent", mock.Anything, eventOfType(rabbitmq.ProductUpdated)).Return(nil).Once()

	resp, err := service.UpdateProduct(ctx, 1, dto.UpdateProductRequest{
		Name: "Product A Updated", Price: decimal.RequireFromString("12.00"), Stock: 95, SKU: strPtr("A-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Product A Updated", resp.Name)
	assert.Equal(t, 95, resp.Stock)
	assert.NotNil(t, resp.UpdatedAt)
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProductService_UpdateProductNotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, nil).Once()

	_, err := service.UpdateProduct(context.Background(), 99, dto.UpdateProductRequest{
		Name: "Whatever", Price: decimal.NewFromInt(1), Stock: 1,
	})
	assert.True(t, apperror.IsNotFound(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProductSkuTakenByOther(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := newService(mockRepo, nil)

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(storedProduct(t, 1, "Mine", nil), nil).Once()
	mockRepo.On("FindBySku", mock.Anything, "TAKEN").Return(storedProduct(t, 2, "Theirs", strPtr("TAKEN")), nil).Once()

	_, err := service.UpdateProduct(context.Background(), 1, dto.UpdateProductRequest{
		Name: "Mine", Price: decimal.NewFromInt(1), Stock: 1, SKU: strPtr("TAKEN"),
	})
	assert.True(t, apperror.IsConflict(err))
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)
	ctx := context.Background()

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(storedProduct(t, 1, "Product A", nil), nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	pub.On("PublishProductEvent", mock.Anything, mock.MatchedBy(func(e rabbitmq.ProductEvent) bool {
		var view dto.ProductResponse
		return e.Type == rabbitmq.ProductDeleted && e.ProductID == 1 &&
			json.Unmarshal(e.Product, &view) == nil && view.Name == "Product A"
	})).Return(nil).Once()

	assert.NoError(t, service.DeleteProduct(ctx, 1))

	mockRepo.On("GetByID", mock.Anything, uint(99)).Return(nil, nil).Once()
	err := service.DeleteProduct(ctx, 99)
	assert.True(t, apperror.IsNotFound(err))
	mockRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProductService_PublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	pub := new(MockPublisher)
	service := newService(mockRepo, pub)

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(storedProduct(t, 1, "Product A", nil), nil).Once()
	mockRepo.On("Delete", mock.Anything, uint(1)).Return(nil).Once()
	pub.On("PublishProductEvent", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	assert.NoError(t, service.DeleteProduct(context.Background(), 1))
	pub.AssertExpectations(t)
}
