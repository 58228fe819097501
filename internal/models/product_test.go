package models

import (
	"testing"
	"time"

	"catalog/internal/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

// fixClock pins the entity clock for the duration of the test.
func fixClock(t *testing.T, at time.Time) *time.Time {
	t.Helper()
	current := at
	prev := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = prev })
	return &current
}

func TestNewProduct_Defaults(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	fixClock(t, createdAt)

	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 10})
	require.NoError(t, err)

	assert.Equal(t, "Widget", p.Name())
	assert.True(t, decimal.RequireFromString("9.99").Equal(p.Price()))
	assert.Equal(t, 10, p.Stock())
	assert.True(t, p.IsActive())
	assert.Equal(t, "", p.Description())
	assert.Nil(t, p.UpdatedAt())
	assert.Equal(t, createdAt, p.CreatedAt())
	assert.Equal(t, uint(0), p.ID())
	assert.Nil(t, p.Category())
	assert.Nil(t, p.Brand())
	assert.Nil(t, p.SKU())
}

func TestNewProduct_OptionalFields(t *testing.T) {
	p, err := NewProduct(ProductParams{
		Name:        "Widget",
		Price:       decimal.Zero,
		Stock:       0,
		Description: strPtr("A widget"),
		Category:    strPtr("tools"),
		Brand:       strPtr("Acme"),
		SKU:         strPtr("W-1"),
		IsActive:    boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "A widget", p.Description())
	assert.Equal(t, "tools", *p.Category())
	assert.Equal(t, "Acme", *p.Brand())
	assert.Equal(t, "W-1", *p.SKU())
	assert.False(t, p.IsActive())
	assert.True(t, p.HasSKU("W-1"))
	assert.True(t, p.InCategory("tools"))
}

func TestNewProduct_EmptyOptionalStringsAreAbsent(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(1), Stock: 1, SKU: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, p.SKU())
}

func TestNewProduct_BlankOptionalStringsAreAbsent(t *testing.T) {
	p, err := NewProduct(ProductParams{
		Name:     "Widget",
		Price:    decimal.NewFromInt(1),
		Stock:    1,
		SKU:      strPtr("   "),
		Category: strPtr("\t"),
		Brand:    strPtr("  Acme "),
	})
	require.NoError(t, err)
	assert.Nil(t, p.SKU())
	assert.Nil(t, p.Category())
	assert.Equal(t, "Acme", *p.Brand())

	require.NoError(t, p.Update(ProductUpdate{Name: "Widget", Price: decimal.NewFromInt(1), Stock: 1, SKU: strPtr(" W-1 ")}))
	assert.Equal(t, "W-1", *p.SKU())
	assert.True(t, p.HasSKU("W-1"))
}

func TestNewProduct_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params ProductParams
		field  string
	}{
		{"empty name", ProductParams{Name: "", Price: decimal.NewFromFloat(9.99), Stock: 10}, "name"},
		{"whitespace name", ProductParams{Name: " \t\n", Price: decimal.NewFromFloat(9.99), Stock: 10}, "name"},
		{"negative price", ProductParams{Name: "Widget", Price: decimal.NewFromFloat(-0.01), Stock: 10}, "price"},
		{"negative stock", ProductParams{Name: "Widget", Price: decimal.NewFromFloat(9.99), Stock: -1}, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.params)
			assert.Nil(t, p)
			require.Error(t, err)

			var verr *apperror.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewProduct_ReportsEveryInvalidField(t *testing.T) {
	_, err := NewProduct(ProductParams{Name: "", Price: decimal.NewFromInt(-1), Stock: -1})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestProduct_Update(t *testing.T) {
	clock := fixClock(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 10})
	require.NoError(t, err)

	*clock = clock.Add(time.Hour)
	err = p.Update(ProductUpdate{
		Name:     "Widget2",
		Price:    decimal.RequireFromString("19.99"),
		Stock:    5,
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "Widget2", p.Name())
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.Price()))
	assert.Equal(t, 5, p.Stock())
	assert.False(t, p.IsActive())
	require.NotNil(t, p.UpdatedAt())
	assert.False(t, p.UpdatedAt().Before(p.CreatedAt()))
	assert.Equal(t, *clock, *p.UpdatedAt())
}

func TestProduct_UpdateIsAtomic(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 10, Category: strPtr("tools")})
	require.NoError(t, err)
	require.NoError(t, p.Update(ProductUpdate{Name: "Widget", Price: decimal.RequireFromString("9.99"), Stock: 10}))
	before := p.Snapshot()

	err = p.Update(ProductUpdate{
		Name:        "Renamed",
		Price:       decimal.NewFromInt(1),
		Stock:       -5,
		Description: strPtr("changed"),
		Category:    strPtr("other"),
		IsActive:    boolPtr(false),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, before, p.Snapshot())
}

func TestProduct_UpdateAbsentMeansUnchanged(t *testing.T) {
	p, err := NewProduct(ProductParams{
		Name:        "Widget",
		Price:       decimal.NewFromInt(5),
		Stock:       1,
		Description: strPtr("desc"),
		Category:    strPtr("tools"),
		Brand:       strPtr("Acme"),
		SKU:         strPtr("W-1"),
		IsActive:    boolPtr(false),
	})
	require.NoError(t, err)

	require.NoError(t, p.Update(ProductUpdate{Name: "Widget", Price: decimal.NewFromInt(6), Stock: 2}))

	assert.Equal(t, "desc", p.Description())
	assert.Equal(t, "tools", *p.Category())
	assert.Equal(t, "Acme", *p.Brand())
	assert.Equal(t, "W-1", *p.SKU())
	assert.False(t, p.IsActive())
}

func TestProduct_UpdateClearsWithEmptyString(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1, Category: strPtr("tools"), SKU: strPtr("W-1")})
	require.NoError(t, err)

	require.NoError(t, p.Update(ProductUpdate{
		Name:        "Widget",
		Price:       decimal.NewFromInt(5),
		Stock:       1,
		Description: strPtr(""),
		Category:    strPtr(""),
		SKU:         strPtr(""),
	}))

	assert.Equal(t, "", p.Description())
	assert.Nil(t, p.Category())
	assert.Nil(t, p.SKU())
}

func TestProduct_UpdatedAtNeverMovesBackwards(t *testing.T) {
	clock := fixClock(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1})
	require.NoError(t, err)
	require.NoError(t, p.Update(ProductUpdate{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1}))
	first := *p.UpdatedAt()

	*clock = clock.Add(-time.Minute)
	require.NoError(t, p.Update(ProductUpdate{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1}))
	assert.False(t, p.UpdatedAt().Before(first))
}

func TestProduct_CreatedAtIsUTC(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.CreatedAt().Location())
}

func TestProduct_AssignID(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1})
	require.NoError(t, err)

	assert.Error(t, p.AssignID(0))
	require.NoError(t, p.AssignID(7))
	assert.Equal(t, uint(7), p.ID())
	assert.Error(t, p.AssignID(8))
	assert.Equal(t, uint(7), p.ID())
}

func TestProduct_AccessorsReturnCopies(t *testing.T) {
	p, err := NewProduct(ProductParams{Name: "Widget", Price: decimal.NewFromInt(5), Stock: 1, SKU: strPtr("W-1")})
	require.NoError(t, err)

	sku := p.SKU()
	*sku = "tampered"
	assert.Equal(t, "W-1", *p.SKU())
}

func TestRestoreProduct(t *testing.T) {
	updated := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	snap := ProductSnapshot{
		ID:        3,
		Name:      "Stored",
		Price:     decimal.RequireFromString("12.50"),
		Stock:     4,
		SKU:       strPtr("S-3"),
		IsActive:  true,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: &updated,
	}

	p := RestoreProduct(snap)
	assert.Equal(t, snap, p.Snapshot())
}
