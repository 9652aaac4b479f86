package services_test

import (
	"testing"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stockedCatalog creates one product with four variants covering every
// stock status
func stockedCatalog(t *testing.T, f *fixture) *models.Product {
	t.Helper()
	top := f.category(t, "Home", 1, nil)
	p, err := f.products.Create(ctx, tenant, services.ProductInput{
		Name: "Candle", Slug: "candle", CategoryID: top.ID, BasePrice: 12,
		Variants: []services.VariantInput{
			{SKU: "CANDLE-EMPTY", Price: 12, Stock: 0},
			{SKU: "CANDLE-CRIT", Price: 12, Stock: 4},
			{SKU: "CANDLE-LOW", Price: 12, Stock: 9},
			{SKU: "CANDLE-FULL", Price: 12, Stock: 60},
		},
	})
	require.NoError(t, err)
	return p
}

func TestInventoryAdjustStock(t *testing.T) {
	f := newFixture(t)
	p := stockedCatalog(t, f)
	low := p.Variants[2]

	tests := []struct {
		name       string
		op         models.StockOperation
		quantity   int
		wantStock  int
		wantStatus models.StockStatus
	}{
		{name: "increase", op: models.StockIncrease, quantity: 6, wantStock: 15, wantStatus: models.StockInStock},
		{name: "decrease", op: models.StockDecrease, quantity: 11, wantStock: 4, wantStatus: models.StockCritical},
		{name: "decrease is floored at zero", op: models.StockDecrease, quantity: 50, wantStock: 0, wantStatus: models.StockOutOfStock},
		{name: "set", op: models.StockSet, quantity: 10, wantStock: 10, wantStatus: models.StockLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.inventory.AdjustStock(ctx, tenant, p.ID, low.ID, tt.quantity, tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, got.Stock)
			assert.Equal(t, tt.wantStatus, got.StockStatus)
			assert.Equal(t, "Candle", got.ProductName)
			assert.Equal(t, tt.wantStock, f.stock(t, low.ID))
		})
	}
}

func TestInventoryAdjustStockErrors(t *testing.T) {
	f := newFixture(t)
	p := stockedCatalog(t, f)

	_, err := f.inventory.AdjustStock(ctx, tenant, p.ID, p.Variants[0].ID, -1, models.StockSet)
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.inventory.AdjustStock(ctx, tenant, p.ID, p.Variants[0].ID, 1, "double")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.inventory.AdjustStock(ctx, tenant, p.ID, 9999, 1, models.StockSet)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.inventory.AdjustStock(ctx, "other-store", p.ID, p.Variants[0].ID, 1, models.StockSet)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestInventoryListAndAlerts(t *testing.T) {
	f := newFixture(t)
	stockedCatalog(t, f)
	page := query.NewPage(1, 20)

	critical, total, err := f.inventory.List(ctx, tenant, services.InventoryFilter{Status: models.StockCritical}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, critical, 1)
	assert.Equal(t, "CANDLE-CRIT", critical[0].SKU)
	assert.Equal(t, models.StockCritical, critical[0].StockStatus)

	_, _, err = f.inventory.List(ctx, tenant, services.InventoryFilter{Status: "plenty"}, page)
	assert.True(t, apperrors.IsValidation(err))

	alerts, total, err := f.inventory.Alerts(ctx, tenant, page)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"CANDLE-EMPTY", "CANDLE-CRIT", "CANDLE-LOW"}, []string{alerts[0].SKU, alerts[1].SKU, alerts[2].SKU})
}

func TestInventoryProductAndStats(t *testing.T) {
	f := newFixture(t)
	p := stockedCatalog(t, f)

	inv, err := f.inventory.ProductInventory(ctx, tenant, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 73, inv.TotalStock)
	assert.Equal(t, models.StockInStock, inv.StockStatus)
	require.Len(t, inv.Variants, 4)
	assert.Equal(t, models.StockOutOfStock, inv.Variants[0].StockStatus)

	stats, err := f.inventory.Stats(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, services.InventoryStats{
		TotalProducts: 1,
		TotalVariants: 4,
		TotalStock:    73,
		OutOfStock:    1,
		Critical:      1,
		Low:           1,
		InStock:       1,
	}, *stats)
}

func TestInventoryBulkUpdate(t *testing.T) {
	f := newFixture(t)
	p := stockedCatalog(t, f)

	result := f.inventory.BulkUpdate(ctx, tenant, []services.StockUpdate{
		{SKU: "CANDLE-EMPTY", NewStock: 25},
		{SKU: "NO-SUCH-SKU", NewStock: 5},
		{SKU: " ", NewStock: 5},
		{SKU: "CANDLE-FULL", NewStock: -3},
		{SKU: "CANDLE-CRIT", NewStock: 0},
	})

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Successful)
	require.Len(t, result.Failed, 3)
	assert.Equal(t, "Variant with SKU NO-SUCH-SKU not found", result.Failed[0].Error)
	assert.Equal(t, "SKU is required", result.Failed[1].Error)
	assert.Equal(t, 3, result.Failed[2].Index)

	assert.Equal(t, 25, f.stock(t, p.Variants[0].ID))
	assert.Equal(t, 0, f.stock(t, p.Variants[1].ID))
	assert.Equal(t, 60, f.stock(t, p.Variants[3].ID), "failed items are not applied")
}

func TestInventoryReserveIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	p := stockedCatalog(t, f)
	crit, full := p.Variants[1], p.Variants[3]

	err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.inventory.Reserve(tx, tenant, []services.StockLine{
			{VariantID: full.ID, SKU: full.SKU, Quantity: 10},
			{VariantID: crit.ID, SKU: crit.SKU, Quantity: 5},
		})
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidOperation(err))
	assert.Equal(t, "Insufficient stock for CANDLE-CRIT", apperrors.Hint(err, ""))
	assert.Equal(t, 60, f.stock(t, full.ID), "the earlier line is rolled back")

	err = f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.inventory.Reserve(tx, tenant, []services.StockLine{{VariantID: crit.ID, SKU: crit.SKU, Quantity: 4}}); err != nil {
			return err
		}
		return f.inventory.Restore(tx, tenant, []services.StockLine{{VariantID: crit.ID, Quantity: 1}})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.stock(t, crit.ID))
}
