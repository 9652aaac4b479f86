package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestStockStatusFor(t *testing.T) {
	assert.Equal(t, StockOutOfStock, StockStatusFor(0))
	assert.Equal(t, StockOutOfStock, StockStatusFor(-3))

	for stock := 1; stock <= 5; stock++ {
		assert.Equal(t, StockCritical, StockStatusFor(stock), "stock %d", stock)
	}
	for stock := 6; stock <= 10; stock++ {
		assert.Equal(t, StockLow, StockStatusFor(stock), "stock %d", stock)
	}
	for _, stock := range []int{11, 12, 50, 1000, 1 << 30} {
		assert.Equal(t, StockInStock, StockStatusFor(stock), "stock %d", stock)
	}
}

func TestValidateStockOperation(t *testing.T) {
	tests := []struct {
		name     string
		op       StockOperation
		quantity int
		wantErr  bool
	}{
		{"set zero", StockSet, 0, false},
		{"increase", StockIncrease, 5, false},
		{"decrease", StockDecrease, 5, false},
		{"negative quantity", StockSet, -1, true},
		{"unknown operation", StockOperation("multiply"), 2, true},
		{"empty operation", StockOperation(""), 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStockOperation(tt.op, tt.quantity)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStockOperationUpdateExpr(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Variant{}))

	tests := []struct {
		name     string
		start    int
		op       StockOperation
		quantity int
		want     int
	}{
		{"set", 12, StockSet, 3, 3},
		{"set zero", 12, StockSet, 0, 0},
		{"increase", 12, StockIncrease, 8, 20},
		{"decrease", 12, StockDecrease, 5, 7},
		{"decrease to exactly zero", 5, StockDecrease, 5, 0},
		{"decrease floors at zero", 4, StockDecrease, 10, 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variant{TenantID: "default", ProductID: 1, SKU: "SKU-" + string(rune('A'+i)), Price: 10, Stock: tt.start}
			require.NoError(t, db.Create(&v).Error)

			require.NoError(t, db.Model(&Variant{}).Where("id = ?", v.ID).
				Update("stock", tt.op.UpdateExpr(tt.quantity)).Error)

			var got Variant
			require.NoError(t, db.First(&got, v.ID).Error)
			assert.Equal(t, tt.want, got.Stock)
		})
	}
}

func TestProductCategoryIDs(t *testing.T) {
	sub, leaf := uint(2), uint(3)
	assert.Equal(t, []uint{1}, Product{CategoryID: 1}.CategoryIDs())
	assert.Equal(t, []uint{1, 2, 3}, Product{CategoryID: 1, SubCategoryID: &sub, SubSubCategoryID: &leaf}.CategoryIDs())
}

func TestCartComputeTotals(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{Price: 19.99, Quantity: 3},
			{Price: 5.01, Quantity: 1},
		},
		Discount: 10,
	}
	cart.ComputeTotals()
	assert.Equal(t, 64.98, cart.Subtotal)
	assert.Equal(t, 54.98, cart.Total)

	cart.Discount = 1000
	cart.ComputeTotals()
	assert.Equal(t, 0.0, cart.Total, "total never goes negative")
}
