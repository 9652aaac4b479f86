package models

import (
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Product is a catalog entry. Purchasable units are its variants.
type Product struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	TenantID         string                      `gorm:"not null;uniqueIndex:idx_products_tenant_slug;index" json:"-"`
	Name             string                      `gorm:"not null" json:"name"`
	Slug             string                      `gorm:"not null;uniqueIndex:idx_products_tenant_slug" json:"slug"`
	Description      string                      `gorm:"type:text" json:"description"`
	Brand            string                      `gorm:"index" json:"brand,omitempty"`
	CategoryID       uint                        `gorm:"not null;index" json:"categoryId"`
	SubCategoryID    *uint                       `gorm:"index" json:"subCategoryId"`
	SubSubCategoryID *uint                       `gorm:"index" json:"subSubCategoryId"`
	BasePrice        float64                     `gorm:"not null" json:"basePrice"`
	IsActive         bool                        `gorm:"not null;default:true" json:"isActive"`
	IsFeatured       bool                        `gorm:"not null;default:false" json:"isFeatured"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	Rating           float64                     `gorm:"not null;default:0" json:"rating"`
	Variants         []Variant                   `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CategoryIDs returns every category the product is filed under.
func (p Product) CategoryIDs() []uint {
	ids := []uint{p.CategoryID}
	if p.SubCategoryID != nil {
		ids = append(ids, *p.SubCategoryID)
	}
	if p.SubSubCategoryID != nil {
		ids = append(ids, *p.SubSubCategoryID)
	}
	return ids
}

// Variant is a color/size/SKU instance of a product with its own stock.
// Stock only changes through the inventory adjustment operation.
type Variant struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	TenantID      string                      `gorm:"not null;uniqueIndex:idx_variants_tenant_sku" json:"-"`
	ProductID     uint                        `gorm:"not null;index" json:"productId"`
	Color         string                      `json:"color,omitempty"`
	Size          string                      `json:"size,omitempty"`
	SKU           string                      `gorm:"not null;uniqueIndex:idx_variants_tenant_sku" json:"sku"`
	Price         float64                     `gorm:"not null" json:"price"`
	OriginalPrice float64                     `json:"originalPrice"`
	Stock         int                         `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Images        datatypes.JSONSlice[string] `json:"images"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name for the Variant model
func (Variant) TableName() string {
	return "product_variants"
}

// StockStatus is derived from a stock count, never stored.
type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockCritical   StockStatus = "critical"
	StockLow        StockStatus = "low"
	StockInStock    StockStatus = "in_stock"
)

const (
	CriticalStockThreshold = 5
	LowStockThreshold      = 10
)

// StockStatusFor classifies a stock count.
func StockStatusFor(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StockOutOfStock
	case stock <= CriticalStockThreshold:
		return StockCritical
	case stock <= LowStockThreshold:
		return StockLow
	default:
		return StockInStock
	}
}

// StockOperation is how an adjustment quantity combines with current stock.
type StockOperation string

const (
	StockSet      StockOperation = "set"
	StockIncrease StockOperation = "increase"
	StockDecrease StockOperation = "decrease"
)

// ValidateStockOperation checks an adjustment before it is written.
func ValidateStockOperation(op StockOperation, quantity int) error {
	switch op {
	case StockSet, StockIncrease, StockDecrease:
	default:
		return apperrors.Validation("Operation must be one of set, increase, decrease")
	}
	if quantity < 0 {
		return apperrors.Validation("Stock quantity cannot be negative")
	}
	return nil
}

// UpdateExpr is the column expression applying op to the stock column in a
// single statement. Decrease is floored at zero.
func (op StockOperation) UpdateExpr(quantity int) clause.Expr {
	switch op {
	case StockIncrease:
		return gorm.Expr("stock + ?", quantity)
	case StockDecrease:
		return gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", quantity, quantity)
	default:
		return gorm.Expr("?", quantity)
	}
}
