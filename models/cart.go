package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds a user's pending items and the coupon applied to them
type Cart struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TenantID   string     `gorm:"not null;uniqueIndex:idx_carts_tenant_user" json:"-"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_carts_tenant_user" json:"userId"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CouponCode *string    `json:"couponCode"`
	Discount   float64    `gorm:"not null;default:0" json:"discount"`
	Subtotal   float64    `gorm:"-" json:"subtotal"`
	Total      float64    `gorm:"-" json:"total"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Cart model
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one variant line in a cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"cartId"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	VariantID uint      `gorm:"not null" json:"variantId"`
	Variant   *Variant  `gorm:"foreignKey:VariantID" json:"variant,omitempty"`
	Quantity  int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}

// ComputeTotals fills Subtotal and Total from the items and stored discount.
func (c *Cart) ComputeTotals() {
	sub := decimal.Zero
	for _, it := range c.Items {
		sub = sub.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.Subtotal = sub.Round(2).InexactFloat64()
	total := sub.Sub(decimal.NewFromFloat(c.Discount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	c.Total = total.Round(2).InexactFloat64()
}

// WishlistItem marks a product a user wants to keep an eye on
type WishlistItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"not null;uniqueIndex:idx_wishlist_tenant_user_product" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_wishlist_tenant_user_product" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_wishlist_tenant_user_product" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for the WishlistItem model
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
