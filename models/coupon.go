package models

import (
	"regexp"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DiscountType is how a coupon's discount value is interpreted
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount code with usage and validity constraints
type Coupon struct {
	ID                   uint                      `gorm:"primaryKey" json:"id"`
	TenantID             string                    `gorm:"not null;uniqueIndex:idx_coupons_tenant_code" json:"-"`
	Code                 string                    `gorm:"not null;size:32;uniqueIndex:idx_coupons_tenant_code" json:"code"`
	Description          string                    `json:"description"`
	DiscountType         DiscountType              `gorm:"not null;size:16" json:"discountType"`
	DiscountValue        float64                   `gorm:"not null" json:"discountValue"`
	MinOrderAmount       float64                   `gorm:"not null;default:0" json:"minOrderAmount"`
	MaxDiscountAmount    *float64                  `json:"maxDiscountAmount"`
	UsageLimit           int                       `gorm:"not null;default:1" json:"usageLimit"`
	UsedCount            int                       `gorm:"not null;default:0" json:"usedCount"`
	IsActive             bool                      `gorm:"not null;default:true" json:"isActive"`
	ValidFrom            time.Time                 `gorm:"not null" json:"validFrom"`
	ValidUntil           time.Time                 `gorm:"not null" json:"validUntil"`
	ApplicableCategories datatypes.JSONSlice[uint] `json:"applicableCategories"`
	ApplicableProducts   datatypes.JSONSlice[uint] `json:"applicableProducts"`
	CreatedAt            time.Time                 `json:"createdAt"`
	UpdatedAt            time.Time                 `json:"updatedAt"`
}

// TableName specifies the table name for the Coupon model
func (Coupon) TableName() string {
	return "coupons"
}

// CartSnapshot is what coupon evaluation needs to know about a cart.
type CartSnapshot struct {
	Total       float64
	CategoryIDs []uint
	ProductIDs  []uint
}

// Eligibility is the outcome of evaluating a coupon against a cart.
type Eligibility struct {
	Valid    bool    `json:"valid"`
	Reason   string  `json:"reason,omitempty"`
	Discount float64 `json:"discount"`
}

// Reasons a coupon cannot be used, in the order they are checked.
const (
	ReasonInactive         = "Coupon is not active"
	ReasonNotStarted       = "Coupon is not valid yet"
	ReasonExpired          = "Coupon has expired"
	ReasonUsageExhausted   = "Coupon usage limit reached"
	ReasonMinOrderNotMet   = "Minimum order amount not met"
	ReasonCategoryMismatch = "Coupon is not applicable to the categories in your cart"
	ReasonProductMismatch  = "Coupon is not applicable to the products in your cart"
	ReasonCouponNotFound   = "Invalid coupon code"
	ReasonCartEmpty        = "Cart is empty"
)

// CanBeUsed evaluates the coupon against cart at now. Checks short-circuit
// on the first failure.
func (c *Coupon) CanBeUsed(cart CartSnapshot, now time.Time) Eligibility {
	if !c.IsActive {
		return Eligibility{Reason: ReasonInactive}
	}
	if now.Before(c.ValidFrom) {
		return Eligibility{Reason: ReasonNotStarted}
	}
	if now.After(c.ValidUntil) {
		return Eligibility{Reason: ReasonExpired}
	}
	if c.UsedCount >= c.UsageLimit {
		return Eligibility{Reason: ReasonUsageExhausted}
	}
	if cart.Total < c.MinOrderAmount {
		return Eligibility{Reason: ReasonMinOrderNotMet}
	}
	if len(c.ApplicableCategories) > 0 && !lo.Some(cart.CategoryIDs, []uint(c.ApplicableCategories)) {
		return Eligibility{Reason: ReasonCategoryMismatch}
	}
	if len(c.ApplicableProducts) > 0 && !lo.Some(cart.ProductIDs, []uint(c.ApplicableProducts)) {
		return Eligibility{Reason: ReasonProductMismatch}
	}
	return Eligibility{Valid: true, Discount: c.CalculateDiscount(cart.Total)}
}

// CalculateDiscount returns the discount for total, rounded to 2 decimals.
// The result is always within [0, total].
func (c *Coupon) CalculateDiscount(total float64) float64 {
	if total <= 0 {
		return 0
	}
	t := decimal.NewFromFloat(total)

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = t.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(decimal.NewFromInt(100))
		if c.MaxDiscountAmount != nil {
			discount = decimal.Min(discount, decimal.NewFromFloat(*c.MaxDiscountAmount))
		}
	case DiscountFixed:
		discount = decimal.Min(decimal.NewFromFloat(c.DiscountValue), t)
	default:
		return 0
	}

	discount = decimal.Min(decimal.Max(discount, decimal.Zero), t)
	return discount.Round(2).InexactFloat64()
}

var couponCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,32}$`)

// IsCouponCode reports whether code is 3-32 uppercase letters or digits.
func IsCouponCode(code string) bool {
	return couponCodePattern.MatchString(code)
}

// ValidateCoupon checks a coupon's invariants before it is written.
func ValidateCoupon(c *Coupon) error {
	if !IsCouponCode(c.Code) {
		return apperrors.Validation("Coupon code must be 3-32 uppercase letters or digits")
	}
	switch c.DiscountType {
	case DiscountPercentage:
		if c.DiscountValue > 100 {
			return apperrors.Validation("Percentage discount cannot exceed 100")
		}
	case DiscountFixed:
	default:
		return apperrors.Validation("Discount type must be percentage or fixed")
	}
	if c.DiscountValue <= 0 {
		return apperrors.Validation("Discount value must be greater than 0")
	}
	if c.MinOrderAmount < 0 {
		return apperrors.Validation("Minimum order amount cannot be negative")
	}
	if c.MaxDiscountAmount != nil && *c.MaxDiscountAmount <= 0 {
		return apperrors.Validation("Maximum discount amount must be greater than 0")
	}
	if c.UsageLimit < 1 {
		return apperrors.Validation("Usage limit must be at least 1")
	}
	if c.UsedCount < 0 || c.UsedCount > c.UsageLimit {
		return apperrors.Validation("Used count must be between 0 and the usage limit")
	}
	if !c.ValidUntil.After(c.ValidFrom) {
		return apperrors.Validation("Valid until must be after valid from")
	}
	return nil
}
