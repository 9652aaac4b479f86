package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingProvider is a carrier orders can be shipped with
type ShippingProvider struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	TenantID              string    `gorm:"not null;uniqueIndex:idx_shipping_tenant_code" json:"-"`
	Name                  string    `gorm:"not null" json:"name"`
	Code                  string    `gorm:"not null;uniqueIndex:idx_shipping_tenant_code" json:"code"`
	BaseRate              float64   `gorm:"not null;default:0" json:"baseRate"`
	PerItemRate           float64   `gorm:"not null;default:0" json:"perItemRate"`
	FreeShippingThreshold *float64  `json:"freeShippingThreshold"`
	EstimatedDays         int       `gorm:"not null;default:5" json:"estimatedDays"`
	TrackingURLTemplate   string    `json:"trackingUrlTemplate,omitempty"` // "{tracking}" is replaced
	IsActive              bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the ShippingProvider model
func (ShippingProvider) TableName() string {
	return "shipping_providers"
}

// Rate returns the shipping cost for an order subtotal and item count.
func (p ShippingProvider) Rate(subtotal float64, itemCount int) float64 {
	if p.FreeShippingThreshold != nil && subtotal >= *p.FreeShippingThreshold {
		return 0
	}
	cost := decimal.NewFromFloat(p.BaseRate).
		Add(decimal.NewFromFloat(p.PerItemRate).Mul(decimal.NewFromInt(int64(itemCount))))
	return cost.Round(2).InexactFloat64()
}

// TrackingURL renders the provider's tracking link for a tracking number.
func (p ShippingProvider) TrackingURL(trackingNumber string) string {
	if p.TrackingURLTemplate == "" || trackingNumber == "" {
		return ""
	}
	return strings.ReplaceAll(p.TrackingURLTemplate, "{tracking}", trackingNumber)
}
