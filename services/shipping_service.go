package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProviderInput is the writable part of a shipping provider
type ProviderInput struct {
	Name                  string
	Code                  string
	BaseRate              float64
	PerItemRate           float64
	FreeShippingThreshold *float64
	EstimatedDays         int
	TrackingURLTemplate   string
	IsActive              *bool
}

// ShippingRate is the quoted cost of shipping with one provider
type ShippingRate struct {
	ProviderID    uint    `json:"providerId"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Cost          float64 `json:"cost"`
	EstimatedDays int     `json:"estimatedDays"`
}

// TrackingInfo is the shipment state of an order
type TrackingInfo struct {
	OrderNumber       string             `json:"orderNumber"`
	Status            models.OrderStatus `json:"status"`
	TrackingNumber    *string            `json:"trackingNumber"`
	Provider          string             `json:"provider,omitempty"`
	TrackingURL       string             `json:"trackingUrl,omitempty"`
	EstimatedDelivery *time.Time         `json:"estimatedDelivery"`
	DeliveredAt       *time.Time         `json:"deliveredAt"`
}

// ShippingService manages carriers and quotes shipping costs
type ShippingService struct {
	db     *gorm.DB
	orders *OrderService
	logger *logrus.Entry
}

// NewShippingService creates a new shipping service
func NewShippingService(db *gorm.DB, orders *OrderService, logger *logrus.Entry) *ShippingService {
	return &ShippingService{db: db, orders: orders, logger: logger}
}

func (in ProviderInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Code) == "" {
		return apperrors.Validation("Provider name and code are required")
	}
	if in.BaseRate < 0 || in.PerItemRate < 0 {
		return apperrors.Validation("Rates cannot be negative")
	}
	if in.FreeShippingThreshold != nil && *in.FreeShippingThreshold < 0 {
		return apperrors.Validation("Free shipping threshold cannot be negative")
	}
	if in.EstimatedDays < 0 {
		return apperrors.Validation("Estimated days cannot be negative")
	}
	return nil
}

func (in ProviderInput) apply(p *models.ShippingProvider) {
	p.Name = strings.TrimSpace(in.Name)
	p.Code = strings.ToLower(strings.TrimSpace(in.Code))
	p.BaseRate = in.BaseRate
	p.PerItemRate = in.PerItemRate
	p.FreeShippingThreshold = in.FreeShippingThreshold
	p.EstimatedDays = in.EstimatedDays
	if p.EstimatedDays == 0 {
		p.EstimatedDays = 5
	}
	p.TrackingURLTemplate = in.TrackingURLTemplate
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

// Providers lists shipping providers. Inactive ones are only included on request.
func (s *ShippingService) Providers(ctx context.Context, tenantID string, includeInactive bool) ([]models.ShippingProvider, error) {
	q := s.db.WithContext(ctx).Scopes(forTenant(tenantID))
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	providers := []models.ShippingProvider{}
	if err := q.Order("name").Find(&providers).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to list shipping providers")
	}
	return providers, nil
}

// Get loads one provider
func (s *ShippingService) Get(ctx context.Context, tenantID string, id uint) (*models.ShippingProvider, error) {
	var p models.ShippingProvider
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&p, id).Error; err != nil {
		return nil, lookupError(err, "Shipping provider")
	}
	return &p, nil
}

// Create stores a new provider
func (s *ShippingService) Create(ctx context.Context, tenantID string, in ProviderInput) (*models.ShippingProvider, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &models.ShippingProvider{TenantID: tenantID, IsActive: true}
	in.apply(p)

	active := p.IsActive
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		return persistInactive(tx, p, active)
	})
	if err != nil {
		return nil, writeError(err, "Shipping provider with this code", "Failed to create shipping provider")
	}
	p.IsActive = active
	return p, nil
}

// Update replaces a provider's fields
func (s *ShippingService) Update(ctx context.Context, tenantID string, id uint, in ProviderInput) (*models.ShippingProvider, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, writeError(err, "Shipping provider with this code", "Failed to update shipping provider")
	}
	return p, nil
}

// Delete removes a provider. Providers referenced by orders are deactivated instead.
func (s *ShippingService) Delete(ctx context.Context, tenantID string, id uint) error {
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	var used int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("shipping_provider_id = ?", id).Count(&used).Error; err != nil {
		return apperrors.Database(err, "Failed to delete shipping provider")
	}
	if used > 0 {
		err = s.db.WithContext(ctx).Model(p).Update("is_active", false).Error
	} else {
		err = s.db.WithContext(ctx).Delete(p).Error
	}
	if err != nil {
		return apperrors.Database(err, "Failed to delete shipping provider")
	}
	return nil
}

// Rates quotes every active provider for an order of subtotal and itemCount
func (s *ShippingService) Rates(ctx context.Context, tenantID string, subtotal float64, itemCount int) ([]ShippingRate, error) {
	if subtotal < 0 || itemCount < 0 {
		return nil, apperrors.Validation("Subtotal and item count cannot be negative")
	}
	providers, err := s.Providers(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}
	return lo.Map(providers, func(p models.ShippingProvider, _ int) ShippingRate {
		return ShippingRate{
			ProviderID:    p.ID,
			Name:          p.Name,
			Code:          p.Code,
			Cost:          p.Rate(subtotal, itemCount),
			EstimatedDays: p.EstimatedDays,
		}
	}), nil
}

// Track reports where an order's shipment is. A non-nil userID restricts it
// to that customer's orders.
func (s *ShippingService) Track(ctx context.Context, tenantID string, userID *uint, orderID uint) (*TrackingInfo, error) {
	order, err := s.orders.Get(ctx, tenantID, userID, orderID)
	if err != nil {
		return nil, err
	}

	info := &TrackingInfo{
		OrderNumber:    order.OrderNumber,
		Status:         order.Status,
		TrackingNumber: order.TrackingNumber,
		DeliveredAt:    order.DeliveredAt,
	}
	if p := order.ShippingProvider; p != nil {
		info.Provider = p.Name
		if order.TrackingNumber != nil {
			info.TrackingURL = p.TrackingURL(*order.TrackingNumber)
		}
		if order.Status != models.OrderCancelled && order.DeliveredAt == nil {
			eta := order.CreatedAt.AddDate(0, 0, p.EstimatedDays)
			info.EstimatedDelivery = &eta
		}
	}
	return info, nil
}
