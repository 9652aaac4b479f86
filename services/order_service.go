package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceOrderInput is what a customer supplies at checkout
type PlaceOrderInput struct {
	ShippingAddress    models.Address
	PaymentMethod      string
	ShippingProviderID *uint
	Notes              string
}

// OrderFilter narrows order listings
type OrderFilter struct {
	Status models.OrderStatus
	UserID *uint
	Search string
}

// StatusUpdate moves an order through its lifecycle
type StatusUpdate struct {
	Status         models.OrderStatus
	TrackingNumber *string
	Reason         string
}

// OrderService places orders and drives their status
type OrderService struct {
	db        *gorm.DB
	inventory *InventoryService
	coupons   *CouponService
	now       func() time.Time
	logger    *logrus.Entry
}

// NewOrderService creates a new order service
func NewOrderService(db *gorm.DB, inventory *InventoryService, coupons *CouponService, logger *logrus.Entry) *OrderService {
	return &OrderService{db: db, inventory: inventory, coupons: coupons, now: time.Now, logger: logger}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD-" + now.Format("20060102") + "-" + suffix
}

func orderLines(items []models.OrderItem) []StockLine {
	return lo.Map(items, func(it models.OrderItem, _ int) StockLine {
		return StockLine{VariantID: it.VariantID, SKU: it.SKU, Quantity: it.Quantity}
	})
}

// Place turns the user's cart into an order. Stock reservation, coupon
// redemption, the order rows and emptying the cart commit together.
func (s *OrderService) Place(ctx context.Context, tenantID string, userID uint, in PlaceOrderInput) (*models.Order, error) {
	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = "cod"
	}
	if !lo.Contains(models.PaymentMethods, method) {
		return nil, apperrors.Validation("Payment method must be one of " + strings.Join(models.PaymentMethods, ", "))
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := loadCart(tx, tenantID, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return apperrors.InvalidOperation(models.ReasonCartEmpty)
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, it := range cart.Items {
			if it.Product == nil || !it.Product.IsActive || it.Variant == nil {
				return apperrors.InvalidOperation("An item in your cart is no longer available")
			}
			items = append(items, models.OrderItem{
				ProductID: it.ProductID,
				VariantID: it.VariantID,
				Name:      it.Product.Name,
				SKU:       it.Variant.SKU,
				Color:     it.Variant.Color,
				Size:      it.Variant.Size,
				Quantity:  it.Quantity,
				Price:     it.Variant.Price,
			})
		}
		for i := range cart.Items {
			cart.Items[i].Price = items[i].Price
		}

		if err := s.inventory.Reserve(tx, tenantID, orderLines(items)); err != nil {
			return err
		}

		snap := Snapshot(cart)
		var discount float64
		if cart.CouponCode != nil {
			if discount, err = s.coupons.Redeem(tx, tenantID, *cart.CouponCode, snap); err != nil {
				return err
			}
		}

		var shipping float64
		if in.ShippingProviderID != nil {
			var provider models.ShippingProvider
			err := tx.Scopes(forTenant(tenantID)).Where("is_active = ?", true).First(&provider, *in.ShippingProviderID).Error
			if err != nil {
				return lookupError(err, "Shipping provider")
			}
			count := lo.SumBy(items, func(it models.OrderItem) int { return it.Quantity })
			shipping = provider.Rate(snap.Total, count)
		}

		total := decimal.NewFromFloat(snap.Total).
			Sub(decimal.NewFromFloat(discount)).
			Add(decimal.NewFromFloat(shipping))

		order = models.Order{
			TenantID:           tenantID,
			OrderNumber:        newOrderNumber(s.now()),
			UserID:             userID,
			Items:              items,
			Subtotal:           snap.Total,
			Discount:           discount,
			ShippingCost:       shipping,
			Total:              total.Round(2).InexactFloat64(),
			CouponCode:         cart.CouponCode,
			Status:             models.OrderPending,
			PaymentStatus:      models.PaymentPending,
			PaymentMethod:      method,
			ShippingAddress:    in.ShippingAddress,
			ShippingProviderID: in.ShippingProviderID,
			Notes:              in.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Database(err, "Failed to place order")
		}
		return clearCart(tx, tenantID, userID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":    tenantID,
		"user_id":      userID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	}).Info("Placed order")
	return &order, nil
}

// List returns a page of orders, newest first
func (s *OrderService) List(ctx context.Context, tenantID string, f OrderFilter, page query.Page) ([]models.Order, int64, error) {
	filter := query.Where(query.TextMatch{Fields: []string{"order_number"}, Text: f.Search})
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, 0, apperrors.Validation("Unknown order status")
		}
		filter = filter.And(query.Equals{Field: "status", Value: f.Status})
	}
	if f.UserID != nil {
		filter = filter.And(query.Equals{Field: "user_id", Value: *f.UserID})
	}

	base := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(forTenant(tenantID), query.Scope(filter))
	return listPage[models.Order](base, page, "created_at DESC, id DESC", "Failed to list orders", "Items")
}

// Get loads one order. A non-nil userID restricts it to that customer's orders.
func (s *OrderService) Get(ctx context.Context, tenantID string, userID *uint, id uint) (*models.Order, error) {
	return s.get(s.db.WithContext(ctx), tenantID, userID, id)
}

func (s *OrderService) get(db *gorm.DB, tenantID string, userID *uint, id uint) (*models.Order, error) {
	q := db.Scopes(forTenant(tenantID)).Preload("Items").Preload("ShippingProvider")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var order models.Order
	if err := q.First(&order, id).Error; err != nil {
		return nil, lookupError(err, "Order")
	}
	return &order, nil
}

// Cancel cancels a customer's own order
func (s *OrderService) Cancel(ctx context.Context, tenantID string, userID uint, id uint, reason string) (*models.Order, error) {
	return s.UpdateStatusFor(ctx, tenantID, &userID, id, StatusUpdate{Status: models.OrderCancelled, Reason: reason})
}

// UpdateStatus moves an order to a new status on behalf of an admin
func (s *OrderService) UpdateStatus(ctx context.Context, tenantID string, id uint, u StatusUpdate) (*models.Order, error) {
	return s.UpdateStatusFor(ctx, tenantID, nil, id, u)
}

// UpdateStatusFor applies a status transition. Cancelling restores the
// reserved stock and releases the coupon in the same transaction.
func (s *OrderService) UpdateStatusFor(ctx context.Context, tenantID string, userID *uint, id uint, u StatusUpdate) (*models.Order, error) {
	if !u.Status.Valid() {
		return nil, apperrors.Validation("Unknown order status")
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.get(tx, tenantID, userID, id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransition(u.Status) {
			return apperrors.NewErrorf("order %s: %s -> %s", order.OrderNumber, order.Status, u.Status).
				WithHintf("Cannot change order status from %s to %s", order.Status, u.Status).
				Mark(apperrors.ErrInvalidOperation)
		}

		now := s.now()
		updates := map[string]any{"status": u.Status}
		switch u.Status {
		case models.OrderCancelled:
			if err := s.inventory.Restore(tx, tenantID, orderLines(order.Items)); err != nil {
				return err
			}
			if order.CouponCode != nil {
				if err := s.coupons.Release(tx, tenantID, *order.CouponCode); err != nil {
					return err
				}
			}
			updates["cancelled_at"] = now
			updates["cancel_reason"] = u.Reason
		case models.OrderShipped:
			if u.TrackingNumber != nil {
				updates["tracking_number"] = *u.TrackingNumber
			}
		case models.OrderDelivered:
			updates["delivered_at"] = now
			if order.PaymentMethod == "cod" && order.PaymentStatus == models.PaymentPending {
				updates["payment_status"] = models.PaymentPaid
			}
		}

		if err := tx.Model(order).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return apperrors.Database(err, "Failed to update order")
		}
		order, err = s.get(tx, tenantID, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":    tenantID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
	}).Info("Order status changed")
	return order, nil
}
