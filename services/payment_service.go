package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentVerification is the gateway outcome reported for a payment
type PaymentVerification struct {
	TransactionID string
	Success       bool
	FailureReason string
}

// PaymentService records payments against orders
type PaymentService struct {
	db     *gorm.DB
	orders *OrderService
	logger *logrus.Entry
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, orders *OrderService, logger *logrus.Entry) *PaymentService {
	return &PaymentService{db: db, orders: orders, logger: logger}
}

// Create opens a pending payment for the full order total
func (s *PaymentService) Create(ctx context.Context, tenantID string, userID, orderID uint, method string) (*models.Payment, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if !lo.Contains(models.PaymentMethods, method) {
		return nil, apperrors.Validation("Payment method must be one of " + strings.Join(models.PaymentMethods, ", "))
	}

	order, err := s.orders.Get(ctx, tenantID, &userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderCancelled {
		return nil, apperrors.InvalidOperation("Cannot pay for a cancelled order")
	}
	if order.PaymentStatus == models.PaymentPaid || order.PaymentStatus == models.PaymentRefunded {
		return nil, apperrors.InvalidOperation("Order has already been paid")
	}

	payment := &models.Payment{
		TenantID: tenantID,
		OrderID:  order.ID,
		UserID:   userID,
		Amount:   order.Total,
		Method:   method,
		Status:   models.PaymentRecordPending,
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to create payment")
	}
	return payment, nil
}

// Verify records the gateway outcome. A successful payment marks the order
// paid and confirms it when still pending.
func (s *PaymentService) Verify(ctx context.Context, tenantID string, userID, paymentID uint, v PaymentVerification) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Scopes(forTenant(tenantID)).Where("user_id = ?", userID).First(&payment, paymentID).Error
		if err != nil {
			return lookupError(err, "Payment")
		}
		if payment.Status != models.PaymentRecordPending {
			return apperrors.InvalidOperation("Payment has already been processed")
		}

		paymentUpdates := map[string]any{}
		orderUpdates := map[string]any{}
		if v.Success {
			if strings.TrimSpace(v.TransactionID) == "" {
				return apperrors.Validation("Transaction ID is required for a successful payment")
			}
			paymentUpdates["status"] = models.PaymentRecordCompleted
			paymentUpdates["transaction_id"] = v.TransactionID
			orderUpdates["payment_status"] = models.PaymentPaid
		} else {
			paymentUpdates["status"] = models.PaymentRecordFailed
			paymentUpdates["failure_reason"] = v.FailureReason
			orderUpdates["payment_status"] = models.PaymentFailed
		}

		if err := tx.Model(&payment).Updates(paymentUpdates).Error; err != nil {
			return apperrors.Database(err, "Failed to update payment")
		}
		err = tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).Updates(orderUpdates).Error
		if err != nil {
			return apperrors.Database(err, "Failed to update order")
		}
		if v.Success {
			err = tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", payment.OrderID, models.OrderPending).
				Update("status", models.OrderConfirmed).Error
			if err != nil {
				return apperrors.Database(err, "Failed to update order")
			}
		}
		return tx.First(&payment, payment.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"status":     payment.Status,
	}).Info("Payment verified")
	return &payment, nil
}

// ListByOrder returns an order's payments. A non-nil userID restricts it to
// that customer's orders.
func (s *PaymentService) ListByOrder(ctx context.Context, tenantID string, userID *uint, orderID uint) ([]models.Payment, error) {
	if _, err := s.orders.Get(ctx, tenantID, userID, orderID); err != nil {
		return nil, err
	}
	payments := []models.Payment{}
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("order_id = ?", orderID).Order("created_at DESC, id DESC").Find(&payments).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to list payments")
	}
	return payments, nil
}

// Refund marks a completed payment refunded
func (s *PaymentService) Refund(ctx context.Context, tenantID string, paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(forTenant(tenantID)).First(&payment, paymentID).Error; err != nil {
			return lookupError(err, "Payment")
		}
		if payment.Status != models.PaymentRecordCompleted {
			return apperrors.InvalidOperation("Only completed payments can be refunded")
		}
		if err := tx.Model(&payment).Update("status", models.PaymentRecordRefunded).Error; err != nil {
			return apperrors.Database(err, "Failed to refund payment")
		}
		err := tx.Model(&models.Order{}).Where("id = ?", payment.OrderID).
			Update("payment_status", models.PaymentRefunded).Error
		if err != nil {
			return apperrors.Database(err, "Failed to update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "payment_id": paymentID}).Info("Refunded payment")
	return &payment, nil
}
