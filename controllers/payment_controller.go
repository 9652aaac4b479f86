package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// CreatePaymentRequest is the body for starting a payment for an order
type CreatePaymentRequest struct {
	OrderID uint   `json:"orderId" binding:"required"`
	Method  string `json:"method" binding:"required,oneof=cod card upi wallet netbanking"`
}

// VerifyPaymentRequest carries the gateway's verdict on a payment
type VerifyPaymentRequest struct {
	TransactionID string `json:"transactionId" binding:"required_if=Success true,max=100"`
	Success       bool   `json:"success"`
	FailureReason string `json:"failureReason" binding:"max=500"`
}

// PaymentController serves /api/payments
type PaymentController struct {
	payments *services.PaymentService
}

// NewPaymentController creates a payment controller
func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// Create handles POST /api/payments
func (h *PaymentController) Create(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req CreatePaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.Create(c.Request.Context(), middleware.GetTenantID(c), userID, req.OrderID, req.Method)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Payment initiated successfully", payment)
}

// Verify handles POST /api/payments/:id/verify
func (h *PaymentController) Verify(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req VerifyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	payment, err := h.payments.Verify(c.Request.Context(), middleware.GetTenantID(c), userID, id, services.PaymentVerification{
		TransactionID: req.TransactionID,
		Success:       req.Success,
		FailureReason: req.FailureReason,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "Payment verified successfully"
	if !req.Success {
		message = "Payment failed"
	}
	ok(c, message, payment)
}

// ListByOrder handles GET /api/payments/order/:orderId - the caller's
// payments for one of their orders
func (h *PaymentController) ListByOrder(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	payments, err := h.payments.ListByOrder(c.Request.Context(), middleware.GetTenantID(c), &userID, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Payments retrieved successfully", payments)
}

// AdminListByOrder handles GET /api/admin/orders/:id/payments (admin only)
func (h *PaymentController) AdminListByOrder(c *gin.Context) {
	orderID, valid := pathID(c, "id")
	if !valid {
		return
	}
	payments, err := h.payments.ListByOrder(c.Request.Context(), middleware.GetTenantID(c), nil, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Payments retrieved successfully", payments)
}

// Refund handles POST /api/admin/payments/:id/refund (admin only)
func (h *PaymentController) Refund(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	payment, err := h.payments.Refund(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Payment refunded successfully", payment)
}
