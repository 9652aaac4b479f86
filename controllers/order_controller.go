package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// CreateOrderRequest represents the request body for placing an order from the cart
type CreateOrderRequest struct {
	ShippingAddress    models.Address `json:"shippingAddress" binding:"required"`
	PaymentMethod      string         `json:"paymentMethod" binding:"omitempty,oneof=cod card upi wallet netbanking"`
	ShippingProviderID *uint          `json:"shippingProviderId"`
	Notes              string         `json:"notes" binding:"max=500"`
}

// CancelOrderRequest represents the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// UpdateOrderStatusRequest represents the request body for moving an order
// through fulfilment
type UpdateOrderStatusRequest struct {
	Status         models.OrderStatus `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingNumber *string            `json:"trackingNumber" binding:"omitempty,max=100"`
	Reason         string             `json:"reason" binding:"max=500"`
}

// OrderController serves /api/orders and the back office order screens
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder handles POST /api/orders - places an order from the caller's cart
func (h *OrderController) CreateOrder(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Place(c.Request.Context(), middleware.GetTenantID(c), userID, services.PlaceOrderInput{
		ShippingAddress:    req.ShippingAddress,
		PaymentMethod:      req.PaymentMethod,
		ShippingProviderID: req.ShippingProviderID,
		Notes:              req.Notes,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Order placed successfully", order)
}

// ListMyOrders handles GET /api/orders - the caller's orders
func (h *OrderController) ListMyOrders(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	filter := services.OrderFilter{Status: models.OrderStatus(c.Query("status")), UserID: &userID}
	page := utils.ParsePage(c)

	orders, total, err := h.orders.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Orders retrieved successfully", orders, total, page)
}

// GetMyOrder handles GET /api/orders/:id - one of the caller's orders
func (h *OrderController) GetMyOrder(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.GetTenantID(c), &userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Order retrieved successfully", order)
}

// CancelMyOrder handles POST /api/orders/:id/cancel - restores stock and
// releases the coupon
func (h *OrderController) CancelMyOrder(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), middleware.GetTenantID(c), userID, id, req.Reason)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Order cancelled successfully", order)
}

// List handles GET /api/admin/orders (admin only)
func (h *OrderController) List(c *gin.Context) {
	userID, err := utils.OptionalUint(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter := services.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		UserID: userID,
		Search: c.Query("search"),
	}
	page := utils.ParsePage(c)

	orders, total, err := h.orders.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Orders retrieved successfully", orders, total, page)
}

// Get handles GET /api/admin/orders/:id (admin only)
func (h *OrderController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), middleware.GetTenantID(c), nil, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Order retrieved successfully", order)
}

// UpdateStatus handles PATCH /api/admin/orders/:id/status (admin only)
func (h *OrderController) UpdateStatus(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.GetTenantID(c), id, services.StatusUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Reason:         req.Reason,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Order status updated successfully", order)
}
