package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// ProviderRequest is the body for creating or replacing a shipping provider
type ProviderRequest struct {
	Name                  string   `json:"name" binding:"required,max=100"`
	Code                  string   `json:"code" binding:"required,max=32,alphanum"`
	BaseRate              float64  `json:"baseRate" binding:"gte=0"`
	PerItemRate           float64  `json:"perItemRate" binding:"gte=0"`
	FreeShippingThreshold *float64 `json:"freeShippingThreshold" binding:"omitempty,gte=0"`
	EstimatedDays         int      `json:"estimatedDays" binding:"required,gt=0,lte=60"`
	TrackingURLTemplate   string   `json:"trackingUrlTemplate" binding:"omitempty,max=500"`
	IsActive              *bool    `json:"isActive"`
}

func (r ProviderRequest) input() services.ProviderInput {
	return services.ProviderInput{
		Name:                  r.Name,
		Code:                  r.Code,
		BaseRate:              r.BaseRate,
		PerItemRate:           r.PerItemRate,
		FreeShippingThreshold: r.FreeShippingThreshold,
		EstimatedDays:         r.EstimatedDays,
		TrackingURLTemplate:   r.TrackingURLTemplate,
		IsActive:              r.IsActive,
	}
}

// RatesQuery is the order a shipping quote is requested for
type RatesQuery struct {
	Subtotal  float64 `form:"subtotal" binding:"gte=0"`
	ItemCount int     `form:"itemCount" binding:"gte=0"`
}

// ShippingController serves /api/shipping
type ShippingController struct {
	shipping *services.ShippingService
}

// NewShippingController creates a shipping controller
func NewShippingController(shipping *services.ShippingService) *ShippingController {
	return &ShippingController{shipping: shipping}
}

// Providers handles GET /api/shipping/providers - active providers
func (h *ShippingController) Providers(c *gin.Context) {
	providers, err := h.shipping.Providers(c.Request.Context(), middleware.GetTenantID(c), false)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping providers retrieved successfully", providers)
}

// Rates handles GET /api/shipping/rates?subtotal=&itemCount=
func (h *ShippingController) Rates(c *gin.Context) {
	var q RatesQuery
	if !bindQuery(c, &q) {
		return
	}
	rates, err := h.shipping.Rates(c.Request.Context(), middleware.GetTenantID(c), q.Subtotal, q.ItemCount)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping rates calculated successfully", rates)
}

// Track handles GET /api/shipping/track/:orderId - one of the caller's orders
func (h *ShippingController) Track(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}

	scope := &userID
	if middleware.GetUserRole(c) == "admin" {
		scope = nil
	}
	info, err := h.shipping.Track(c.Request.Context(), middleware.GetTenantID(c), scope, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Tracking information retrieved successfully", info)
}

// List handles GET /api/admin/shipping/providers - every provider (admin only)
func (h *ShippingController) List(c *gin.Context) {
	providers, err := h.shipping.Providers(c.Request.Context(), middleware.GetTenantID(c), true)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping providers retrieved successfully", providers)
}

// Get handles GET /api/admin/shipping/providers/:id (admin only)
func (h *ShippingController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	provider, err := h.shipping.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping provider retrieved successfully", provider)
}

// Create handles POST /api/admin/shipping/providers (admin only)
func (h *ShippingController) Create(c *gin.Context) {
	var req ProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	provider, err := h.shipping.Create(c.Request.Context(), middleware.GetTenantID(c), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Shipping provider created successfully", provider)
}

// Update handles PUT /api/admin/shipping/providers/:id (admin only)
func (h *ShippingController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req ProviderRequest
	if !bindJSON(c, &req) {
		return
	}
	provider, err := h.shipping.Update(c.Request.Context(), middleware.GetTenantID(c), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping provider updated successfully", provider)
}

// Delete handles DELETE /api/admin/shipping/providers/:id (admin only).
// Providers used by orders are deactivated instead.
func (h *ShippingController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.shipping.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Shipping provider deleted successfully", nil)
}
