package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// AddCartItemRequest is the body for putting a variant in the cart
type AddCartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	VariantID uint `json:"variantId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0,lte=100"`
}

// UpdateCartItemRequest is the body for changing a line's quantity
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,lte=100"`
}

// ApplyCouponRequest is the body for applying a coupon to the cart
type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,couponcode"`
}

// CartController serves /api/cart for the authenticated customer
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a cart controller
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// Get handles GET /api/cart
func (h *CartController) Get(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Cart retrieved successfully", cart)
}

// AddItem handles POST /api/cart/items
func (h *CartController) AddItem(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), middleware.GetTenantID(c), userID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Item added to cart", cart)
}

// UpdateItem handles PUT /api/cart/items/:itemId
func (h *CartController) UpdateItem(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	itemID, valid := pathID(c, "itemId")
	if !valid {
		return
	}
	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), middleware.GetTenantID(c), userID, itemID, req.Quantity)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Cart item updated", cart)
}

// RemoveItem handles DELETE /api/cart/items/:itemId
func (h *CartController) RemoveItem(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	itemID, valid := pathID(c, "itemId")
	if !valid {
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), middleware.GetTenantID(c), userID, itemID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Item removed from cart", cart)
}

// Clear handles DELETE /api/cart
func (h *CartController) Clear(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	cart, err := h.carts.Clear(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Cart cleared", cart)
}

// ApplyCoupon handles POST /api/cart/coupon
func (h *CartController) ApplyCoupon(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req ApplyCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.carts.ApplyCoupon(c.Request.Context(), middleware.GetTenantID(c), userID, req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon applied successfully", cart)
}

// RemoveCoupon handles DELETE /api/cart/coupon
func (h *CartController) RemoveCoupon(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	cart, err := h.carts.RemoveCoupon(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon removed", cart)
}
