package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// WishlistRequest is the body for saving a product
type WishlistRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

// WishlistController serves /api/wishlist
type WishlistController struct {
	wishlist *services.WishlistService
}

// NewWishlistController creates a wishlist controller
func NewWishlistController(wishlist *services.WishlistService) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

// List handles GET /api/wishlist
func (h *WishlistController) List(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	items, err := h.wishlist.List(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Wishlist retrieved successfully", items)
}

// Add handles POST /api/wishlist
func (h *WishlistController) Add(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req WishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.wishlist.Add(c.Request.Context(), middleware.GetTenantID(c), userID, req.ProductID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Product added to wishlist", item)
}

// Remove handles DELETE /api/wishlist/:productId
func (h *WishlistController) Remove(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	productID, valid := pathID(c, "productId")
	if !valid {
		return
	}
	if err := h.wishlist.Remove(c.Request.Context(), middleware.GetTenantID(c), userID, productID); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product removed from wishlist", nil)
}
