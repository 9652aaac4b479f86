package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// defaultCouponLifetime applies when a coupon is created without an end date
const defaultCouponLifetime = 30 * 24 * time.Hour

// CouponRequest is the body for creating or replacing a coupon
type CouponRequest struct {
	Code                 string              `json:"code" binding:"required,max=32,couponcode"`
	Description          string              `json:"description" binding:"max=500"`
	DiscountType         models.DiscountType `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue        float64             `json:"discountValue" binding:"required,gt=0"`
	MinOrderAmount       float64             `json:"minOrderAmount" binding:"gte=0"`
	MaxDiscountAmount    *float64            `json:"maxDiscountAmount" binding:"omitempty,gt=0"`
	UsageLimit           int                 `json:"usageLimit" binding:"gte=0"`
	IsActive             *bool               `json:"isActive"`
	ValidFrom            *time.Time          `json:"validFrom"`
	ValidUntil           *time.Time          `json:"validUntil"`
	ApplicableCategories []uint              `json:"applicableCategories"`
	ApplicableProducts   []uint              `json:"applicableProducts"`
}

func (r CouponRequest) input(now time.Time) services.CouponInput {
	from := now
	if r.ValidFrom != nil {
		from = *r.ValidFrom
	}
	until := from.Add(defaultCouponLifetime)
	if r.ValidUntil != nil {
		until = *r.ValidUntil
	}
	return services.CouponInput{
		Code:                 r.Code,
		Description:          r.Description,
		DiscountType:         r.DiscountType,
		DiscountValue:        r.DiscountValue,
		MinOrderAmount:       r.MinOrderAmount,
		MaxDiscountAmount:    r.MaxDiscountAmount,
		UsageLimit:           r.UsageLimit,
		IsActive:             r.IsActive,
		ValidFrom:            from,
		ValidUntil:           until,
		ApplicableCategories: r.ApplicableCategories,
		ApplicableProducts:   r.ApplicableProducts,
	}
}

// BulkCouponRequest is the body for creating many coupons at once
type BulkCouponRequest struct {
	Coupons []CouponRequest `json:"coupons" binding:"required,min=1,max=500"`
}

// CouponValidation is the outcome of checking a code against a cart
type CouponValidation struct {
	models.Eligibility
	Code   string         `json:"code"`
	Coupon *models.Coupon `json:"coupon,omitempty"`
}

// CouponController serves /api/coupons
type CouponController struct {
	coupons *services.CouponService
	carts   *services.CartService
}

// NewCouponController creates a coupon controller
func NewCouponController(coupons *services.CouponService, carts *services.CartService) *CouponController {
	return &CouponController{coupons: coupons, carts: carts}
}

// Create handles POST /api/coupons - creates a coupon (admin only)
func (h *CouponController) Create(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.coupons.Create(c.Request.Context(), middleware.GetTenantID(c), req.input(time.Now()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Coupon created successfully", coupon)
}

// BulkCreate handles POST /api/coupons/bulk - creates coupons independently
// and reports which ones failed (admin only)
func (h *CouponController) BulkCreate(c *gin.Context) {
	var req BulkCouponRequest
	if !bindJSON(c, &req) {
		return
	}

	now := time.Now()
	inputs := make([]services.CouponInput, len(req.Coupons))
	for i, r := range req.Coupons {
		inputs[i] = r.input(now)
	}

	result := h.coupons.BulkCreate(c.Request.Context(), middleware.GetTenantID(c), inputs)
	ok(c, "Bulk coupon creation completed", result)
}

// List handles GET /api/coupons - lists coupons with filters (admin only)
func (h *CouponController) List(c *gin.Context) {
	active, err := utils.OptionalBool(c, "isActive")
	if err != nil {
		_ = c.Error(err)
		return
	}
	filter := services.CouponFilter{
		Active: active,
		Type:   models.DiscountType(c.Query("discountType")),
		Search: c.Query("search"),
	}

	page := utils.ParsePage(c)
	coupons, total, err := h.coupons.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Coupons retrieved successfully", coupons, total, page)
}

// Active handles GET /api/coupons/active - coupons customers can use now
func (h *CouponController) Active(c *gin.Context) {
	coupons, err := h.coupons.Active(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Active coupons retrieved successfully", coupons)
}

// Get handles GET /api/coupons/:id (admin only)
func (h *CouponController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	coupon, err := h.coupons.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon retrieved successfully", coupon)
}

// Update handles PUT /api/coupons/:id (admin only)
func (h *CouponController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}

	coupon, err := h.coupons.Update(c.Request.Context(), middleware.GetTenantID(c), id, req.input(time.Now()))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon updated successfully", coupon)
}

// Delete handles DELETE /api/coupons/:id (admin only)
func (h *CouponController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.coupons.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon deleted successfully", nil)
}

// Toggle handles PATCH /api/coupons/:id/toggle (admin only)
func (h *CouponController) Toggle(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	coupon, err := h.coupons.Toggle(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Coupon status updated successfully", coupon)
}

// Validate handles GET /api/coupons/validate/:code. The cart is described by
// the cartTotal, categoryIds and productIds query parameters, or taken from
// the caller's own cart when cartTotal is absent.
func (h *CouponController) Validate(c *gin.Context) {
	code := services.NormalizeCouponCode(c.Param("code"))
	if !models.IsCouponCode(code) {
		_ = c.Error(apperrors.Validation("Invalid coupon code format"))
		return
	}

	snapshot, valid := h.snapshot(c)
	if !valid {
		return
	}

	eligibility, coupon, err := h.coupons.Validate(c.Request.Context(), middleware.GetTenantID(c), code, snapshot)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "Coupon is valid"
	if !eligibility.Valid {
		message = eligibility.Reason
		coupon = nil
	}
	ok(c, message, CouponValidation{Eligibility: eligibility, Code: code, Coupon: coupon})
}

func (h *CouponController) snapshot(c *gin.Context) (models.CartSnapshot, bool) {
	total, err := utils.OptionalFloat(c, "cartTotal")
	if err != nil {
		_ = c.Error(err)
		return models.CartSnapshot{}, false
	}

	if total == nil {
		userID, authErr := middleware.GetUserID(c)
		if authErr != nil {
			_ = c.Error(apperrors.Validation("cartTotal is required"))
			return models.CartSnapshot{}, false
		}
		snapshot, err := h.carts.CartSnapshot(c.Request.Context(), middleware.GetTenantID(c), userID)
		if err != nil {
			_ = c.Error(err)
			return models.CartSnapshot{}, false
		}
		return snapshot, true
	}

	if *total < 0 {
		_ = c.Error(apperrors.Validation("cartTotal cannot be negative"))
		return models.CartSnapshot{}, false
	}
	categoryIDs, err := utils.UintList(c.Query("categoryIds"))
	if err != nil {
		_ = c.Error(err)
		return models.CartSnapshot{}, false
	}
	productIDs, err := utils.UintList(c.Query("productIds"))
	if err != nil {
		_ = c.Error(err)
		return models.CartSnapshot{}, false
	}
	return models.CartSnapshot{Total: *total, CategoryIDs: categoryIDs, ProductIDs: productIDs}, true
}
