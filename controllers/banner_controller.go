package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// BannerRequest is the body for creating or replacing a banner
type BannerRequest struct {
	Title     string     `json:"title" binding:"required,max=200"`
	Subtitle  string     `json:"subtitle" binding:"max=300"`
	ImageURL  string     `json:"imageUrl" binding:"required,max=1000"`
	LinkURL   string     `json:"linkUrl" binding:"max=1000"`
	Position  string     `json:"position" binding:"omitempty,oneof=hero sidebar footer"`
	SortOrder int        `json:"sortOrder"`
	IsActive  *bool      `json:"isActive"`
	StartsAt  *time.Time `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
}

func (r BannerRequest) input() services.BannerInput {
	return services.BannerInput(r)
}

// BannerController serves /api/banners
type BannerController struct {
	banners *services.BannerService
}

// NewBannerController creates a banner controller
func NewBannerController(banners *services.BannerService) *BannerController {
	return &BannerController{banners: banners}
}

// Active handles GET /api/banners?position= - banners live right now
func (h *BannerController) Active(c *gin.Context) {
	banners, err := h.banners.Active(c.Request.Context(), middleware.GetTenantID(c), c.Query("position"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Banners retrieved successfully", banners)
}

// List handles GET /api/admin/banners (admin only)
func (h *BannerController) List(c *gin.Context) {
	banners, err := h.banners.List(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Banners retrieved successfully", banners)
}

// Get handles GET /api/admin/banners/:id (admin only)
func (h *BannerController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	banner, err := h.banners.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Banner retrieved successfully", banner)
}

// Create handles POST /api/admin/banners (admin only)
func (h *BannerController) Create(c *gin.Context) {
	var req BannerRequest
	if !bindJSON(c, &req) {
		return
	}
	banner, err := h.banners.Create(c.Request.Context(), middleware.GetTenantID(c), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Banner created successfully", banner)
}

// Update handles PUT /api/admin/banners/:id (admin only)
func (h *BannerController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req BannerRequest
	if !bindJSON(c, &req) {
		return
	}
	banner, err := h.banners.Update(c.Request.Context(), middleware.GetTenantID(c), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Banner updated successfully", banner)
}

// Delete handles DELETE /api/admin/banners/:id (admin only)
func (h *BannerController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.banners.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Banner deleted successfully", nil)
}
