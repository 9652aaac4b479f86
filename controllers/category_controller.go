package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// CategoryRequest is the body for creating or replacing a category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,max=100,slug"`
	Description string `json:"description" binding:"max=500"`
	Level       int    `json:"level" binding:"required,oneof=1 2 3"`
	ParentID    *uint  `json:"parentId"`
	IsActive    *bool  `json:"isActive"`
	SortOrder   int    `json:"sortOrder"`
	Image       string `json:"image"`
}

func (r CategoryRequest) input() services.CategoryInput {
	slug := r.Slug
	if slug == "" {
		slug = utils.Slugify(r.Name)
	}
	return services.CategoryInput{
		Name:        r.Name,
		Slug:        slug,
		Description: r.Description,
		Level:       r.Level,
		ParentID:    r.ParentID,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
		Image:       r.Image,
	}
}

// CategoryController serves /api/categories
type CategoryController struct {
	categories *services.CategoryService
}

// NewCategoryController creates a category controller
func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

// List handles GET /api/categories - flat listing filtered by level, parent
// and active flag
func (h *CategoryController) List(c *gin.Context) {
	var filter services.CategoryFilter
	level, err := utils.OptionalUint(c, "level")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if level != nil {
		l := int(*level)
		filter.Level = &l
	}
	if filter.ParentID, err = utils.OptionalUint(c, "parentId"); err != nil {
		_ = c.Error(err)
		return
	}
	if filter.Active, err = utils.OptionalBool(c, "isActive"); err != nil {
		_ = c.Error(err)
		return
	}

	categories, err := h.categories.List(c.Request.Context(), middleware.GetTenantID(c), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Categories retrieved successfully", categories)
}

// Tree handles GET /api/categories/tree - the nested category menu
func (h *CategoryController) Tree(c *gin.Context) {
	activeOnly := c.Query("all") != "true" || middleware.GetUserRole(c) != "admin"
	nodes, err := h.categories.Nested(c.Request.Context(), middleware.GetTenantID(c), activeOnly)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Category tree retrieved successfully", nodes)
}

// Get handles GET /api/categories/:id
func (h *CategoryController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	category, err := h.categories.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Category retrieved successfully", category)
}

// GetBySlug handles GET /api/categories/slug/:slug
func (h *CategoryController) GetBySlug(c *gin.Context) {
	category, err := h.categories.GetBySlug(c.Request.Context(), middleware.GetTenantID(c), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Category retrieved successfully", category)
}

// Descendants handles GET /api/categories/:id/descendants
func (h *CategoryController) Descendants(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	categories, err := h.categories.Descendants(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Sub-categories retrieved successfully", categories)
}

// Create handles POST /api/categories (admin only)
func (h *CategoryController) Create(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Create(c.Request.Context(), middleware.GetTenantID(c), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Category created successfully", category)
}

// Update handles PUT /api/categories/:id (admin only)
func (h *CategoryController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.Update(c.Request.Context(), middleware.GetTenantID(c), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Category updated successfully", category)
}

// Delete handles DELETE /api/categories/:id (admin only)
func (h *CategoryController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.categories.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Category deleted successfully", nil)
}
