package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// VariantRequest describes one purchasable variant of a product
type VariantRequest struct {
	Color         string   `json:"color" binding:"max=50"`
	Size          string   `json:"size" binding:"max=20"`
	SKU           string   `json:"sku" binding:"required,max=64"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	OriginalPrice float64  `json:"originalPrice" binding:"gte=0"`
	Stock         int      `json:"stock" binding:"gte=0"`
	Images        []string `json:"images"`
}

func (r VariantRequest) input() services.VariantInput {
	return services.VariantInput{
		Color:         r.Color,
		Size:          r.Size,
		SKU:           r.SKU,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Stock:         r.Stock,
		Images:        r.Images,
	}
}

// ProductRequest is the body for creating or replacing a product
type ProductRequest struct {
	Name             string           `json:"name" binding:"required,max=200"`
	Slug             string           `json:"slug" binding:"omitempty,max=200,slug"`
	Description      string           `json:"description"`
	Brand            string           `json:"brand" binding:"max=100"`
	CategoryID       uint             `json:"categoryId" binding:"required"`
	SubCategoryID    *uint            `json:"subCategoryId"`
	SubSubCategoryID *uint            `json:"subSubCategoryId"`
	BasePrice        float64          `json:"basePrice" binding:"required,gt=0"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`
	Tags             []string         `json:"tags"`
	Variants         []VariantRequest `json:"variants" binding:"omitempty,dive"`
}

func (r ProductRequest) input() services.ProductInput {
	slug := r.Slug
	if slug == "" {
		slug = utils.Slugify(r.Name)
	}
	variants := make([]services.VariantInput, len(r.Variants))
	for i, v := range r.Variants {
		variants[i] = v.input()
	}
	return services.ProductInput{
		Name:             r.Name,
		Slug:             slug,
		Description:      r.Description,
		Brand:            r.Brand,
		CategoryID:       r.CategoryID,
		SubCategoryID:    r.SubCategoryID,
		SubSubCategoryID: r.SubSubCategoryID,
		BasePrice:        r.BasePrice,
		IsActive:         r.IsActive,
		IsFeatured:       r.IsFeatured,
		Tags:             r.Tags,
		Variants:         variants,
	}
}

// ProductController serves /api/products
type ProductController struct {
	products *services.ProductService
}

// NewProductController creates a product controller
func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// productFilter reads the catalogue filters shared by listing and search
func productFilter(c *gin.Context) (services.ProductFilter, error) {
	f := services.ProductFilter{
		Brand:  c.Query("brand"),
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
	var err error
	if f.CategoryID, err = utils.OptionalUint(c, "categoryId"); err != nil {
		return f, err
	}
	if f.MinPrice, err = utils.OptionalFloat(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = utils.OptionalFloat(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, apperrors.Validation("minPrice cannot be greater than maxPrice")
	}
	if f.Featured, err = utils.OptionalBool(c, "featured"); err != nil {
		return f, err
	}
	return f, nil
}

// List handles GET /api/products - active products filtered by category
// (including sub-categories), price, brand and text
func (h *ProductController) List(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if middleware.GetUserRole(c) == "admin" && c.Query("includeInactive") == "true" {
		filter.IncludeInactive = true
	}

	page := utils.ParsePage(c)
	products, total, err := h.products.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Products retrieved successfully", products, total, page)
}

// Get handles GET /api/products/:id
func (h *ProductController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	product, err := h.products.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product retrieved successfully", product)
}

// GetBySlug handles GET /api/products/slug/:slug
func (h *ProductController) GetBySlug(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), middleware.GetTenantID(c), c.Param("slug"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product retrieved successfully", product)
}

// Related handles GET /api/products/:id/related
func (h *ProductController) Related(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.products.Related(c.Request.Context(), middleware.GetTenantID(c), id, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Related products retrieved successfully", products)
}

// Create handles POST /api/products (admin only)
func (h *ProductController) Create(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), middleware.GetTenantID(c), req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Product created successfully", product)
}

// Update handles PUT /api/products/:id (admin only)
func (h *ProductController) Update(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), middleware.GetTenantID(c), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product updated successfully", product)
}

// Delete handles DELETE /api/products/:id (admin only)
func (h *ProductController) Delete(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.products.Delete(c.Request.Context(), middleware.GetTenantID(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product deleted successfully", nil)
}

// AddVariant handles POST /api/products/:id/variants (admin only)
func (h *ProductController) AddVariant(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := h.products.AddVariant(c.Request.Context(), middleware.GetTenantID(c), id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Variant created successfully", variant)
}

// UpdateVariant handles PUT /api/products/:id/variants/:vid (admin only).
// Stock is managed through the inventory endpoints.
func (h *ProductController) UpdateVariant(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	variantID, valid := pathID(c, "vid")
	if !valid {
		return
	}
	var req VariantRequest
	if !bindJSON(c, &req) {
		return
	}
	variant, err := h.products.UpdateVariant(c.Request.Context(), middleware.GetTenantID(c), id, variantID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Variant updated successfully", variant)
}

// DeleteVariant handles DELETE /api/products/:id/variants/:vid (admin only)
func (h *ProductController) DeleteVariant(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	variantID, valid := pathID(c, "vid")
	if !valid {
		return
	}
	if err := h.products.DeleteVariant(c.Request.Context(), middleware.GetTenantID(c), id, variantID); err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Variant deleted successfully", nil)
}

// UploadImage handles POST /api/products/:id/variants/:vid/images - stores
// the multipart "image" field and appends it to the variant (admin only)
func (h *ProductController) UploadImage(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	variantID, valid := pathID(c, "vid")
	if !valid {
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(apperrors.WithError(err).
			WithHint("An image file is required").
			WithDetails(map[string]any{"code": "MISSING_FILE"}).
			Mark(apperrors.ErrValidation))
		return
	}

	variant, err := h.products.AddImage(c.Request.Context(), middleware.GetTenantID(c), id, variantID, fileHeader)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Image uploaded successfully", variant)
}
