package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID      *uint
	MinPrice        *float64
	MaxPrice        *float64
	Brand           string
	Featured        *bool
	Search          string
	IncludeInactive bool
	Sort            string
}

// productSorts maps the accepted sort keys to columns
var productSorts = map[string]query.Sort{
	"newest":     {Field: "created_at", Desc: true},
	"oldest":     {Field: "created_at"},
	"price_asc":  {Field: "base_price"},
	"price_desc": {Field: "base_price", Desc: true},
	"rating":     {Field: "rating", Desc: true},
	"name":       {Field: "name"},
}

// ProductInput is the writable part of a product
type ProductInput struct {
	Name             string
	Slug             string
	Description      string
	Brand            string
	CategoryID       uint
	SubCategoryID    *uint
	SubSubCategoryID *uint
	BasePrice        float64
	IsActive         *bool
	IsFeatured       bool
	Tags             []string
	Variants         []VariantInput
}

// VariantInput is the writable part of a variant. Stock is only honoured on
// creation; afterwards it changes through inventory adjustments.
type VariantInput struct {
	Color         string
	Size          string
	SKU           string
	Price         float64
	OriginalPrice float64
	Stock         int
	Images        []string
}

// ProductService manages the product catalog
type ProductService struct {
	db         *gorm.DB
	categories *CategoryService
	images     ImageService
	logger     *logrus.Entry
}

// NewProductService creates a new product service
func NewProductService(db *gorm.DB, categories *CategoryService, images ImageService, logger *logrus.Entry) *ProductService {
	return &ProductService{db: db, categories: categories, images: images, logger: logger}
}

// List returns a page of products with their variants
func (s *ProductService) List(ctx context.Context, tenantID string, f ProductFilter, page query.Page) ([]models.Product, int64, error) {
	filter, err := s.filterFor(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}

	sort, ok := productSorts[f.Sort]
	if !ok {
		sort = productSorts["newest"]
	}

	base := s.db.WithContext(ctx).Model(&models.Product{}).
		Scopes(forTenant(tenantID), query.Scope(filter), query.SortScope(sort, query.Sort{Field: "id", Desc: true}))
	products, total, err := listPage[models.Product](base, page, "", "Failed to list products", "Variants")
	if err != nil {
		return nil, 0, err
	}
	for i := range products {
		s.resolveImages(ctx, &products[i])
	}
	return products, total, nil
}

func (s *ProductService) filterFor(ctx context.Context, tenantID string, f ProductFilter) (query.Filter, error) {
	filter := query.Where()
	if !f.IncludeInactive {
		filter = filter.And(query.Equals{Field: "is_active", Value: true})
	}
	if f.CategoryID != nil {
		tree, err := s.categories.Tree(ctx, tenantID)
		if err != nil {
			return filter, err
		}
		scope, ok := tree.ProductScope(*f.CategoryID)
		if !ok {
			scope = query.In("category_id", []uint{})
		}
		filter = filter.And(scope)
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		r := query.Range{Field: "base_price"}
		if f.MinPrice != nil {
			r.Min = *f.MinPrice
		}
		if f.MaxPrice != nil {
			r.Max = *f.MaxPrice
		}
		filter = filter.And(r)
	}
	if f.Brand != "" {
		filter = filter.And(query.Equals{Field: "brand", Value: f.Brand})
	}
	if f.Featured != nil {
		filter = filter.And(query.Equals{Field: "is_featured", Value: *f.Featured})
	}
	if f.Search != "" {
		filter = filter.And(query.TextMatch{Fields: []string{"name", "description", "brand"}, Text: f.Search})
	}
	return filter, nil
}

// Get loads one product with its variants
func (s *ProductService) Get(ctx context.Context, tenantID string, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Preload("Variants").First(&p, id).Error
	if err != nil {
		return nil, lookupError(err, "Product")
	}
	s.resolveImages(ctx, &p)
	return &p, nil
}

// GetBySlug loads one product by slug
func (s *ProductService) GetBySlug(ctx context.Context, tenantID, slug string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Preload("Variants").
		Where("slug = ?", slug).First(&p).Error
	if err != nil {
		return nil, lookupError(err, "Product")
	}
	s.resolveImages(ctx, &p)
	return &p, nil
}

// Create validates and stores a product together with its variants
func (s *ProductService) Create(ctx context.Context, tenantID string, in ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, tenantID, in); err != nil {
		return nil, err
	}
	if len(in.Variants) == 0 {
		return nil, apperrors.Validation("A product needs at least one variant")
	}
	if err := validateVariants(in.Variants); err != nil {
		return nil, err
	}

	active := in.IsActive == nil || *in.IsActive
	p := models.Product{
		TenantID:         tenantID,
		Name:             in.Name,
		Slug:             in.Slug,
		Description:      in.Description,
		Brand:            in.Brand,
		CategoryID:       in.CategoryID,
		SubCategoryID:    in.SubCategoryID,
		SubSubCategoryID: in.SubSubCategoryID,
		BasePrice:        in.BasePrice,
		IsActive:         active,
		IsFeatured:       in.IsFeatured,
		Tags:             in.Tags,
		Variants: lo.Map(in.Variants, func(v VariantInput, _ int) models.Variant {
			return newVariant(tenantID, v)
		}),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return persistInactive(tx, &p, active)
	})
	if err != nil {
		return nil, writeError(err, "Product with this slug or SKU", "Failed to create product")
	}
	p.IsActive = active

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "product_id": p.ID, "variants": len(p.Variants)}).Info("Created product")
	return &p, nil
}

// Update replaces a product's own fields. Variants are managed separately.
func (s *ProductService) Update(ctx context.Context, tenantID string, id uint, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, tenantID, in); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":                in.Name,
		"slug":                in.Slug,
		"description":         in.Description,
		"brand":               in.Brand,
		"category_id":         in.CategoryID,
		"sub_category_id":     in.SubCategoryID,
		"sub_sub_category_id": in.SubSubCategoryID,
		"base_price":          in.BasePrice,
		"is_featured":         in.IsFeatured,
		"tags":                models.Product{Tags: in.Tags}.Tags,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Model(p).Omit(clause.Associations).Updates(updates).Error; err != nil {
		return nil, writeError(err, "Product with this slug", "Failed to update product")
	}
	return s.Get(ctx, tenantID, id)
}

// Delete soft-deletes a product
func (s *ProductService) Delete(ctx context.Context, tenantID string, id uint) error {
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(p).Error; err != nil {
		return apperrors.Database(err, "Failed to delete product")
	}
	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "product_id": id}).Info("Deleted product")
	return nil
}

// AddVariant adds a variant to an existing product
func (s *ProductService) AddVariant(ctx context.Context, tenantID string, productID uint, in VariantInput) (*models.Variant, error) {
	if _, err := s.Get(ctx, tenantID, productID); err != nil {
		return nil, err
	}
	if err := validateVariants([]VariantInput{in}); err != nil {
		return nil, err
	}

	v := newVariant(tenantID, in)
	v.ProductID = productID
	if err := s.db.WithContext(ctx).Create(&v).Error; err != nil {
		return nil, writeError(err, "Variant with this SKU", "Failed to create variant")
	}
	return &v, nil
}

// UpdateVariant changes a variant's descriptive fields and price
func (s *ProductService) UpdateVariant(ctx context.Context, tenantID string, productID, variantID uint, in VariantInput) (*models.Variant, error) {
	v, err := s.variant(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}
	if in.Price <= 0 {
		return nil, apperrors.Validation("Variant price must be greater than 0")
	}

	updates := map[string]any{
		"color":          in.Color,
		"size":           in.Size,
		"price":          in.Price,
		"original_price": in.OriginalPrice,
	}
	if in.SKU != "" {
		updates["sku"] = in.SKU
	}
	if in.Images != nil {
		updates["images"] = models.Variant{Images: in.Images}.Images
	}
	if err := s.db.WithContext(ctx).Model(v).Updates(updates).Error; err != nil {
		return nil, writeError(err, "Variant with this SKU", "Failed to update variant")
	}
	return s.variant(ctx, tenantID, productID, variantID)
}

// DeleteVariant removes a variant. A product keeps at least one.
func (s *ProductService) DeleteVariant(ctx context.Context, tenantID string, productID, variantID uint) error {
	v, err := s.variant(ctx, tenantID, productID, variantID)
	if err != nil {
		return err
	}

	var count int64
	s.db.WithContext(ctx).Model(&models.Variant{}).Where("product_id = ?", productID).Count(&count)
	if count <= 1 {
		return apperrors.InvalidOperation("A product must keep at least one variant")
	}
	if err := s.db.WithContext(ctx).Delete(v).Error; err != nil {
		return apperrors.Database(err, "Failed to delete variant")
	}
	return nil
}

// AddImage uploads an image and appends it to a variant's gallery
func (s *ProductService) AddImage(ctx context.Context, tenantID string, productID, variantID uint, fileHeader *multipart.FileHeader) (*models.Variant, error) {
	v, err := s.variant(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, "products", fileHeader)
	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, apperrors.WithError(err).WithHint("Failed to upload image").Mark(apperrors.ErrSystem)
	}

	v.Images = append(v.Images, key)
	if err := s.db.WithContext(ctx).Model(v).Update("images", v.Images).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to save image")
	}

	v.Images = s.imageURLs(ctx, v.Images)
	return v, nil
}

// Related returns other active products from the closest shared category
func (s *ProductService) Related(ctx context.Context, tenantID string, id uint, limit int) ([]models.Product, error) {
	p, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 20 {
		limit = 8
	}

	var scope query.Predicate = query.Equals{Field: "category_id", Value: p.CategoryID}
	switch {
	case p.SubSubCategoryID != nil:
		scope = query.Equals{Field: "sub_sub_category_id", Value: *p.SubSubCategoryID}
	case p.SubCategoryID != nil:
		scope = query.Equals{Field: "sub_category_id", Value: *p.SubCategoryID}
	}

	related := []models.Product{}
	err = s.db.WithContext(ctx).Scopes(forTenant(tenantID), query.Scope(query.Where(
		scope,
		query.Equals{Field: "is_active", Value: true},
	))).Where("id <> ?", p.ID).Preload("Variants").
		Order("rating DESC, id DESC").Limit(limit).Find(&related).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load related products")
	}
	for i := range related {
		s.resolveImages(ctx, &related[i])
	}
	return related, nil
}

func (s *ProductService) validate(ctx context.Context, tenantID string, in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation("Product name is required")
	}
	if in.BasePrice <= 0 {
		return apperrors.Validation("Base price must be greater than 0")
	}
	tree, err := s.categories.Tree(ctx, tenantID)
	if err != nil {
		return err
	}
	return tree.ValidateProductPlacement(in.CategoryID, in.SubCategoryID, in.SubSubCategoryID)
}

func validateVariants(variants []VariantInput) error {
	seen := map[string]bool{}
	for _, v := range variants {
		if v.SKU == "" {
			return apperrors.Validation("Every variant needs a SKU")
		}
		if seen[v.SKU] {
			return apperrors.NewErrorf("duplicate sku %s", v.SKU).
				WithHintf("SKU %s is used by more than one variant", v.SKU).
				Mark(apperrors.ErrValidation)
		}
		seen[v.SKU] = true
		if v.Price <= 0 {
			return apperrors.Validation("Variant price must be greater than 0")
		}
		if v.Stock < 0 {
			return apperrors.Validation("Stock quantity cannot be negative")
		}
	}
	return nil
}

func newVariant(tenantID string, in VariantInput) models.Variant {
	return models.Variant{
		TenantID:      tenantID,
		Color:         in.Color,
		Size:          in.Size,
		SKU:           in.SKU,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Stock:         in.Stock,
		Images:        in.Images,
	}
}

func (s *ProductService) variant(ctx context.Context, tenantID string, productID, variantID uint) (*models.Variant, error) {
	var v models.Variant
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("product_id = ?", productID).First(&v, variantID).Error
	if err != nil {
		return nil, lookupError(err, "Variant")
	}
	return &v, nil
}

func (s *ProductService) resolveImages(ctx context.Context, p *models.Product) {
	for i := range p.Variants {
		p.Variants[i].Images = s.imageURLs(ctx, p.Variants[i].Images)
	}
}

// imageURLs turns storage keys into fetchable URLs. Absolute URLs and
// paths are passed through.
func (s *ProductService) imageURLs(ctx context.Context, keys []string) []string {
	if s.images == nil {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, "http://") || strings.HasPrefix(k, "https://") || strings.HasPrefix(k, "/") {
			out = append(out, k)
			continue
		}
		url, err := s.images.GetImageURL(ctx, k)
		if err != nil {
			s.logger.WithError(err).WithField("key", k).Warn("Failed to resolve image URL")
			continue
		}
		out = append(out, url)
	}
	return out
}
