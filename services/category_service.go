package services

import (
	"context"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/catalog"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	Level       int
	ParentID    *uint
	IsActive    *bool
	SortOrder   int
	Image       string
}

// CategoryFilter narrows category listings
type CategoryFilter struct {
	Level    *int
	ParentID *uint
	Active   *bool
}

// CategoryService manages the category tree
type CategoryService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, logger *logrus.Entry) *CategoryService {
	return &CategoryService{db: db, logger: logger}
}

// List returns categories ordered for display
func (s *CategoryService) List(ctx context.Context, tenantID string, f CategoryFilter) ([]models.Category, error) {
	filter := query.Where()
	if f.Level != nil {
		filter = filter.And(query.Equals{Field: "level", Value: *f.Level})
	}
	if f.ParentID != nil {
		filter = filter.And(query.Equals{Field: "parent_id", Value: *f.ParentID})
	}
	if f.Active != nil {
		filter = filter.And(query.Equals{Field: "is_active", Value: *f.Active})
	}

	categories := []models.Category{}
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID), query.Scope(filter)).
		Order("level, sort_order, name").Find(&categories).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to list categories")
	}
	return categories, nil
}

// Tree loads every category of the tenant into an arena tree
func (s *CategoryService) Tree(ctx context.Context, tenantID string) (*catalog.Tree, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Find(&categories).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to load categories")
	}
	return catalog.NewTree(categories), nil
}

// Nested returns the category forest for navigation menus
func (s *CategoryService) Nested(ctx context.Context, tenantID string, activeOnly bool) ([]*catalog.Node, error) {
	tree, err := s.Tree(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return tree.Nested(activeOnly), nil
}

// Get loads one category
func (s *CategoryService) Get(ctx context.Context, tenantID string, id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "Category")
	}
	return &c, nil
}

// GetBySlug loads one category by slug
func (s *CategoryService) GetBySlug(ctx context.Context, tenantID, slug string) (*models.Category, error) {
	var c models.Category
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, lookupError(err, "Category")
	}
	return &c, nil
}

// Descendants returns every category below id
func (s *CategoryService) Descendants(ctx context.Context, tenantID string, id uint) ([]models.Category, error) {
	tree, err := s.Tree(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.Get(id); !ok {
		return nil, apperrors.NotFound("Category")
	}

	out := []models.Category{}
	for _, d := range tree.Descendants(id) {
		c, _ := tree.Get(d)
		out = append(out, c)
	}
	return out, nil
}

// Create validates placement and stores a new category
func (s *CategoryService) Create(ctx context.Context, tenantID string, in CategoryInput) (*models.Category, error) {
	parent, err := s.parentOf(ctx, tenantID, in.ParentID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateCategoryPlacement(in.Level, parent); err != nil {
		return nil, err
	}

	active := in.IsActive == nil || *in.IsActive
	c := models.Category{
		TenantID:    tenantID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Level:       in.Level,
		ParentID:    in.ParentID,
		IsActive:    active,
		SortOrder:   in.SortOrder,
		Image:       in.Image,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return persistInactive(tx, &c, active)
	})
	if err != nil {
		return nil, writeError(err, "Category with this slug", "Failed to create category")
	}
	c.IsActive = active

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "category_id": c.ID}).Info("Created category")
	return &c, nil
}

// Update replaces a category's fields, revalidating its placement
func (s *CategoryService) Update(ctx context.Context, tenantID string, id uint, in CategoryInput) (*models.Category, error) {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil && *in.ParentID == id {
		return nil, apperrors.Validation("A category cannot be its own parent")
	}
	parent, err := s.parentOf(ctx, tenantID, in.ParentID)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateCategoryPlacement(in.Level, parent); err != nil {
		return nil, err
	}
	if in.Level != c.Level {
		var children int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Scopes(forTenant(tenantID)).
			Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return nil, apperrors.Database(err, "Failed to update category")
		}
		if children > 0 {
			return nil, apperrors.InvalidOperation("Cannot change the level of a category that has sub-categories")
		}
	}

	updates := map[string]any{
		"name":        in.Name,
		"slug":        in.Slug,
		"description": in.Description,
		"level":       in.Level,
		"parent_id":   in.ParentID,
		"sort_order":  in.SortOrder,
		"image":       in.Image,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, writeError(err, "Category with this slug", "Failed to update category")
	}
	return s.Get(ctx, tenantID, id)
}

// Delete removes a category that nothing references
func (s *CategoryService) Delete(ctx context.Context, tenantID string, id uint) error {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	var children int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Scopes(forTenant(tenantID)).
		Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return apperrors.Database(err, "Failed to delete category")
	}
	if children > 0 {
		return apperrors.InvalidOperation("Cannot delete a category that has sub-categories")
	}

	var products int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Scopes(forTenant(tenantID)).
		Where("category_id = ? OR sub_category_id = ? OR sub_sub_category_id = ?", id, id, id).
		Count(&products).Error; err != nil {
		return apperrors.Database(err, "Failed to delete category")
	}
	if products > 0 {
		return apperrors.InvalidOperation("Cannot delete a category that has products")
	}

	if err := s.db.WithContext(ctx).Delete(c).Error; err != nil {
		return apperrors.Database(err, "Failed to delete category")
	}
	return nil
}

func (s *CategoryService) parentOf(ctx context.Context, tenantID string, parentID *uint) (*models.Category, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := s.Get(ctx, tenantID, *parentID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.Validation("Parent category does not exist")
	}
	return parent, err
}
