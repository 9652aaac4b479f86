package services

import (
	"context"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WishlistService keeps the products a user is watching
type WishlistService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(db *gorm.DB, logger *logrus.Entry) *WishlistService {
	return &WishlistService{db: db, logger: logger}
}

// List returns the user's wishlist, newest first
func (s *WishlistService) List(ctx context.Context, tenantID string, userID uint) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Preload("Product").Preload("Product.Variants").
		Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&items).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load wishlist")
	}
	return items, nil
}

// Add puts a product on the wishlist
func (s *WishlistService) Add(ctx context.Context, tenantID string, userID, productID uint) (*models.WishlistItem, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&p, productID).Error; err != nil {
		return nil, lookupError(err, "Product")
	}

	item := &models.WishlistItem{TenantID: tenantID, UserID: userID, ProductID: productID}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, writeError(err, "Product in wishlist", "Failed to add to wishlist")
	}
	item.Product = &p
	return item, nil
}

// Remove takes a product off the wishlist
func (s *WishlistService) Remove(ctx context.Context, tenantID string, userID, productID uint) error {
	res := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return apperrors.Database(res.Error, "Failed to remove from wishlist")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Wishlist item")
	}
	return nil
}
