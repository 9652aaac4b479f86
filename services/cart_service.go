package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartService manages each user's cart and the coupon applied to it
type CartService struct {
	db      *gorm.DB
	coupons *CouponService
	logger  *logrus.Entry
}

// NewCartService creates a new cart service
func NewCartService(db *gorm.DB, coupons *CouponService, logger *logrus.Entry) *CartService {
	return &CartService{db: db, coupons: coupons, logger: logger}
}

// Snapshot is what coupon evaluation sees of a cart: the pre-discount
// subtotal and every product and category id in it.
func Snapshot(cart *models.Cart) models.CartSnapshot {
	cart.ComputeTotals()
	snap := models.CartSnapshot{Total: cart.Subtotal}
	for _, it := range cart.Items {
		snap.ProductIDs = append(snap.ProductIDs, it.ProductID)
		if it.Product != nil {
			snap.CategoryIDs = append(snap.CategoryIDs, it.Product.CategoryIDs()...)
		}
	}
	snap.ProductIDs = lo.Uniq(snap.ProductIDs)
	snap.CategoryIDs = lo.Uniq(snap.CategoryIDs)
	return snap
}

// loadCart returns the user's cart with items, creating an empty one on first use
func loadCart(db *gorm.DB, tenantID string, userID uint) (*models.Cart, error) {
	cart := models.Cart{TenantID: tenantID, UserID: userID}
	err := db.Where(models.Cart{TenantID: tenantID, UserID: userID}).FirstOrCreate(&cart).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load cart")
	}
	err = db.Preload("Product").Preload("Variant").
		Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load cart")
	}
	return &cart, nil
}

// Get returns the user's cart with totals. A coupon that no longer applies
// is dropped and the discount is recomputed.
func (s *CartService) Get(ctx context.Context, tenantID string, userID uint) (*models.Cart, error) {
	cart, err := loadCart(s.db.WithContext(ctx), tenantID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, tenantID, cart); err != nil {
		return nil, err
	}
	cart.ComputeTotals()
	return cart, nil
}

// CartSnapshot returns the coupon evaluation view of the user's cart
func (s *CartService) CartSnapshot(ctx context.Context, tenantID string, userID uint) (models.CartSnapshot, error) {
	cart, err := loadCart(s.db.WithContext(ctx), tenantID, userID)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	return Snapshot(cart), nil
}

func (s *CartService) refresh(ctx context.Context, tenantID string, cart *models.Cart) error {
	if cart.CouponCode == nil {
		if cart.Discount != 0 {
			cart.Discount = 0
			return s.saveCoupon(ctx, cart)
		}
		return nil
	}

	eligibility := models.Eligibility{Reason: models.ReasonCartEmpty}
	if len(cart.Items) > 0 {
		var err error
		eligibility, _, err = s.coupons.Validate(ctx, tenantID, *cart.CouponCode, Snapshot(cart))
		if err != nil {
			return err
		}
	}

	if !eligibility.Valid {
		s.logger.WithFields(logrus.Fields{
			"tenant_id": tenantID,
			"cart_id":   cart.ID,
			"code":      *cart.CouponCode,
			"reason":    eligibility.Reason,
		}).Info("Dropped coupon from cart")
		cart.CouponCode = nil
		cart.Discount = 0
		return s.saveCoupon(ctx, cart)
	}
	if eligibility.Discount != cart.Discount {
		cart.Discount = eligibility.Discount
		return s.saveCoupon(ctx, cart)
	}
	return nil
}

func (s *CartService) saveCoupon(ctx context.Context, cart *models.Cart) error {
	err := s.db.WithContext(ctx).Model(cart).Omit(clause.Associations).
		Updates(map[string]any{"coupon_code": cart.CouponCode, "discount": cart.Discount}).Error
	if err != nil {
		return apperrors.Database(err, "Failed to update cart")
	}
	return nil
}

// AddItem puts a variant in the cart, merging with an existing line
func (s *CartService) AddItem(ctx context.Context, tenantID string, userID, productID, variantID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}
	variant, err := s.purchasable(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}
	cart, err := loadCart(s.db.WithContext(ctx), tenantID, userID)
	if err != nil {
		return nil, err
	}

	line, found := lo.Find(cart.Items, func(it models.CartItem) bool { return it.VariantID == variantID })
	total := quantity
	if found {
		total += line.Quantity
	}
	if err := checkStock(variant, total); err != nil {
		return nil, err
	}

	if found {
		err = s.db.WithContext(ctx).Model(&line).
			Updates(map[string]any{"quantity": total, "price": variant.Price}).Error
	} else {
		err = s.db.WithContext(ctx).Create(&models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			Price:     variant.Price,
		}).Error
	}
	if err != nil {
		return nil, apperrors.Database(err, "Failed to add item to cart")
	}
	return s.Get(ctx, tenantID, userID)
}

// UpdateItem sets the quantity of a cart line
func (s *CartService) UpdateItem(ctx context.Context, tenantID string, userID, itemID uint, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("Quantity must be at least 1")
	}
	item, err := s.item(ctx, tenantID, userID, itemID)
	if err != nil {
		return nil, err
	}
	variant, err := s.purchasable(ctx, tenantID, item.ProductID, item.VariantID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(variant, quantity); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(item).
		Updates(map[string]any{"quantity": quantity, "price": variant.Price}).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to update cart item")
	}
	return s.Get(ctx, tenantID, userID)
}

// RemoveItem deletes a cart line
func (s *CartService) RemoveItem(ctx context.Context, tenantID string, userID, itemID uint) (*models.Cart, error) {
	item, err := s.item(ctx, tenantID, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to remove cart item")
	}
	return s.Get(ctx, tenantID, userID)
}

// Clear empties the cart and drops its coupon
func (s *CartService) Clear(ctx context.Context, tenantID string, userID uint) (*models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return clearCart(tx, tenantID, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, userID)
}

func clearCart(tx *gorm.DB, tenantID string, userID uint) error {
	cart, err := loadCart(tx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return apperrors.Database(err, "Failed to clear cart")
	}
	err = tx.Model(cart).Omit(clause.Associations).
		Updates(map[string]any{"coupon_code": nil, "discount": 0}).Error
	if err != nil {
		return apperrors.Database(err, "Failed to clear cart")
	}
	return nil
}

// ApplyCoupon evaluates code against the cart and stores it with its discount
func (s *CartService) ApplyCoupon(ctx context.Context, tenantID string, userID uint, code string) (*models.Cart, error) {
	cart, err := loadCart(s.db.WithContext(ctx), tenantID, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidOperation(models.ReasonCartEmpty)
	}

	eligibility, coupon, err := s.coupons.Validate(ctx, tenantID, code, Snapshot(cart))
	if err != nil {
		return nil, err
	}
	if !eligibility.Valid {
		return nil, apperrors.NewErrorf("coupon %s rejected", NormalizeCouponCode(code)).
			WithHint(eligibility.Reason).
			WithDetails(map[string]any{"code": NormalizeCouponCode(code)}).
			Mark(apperrors.ErrInvalidOperation)
	}

	cart.CouponCode = &coupon.Code
	cart.Discount = eligibility.Discount
	if err := s.saveCoupon(ctx, cart); err != nil {
		return nil, err
	}
	cart.ComputeTotals()
	return cart, nil
}

// RemoveCoupon clears the cart's coupon and discount
func (s *CartService) RemoveCoupon(ctx context.Context, tenantID string, userID uint) (*models.Cart, error) {
	cart, err := loadCart(s.db.WithContext(ctx), tenantID, userID)
	if err != nil {
		return nil, err
	}
	cart.CouponCode = nil
	cart.Discount = 0
	if err := s.saveCoupon(ctx, cart); err != nil {
		return nil, err
	}
	cart.ComputeTotals()
	return cart, nil
}

func (s *CartService) purchasable(ctx context.Context, tenantID string, productID, variantID uint) (*models.Variant, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Where("is_active = ?", true).First(&product, productID).Error
	if err != nil {
		return nil, lookupError(err, "Product")
	}
	var variant models.Variant
	err = s.db.WithContext(ctx).Where("product_id = ?", productID).First(&variant, variantID).Error
	if err != nil {
		return nil, lookupError(err, "Variant")
	}
	return &variant, nil
}

func (s *CartService) item(ctx context.Context, tenantID string, userID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.tenant_id = ? AND carts.user_id = ?", tenantID, userID).
		First(&item, itemID).Error
	if err != nil {
		return nil, lookupError(err, "Cart item")
	}
	return &item, nil
}

func checkStock(v *models.Variant, quantity int) error {
	if v.Stock >= quantity {
		return nil
	}
	hint := "This item is out of stock"
	if v.Stock > 0 {
		hint = "Only " + strconv.Itoa(v.Stock) + " left in stock"
	}
	return apperrors.WithError(errors.New("insufficient stock")).
		WithHint(hint).
		WithDetails(map[string]any{"sku": v.SKU, "available": v.Stock, "requested": quantity}).
		Mark(apperrors.ErrInvalidOperation)
}
