package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CouponInput is the writable part of a coupon
type CouponInput struct {
	Code                 string
	Description          string
	DiscountType         models.DiscountType
	DiscountValue        float64
	MinOrderAmount       float64
	MaxDiscountAmount    *float64
	UsageLimit           int
	IsActive             *bool
	ValidFrom            time.Time
	ValidUntil           time.Time
	ApplicableCategories []uint
	ApplicableProducts   []uint
}

// CouponFilter narrows coupon listings
type CouponFilter struct {
	Active *bool
	Type   models.DiscountType
	Search string
}

// CouponService manages discount codes and their usage counters
type CouponService struct {
	db     *gorm.DB
	now    func() time.Time
	logger *logrus.Entry
}

// NewCouponService creates a new coupon service
func NewCouponService(db *gorm.DB, logger *logrus.Entry) *CouponService {
	return &CouponService{db: db, now: time.Now, logger: logger}
}

// NormalizeCouponCode trims and uppercases a code as typed by a customer
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (in CouponInput) apply(c *models.Coupon) {
	c.Code = NormalizeCouponCode(in.Code)
	c.Description = in.Description
	c.DiscountType = in.DiscountType
	c.DiscountValue = in.DiscountValue
	c.MinOrderAmount = in.MinOrderAmount
	c.MaxDiscountAmount = in.MaxDiscountAmount
	c.UsageLimit = in.UsageLimit
	if c.UsageLimit == 0 {
		c.UsageLimit = 1
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.ValidFrom = in.ValidFrom
	c.ValidUntil = in.ValidUntil
	c.ApplicableCategories = in.ApplicableCategories
	c.ApplicableProducts = in.ApplicableProducts
}

// Create validates and stores a coupon
func (s *CouponService) Create(ctx context.Context, tenantID string, in CouponInput) (*models.Coupon, error) {
	c := &models.Coupon{TenantID: tenantID, IsActive: true}
	in.apply(c)
	if err := models.ValidateCoupon(c); err != nil {
		return nil, err
	}

	active := c.IsActive
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return persistInactive(tx, c, active)
	})
	if err != nil {
		return nil, writeError(err, "Coupon code", "Failed to create coupon")
	}
	c.IsActive = active

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "code": c.Code}).Info("Created coupon")
	return c, nil
}

// BulkCreate creates each coupon independently and tallies the outcome
func (s *CouponService) BulkCreate(ctx context.Context, tenantID string, inputs []CouponInput) *BulkResult {
	result := newBulkResult(len(inputs))
	for i, in := range inputs {
		if _, err := s.Create(ctx, tenantID, in); err != nil {
			result.fail(i, NormalizeCouponCode(in.Code), err)
			continue
		}
		result.Successful++
	}
	return result
}

// List returns a page of coupons, newest first
func (s *CouponService) List(ctx context.Context, tenantID string, f CouponFilter, page query.Page) ([]models.Coupon, int64, error) {
	filter := query.Where(query.TextMatch{Fields: []string{"code", "description"}, Text: f.Search})
	if f.Active != nil {
		filter = filter.And(query.Equals{Field: "is_active", Value: *f.Active})
	}
	if f.Type != "" {
		filter = filter.And(query.Equals{Field: "discount_type", Value: f.Type})
	}

	base := s.db.WithContext(ctx).Model(&models.Coupon{}).Scopes(forTenant(tenantID), query.Scope(filter))
	return listPage[models.Coupon](base, page, "created_at DESC, id DESC", "Failed to list coupons")
}

// Active returns coupons a customer could use right now
func (s *CouponService) Active(ctx context.Context, tenantID string) ([]models.Coupon, error) {
	now := s.now()
	coupons := []models.Coupon{}
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID), query.Scope(query.Where(
		query.Equals{Field: "is_active", Value: true},
		query.Range{Field: "valid_from", Max: now},
		query.Range{Field: "valid_until", Min: now},
	))).Where("used_count < usage_limit").Order("valid_until").Find(&coupons).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to list coupons")
	}
	return coupons, nil
}

// Get loads one coupon
func (s *CouponService) Get(ctx context.Context, tenantID string, id uint) (*models.Coupon, error) {
	var c models.Coupon
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "Coupon")
	}
	return &c, nil
}

// GetByCode loads one coupon by its code, case-insensitively
func (s *CouponService) GetByCode(ctx context.Context, tenantID, code string) (*models.Coupon, error) {
	return s.byCode(s.db.WithContext(ctx), tenantID, code)
}

func (s *CouponService) byCode(db *gorm.DB, tenantID, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := db.Scopes(forTenant(tenantID)).Where("code = ?", NormalizeCouponCode(code)).First(&c).Error
	if err != nil {
		return nil, lookupError(err, "Coupon")
	}
	return &c, nil
}

// Update replaces a coupon's fields. The used count is kept.
func (s *CouponService) Update(ctx context.Context, tenantID string, id uint, in CouponInput) (*models.Coupon, error) {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := models.ValidateCoupon(c); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, writeError(err, "Coupon code", "Failed to update coupon")
	}
	return c, nil
}

// Delete removes a coupon
func (s *CouponService) Delete(ctx context.Context, tenantID string, id uint) error {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(c).Error; err != nil {
		return apperrors.Database(err, "Failed to delete coupon")
	}
	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "code": c.Code}).Info("Deleted coupon")
	return nil
}

// Toggle flips a coupon's active flag
func (s *CouponService) Toggle(ctx context.Context, tenantID string, id uint) (*models.Coupon, error) {
	c, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = !c.IsActive
	if err := s.db.WithContext(ctx).Model(c).Update("is_active", c.IsActive).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to update coupon")
	}
	return c, nil
}

// Validate evaluates code against cart. An unknown code is reported as an
// ineligible result rather than an error.
func (s *CouponService) Validate(ctx context.Context, tenantID, code string, cart models.CartSnapshot) (models.Eligibility, *models.Coupon, error) {
	c, err := s.GetByCode(ctx, tenantID, code)
	if apperrors.IsNotFound(err) {
		return models.Eligibility{Reason: models.ReasonCouponNotFound}, nil, nil
	}
	if err != nil {
		return models.Eligibility{}, nil, err
	}
	return c.CanBeUsed(cart, s.now()), c, nil
}

// Redeem re-checks the coupon against cart inside tx and increments its
// used count. The increment only applies while usage remains.
func (s *CouponService) Redeem(tx *gorm.DB, tenantID, code string, cart models.CartSnapshot) (float64, error) {
	c, err := s.byCode(tx, tenantID, code)
	if err != nil {
		return 0, err
	}
	eligibility := c.CanBeUsed(cart, s.now())
	if !eligibility.Valid {
		return 0, apperrors.InvalidOperation(eligibility.Reason)
	}

	res := tx.Model(&models.Coupon{}).
		Where("id = ? AND used_count < usage_limit", c.ID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return 0, apperrors.Database(res.Error, "Failed to redeem coupon")
	}
	if res.RowsAffected == 0 {
		return 0, apperrors.InvalidOperation(models.ReasonUsageExhausted)
	}
	return eligibility.Discount, nil
}

// Release gives a redemption back, never going below zero
func (s *CouponService) Release(tx *gorm.DB, tenantID, code string) error {
	err := tx.Model(&models.Coupon{}).
		Where("tenant_id = ? AND code = ?", tenantID, NormalizeCouponCode(code)).
		Update("used_count", gorm.Expr("CASE WHEN used_count > 0 THEN used_count - 1 ELSE 0 END")).Error
	if err != nil {
		return apperrors.Database(err, "Failed to release coupon")
	}
	return nil
}
