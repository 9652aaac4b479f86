package services

import (
	"context"
	"strings"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BannerInput is the writable part of a banner
type BannerInput struct {
	Title     string
	Subtitle  string
	ImageURL  string
	LinkURL   string
	Position  string
	SortOrder int
	IsActive  *bool
	StartsAt  *time.Time
	EndsAt    *time.Time
}

// BannerService manages storefront banners
type BannerService struct {
	db     *gorm.DB
	now    func() time.Time
	logger *logrus.Entry
}

// NewBannerService creates a new banner service
func NewBannerService(db *gorm.DB, logger *logrus.Entry) *BannerService {
	return &BannerService{db: db, now: time.Now, logger: logger}
}

func (in BannerInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ImageURL) == "" {
		return apperrors.Validation("Title and image are required")
	}
	if in.Position != "" && !lo.Contains(models.BannerPositions, in.Position) {
		return apperrors.Validation("Position must be one of " + strings.Join(models.BannerPositions, ", "))
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return apperrors.Validation("Banner end must be after its start")
	}
	return nil
}

func (in BannerInput) apply(b *models.Banner) {
	b.Title = in.Title
	b.Subtitle = in.Subtitle
	b.ImageURL = in.ImageURL
	b.LinkURL = in.LinkURL
	b.Position = lo.Ternary(in.Position == "", "hero", in.Position)
	b.SortOrder = in.SortOrder
	if in.IsActive != nil {
		b.IsActive = *in.IsActive
	}
	b.StartsAt = in.StartsAt
	b.EndsAt = in.EndsAt
}

// Active returns the banners live now, optionally for one position
func (s *BannerService) Active(ctx context.Context, tenantID, position string) ([]models.Banner, error) {
	q := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Where("is_active = ?", true)
	if position != "" {
		q = q.Where("position = ?", position)
	}
	var banners []models.Banner
	if err := q.Order("sort_order, id").Find(&banners).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to list banners")
	}
	now := s.now()
	return lo.Filter(banners, func(b models.Banner, _ int) bool { return b.LiveAt(now) }), nil
}

// List returns every banner for the back office
func (s *BannerService) List(ctx context.Context, tenantID string) ([]models.Banner, error) {
	banners := []models.Banner{}
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).Order("position, sort_order, id").Find(&banners).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to list banners")
	}
	return banners, nil
}

// Get loads one banner
func (s *BannerService) Get(ctx context.Context, tenantID string, id uint) (*models.Banner, error) {
	var b models.Banner
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&b, id).Error; err != nil {
		return nil, lookupError(err, "Banner")
	}
	return &b, nil
}

// Create stores a new banner
func (s *BannerService) Create(ctx context.Context, tenantID string, in BannerInput) (*models.Banner, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b := &models.Banner{TenantID: tenantID, IsActive: true}
	in.apply(b)

	active := b.IsActive
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return persistInactive(tx, b, active)
	})
	if err != nil {
		return nil, apperrors.Database(err, "Failed to create banner")
	}
	b.IsActive = active
	return b, nil
}

// Update replaces a banner's fields
func (s *BannerService) Update(ctx context.Context, tenantID string, id uint, in BannerInput) (*models.Banner, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	in.apply(b)
	if err := s.db.WithContext(ctx).Save(b).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to update banner")
	}
	return b, nil
}

// Delete removes a banner
func (s *BannerService) Delete(ctx context.Context, tenantID string, id uint) error {
	b, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(b).Error; err != nil {
		return apperrors.Database(err, "Failed to delete banner")
	}
	return nil
}
