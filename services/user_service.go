package services

import (
	"context"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UpdateProfileInput holds optional profile changes
type UpdateProfileInput struct {
	Name  *string
	Phone *string
}

// UserFilter narrows the admin user listing
type UserFilter struct {
	Role   string
	Search string
}

// UserService manages user profiles
type UserService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, logger *logrus.Entry) *UserService {
	return &UserService{db: db, logger: logger}
}

// Get loads one user
func (s *UserService) Get(ctx context.Context, tenantID string, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User")
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of in
func (s *UserService) UpdateProfile(ctx context.Context, tenantID string, id uint, in UpdateProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		updates["name"] = *in.Name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to update profile")
	}
	return s.Get(ctx, tenantID, id)
}

// List returns a page of users for the back office
func (s *UserService) List(ctx context.Context, tenantID string, f UserFilter, page query.Page) ([]models.User, int64, error) {
	filter := query.Where()
	if f.Role != "" {
		filter = filter.And(query.Equals{Field: "role", Value: f.Role})
	}
	if f.Search != "" {
		filter = filter.And(query.TextMatch{Fields: []string{"name", "email"}, Text: f.Search})
	}

	base := s.db.WithContext(ctx).Model(&models.User{}).Scopes(forTenant(tenantID), query.Scope(filter))
	return listPage[models.User](base, page, "created_at DESC, id DESC", "Failed to list users")
}

// UpdateRole changes a user's role
func (s *UserService) UpdateRole(ctx context.Context, tenantID string, id uint, role string) (*models.User, error) {
	if !lo.Contains([]string{models.RoleCustomer, models.RoleAdmin}, role) {
		return nil, apperrors.Validation("Role must be customer or admin")
	}
	user, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("role", role).Error; err != nil {
		return nil, apperrors.Database(err, "Failed to update role")
	}
	user.Role = role

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "user_id": id, "role": role}).Info("Updated user role")
	return user, nil
}
