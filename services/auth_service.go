package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// TokenConfig holds the settings used to sign access tokens
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// Claims are the custom claims carried by storefront access tokens
type Claims struct {
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	TenantID   string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// AuthResult is returned after a successful register or login
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// RegisterInput is the data needed to open a customer account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// AuthService handles accounts, passwords and token issuance
type AuthService struct {
	db     *gorm.DB
	tokens TokenConfig
	cost   int
	logger *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(db *gorm.DB, tokens TokenConfig, logger *logrus.Entry) *AuthService {
	return &AuthService{db: db, tokens: tokens, cost: bcrypt.DefaultCost, logger: logger}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register creates a customer account and signs a token for it
func (s *AuthService) Register(ctx context.Context, tenantID string, in RegisterInput) (*AuthResult, error) {
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.Validation("Password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperrors.WithError(err).WithHint("Failed to create account").Mark(apperrors.ErrSystem)
	}

	user := models.User{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
		Role:         models.RoleCustomer,
		Phone:        in.Phone,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.WithError(err).
				WithHint("An account with this email already exists").
				Mark(apperrors.ErrAlreadyExists)
		}
		return nil, apperrors.Database(err, "Failed to create account")
	}

	s.logger.WithFields(logrus.Fields{"tenant_id": tenantID, "user_id": user.ID}).Info("Registered user")
	return s.issue(&user)
}

// Login checks credentials and signs a new token
func (s *AuthService) Login(ctx context.Context, tenantID, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Database(err, "Failed to log in")
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.NewError("invalid credentials").
			WithHint("Invalid email or password").
			Mark(apperrors.ErrUnauthorized)
	}
	return s.issue(&user)
}

// ChangePassword replaces a user's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, tenantID string, userID uint, current, next string) error {
	if len(next) < minPasswordLength {
		return apperrors.Validation("Password must be at least 8 characters long")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&user, userID).Error; err != nil {
		return lookupError(err, "User")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return apperrors.Validation("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return apperrors.WithError(err).WithHint("Failed to update password").Mark(apperrors.ErrSystem)
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hash)).Error; err != nil {
		return apperrors.Database(err, "Failed to update password")
	}
	return nil
}

// IssueToken signs an access token for user
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokens.Expiry)
	claims := &Claims{
		Role:       user.Role,
		IsVerified: user.IsVerified,
		TenantID:   user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.tokens.Issuer,
			Audience:  jwt.ClaimStrings{s.tokens.Audience},
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.tokens.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, apperrors.WithError(err).WithHint("Failed to sign token").Mark(apperrors.ErrSystem)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
