package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/stretchr/testify/require"
)

// TestConfig returns a configuration suitable for wiring a router in tests
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:   "sqlite::memory:",
		Port:          "8080",
		AdminPort:     "8081",
		GoEnv:         "test",
		JWTSecret:     "test-secret-that-is-long-enough-123",
		JWTIssuer:     "storefront-test",
		JWTAudience:   "storefront-test-clients",
		JWTExpiry:     time.Hour,
		DefaultTenant: "default",
		UploadDir:     "",
		LogLevel:      "error",
		AuthRateLimit: 1000,
	}
}

// SignToken issues a bearer token for userID accepted by the auth middleware
func SignToken(t *testing.T, cfg *config.Config, userID uint, role, tenantID string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":         strconv.FormatUint(uint64(userID), 10),
		"iss":         cfg.JWTIssuer,
		"aud":         []string{cfg.JWTAudience},
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"role":        role,
		"is_verified": true,
		"tenant_id":   tenantID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return token
}

// MockValidatedClaims creates validated claims as the auth middleware would
func MockValidatedClaims(userID uint, role string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "storefront-test",
			Subject: strconv.FormatUint(uint64(userID), 10),
		},
		CustomClaims: &middleware.CustomClaims{
			Role:       role,
			IsVerified: true,
		},
	}
}

// MockAuth returns a handler that authenticates every request as userID
func MockAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role)
		c.Next()
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID uint, role string) {
	c.Set(middleware.UserIDKey, userID)
	c.Set(middleware.UserRoleKey, role)
	c.Set(middleware.ClaimsKey, MockValidatedClaims(userID, role))
}
