package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/sirupsen/logrus"
)

// Context keys set by the auth middleware
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
	ClaimsKey   = "validated_claims"
)

// CustomClaims contains the storefront claims carried by access tokens.
type CustomClaims struct {
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	TenantID   string `json:"tenant_id"`
}

// Validate rejects tokens issued without a role.
func (c *CustomClaims) Validate(_ context.Context) error {
	if c.Role == "" {
		return errors.New("token has no role claim")
	}
	return nil
}

// HasRole checks whether the token was issued for role.
func (c *CustomClaims) HasRole(role string) bool {
	return c.Role == role
}

// NewValidator builds the HS256 validator for tokens signed with the
// configured secret.
func NewValidator(cfg *config.Config) (*validator.Validator, error) {
	keyFunc := func(context.Context) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}
	return validator.New(
		keyFunc,
		validator.HS256,
		cfg.JWTIssuer,
		[]string{cfg.JWTAudience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config, log *logrus.Entry) gin.HandlerFunc {
	return checkJWT(cfg, log, false)
}

// OptionalAuth authenticates the request when a token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuth(cfg *config.Config, log *logrus.Entry) gin.HandlerFunc {
	return checkJWT(cfg, log, true)
}

func checkJWT(cfg *config.Config, log *logrus.Entry, optional bool) gin.HandlerFunc {
	jwtValidator, err := NewValidator(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up the jwt validator")
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		log.WithError(err).WithField("path", r.URL.Path).Warn("Encountered error while validating JWT")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"message":"Invalid or expired token","error":"UNAUTHORIZED"}`)); writeErr != nil {
			log.WithError(writeErr).Error("Failed to write error response")
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(optional),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r

			token, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			if !ok {
				// anonymous request on an optional route
				c.Next()
				return
			}

			userID, err := strconv.ParseUint(token.RegisteredClaims.Subject, 10, 64)
			if err != nil {
				_ = c.Error(apperrors.NewError("token subject is not a user id").
					WithHint("Invalid or expired token").
					Mark(apperrors.ErrUnauthorized))
				c.Abort()
				return
			}
			claims, _ := token.CustomClaims.(*CustomClaims)
			if claims != nil && claims.TenantID != "" && claims.TenantID != GetTenantID(c) {
				_ = c.Error(apperrors.NewErrorf("token tenant %s used for %s", claims.TenantID, GetTenantID(c)).
					WithHint("Token was not issued for this store").
					Mark(apperrors.ErrForbidden))
				c.Abort()
				return
			}

			c.Set(UserIDKey, uint(userID))
			c.Set(ClaimsKey, token)
			if claims != nil {
				c.Set(UserRoleKey, claims.Role)
			}
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// GetUserID extracts the authenticated user's id from the Gin context
func GetUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a number"}
	}

	return id, nil
}

// GetUserRole returns the authenticated user's role, or "" when anonymous
func GetUserRole(c *gin.Context) string {
	return c.GetString(UserRoleKey)
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// RequireRole is a middleware that checks if the token was issued for role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			_ = c.Error(apperrors.WithError(err).WithHint("Could not retrieve token claims").Mark(apperrors.ErrUnauthorized))
			c.Abort()
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasRole(role) {
			_ = c.Error(apperrors.NewErrorf("role %q required", role).
				WithHint("Insufficient permissions to access this resource").
				Mark(apperrors.ErrForbidden))
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
