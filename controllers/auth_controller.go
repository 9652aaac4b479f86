package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the request body for changing a password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72,nefield=CurrentPassword"`
}

// AuthController serves /api/auth
type AuthController struct {
	auth  *services.AuthService
	users *services.UserService
}

// NewAuthController creates an auth controller
func NewAuthController(auth *services.AuthService, users *services.UserService) *AuthController {
	return &AuthController{auth: auth, users: users}
}

// Register handles POST /api/auth/register - creates a customer account
func (h *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), middleware.GetTenantID(c), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "Registration successful", result)
}

// Login handles POST /api/auth/login
func (h *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), middleware.GetTenantID(c), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Login successful", result)
}

// Me handles GET /api/auth/me - the account behind the bearer token
func (h *AuthController) Me(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "User retrieved successfully", user)
}

// ChangePassword handles PUT /api/auth/password
func (h *AuthController) ChangePassword(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), middleware.GetTenantID(c), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Password changed successfully", nil)
}
