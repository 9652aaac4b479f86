package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=20"`
}

// UpdateRoleRequest represents the request body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin"`
}

// UserController serves /api/users and the back office user screens
type UserController struct {
	users *services.UserService
}

// NewUserController creates a user controller
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// GetMyProfile handles GET /api/users/profile - gets current user's profile
func (h *UserController) GetMyProfile(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.GetTenantID(c), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Profile retrieved successfully", user)
}

// UpdateMyProfile handles PUT /api/users/profile - updates current user's profile
func (h *UserController) UpdateMyProfile(c *gin.Context) {
	userID, authed := currentUser(c)
	if !authed {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetTenantID(c), userID, services.UpdateProfileInput{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Profile updated successfully", user)
}

// List handles GET /api/admin/users (admin only)
func (h *UserController) List(c *gin.Context) {
	filter := services.UserFilter{Role: c.Query("role"), Search: c.Query("search")}
	page := utils.ParsePage(c)

	users, total, err := h.users.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Users retrieved successfully", users, total, page)
}

// Get handles GET /api/admin/users/:id (admin only)
func (h *UserController) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	user, err := h.users.Get(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "User retrieved successfully", user)
}

// UpdateRole handles PATCH /api/admin/users/:id/role (admin only)
func (h *UserController) UpdateRole(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), middleware.GetTenantID(c), id, req.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "User role updated successfully", user)
}
