package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/kendall-kelly/storefront-api/utils"
)

// Response is the envelope every successful request is answered with.
// Failures are rendered by middleware.ErrorHandler.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListResponse is the data of a paginated listing
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination query.PageInfo `json:"pagination"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func ok(c *gin.Context, message string, data any) {
	respond(c, http.StatusOK, message, data)
}

func created(c *gin.Context, message string, data any) {
	respond(c, http.StatusCreated, message, data)
}

func paged[T any](c *gin.Context, message string, items []T, total int64, page query.Page) {
	ok(c, message, ListResponse[T]{Items: items, Pagination: page.Info(total)})
}

// currentUser returns the authenticated user's id. When the request is
// anonymous it records an unauthorized error and reports false.
func currentUser(c *gin.Context) (uint, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		_ = c.Error(apperrors.WithError(err).
			WithHint("Authentication required").
			Mark(apperrors.ErrUnauthorized))
		return 0, false
	}
	return userID, true
}

// pathID reads a numeric path parameter, recording a validation error when
// it is malformed.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseID(c, name)
	if err != nil {
		_ = c.Error(err)
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body into req, recording a validation error
// when it does not fit.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		_ = c.Error(utils.BindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		_ = c.Error(utils.BindError(err))
		return false
	}
	return true
}
