package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// SearchController serves /api/search
type SearchController struct {
	search *services.SearchService
}

// NewSearchController creates a search controller
func NewSearchController(search *services.SearchService) *SearchController {
	return &SearchController{search: search}
}

// Search handles GET /api/search?q= - products and categories matching q,
// narrowed by the usual catalogue filters
func (h *SearchController) Search(c *gin.Context) {
	filter, err := productFilter(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	page := utils.ParsePage(c)

	results, err := h.search.Search(c.Request.Context(), middleware.GetTenantID(c), c.Query("q"), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("X-Total-Count", strconv.FormatInt(results.Total, 10))
	ok(c, "Search results retrieved successfully", results)
}

// Suggest handles GET /api/search/suggestions?q=&limit=
func (h *SearchController) Suggest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	suggestions, err := h.search.Suggest(c.Request.Context(), middleware.GetTenantID(c), c.Query("q"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Suggestions retrieved successfully", suggestions)
}
