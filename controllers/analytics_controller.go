package controllers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/services"
)

const defaultAnalyticsWindow = 30 * 24 * time.Hour

// AnalyticsController serves /api/analytics (admin only)
type AnalyticsController struct {
	analytics *services.AnalyticsService
	now       func() time.Time
}

// NewAnalyticsController creates an analytics controller
func NewAnalyticsController(analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, now: time.Now}
}

// window reads the from/to query parameters. Dates without a time cover the
// whole day; the default is the last 30 days.
func (h *AnalyticsController) window(c *gin.Context) (time.Time, time.Time, error) {
	to := h.now()
	if raw := c.Query("to"); raw != "" {
		t, dateOnly, err := parseInstant(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
		if dateOnly {
			to = t.AddDate(0, 0, 1)
		}
	}
	from := to.Add(-defaultAnalyticsWindow)
	if raw := c.Query("from"); raw != "" {
		t, _, err := parseInstant(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	return from, to, nil
}

func parseInstant(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, apperrors.WithError(err).
			WithHint("Dates must be YYYY-MM-DD or RFC 3339").
			Mark(apperrors.ErrValidation)
	}
	return t, false, nil
}

// Sales handles GET /api/analytics/sales?from=&to=
func (h *AnalyticsController) Sales(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := h.analytics.Sales(c.Request.Context(), middleware.GetTenantID(c), from, to)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Sales summary retrieved successfully", summary)
}

// TopProducts handles GET /api/analytics/top-products?from=&to=&limit=
func (h *AnalyticsController) TopProducts(c *gin.Context) {
	from, to, err := h.window(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.analytics.TopProducts(c.Request.Context(), middleware.GetTenantID(c), from, to, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Top products retrieved successfully", products)
}

// Dashboard handles GET /api/admin/dashboard - headline counters for the
// back office
func (h *AnalyticsController) Dashboard(c *gin.Context) {
	dashboard, err := h.analytics.Dashboard(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Dashboard retrieved successfully", dashboard)
}
