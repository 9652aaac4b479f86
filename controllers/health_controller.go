package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"gorm.io/gorm"
)

// HealthController reports liveness and database connectivity
type HealthController struct {
	db      *gorm.DB
	service string
}

// NewHealthController creates a health controller for the named API
func NewHealthController(db *gorm.DB, service string) *HealthController {
	return &HealthController{db: db, service: service}
}

// Health handles GET /api/health
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": h.service + " is running",
	})
}

// DatabaseStatus handles GET /api/database/status - checks database
// connectivity and returns table information
func (h *HealthController) DatabaseStatus(c *gin.Context) {
	// Get the underlying SQL database to check connection
	sqlDB, err := h.db.DB()
	if err != nil {
		_ = c.Error(apperrors.Database(err, "Failed to get database instance"))
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		_ = c.Error(apperrors.Database(err, "Database connection failed"))
		return
	}

	tables, err := h.db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		_ = c.Error(apperrors.Database(err, "Failed to query tables"))
		return
	}

	ok(c, "Database connected", gin.H{
		"tables":         tables,
		"openConnections": sqlDB.Stats().OpenConnections,
	})
}
