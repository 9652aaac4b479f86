package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/logger"
	"github.com/kendall-kelly/storefront-api/routes"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Dependencies returns router dependencies backed by db and a mock image store
func Dependencies(cfg *config.Config, db *gorm.DB) routes.Dependencies {
	return routes.Dependencies{
		Config: cfg,
		DB:     db,
		Logger: logger.Discard(),
		Images: services.NewMockImageService(),
	}
}

// NewRouter builds the full customer + admin router over db
func NewRouter(t *testing.T, cfg *config.Config, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router, err := routes.SetupRouter(Dependencies(cfg, db))
	require.NoError(t, err)
	return router
}
