package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/logger"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/utils"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testTenant = "default"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")
	return db
}

func testLogger() *logrus.Entry {
	return logger.Service(logger.Discard(), "test")
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, utils.RegisterValidators())

	router := gin.New()
	router.Use(middleware.ErrorHandler(testLogger()), middleware.Tenant(testTenant))
	return router
}

// mockAuthMiddleware sets up the context exactly as the real token
// middleware does for an authenticated request
func mockAuthMiddleware(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.UserRoleKey, role)
		c.Next()
	}
}

func performRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewBuffer(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "Response should be valid JSON: %s", w.Body.String())
	return response
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	data, ok := decodeResponse(t, w)["data"].(map[string]any)
	require.True(t, ok, "Response should carry an object: %s", w.Body.String())
	return data
}

// seedProduct stores an active product with one variant under a fresh
// top-level category
func seedProduct(t *testing.T, db *gorm.DB, sku string, price float64, stock int) (models.Product, models.Variant) {
	t.Helper()

	category := models.Category{TenantID: testTenant, Name: "Category " + sku, Slug: "category-" + utils.Slugify(sku), Level: models.LevelTop, IsActive: true}
	require.NoError(t, db.Create(&category).Error)

	product := models.Product{
		TenantID:   testTenant,
		Name:       "Product " + sku,
		Slug:       "product-" + utils.Slugify(sku),
		CategoryID: category.ID,
		BasePrice:  price,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)

	variant := models.Variant{TenantID: testTenant, ProductID: product.ID, SKU: sku, Price: price, Stock: stock}
	require.NoError(t, db.Create(&variant).Error)
	return product, variant
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{TenantID: testTenant, Name: "Test User", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
