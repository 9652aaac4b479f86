package routes_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/routes"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// TestHealthEndpoint checks the health route through the full middleware chain
func TestHealthEndpoint(t *testing.T) {
	router := testutil.NewRouter(t, testutil.TestConfig(), testutil.NewTestDB(t))

	w := serve(router, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := decode(t, w)
	assert.Len(t, body, 2, "Response should have exactly 2 fields")
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Storefront API is running", body["message"])
}

// TestHealthEndpointMethod tests that only GET is routed
func TestHealthEndpointMethod(t *testing.T) {
	router := testutil.NewRouter(t, testutil.TestConfig(), testutil.NewTestDB(t))

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := serve(router, method, "/api/health", "")
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be allowed", method)
	}
}

// TestAPIPrefix tests that routes require the /api prefix
func TestAPIPrefix(t *testing.T) {
	router := testutil.NewRouter(t, testutil.TestConfig(), testutil.NewTestDB(t))

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/health", "").Code)
}

func TestDatabaseStatus(t *testing.T) {
	router := testutil.NewRouter(t, testutil.TestConfig(), testutil.NewTestDB(t))

	w := serve(router, http.MethodGet, "/api/database/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Database connected", body["message"])
	data := body["data"].(map[string]any)
	tables := data["tables"].([]any)
	assert.Contains(t, tables, "coupons")
	assert.Contains(t, tables, "product_variants")
	assert.Contains(t, tables, "support_tickets")
}

func TestRouteProtection(t *testing.T) {
	cfg := testutil.TestConfig()
	router := testutil.NewRouter(t, cfg, testutil.NewTestDB(t))
	customer := testutil.SignToken(t, cfg, 1, "customer", "")
	admin := testutil.SignToken(t, cfg, 2, "admin", "")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{name: "catalog is public", method: http.MethodGet, path: "/api/products", wantStatus: http.StatusOK},
		{name: "category tree is public", method: http.MethodGet, path: "/api/categories/tree", wantStatus: http.StatusOK},
		{name: "active coupons are public", method: http.MethodGet, path: "/api/coupons/active", wantStatus: http.StatusOK},
		{name: "banners are public", method: http.MethodGet, path: "/api/banners", wantStatus: http.StatusOK},
		{name: "cart needs a token", method: http.MethodGet, path: "/api/cart", wantStatus: http.StatusUnauthorized},
		{name: "cart with a token", method: http.MethodGet, path: "/api/cart", token: customer, wantStatus: http.StatusOK},
		{name: "coupon admin needs a token", method: http.MethodGet, path: "/api/coupons", wantStatus: http.StatusUnauthorized},
		{name: "customers cannot list coupons", method: http.MethodGet, path: "/api/coupons", token: customer, wantStatus: http.StatusForbidden},
		{name: "admins list coupons", method: http.MethodGet, path: "/api/coupons", token: admin, wantStatus: http.StatusOK},
		{name: "customers cannot read inventory", method: http.MethodGet, path: "/api/inventory", token: customer, wantStatus: http.StatusForbidden},
		{name: "admins read inventory", method: http.MethodGet, path: "/api/inventory/stats", token: admin, wantStatus: http.StatusOK},
		{name: "dashboard is admin only", method: http.MethodGet, path: "/api/admin/dashboard", token: customer, wantStatus: http.StatusForbidden},
		{name: "admins see the dashboard", method: http.MethodGet, path: "/api/admin/dashboard", token: admin, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestAdminRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.TestConfig()
	router, err := routes.SetupAdminRouter(testutil.Dependencies(cfg, testutil.NewTestDB(t)))
	require.NoError(t, err)

	admin := testutil.SignToken(t, cfg, 2, "admin", "")
	customer := testutil.SignToken(t, cfg, 1, "customer", "")

	w := serve(router, http.MethodGet, "/api/health", "")
	assert.Equal(t, "Storefront Admin API is running", decode(t, w)["message"])

	// customer routes are not mounted
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/cart", customer).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/api/auth/login", "").Code)

	// catalog reads require an admin token here
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/products", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/api/products", customer).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/products", admin).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/admin/users", admin).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := testutil.NewRouter(t, testutil.TestConfig(), testutil.NewTestDB(t))

	serve(router, http.MethodGet, "/api/health", "")
	w := serve(router, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "storefront_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/health"`)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.CORSOrigins = []string{"https://shop.example.com"}
	router := testutil.NewRouter(t, cfg, testutil.NewTestDB(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.AuthRateLimit = 0.001
	router := testutil.NewRouter(t, cfg, testutil.NewTestDB(t))

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusBadRequest, login(), "request %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, login())

	// other route groups are not limited
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/health", "").Code)
}

func TestUploadsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.TestConfig()
	db := testutil.NewTestDB(t)

	// the mock image store has no local directory to serve
	router := testutil.NewRouter(t, cfg, db)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/uploads/a.png", "").Code)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644))

	deps := testutil.Dependencies(cfg, db)
	deps.Images = services.NewLocalImageService(dir)
	router, err := routes.SetupRouter(deps)
	require.NoError(t, err)

	w := serve(router, http.MethodGet, "/api/uploads/a.png", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}
