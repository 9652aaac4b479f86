package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// apiSuite runs every test against the full router over a fresh in-memory
// database
type apiSuite struct {
	suite.Suite
	cfg    *config.Config
	db     *gorm.DB
	router *gin.Engine
}

// SetupSuite runs once before the suite
func (s *apiSuite) SetupSuite() {
	testutil.MustSetTestEnvironment(s.T())
}

// SetupTest runs before each test
func (s *apiSuite) SetupTest() {
	s.cfg = testutil.TestConfig()
	s.db = testutil.NewTestDB(s.T())
	s.router = testutil.NewRouter(s.T(), s.cfg, s.db)
}

type requestOption func(*http.Request)

func withTenant(tenant string) requestOption {
	return func(r *http.Request) { r.Header.Set(middleware.TenantHeader, tenant) }
}

func (s *apiSuite) request(method, path, token string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var response map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func (s *apiSuite) data(w *httptest.ResponseRecorder) map[string]any {
	data, ok := s.decode(w)["data"].(map[string]any)
	s.Require().True(ok, "response should carry an object: %s", w.Body.String())
	return data
}

// register opens a customer account through the API and returns its token
// and user id
func (s *apiSuite) register(email string) (string, uint) {
	w := s.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test Customer",
		"email":    email,
		"password": "correct-horse-battery",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	data := s.data(w)
	user := data["user"].(map[string]any)
	return data["token"].(string), uint(user["id"].(float64))
}

// adminToken stores an admin user and signs a token for it
func (s *apiSuite) adminToken() string {
	admin := models.User{TenantID: s.cfg.DefaultTenant, Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	s.Require().NoError(s.db.Create(&admin).Error)
	return testutil.SignToken(s.T(), s.cfg, admin.ID, models.RoleAdmin, s.cfg.DefaultTenant)
}

func (s *apiSuite) id(v any) uint {
	f, ok := v.(float64)
	s.Require().True(ok, "expected a numeric id, got %v", v)
	return uint(f)
}

// createCategory creates a category through the admin API
func (s *apiSuite) createCategory(token, name string, level int, parentID *uint) uint {
	body := gin.H{"name": name, "level": level}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	w := s.request(http.MethodPost, "/api/categories", token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return s.id(s.data(w)["id"])
}

// createProduct creates a product with a single variant through the admin API
// and returns the product and variant ids
func (s *apiSuite) createProduct(token string, body gin.H) (uint, uint) {
	w := s.request(http.MethodPost, "/api/products", token, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	data := s.data(w)
	variants := data["variants"].([]any)
	s.Require().NotEmpty(variants)
	return s.id(data["id"]), s.id(variants[0].(map[string]any)["id"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
