package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/routes"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/tests/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// serverSuite serves the full router over real HTTP with images stored in
// a temporary directory
type serverSuite struct {
	suite.Suite
	cfg    *config.Config
	db     *gorm.DB
	server *httptest.Server
	client *http.Client
}

// SetupSuite runs once before the suite. The server binds a real port, so
// it refuses to run outside the test environment.
func (s *serverSuite) SetupSuite() {
	testutil.MustSetTestEnvironment(s.T())
	testutil.RequireTestEnvironment(s.T())
}

// SetupTest runs before each test
func (s *serverSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.cfg = testutil.TestConfig()
	s.cfg.UploadDir = s.T().TempDir()
	s.db = testutil.NewTestDB(s.T())

	deps := testutil.Dependencies(s.cfg, s.db)
	deps.Images = services.NewLocalImageService(s.cfg.UploadDir)
	router, err := routes.SetupRouter(deps)
	s.Require().NoError(err)

	s.server = httptest.NewServer(router)
	s.client = s.server.Client()
}

// TearDownTest runs after each test
func (s *serverSuite) TearDownTest() {
	s.server.Close()
}

// apiResponse is the decoded envelope plus the raw response
type apiResponse struct {
	Status  int
	Header  http.Header
	Body    map[string]any
	RawBody []byte
}

func (r apiResponse) Data() map[string]any {
	data, _ := r.Body["data"].(map[string]any)
	return data
}

func (s *serverSuite) send(req *http.Request, token string) apiResponse {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	out := apiResponse{Status: resp.StatusCode, Header: resp.Header, RawBody: raw}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

func (s *serverSuite) call(method, path, token string, body any) apiResponse {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *serverSuite) adminToken() string {
	admin := models.User{TenantID: s.cfg.DefaultTenant, Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	s.Require().NoError(s.db.Create(&admin).Error)
	return testutil.SignToken(s.T(), s.cfg, admin.ID, models.RoleAdmin, s.cfg.DefaultTenant)
}

func (s *serverSuite) id(v any) uint {
	f, ok := v.(float64)
	s.Require().True(ok, "expected a numeric id, got %v", v)
	return uint(f)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
