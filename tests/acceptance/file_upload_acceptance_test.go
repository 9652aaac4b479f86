package acceptance

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// FileUploadAcceptanceTestSuite stores variant images on disk and serves
// them back through the uploads route
type FileUploadAcceptanceTestSuite struct {
	serverSuite
	admin     string
	productID uint
	variantID uint
}

// SetupTest creates a product to attach images to
func (suite *FileUploadAcceptanceTestSuite) SetupTest() {
	suite.serverSuite.SetupTest()
	suite.admin = suite.adminToken()

	resp := suite.call(http.MethodPost, "/api/categories", suite.admin, gin.H{"name": "Prints", "level": 1})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	resp = suite.call(http.MethodPost, "/api/products", suite.admin, gin.H{
		"name":       "Harbour Print",
		"categoryId": suite.id(resp.Data()["id"]),
		"basePrice":  45,
		"variants":   []gin.H{{"sku": "PRINT-A2", "price": 45, "stock": 6}},
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))
	suite.productID = suite.id(resp.Data()["id"])
	suite.variantID = suite.id(resp.Data()["variants"].([]any)[0].(map[string]any)["id"])
}

func (suite *FileUploadAcceptanceTestSuite) upload(filename string, content []byte) apiResponse {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	suite.Require().NoError(err)
	_, err = part.Write(content)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	path := "/api/products/" + itoa(suite.productID) + "/variants/" + itoa(suite.variantID) + "/images"
	req, err := http.NewRequest(http.MethodPost, suite.server.URL+path, body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return suite.send(req, suite.admin)
}

// TestUploadAndServeImage uploads an image and downloads it again
func (suite *FileUploadAcceptanceTestSuite) TestUploadAndServeImage() {
	content := []byte("not really a png but close enough")
	resp := suite.upload("harbour.png", content)
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	images := resp.Data()["images"].([]any)
	suite.Require().Len(images, 1)
	url := images[0].(string)
	suite.Require().True(strings.HasPrefix(url, "/api/uploads/"), url)

	entries, err := os.ReadDir(suite.cfg.UploadDir)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	assert.Equal(suite.T(), filepath.Ext(entries[0].Name()), ".png")

	download := suite.call(http.MethodGet, url, "", nil)
	suite.Require().Equal(http.StatusOK, download.Status)
	assert.Equal(suite.T(), content, download.RawBody)
	assert.Equal(suite.T(), "image/png", download.Header.Get("Content-Type"))

	resp = suite.call(http.MethodGet, "/api/products/"+itoa(suite.productID), "", nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	variant := resp.Data()["variants"].([]any)[0].(map[string]any)
	assert.Equal(suite.T(), []any{url}, variant["images"])
}

// TestUploadRejectsUnsupportedFormat leaves the upload directory untouched
func (suite *FileUploadAcceptanceTestSuite) TestUploadRejectsUnsupportedFormat() {
	resp := suite.upload("notes.txt", []byte("plain text"))
	suite.Require().Equal(http.StatusBadRequest, resp.Status)
	assert.Equal(suite.T(), false, resp.Body["success"])

	entries, err := os.ReadDir(suite.cfg.UploadDir)
	suite.Require().NoError(err)
	assert.Empty(suite.T(), entries)
}

// TestServeMissingImage returns 404 for an unknown file
func (suite *FileUploadAcceptanceTestSuite) TestServeMissingImage() {
	resp := suite.call(http.MethodGet, "/api/uploads/missing.png", "", nil)
	assert.Equal(suite.T(), http.StatusNotFound, resp.Status)
}

// TestFileUploadAcceptanceTestSuite runs the file upload acceptance test suite
func TestFileUploadAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(FileUploadAcceptanceTestSuite))
}
