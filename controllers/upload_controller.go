package controllers

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/utils"
)

// UploadController serves locally stored images
type UploadController struct {
	dir string
}

// NewUploadController creates an upload controller reading from dir
func NewUploadController(dir string) *UploadController {
	return &UploadController{dir: dir}
}

// GetUploadedImage handles GET /api/uploads/:filename - serves uploaded images
func (h *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Security: Prevent directory traversal attacks
	if !utils.IsSafeFilename(filename) {
		_ = c.Error(apperrors.NewErrorf("unsafe filename %q", filename).
			WithHint("Invalid filename").
			WithDetails(map[string]any{"code": "INVALID_FILENAME"}).
			Mark(apperrors.ErrValidation))
		return
	}

	contentType := utils.ImageContentType(filename)
	if contentType == "" {
		_ = c.Error(apperrors.NewErrorf("unsupported image %q", filename).
			WithHint("Only PNG, JPEG and WebP images are supported").
			WithDetails(map[string]any{"code": "INVALID_FILE_TYPE"}).
			Mark(apperrors.ErrValidation))
		return
	}

	filePath := filepath.Join(h.dir, filename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		_ = c.Error(apperrors.NotFound("Image"))
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
