package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/kendall-kelly/storefront-api/apperrors"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// UploadsRoute is where locally stored images are served from
	UploadsRoute = "/api/uploads"
)

// imageTypes maps accepted extensions to their content type
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// ImageContentType returns the content type for an image filename, or ""
// when the extension is not accepted.
func ImageContentType(filename string) string {
	return imageTypes[strings.ToLower(filepath.Ext(filename))]
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return apperrors.NewErrorf("file of %d bytes exceeds limit", fileHeader.Size).
			WithHintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)).
			WithDetails(map[string]any{"code": "FILE_TOO_LARGE"}).
			Mark(apperrors.ErrValidation)
	}

	if ImageContentType(fileHeader.Filename) == "" {
		return apperrors.NewErrorf("unsupported image %q", fileHeader.Filename).
			WithHint("Only PNG, JPEG and WebP images are allowed").
			WithDetails(map[string]any{"code": "INVALID_FILE_FORMAT"}).
			Mark(apperrors.ErrValidation)
	}

	return nil
}

// SaveUploadedFile saves the uploaded file to uploadDir under name
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir, name string) (err error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(uploadDir, name))
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close destination file: %w", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// GetImageURL returns the URL path for accessing a locally stored image
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", UploadsRoute, filename)
}

// IsSafeFilename rejects names that could escape the upload directory
func IsSafeFilename(name string) bool {
	return name != "" && !strings.Contains(name, "..") && !strings.ContainsAny(name, `/\`)
}
