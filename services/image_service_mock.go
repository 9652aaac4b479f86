package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/kendall-kelly/storefront-api/utils"
)

// MockImageService is an in-memory ImageService for tests
type MockImageService struct {
	images map[string]string // key -> original filename
	mu     sync.RWMutex
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{images: make(map[string]string)}
}

// UploadImage validates the file and records it under a mock key
func (m *MockImageService) UploadImage(_ context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/mock_%s", folder, fileHeader.Filename)
	m.mu.Lock()
	m.images[key] = fileHeader.Filename
	m.mu.Unlock()
	return key, nil
}

// GetImageURL returns a deterministic URL for a stored key
func (m *MockImageService) GetImageURL(_ context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}
	if !m.ImageExists(imageKey) {
		return "", fmt.Errorf("image not found in mock storage: %s", imageKey)
	}
	return "https://images.test/" + imageKey, nil
}

// DeleteImage forgets a stored key
func (m *MockImageService) DeleteImage(_ context.Context, imageKey string) error {
	m.mu.Lock()
	delete(m.images, imageKey)
	m.mu.Unlock()
	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockImageService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.images[imageKey]
	return ok
}

// Count returns how many images are stored
func (m *MockImageService) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}
