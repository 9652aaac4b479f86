package services

import (
	"errors"
	"strings"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/query"
	"gorm.io/gorm"
)

// forTenant scopes a query to one tenant's rows.
func forTenant(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// isDuplicate reports whether err is a unique constraint violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// lookupError maps a failed single-row lookup to a typed error.
func lookupError(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(what)
	}
	return apperrors.Database(err, "Failed to load "+strings.ToLower(what))
}

// writeError maps a failed write to a typed error, treating unique
// violations as conflicts.
func writeError(err error, what, hint string) error {
	if isDuplicate(err) {
		return apperrors.WithError(err).
			WithHintf("%s already exists", what).
			Mark(apperrors.ErrAlreadyExists)
	}
	return apperrors.Database(err, hint)
}

// BulkFailure describes one rejected item of a bulk operation.
type BulkFailure struct {
	Index int    `json:"index"`
	Key   string `json:"key"`
	Error string `json:"error"`
}

// BulkResult tallies a bulk operation. Items are applied independently;
// failures do not roll back successes.
type BulkResult struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     []BulkFailure `json:"failed"`
}

func newBulkResult(total int) *BulkResult {
	return &BulkResult{Total: total, Failed: []BulkFailure{}}
}

func (r *BulkResult) fail(index int, key string, err error) {
	r.Failed = append(r.Failed, BulkFailure{Index: index, Key: key, Error: apperrors.Hint(err, err.Error())})
}

// listPage counts and fetches one page of base, which must already carry
// its model and filters. Preloads apply to the fetch only.
func listPage[T any](base *gorm.DB, page query.Page, order, hint string, preloads ...string) ([]T, int64, error) {
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Database(err, hint)
	}

	items := []T{}
	q := base.Scopes(query.Paginate(page))
	if order != "" {
		q = q.Order(order)
	}
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, apperrors.Database(err, hint)
	}
	return items, total, nil
}

// persistInactive writes is_active=false after a create. gorm replaces a
// zero value with the column default on insert and copies it back into the
// model, so active must be the value the caller asked for.
func persistInactive(db *gorm.DB, model any, active bool) error {
	if active {
		return nil
	}
	return db.Model(model).Update("is_active", false).Error
}
