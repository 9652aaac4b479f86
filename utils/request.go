package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/query"
)

// ParsePage reads the page and limit query parameters
func ParsePage(c *gin.Context) query.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return query.NewPage(page, limit)
}

// ParseID reads a positive numeric path parameter
func ParseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewErrorf("invalid %s %q", name, raw).
			WithHintf("Invalid %s", name).
			Mark(apperrors.ErrValidation)
	}
	return uint(id), nil
}

// OptionalUint reads an optional numeric query parameter
func OptionalUint(c *gin.Context, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + name)
	}
	id := uint(v)
	return &id, nil
}

// OptionalFloat reads an optional decimal query parameter
func OptionalFloat(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + name)
	}
	return &v, nil
}

// OptionalBool reads an optional boolean query parameter
func OptionalBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.Validation("Invalid " + name)
	}
	return &v, nil
}

// UintList reads a comma separated list of ids, skipping blanks
func UintList(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, apperrors.Validation("Invalid id list")
		}
		ids = append(ids, uint(v))
	}
	return ids, nil
}

// BindError turns a gin binding failure into a validation error listing
// each rejected field and the rule it broke.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return apperrors.WithError(err).
			WithHint("Invalid request data").
			WithDetails(map[string]any{"fields": fields}).
			Mark(apperrors.ErrValidation)
	}
	return apperrors.WithError(err).WithHint("Invalid request format").Mark(apperrors.ErrValidation)
}
