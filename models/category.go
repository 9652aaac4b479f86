package models

import (
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
)

// Category levels. A category tree is at most three levels deep.
const (
	LevelTop  = 1
	LevelSub  = 2
	LevelLeaf = 3
)

// Category is a node in the catalog tree
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TenantID    string    `gorm:"not null;uniqueIndex:idx_categories_tenant_slug;index" json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex:idx_categories_tenant_slug" json:"slug"`
	Description string    `json:"description,omitempty"`
	Level       int       `gorm:"not null;default:1" json:"level"`
	ParentID    *uint     `gorm:"index" json:"parentId"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	SortOrder   int       `gorm:"not null;default:0" json:"sortOrder"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// ValidateCategoryPlacement checks that a category at level sits under a
// parent exactly one level above it. Top-level categories have no parent.
func ValidateCategoryPlacement(level int, parent *Category) error {
	if level < LevelTop || level > LevelLeaf {
		return apperrors.Validation("Category level must be 1, 2 or 3")
	}
	if level == LevelTop {
		if parent != nil {
			return apperrors.Validation("Top-level categories cannot have a parent")
		}
		return nil
	}
	if parent == nil {
		return apperrors.Validation("Sub-categories require a parent category")
	}
	if parent.Level+1 != level {
		return apperrors.NewErrorf("level %d under parent level %d", level, parent.Level).
			WithHintf("A level %d category must have a level %d parent", level, level-1).
			Mark(apperrors.ErrValidation)
	}
	return nil
}
