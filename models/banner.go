package models

import "time"

// Banner is a promotional image shown on the storefront
type Banner struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	TenantID  string     `gorm:"not null;index" json:"-"`
	Title     string     `gorm:"not null" json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	ImageURL  string     `gorm:"not null" json:"imageUrl"`
	LinkURL   string     `json:"linkUrl,omitempty"`
	Position  string     `gorm:"not null;default:'hero';index" json:"position"` // hero, sidebar, footer
	SortOrder int        `gorm:"not null;default:0" json:"sortOrder"`
	IsActive  bool       `gorm:"not null;default:true" json:"isActive"`
	StartsAt  *time.Time `json:"startsAt"`
	EndsAt    *time.Time `json:"endsAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName specifies the table name for the Banner model
func (Banner) TableName() string {
	return "banners"
}

// BannerPositions enumerates where banners can be placed
var BannerPositions = []string{"hero", "sidebar", "footer"}

// LiveAt reports whether the banner should be displayed at t.
func (b Banner) LiveAt(t time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && t.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && t.After(*b.EndsAt) {
		return false
	}
	return true
}
