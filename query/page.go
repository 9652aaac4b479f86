package query

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a 1-based skip/limit window.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps number and size into range.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginate returns a gorm scope applying the page window.
func Paginate(p Page) func(*gorm.DB) *gorm.DB {
	p = NewPage(p.Number, p.Size)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Size)
	}
}

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Info builds the page metadata for a result set of total rows.
func (p Page) Info(total int64) PageInfo {
	p = NewPage(p.Number, p.Size)
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return PageInfo{Page: p.Number, Limit: p.Size, Total: total, TotalPages: pages}
}
