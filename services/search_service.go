package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/query"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const minSearchLength = 2

// SearchResults groups matches by entity
type SearchResults struct {
	Query      string            `json:"query"`
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
	Total      int64             `json:"total"`
}

// Suggestion is one autocomplete entry
type Suggestion struct {
	Type string `json:"type"` // product, category or brand
	Text string `json:"text"`
	Slug string `json:"slug,omitempty"`
}

// SearchService runs storefront text search
type SearchService struct {
	db       *gorm.DB
	products *ProductService
	logger   *logrus.Entry
}

// NewSearchService creates a new search service
func NewSearchService(db *gorm.DB, products *ProductService, logger *logrus.Entry) *SearchService {
	return &SearchService{db: db, products: products, logger: logger}
}

func searchText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minSearchLength {
		return "", apperrors.Validation("Search query must be at least 2 characters")
	}
	return text, nil
}

// Search matches active products and categories against text
func (s *SearchService) Search(ctx context.Context, tenantID, text string, f ProductFilter, page query.Page) (*SearchResults, error) {
	text, err := searchText(text)
	if err != nil {
		return nil, err
	}

	f.Search = text
	f.IncludeInactive = false
	products, total, err := s.products.List(ctx, tenantID, f, page)
	if err != nil {
		return nil, err
	}

	categories := []models.Category{}
	err = s.db.WithContext(ctx).Scopes(forTenant(tenantID), query.Scope(query.Where(
		query.Equals{Field: "is_active", Value: true},
		query.TextMatch{Fields: []string{"name", "description"}, Text: text},
	))).Order("level, sort_order, name").Limit(10).Find(&categories).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to search categories")
	}

	return &SearchResults{Query: text, Products: products, Categories: categories, Total: total}, nil
}

// Suggest returns up to limit autocomplete entries for text
func (s *SearchService) Suggest(ctx context.Context, tenantID, text string, limit int) ([]Suggestion, error) {
	text, err := searchText(text)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	db := s.db.WithContext(ctx)
	active := query.Equals{Field: "is_active", Value: true}

	var products []models.Product
	err = db.Scopes(forTenant(tenantID), query.Scope(query.Where(active, query.TextMatch{Fields: []string{"name"}, Text: text}))).
		Select("name", "slug").Order("rating DESC, name").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load suggestions")
	}

	var categories []models.Category
	err = db.Scopes(forTenant(tenantID), query.Scope(query.Where(active, query.TextMatch{Fields: []string{"name"}, Text: text}))).
		Select("name", "slug").Order("level, name").Limit(limit).Find(&categories).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load suggestions")
	}

	var brands []string
	err = db.Model(&models.Product{}).Scopes(forTenant(tenantID), query.Scope(query.Where(active, query.TextMatch{Fields: []string{"brand"}, Text: text}))).
		Distinct("brand").Order("brand").Limit(limit).Pluck("brand", &brands).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load suggestions")
	}

	suggestions := make([]Suggestion, 0, len(products)+len(categories)+len(brands))
	for _, p := range products {
		suggestions = append(suggestions, Suggestion{Type: "product", Text: p.Name, Slug: p.Slug})
	}
	for _, c := range categories {
		suggestions = append(suggestions, Suggestion{Type: "category", Text: c.Name, Slug: c.Slug})
	}
	for _, b := range lo.Compact(brands) {
		suggestions = append(suggestions, Suggestion{Type: "brand", Text: b})
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}
