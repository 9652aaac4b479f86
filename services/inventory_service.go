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

// VariantStock is the inventory view of one variant
type VariantStock struct {
	VariantID   uint               `json:"variantId"`
	ProductID   uint               `json:"productId"`
	ProductName string             `json:"productName"`
	SKU         string             `json:"sku"`
	Color       string             `json:"color,omitempty"`
	Size        string             `json:"size,omitempty"`
	Stock       int                `json:"stock"`
	StockStatus models.StockStatus `gorm:"-" json:"stockStatus"`
}

// ProductInventory is the stock breakdown of one product
type ProductInventory struct {
	ProductID   uint               `json:"productId"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	TotalStock  int                `json:"totalStock"`
	StockStatus models.StockStatus `json:"stockStatus"`
	Variants    []VariantStock     `json:"variants"`
}

// InventoryFilter narrows inventory listings
type InventoryFilter struct {
	Status models.StockStatus
	Search string
}

// InventoryStats summarises stock across the catalog
type InventoryStats struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalVariants int64 `json:"totalVariants"`
	TotalStock    int64 `json:"totalStock"`
	OutOfStock    int64 `json:"outOfStock"`
	Critical      int64 `json:"critical"`
	Low           int64 `json:"low"`
	InStock       int64 `json:"inStock"`
}

// StockUpdate is one item of a bulk stock update
type StockUpdate struct {
	SKU      string `json:"sku"`
	NewStock int    `json:"newStock"`
}

// StockLine is a quantity of one variant to reserve or restore
type StockLine struct {
	VariantID uint
	SKU       string
	Quantity  int
}

const variantStockColumns = "product_variants.id AS variant_id, product_variants.product_id, " +
	"products.name AS product_name, product_variants.sku, product_variants.color, " +
	"product_variants.size, product_variants.stock"

// InventoryService owns every change to variant stock
type InventoryService struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewInventoryService creates a new inventory service
func NewInventoryService(db *gorm.DB, logger *logrus.Entry) *InventoryService {
	return &InventoryService{db: db, logger: logger}
}

// stockRange is the predicate selecting variants with the given status.
func stockRange(status models.StockStatus) (query.Predicate, error) {
	col := "product_variants.stock"
	switch status {
	case "":
		return nil, nil
	case models.StockOutOfStock:
		return query.Range{Field: col, Max: 0}, nil
	case models.StockCritical:
		return query.Range{Field: col, Min: 1, Max: models.CriticalStockThreshold}, nil
	case models.StockLow:
		return query.Range{Field: col, Min: models.CriticalStockThreshold + 1, Max: models.LowStockThreshold}, nil
	case models.StockInStock:
		return query.Range{Field: col, Min: models.LowStockThreshold + 1}, nil
	default:
		return nil, apperrors.Validation("Status must be one of out_of_stock, critical, low, in_stock")
	}
}

func (s *InventoryService) variants(ctx context.Context, tenantID string) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Variant{}).
		Joins("JOIN products ON products.id = product_variants.product_id AND products.deleted_at IS NULL").
		Where("product_variants.tenant_id = ?", tenantID)
}

// List returns a page of variant stock rows
func (s *InventoryService) List(ctx context.Context, tenantID string, f InventoryFilter, page query.Page) ([]VariantStock, int64, error) {
	status, err := stockRange(f.Status)
	if err != nil {
		return nil, 0, err
	}
	filter := query.Where(status, query.TextMatch{
		Fields: []string{"products.name", "product_variants.sku"},
		Text:   f.Search,
	})
	return s.page(ctx, tenantID, filter, page, query.Sort{Field: "products.name"}, query.Sort{Field: "product_variants.sku"})
}

// Alerts returns variants at or below the low stock threshold, emptiest first
func (s *InventoryService) Alerts(ctx context.Context, tenantID string, page query.Page) ([]VariantStock, int64, error) {
	filter := query.Where(query.Range{Field: "product_variants.stock", Max: models.LowStockThreshold})
	return s.page(ctx, tenantID, filter, page, query.Sort{Field: "product_variants.stock"}, query.Sort{Field: "product_variants.id"})
}

func (s *InventoryService) page(ctx context.Context, tenantID string, filter query.Filter, page query.Page, sorts ...query.Sort) ([]VariantStock, int64, error) {
	base := s.variants(ctx, tenantID).Scopes(query.Scope(filter)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Database(err, "Failed to list inventory")
	}

	rows := []VariantStock{}
	err := base.Select(variantStockColumns).
		Scopes(query.SortScope(sorts...), query.Paginate(page)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Database(err, "Failed to list inventory")
	}
	for i := range rows {
		rows[i].StockStatus = models.StockStatusFor(rows[i].Stock)
	}
	return rows, total, nil
}

// ProductInventory returns a product's variants with their stock status
func (s *InventoryService) ProductInventory(ctx context.Context, tenantID string, productID uint) (*ProductInventory, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&p, productID).Error
	if err != nil {
		return nil, lookupError(err, "Product")
	}

	inv := &ProductInventory{ProductID: p.ID, Name: p.Name, Slug: p.Slug}
	inv.Variants = lo.Map(p.Variants, func(v models.Variant, _ int) VariantStock {
		return variantView(p, v)
	})
	inv.TotalStock = lo.SumBy(p.Variants, func(v models.Variant) int { return v.Stock })
	inv.StockStatus = models.StockStatusFor(inv.TotalStock)
	return inv, nil
}

// AdjustStock applies a set, increase or decrease to one variant in a single
// UPDATE statement and returns the new stock.
func (s *InventoryService) AdjustStock(ctx context.Context, tenantID string, productID, variantID uint, quantity int, op models.StockOperation) (*VariantStock, error) {
	if err := models.ValidateStockOperation(op, quantity); err != nil {
		return nil, err
	}

	var p models.Product
	if err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).First(&p, productID).Error; err != nil {
		return nil, lookupError(err, "Product")
	}

	res := s.db.WithContext(ctx).Model(&models.Variant{}).
		Where("id = ? AND product_id = ? AND tenant_id = ?", variantID, productID, tenantID).
		Update("stock", op.UpdateExpr(quantity))
	if res.Error != nil {
		return nil, apperrors.Database(res.Error, "Failed to update stock")
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("Variant")
	}

	var v models.Variant
	if err := s.db.WithContext(ctx).First(&v, variantID).Error; err != nil {
		return nil, lookupError(err, "Variant")
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"variant_id": variantID,
		"operation":  op,
		"quantity":   quantity,
		"stock":      v.Stock,
	}).Info("Adjusted stock")

	view := variantView(p, v)
	return &view, nil
}

// BulkUpdate sets stock by SKU. Items are applied independently and the
// result reports which ones failed.
func (s *InventoryService) BulkUpdate(ctx context.Context, tenantID string, updates []StockUpdate) *BulkResult {
	result := newBulkResult(len(updates))
	for i, u := range updates {
		sku := strings.TrimSpace(u.SKU)
		if sku == "" {
			result.fail(i, u.SKU, apperrors.Validation("SKU is required"))
			continue
		}
		if err := models.ValidateStockOperation(models.StockSet, u.NewStock); err != nil {
			result.fail(i, sku, err)
			continue
		}

		res := s.db.WithContext(ctx).Model(&models.Variant{}).
			Where("tenant_id = ? AND sku = ?", tenantID, sku).
			Update("stock", models.StockSet.UpdateExpr(u.NewStock))
		switch {
		case res.Error != nil:
			result.fail(i, sku, apperrors.Database(res.Error, "Failed to update stock"))
		case res.RowsAffected == 0:
			result.fail(i, sku, apperrors.NotFound("Variant with SKU "+sku))
		default:
			result.Successful++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  tenantID,
		"total":      result.Total,
		"successful": result.Successful,
		"failed":     len(result.Failed),
	}).Info("Bulk stock update finished")
	return result
}

// Stats counts variants per stock status
func (s *InventoryService) Stats(ctx context.Context, tenantID string) (*InventoryStats, error) {
	var stats InventoryStats
	err := s.variants(ctx, tenantID).Select(
		"COUNT(DISTINCT product_variants.product_id) AS total_products, "+
			"COUNT(*) AS total_variants, "+
			"COALESCE(SUM(product_variants.stock), 0) AS total_stock, "+
			"COALESCE(SUM(CASE WHEN product_variants.stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock, "+
			"COALESCE(SUM(CASE WHEN product_variants.stock BETWEEN 1 AND ? THEN 1 ELSE 0 END), 0) AS critical, "+
			"COALESCE(SUM(CASE WHEN product_variants.stock BETWEEN ? AND ? THEN 1 ELSE 0 END), 0) AS low, "+
			"COALESCE(SUM(CASE WHEN product_variants.stock > ? THEN 1 ELSE 0 END), 0) AS in_stock",
		models.CriticalStockThreshold,
		models.CriticalStockThreshold+1, models.LowStockThreshold,
		models.LowStockThreshold,
	).Scan(&stats).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load inventory stats")
	}
	return &stats, nil
}

// Reserve decrements stock for every line inside tx. A line with
// insufficient stock fails the whole reservation.
func (s *InventoryService) Reserve(tx *gorm.DB, tenantID string, lines []StockLine) error {
	for _, l := range lines {
		res := tx.Model(&models.Variant{}).
			Where("id = ? AND tenant_id = ? AND stock >= ?", l.VariantID, tenantID, l.Quantity).
			Update("stock", models.StockDecrease.UpdateExpr(l.Quantity))
		if res.Error != nil {
			return apperrors.Database(res.Error, "Failed to reserve stock")
		}
		if res.RowsAffected == 0 {
			return apperrors.NewErrorf("insufficient stock for variant %d", l.VariantID).
				WithHintf("Insufficient stock for %s", l.SKU).
				WithDetails(map[string]any{"sku": l.SKU, "requested": l.Quantity}).
				Mark(apperrors.ErrInvalidOperation)
		}
	}
	return nil
}

// Restore puts reserved stock back inside tx
func (s *InventoryService) Restore(tx *gorm.DB, tenantID string, lines []StockLine) error {
	for _, l := range lines {
		err := tx.Model(&models.Variant{}).
			Where("id = ? AND tenant_id = ?", l.VariantID, tenantID).
			Update("stock", models.StockIncrease.UpdateExpr(l.Quantity)).Error
		if err != nil {
			return apperrors.Database(err, "Failed to restore stock")
		}
	}
	return nil
}

func variantView(p models.Product, v models.Variant) VariantStock {
	return VariantStock{
		VariantID:   v.ID,
		ProductID:   p.ID,
		ProductName: p.Name,
		SKU:         v.SKU,
		Color:       v.Color,
		Size:        v.Size,
		Stock:       v.Stock,
		StockStatus: models.StockStatusFor(v.Stock),
	}
}
