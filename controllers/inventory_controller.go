package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
)

// StockRequest is the body for adjusting one variant's stock
type StockRequest struct {
	Stock     *int                  `json:"stock" binding:"required,gte=0"`
	Operation models.StockOperation `json:"operation" binding:"omitempty,oneof=set increase decrease"`
}

// BulkStockRequest is the body for setting stock on many SKUs
type BulkStockRequest struct {
	Updates []services.StockUpdate `json:"updates" binding:"required,min=1,max=1000"`
}

// InventoryController serves /api/inventory (admin only)
type InventoryController struct {
	inventory *services.InventoryService
}

// NewInventoryController creates an inventory controller
func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

// List handles GET /api/inventory - variant stock filtered by status and search
func (h *InventoryController) List(c *gin.Context) {
	filter := services.InventoryFilter{
		Status: models.StockStatus(c.Query("status")),
		Search: c.Query("search"),
	}
	page := utils.ParsePage(c)

	rows, total, err := h.inventory.List(c.Request.Context(), middleware.GetTenantID(c), filter, page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Inventory retrieved successfully", rows, total, page)
}

// Alerts handles GET /api/inventory/alerts - low and out of stock variants
func (h *InventoryController) Alerts(c *gin.Context) {
	page := utils.ParsePage(c)
	rows, total, err := h.inventory.Alerts(c.Request.Context(), middleware.GetTenantID(c), page)
	if err != nil {
		_ = c.Error(err)
		return
	}
	paged(c, "Low stock alerts retrieved successfully", rows, total, page)
}

// Stats handles GET /api/inventory/stats
func (h *InventoryController) Stats(c *gin.Context) {
	stats, err := h.inventory.Stats(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Inventory stats retrieved successfully", stats)
}

// Product handles GET /api/inventory/products/:id - a product's variants with
// their stock status
func (h *InventoryController) Product(c *gin.Context) {
	productID, valid := pathID(c, "id")
	if !valid {
		return
	}
	inv, err := h.inventory.ProductInventory(c.Request.Context(), middleware.GetTenantID(c), productID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Product inventory retrieved successfully", inv)
}

// UpdateStock handles PUT /api/inventory/products/:id/variants/:vid/stock
func (h *InventoryController) UpdateStock(c *gin.Context) {
	productID, valid := pathID(c, "id")
	if !valid {
		return
	}
	variantID, valid := pathID(c, "vid")
	if !valid {
		return
	}
	var req StockRequest
	if !bindJSON(c, &req) {
		return
	}
	op := req.Operation
	if op == "" {
		op = models.StockSet
	}

	stock, err := h.inventory.AdjustStock(c.Request.Context(), middleware.GetTenantID(c), productID, variantID, *req.Stock, op)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, "Stock updated successfully", stock)
}

// BulkUpdate handles POST /api/inventory/bulk-update - sets stock by SKU and
// reports which items failed
func (h *InventoryController) BulkUpdate(c *gin.Context) {
	var req BulkStockRequest
	if !bindJSON(c, &req) {
		return
	}
	result := h.inventory.BulkUpdate(c.Request.Context(), middleware.GetTenantID(c), req.Updates)
	ok(c, "Bulk stock update completed", result)
}
