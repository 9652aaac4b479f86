package services

import (
	"context"
	"time"

	"github.com/kendall-kelly/storefront-api/apperrors"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DailySales is one day of the sales series
type DailySales struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// SalesSummary aggregates orders placed within a window. Cancelled orders
// are counted by status but excluded from revenue.
type SalesSummary struct {
	From              time.Time                  `json:"from"`
	To                time.Time                  `json:"to"`
	Revenue           float64                    `json:"revenue"`
	OrderCount        int                        `json:"orderCount"`
	AverageOrderValue float64                    `json:"averageOrderValue"`
	Discounts         float64                    `json:"discounts"`
	OrdersByStatus    map[models.OrderStatus]int `json:"ordersByStatus"`
	Daily             []DailySales               `json:"daily"`
}

// ProductSales is the sales volume of one product
type ProductSales struct {
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// Dashboard is the back-office landing page summary
type Dashboard struct {
	Customers     int64           `json:"customers"`
	Products      int64           `json:"products"`
	Orders        int64           `json:"orders"`
	PendingOrders int64           `json:"pendingOrders"`
	OpenTickets   int64           `json:"openTickets"`
	Revenue       float64         `json:"revenue"`
	Inventory     *InventoryStats `json:"inventory"`
	RecentOrders  []models.Order  `json:"recentOrders"`
}

// AnalyticsService computes reporting aggregates
type AnalyticsService struct {
	db        *gorm.DB
	inventory *InventoryService
	logger    *logrus.Entry
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, inventory *InventoryService, logger *logrus.Entry) *AnalyticsService {
	return &AnalyticsService{db: db, inventory: inventory, logger: logger}
}

// Sales summarises orders created in [from, to)
func (s *AnalyticsService) Sales(ctx context.Context, tenantID string, from, to time.Time) (*SalesSummary, error) {
	if !to.After(from) {
		return nil, apperrors.Validation("End of the window must be after its start")
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).Scopes(forTenant(tenantID)).
		Select("id", "status", "total", "discount", "created_at").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at").Find(&orders).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load sales")
	}

	summary := &SalesSummary{From: from, To: to, OrdersByStatus: map[models.OrderStatus]int{}, Daily: []DailySales{}}
	revenue, discounts := decimal.Zero, decimal.Zero
	daily := map[string]decimal.Decimal{}
	dailyOrders := map[string]int{}
	var days []string

	for _, o := range orders {
		summary.OrdersByStatus[o.Status]++
		if o.Status == models.OrderCancelled {
			continue
		}
		summary.OrderCount++
		total := decimal.NewFromFloat(o.Total)
		revenue = revenue.Add(total)
		discounts = discounts.Add(decimal.NewFromFloat(o.Discount))

		day := o.CreatedAt.UTC().Format(time.DateOnly)
		if _, seen := daily[day]; !seen {
			days = append(days, day)
		}
		daily[day] = daily[day].Add(total)
		dailyOrders[day]++
	}

	summary.Revenue = revenue.Round(2).InexactFloat64()
	summary.Discounts = discounts.Round(2).InexactFloat64()
	if summary.OrderCount > 0 {
		summary.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(summary.OrderCount))).Round(2).InexactFloat64()
	}
	summary.Daily = lo.Map(days, func(day string, _ int) DailySales {
		return DailySales{Date: day, Orders: dailyOrders[day], Revenue: daily[day].Round(2).InexactFloat64()}
	})
	return summary, nil
}

// TopProducts ranks products by units sold in [from, to)
func (s *AnalyticsService) TopProducts(ctx context.Context, tenantID string, from, to time.Time, limit int) ([]ProductSales, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows := []ProductSales{}
	err := s.db.WithContext(ctx).Table("order_items").
		Select("order_items.product_id, MAX(order_items.name) AS name, "+
			"SUM(order_items.quantity) AS quantity, SUM(order_items.price * order_items.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.tenant_id = ? AND orders.status <> ?", tenantID, models.OrderCancelled).
		Where("orders.created_at >= ? AND orders.created_at < ?", from, to).
		Group("order_items.product_id").
		Order("quantity DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load top products")
	}
	for i := range rows {
		rows[i].Revenue = decimal.NewFromFloat(rows[i].Revenue).Round(2).InexactFloat64()
	}
	return rows, nil
}

// Dashboard counts the headline numbers for the back office
func (s *AnalyticsService) Dashboard(ctx context.Context, tenantID string) (*Dashboard, error) {
	d := &Dashboard{RecentOrders: []models.Order{}}
	db := s.db.WithContext(ctx)

	counts := []struct {
		model any
		where string
		args  []any
		dest  *int64
	}{
		{&models.User{}, "role = ?", []any{models.RoleCustomer}, &d.Customers},
		{&models.Product{}, "", nil, &d.Products},
		{&models.Order{}, "", nil, &d.Orders},
		{&models.Order{}, "status = ?", []any{models.OrderPending}, &d.PendingOrders},
		{&models.SupportTicket{}, "status IN ?", []any{[]models.TicketStatus{models.TicketOpen, models.TicketInProgress, models.TicketWaitingForCustomer}}, &d.OpenTickets},
	}
	for _, c := range counts {
		q := db.Model(c.model).Scopes(forTenant(tenantID))
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, apperrors.Database(err, "Failed to load dashboard")
		}
	}

	var revenue float64
	err := db.Model(&models.Order{}).Scopes(forTenant(tenantID)).
		Where("status <> ?", models.OrderCancelled).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load dashboard")
	}
	d.Revenue = decimal.NewFromFloat(revenue).Round(2).InexactFloat64()

	if d.Inventory, err = s.inventory.Stats(ctx, tenantID); err != nil {
		return nil, err
	}

	err = db.Scopes(forTenant(tenantID)).Order("created_at DESC, id DESC").Limit(5).Find(&d.RecentOrders).Error
	if err != nil {
		return nil, apperrors.Database(err, "Failed to load dashboard")
	}
	return d, nil
}
