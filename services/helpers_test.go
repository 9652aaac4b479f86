package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/tests/testutil"
	"github.com/kendall-kelly/storefront-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const tenant = "default"

var ctx = context.Background()

// fixture wires every service over one in-memory database the way the
// router does
type fixture struct {
	db         *gorm.DB
	images     *services.MockImageService
	categories *services.CategoryService
	products   *services.ProductService
	inventory  *services.InventoryService
	coupons    *services.CouponService
	carts      *services.CartService
	orders     *services.OrderService
	payments   *services.PaymentService
	shipping   *services.ShippingService
	support    *services.SupportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	f := &fixture{db: db, images: services.NewMockImageService()}
	f.categories = services.NewCategoryService(db, testutil.Logger("categories"))
	f.products = services.NewProductService(db, f.categories, f.images, testutil.Logger("products"))
	f.inventory = services.NewInventoryService(db, testutil.Logger("inventory"))
	f.coupons = services.NewCouponService(db, testutil.Logger("coupons"))
	f.carts = services.NewCartService(db, f.coupons, testutil.Logger("cart"))
	f.orders = services.NewOrderService(db, f.inventory, f.coupons, testutil.Logger("orders"))
	f.payments = services.NewPaymentService(db, f.orders, testutil.Logger("payments"))
	f.shipping = services.NewShippingService(db, f.orders, testutil.Logger("shipping"))
	f.support = services.NewSupportService(db, testutil.Logger("support"))
	return f
}

func (f *fixture) category(t *testing.T, name string, level int, parentID *uint) *models.Category {
	t.Helper()
	c, err := f.categories.Create(ctx, tenant, services.CategoryInput{
		Name:     name,
		Slug:     utils.Slugify(name),
		Level:    level,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return c
}

// product creates an active product under categoryID with one variant per sku
func (f *fixture) product(t *testing.T, name string, categoryID uint, price float64, stock int, skus ...string) *models.Product {
	t.Helper()
	in := services.ProductInput{Name: name, Slug: utils.Slugify(name), CategoryID: categoryID, BasePrice: price}
	for _, sku := range skus {
		in.Variants = append(in.Variants, services.VariantInput{SKU: sku, Price: price, Stock: stock})
	}
	p, err := f.products.Create(ctx, tenant, in)
	require.NoError(t, err)
	return p
}

func (f *fixture) coupon(t *testing.T, in services.CouponInput) *models.Coupon {
	t.Helper()
	if in.ValidFrom.IsZero() {
		in.ValidFrom = time.Now().Add(-time.Hour)
	}
	if in.ValidUntil.IsZero() {
		in.ValidUntil = time.Now().Add(24 * time.Hour)
	}
	if in.UsageLimit == 0 {
		in.UsageLimit = 100
	}
	c, err := f.coupons.Create(ctx, tenant, in)
	require.NoError(t, err)
	return c
}

func (f *fixture) user(t *testing.T, email, role string) *models.User {
	t.Helper()
	u := models.User{TenantID: tenant, Name: email, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, f.db.Create(&u).Error)
	return &u
}

func (f *fixture) stock(t *testing.T, variantID uint) int {
	t.Helper()
	var v models.Variant
	require.NoError(t, f.db.First(&v, variantID).Error)
	return v.Stock
}

func (f *fixture) usedCount(t *testing.T, code string) int {
	t.Helper()
	c, err := f.coupons.GetByCode(ctx, tenant, code)
	require.NoError(t, err)
	return c.UsedCount
}

func address() models.Address {
	return models.Address{
		FullName:   "Robin Buyer",
		Phone:      "555-0199",
		Line1:      "1 Quay Street",
		City:       "Leeds",
		State:      "WY",
		PostalCode: "LS1 1AA",
		Country:    "GB",
	}
}

func ptr[T any](v T) *T {
	return &v
}
