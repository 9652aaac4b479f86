package acceptance

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// StorefrontAcceptanceTestSuite drives a shopper and an admin through the
// storefront over HTTP
type StorefrontAcceptanceTestSuite struct {
	serverSuite
}

func (suite *StorefrontAcceptanceTestSuite) TestHealth() {
	resp := suite.call(http.MethodGet, "/api/health", "", nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.Equal(suite.T(), true, resp.Body["success"])
	assert.Equal(suite.T(), "Storefront API is running", resp.Body["message"])
	assert.NotEmpty(suite.T(), resp.Header.Get("X-Request-ID"))
}

func (suite *StorefrontAcceptanceTestSuite) TestShopperJourney() {
	admin := suite.adminToken()

	// The admin stocks the shop
	resp := suite.call(http.MethodPost, "/api/categories", admin, gin.H{"name": "Stationery", "level": 1})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))
	categoryID := suite.id(resp.Data()["id"])

	resp = suite.call(http.MethodPost, "/api/products", admin, gin.H{
		"name":       "Fountain Pen",
		"categoryId": categoryID,
		"basePrice":  120,
		"tags":       []string{"writing", "gift"},
		"variants": []gin.H{
			{"sku": "PEN-BLK", "color": "black", "price": 120, "stock": 12},
			{"sku": "PEN-RED", "color": "red", "price": 130, "stock": 4},
		},
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))
	product := resp.Data()
	productID := suite.id(product["id"])
	slug := product["slug"].(string)
	black := suite.id(product["variants"].([]any)[0].(map[string]any)["id"])

	resp = suite.call(http.MethodPost, "/api/coupons", admin, gin.H{
		"code":          "WELCOME",
		"discountType":  "fixed",
		"discountValue": 20,
		"usageLimit":    50,
		"validFrom":     time.Now().Add(-time.Hour).Format(time.RFC3339),
		"validUntil":    time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	// A shopper finds it
	resp = suite.call(http.MethodGet, "/api/search?q=fountain", "", nil)
	suite.Require().Equal(http.StatusOK, resp.Status, string(resp.RawBody))
	assert.Contains(suite.T(), string(resp.RawBody), "Fountain Pen")

	resp = suite.call(http.MethodGet, "/api/products/slug/"+slug, "", nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.EqualValues(suite.T(), productID, resp.Data()["id"])

	resp = suite.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Pat Shopper",
		"email":    "pat@example.com",
		"password": "a-long-password",
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	resp = suite.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "PAT@example.com", "password": "a-long-password"})
	suite.Require().Equal(http.StatusOK, resp.Status, string(resp.RawBody))
	token := resp.Data()["token"].(string)

	resp = suite.call(http.MethodPost, "/api/wishlist", token, gin.H{"productId": productID})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	// ...buys two
	resp = suite.call(http.MethodPost, "/api/cart/items", token, gin.H{"productId": productID, "variantId": black, "quantity": 2})
	suite.Require().Equal(http.StatusOK, resp.Status, string(resp.RawBody))
	resp = suite.call(http.MethodPost, "/api/cart/coupon", token, gin.H{"code": "welcome"})
	suite.Require().Equal(http.StatusOK, resp.Status, string(resp.RawBody))
	assert.InDelta(suite.T(), 220.0, resp.Data()["total"], 0.001)

	resp = suite.call(http.MethodPost, "/api/orders", token, gin.H{
		"shippingAddress": gin.H{
			"fullName": "Pat Shopper", "phone": "555-0101", "line1": "9 Elm Row",
			"city": "Portland", "state": "OR", "postalCode": "97201", "country": "US",
		},
		"paymentMethod": "cod",
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))
	orderID := suite.id(resp.Data()["id"])
	assert.InDelta(suite.T(), 220.0, resp.Data()["total"], 0.001)

	// ...and the admin fulfils it
	for _, status := range []string{"confirmed", "processing", "shipped", "delivered"} {
		resp = suite.call(http.MethodPatch, "/api/admin/orders/"+itoa(orderID)+"/status", admin, gin.H{"status": status})
		suite.Require().Equal(http.StatusOK, resp.Status, "%s: %s", status, string(resp.RawBody))
	}

	resp = suite.call(http.MethodGet, "/api/orders/"+itoa(orderID), token, nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.Equal(suite.T(), "delivered", resp.Data()["status"])
	assert.Equal(suite.T(), "paid", resp.Data()["paymentStatus"])

	resp = suite.call(http.MethodGet, "/api/inventory/products/"+itoa(productID), admin, nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.InDelta(suite.T(), 14.0, resp.Data()["totalStock"], 0.001)

	resp = suite.call(http.MethodGet, "/api/analytics/top-products", admin, nil)
	suite.Require().Equal(http.StatusOK, resp.Status, string(resp.RawBody))
	assert.Contains(suite.T(), string(resp.RawBody), "Fountain Pen")
}

func (suite *StorefrontAcceptanceTestSuite) TestSupportConversation() {
	admin := suite.adminToken()
	resp := suite.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Help Seeker", "email": "help@example.com", "password": "a-long-password",
	})
	suite.Require().Equal(http.StatusCreated, resp.Status)
	token := resp.Data()["token"].(string)

	resp = suite.call(http.MethodPost, "/api/support/tickets", token, gin.H{
		"subject": "Wrong colour", "description": "I ordered red and got black.", "category": "order",
	})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))
	ticketID := resp.Data()["ticketId"].(string)

	resp = suite.call(http.MethodPost, "/api/admin/support/tickets/"+ticketID+"/messages", admin, gin.H{"message": "We will send a red one."})
	suite.Require().Equal(http.StatusCreated, resp.Status, string(resp.RawBody))

	resp = suite.call(http.MethodGet, "/api/support/tickets/"+ticketID+"/messages", token, nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.Contains(suite.T(), string(resp.RawBody), "We will send a red one.")

	resp = suite.call(http.MethodPost, "/api/support/tickets/"+ticketID+"/close", token, nil)
	suite.Require().Equal(http.StatusOK, resp.Status)
	assert.Equal(suite.T(), "closed", resp.Data()["status"])
}

func (suite *StorefrontAcceptanceTestSuite) TestErrorEnvelope() {
	resp := suite.call(http.MethodGet, "/api/products/999", "", nil)
	suite.Require().Equal(http.StatusNotFound, resp.Status)
	assert.Equal(suite.T(), false, resp.Body["success"])
	assert.Equal(suite.T(), "NOT_FOUND", resp.Body["error"])
	assert.Equal(suite.T(), "Product not found", resp.Body["message"])

	resp = suite.call(http.MethodGet, "/api/cart", "", nil)
	suite.Require().Equal(http.StatusUnauthorized, resp.Status)
	assert.Equal(suite.T(), false, resp.Body["success"])
	assert.Equal(suite.T(), "UNAUTHORIZED", resp.Body["error"])
}

// TestStorefrontAcceptanceTestSuite runs the storefront acceptance test suite
func TestStorefrontAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(StorefrontAcceptanceTestSuite))
}
