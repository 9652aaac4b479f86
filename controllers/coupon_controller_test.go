package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type couponFixture struct {
	router  *gin.Engine
	coupons *services.CouponService
	carts   *services.CartService
}

func setupCouponRouter(t *testing.T, db *gorm.DB, userID uint) couponFixture {
	t.Helper()
	coupons := services.NewCouponService(db, testLogger())
	carts := services.NewCartService(db, coupons, testLogger())
	h := NewCouponController(coupons, carts)

	router := setupTestRouter(t)
	admin := router.Group("/api/coupons", mockAuthMiddleware(1, models.RoleAdmin))
	admin.POST("", h.Create)
	admin.POST("/bulk", h.BulkCreate)
	admin.GET("", h.List)
	admin.PATCH("/:id/toggle", h.Toggle)

	public := router.Group("/api/public/coupons")
	public.GET("/active", h.Active)
	public.GET("/validate/:code", h.Validate)

	if userID != 0 {
		router.GET("/api/me/coupons/validate/:code", mockAuthMiddleware(userID, models.RoleCustomer), h.Validate)
	}
	return couponFixture{router: router, coupons: coupons, carts: carts}
}

func createCoupon(t *testing.T, svc *services.CouponService, in services.CouponInput) *models.Coupon {
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
	c, err := svc.Create(context.Background(), testTenant, in)
	require.NoError(t, err)
	return c
}

func TestCreateCoupon(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedCode   string
		expectedField  string
	}{
		{
			name:           "Create percentage coupon successfully",
			body:           gin.H{"code": "SAVE10", "discountType": "percentage", "discountValue": 10},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Lowercase code is stored uppercase",
			body:           gin.H{"code": " save10 ", "discountType": "percentage", "discountValue": 10},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Code with punctuation is rejected",
			body:           gin.H{"code": "save-10", "discountType": "percentage", "discountValue": 10},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
			expectedField:  "code",
		},
		{
			name:           "Unknown discount type is rejected",
			body:           gin.H{"code": "SAVE10", "discountType": "bogo", "discountValue": 10},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "discountType",
		},
		{
			name:           "Percentage above 100 is rejected",
			body:           gin.H{"code": "HALF", "discountType": "percentage", "discountValue": 150},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "End date before start date is rejected",
			body: gin.H{
				"code": "BACKWARDS", "discountType": "fixed", "discountValue": 5,
				"validFrom": "2026-05-01T00:00:00Z", "validUntil": "2026-04-01T00:00:00Z",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed JSON is rejected",
			body:           `{"code": `,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupCouponRouter(t, setupTestDB(t), 0)

			w := performRequest(f.router, http.MethodPost, "/api/coupons", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			response := decodeResponse(t, w)
			if tt.expectedStatus == http.StatusCreated {
				assert.Equal(t, true, response["success"])
				data := response["data"].(map[string]any)
				assert.Equal(t, "SAVE10", data["code"])
				assert.Equal(t, true, data["isActive"])
				assert.EqualValues(t, 1, data["usageLimit"])
				return
			}
			assert.Equal(t, false, response["success"])
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, response["error"])
			}
			if tt.expectedField != "" {
				fields := response["details"].(map[string]any)["fields"].(map[string]any)
				assert.Contains(t, fields, tt.expectedField)
			}
		})
	}
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	f := setupCouponRouter(t, setupTestDB(t), 0)
	body := gin.H{"code": "SAVE10", "discountType": "percentage", "discountValue": 10}

	require.Equal(t, http.StatusCreated, performRequest(f.router, http.MethodPost, "/api/coupons", body).Code)

	w := performRequest(f.router, http.MethodPost, "/api/coupons", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Coupon code already exists", decodeResponse(t, w)["message"])
}

func TestBulkCreateCoupons(t *testing.T) {
	f := setupCouponRouter(t, setupTestDB(t), 0)

	w := performRequest(f.router, http.MethodPost, "/api/coupons/bulk", gin.H{"coupons": []gin.H{
		{"code": "BULK1", "discountType": "fixed", "discountValue": 50},
		{"code": "BULK1", "discountType": "fixed", "discountValue": 50},
		{"code": "BULK2", "discountType": "percentage", "discountValue": 150},
		{"code": "BULK3", "discountType": "percentage", "discountValue": 20},
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := responseData(t, w)
	assert.EqualValues(t, 4, data["total"])
	assert.EqualValues(t, 2, data["successful"])
	failed := data["failed"].([]any)
	require.Len(t, failed, 2)
	assert.EqualValues(t, 1, failed[0].(map[string]any)["index"])
	assert.Equal(t, "BULK2", failed[1].(map[string]any)["key"])

	w = performRequest(f.router, http.MethodGet, "/api/coupons", nil)
	assert.EqualValues(t, 2, responseData(t, w)["pagination"].(map[string]any)["total"])
}

func TestValidateCoupon(t *testing.T) {
	db := setupTestDB(t)
	f := setupCouponRouter(t, db, 0)

	maxDiscount := 50.0
	createCoupon(t, f.coupons, services.CouponInput{Code: "SAVE10", DiscountType: models.DiscountPercentage, DiscountValue: 10})
	createCoupon(t, f.coupons, services.CouponInput{Code: "CAPPED", DiscountType: models.DiscountPercentage, DiscountValue: 20, MaxDiscountAmount: &maxDiscount})
	createCoupon(t, f.coupons, services.CouponInput{Code: "BIGSPEND", DiscountType: models.DiscountFixed, DiscountValue: 100, MinOrderAmount: 500})
	createCoupon(t, f.coupons, services.CouponInput{Code: "SHOES", DiscountType: models.DiscountFixed, DiscountValue: 30, ApplicableCategories: []uint{7}})
	createCoupon(t, f.coupons, services.CouponInput{
		Code:      "OLD", DiscountType: models.DiscountFixed, DiscountValue: 30,
		ValidFrom: time.Now().Add(-48 * time.Hour), ValidUntil: time.Now().Add(-24 * time.Hour),
	})

	tests := []struct {
		name             string
		path             string
		expectedStatus   int
		expectedValid    bool
		expectedDiscount float64
		expectedMessage  string
	}{
		{
			name:             "Percentage discount",
			path:             "/api/public/coupons/validate/SAVE10?cartTotal=1000",
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: 100,
			expectedMessage:  "Coupon is valid",
		},
		{
			name:             "Code is case insensitive",
			path:             "/api/public/coupons/validate/save10?cartTotal=250",
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: 25,
			expectedMessage:  "Coupon is valid",
		},
		{
			name:             "Percentage discount is capped",
			path:             "/api/public/coupons/validate/CAPPED?cartTotal=1000",
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: 50,
			expectedMessage:  "Coupon is valid",
		},
		{
			name:            "Minimum order not met",
			path:            "/api/public/coupons/validate/BIGSPEND?cartTotal=100",
			expectedStatus:  http.StatusOK,
			expectedMessage: models.ReasonMinOrderNotMet,
		},
		{
			name:             "Category restriction matches",
			path:             "/api/public/coupons/validate/SHOES?cartTotal=100&categoryIds=3,7",
			expectedStatus:   http.StatusOK,
			expectedValid:    true,
			expectedDiscount: 30,
			expectedMessage:  "Coupon is valid",
		},
		{
			name:            "Category restriction does not match",
			path:            "/api/public/coupons/validate/SHOES?cartTotal=100&categoryIds=3",
			expectedStatus:  http.StatusOK,
			expectedMessage: models.ReasonCategoryMismatch,
		},
		{
			name:            "Expired coupon",
			path:            "/api/public/coupons/validate/OLD?cartTotal=100",
			expectedStatus:  http.StatusOK,
			expectedMessage: models.ReasonExpired,
		},
		{
			name:            "Unknown code",
			path:            "/api/public/coupons/validate/NOPE?cartTotal=100",
			expectedStatus:  http.StatusOK,
			expectedMessage: models.ReasonCouponNotFound,
		},
		{
			name:           "Anonymous request without cart total",
			path:           "/api/public/coupons/validate/SAVE10",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Negative cart total",
			path:           "/api/public/coupons/validate/SAVE10?cartTotal=-5",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Malformed code",
			path:           "/api/public/coupons/validate/SAVE-10?cartTotal=100",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(f.router, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, false, decodeResponse(t, w)["success"])
				return
			}

			response := decodeResponse(t, w)
			assert.Equal(t, tt.expectedMessage, response["message"])
			data := response["data"].(map[string]any)
			assert.Equal(t, tt.expectedValid, data["valid"])
			assert.InDelta(t, tt.expectedDiscount, data["discount"], 0.001)
			if tt.expectedValid {
				assert.NotNil(t, data["coupon"])
			} else {
				assert.NotContains(t, data, "coupon")
				assert.Equal(t, tt.expectedMessage, data["reason"])
			}
		})
	}
}

func TestValidateCouponAgainstCallerCart(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "shopper@example.com", models.RoleCustomer)
	f := setupCouponRouter(t, db, user.ID)

	createCoupon(t, f.coupons, services.CouponInput{Code: "SAVE10", DiscountType: models.DiscountPercentage, DiscountValue: 10})
	product, variant := seedProduct(t, db, "TEE-RED-M", 200, 10)
	_, err := f.carts.AddItem(context.Background(), testTenant, user.ID, product.ID, variant.ID, 2)
	require.NoError(t, err)

	w := performRequest(f.router, http.MethodGet, "/api/me/coupons/validate/SAVE10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := responseData(t, w)
	assert.Equal(t, true, data["valid"])
	assert.InDelta(t, 40.0, data["discount"], 0.001)
}

func TestActiveCoupons(t *testing.T) {
	f := setupCouponRouter(t, setupTestDB(t), 0)

	live := createCoupon(t, f.coupons, services.CouponInput{Code: "LIVE", DiscountType: models.DiscountFixed, DiscountValue: 5})
	createCoupon(t, f.coupons, services.CouponInput{
		Code:      "SOON", DiscountType: models.DiscountFixed, DiscountValue: 5,
		ValidFrom: time.Now().Add(24 * time.Hour), ValidUntil: time.Now().Add(48 * time.Hour),
	})
	paused := createCoupon(t, f.coupons, services.CouponInput{Code: "PAUSED", DiscountType: models.DiscountFixed, DiscountValue: 5})

	w := performRequest(f.router, http.MethodPatch, "/api/coupons/"+itoa(paused.ID)+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, responseData(t, w)["isActive"])

	w = performRequest(f.router, http.MethodGet, "/api/public/coupons/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeResponse(t, w)["data"].([]any)
	require.Len(t, active, 1)
	assert.Equal(t, live.Code, active[0].(map[string]any)["code"])
}
