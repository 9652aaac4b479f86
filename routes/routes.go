package routes

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/controllers"
	"github.com/kendall-kelly/storefront-api/logger"
	"github.com/kendall-kelly/storefront-api/middleware"
	"github.com/kendall-kelly/storefront-api/models"
	"github.com/kendall-kelly/storefront-api/services"
	"github.com/kendall-kelly/storefront-api/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the process-wide collaborators a router is built from
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *logrus.Logger
	Images   services.ImageService
	Registry *prometheus.Registry
}

// Handlers holds one controller per resource
type Handlers struct {
	Health    *controllers.HealthController
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Products  *controllers.ProductController
	Category  *controllers.CategoryController
	Cart      *controllers.CartController
	Wishlist  *controllers.WishlistController
	Orders    *controllers.OrderController
	Payments  *controllers.PaymentController
	Coupons   *controllers.CouponController
	Inventory *controllers.InventoryController
	Shipping  *controllers.ShippingController
	Support   *controllers.SupportController
	Banners   *controllers.BannerController
	Analytics *controllers.AnalyticsController
	Search    *controllers.SearchController
	Uploads   *controllers.UploadController
}

// NewHandlers wires services and controllers over one database handle
func NewHandlers(deps Dependencies, service string) *Handlers {
	log := deps.Logger
	db := deps.DB

	images := deps.Images
	if images == nil {
		images = services.NewLocalImageService(deps.Config.UploadDir)
	}

	auth := services.NewAuthService(db, services.TokenConfig{
		Secret:   deps.Config.JWTSecret,
		Issuer:   deps.Config.JWTIssuer,
		Audience: deps.Config.JWTAudience,
		Expiry:   deps.Config.JWTExpiry,
	}, logger.Service(log, "auth"))
	users := services.NewUserService(db, logger.Service(log, "users"))
	categories := services.NewCategoryService(db, logger.Service(log, "categories"))
	products := services.NewProductService(db, categories, images, logger.Service(log, "products"))
	inventory := services.NewInventoryService(db, logger.Service(log, "inventory"))
	coupons := services.NewCouponService(db, logger.Service(log, "coupons"))
	carts := services.NewCartService(db, coupons, logger.Service(log, "cart"))
	orders := services.NewOrderService(db, inventory, coupons, logger.Service(log, "orders"))
	payments := services.NewPaymentService(db, orders, logger.Service(log, "payments"))
	shipping := services.NewShippingService(db, orders, logger.Service(log, "shipping"))
	support := services.NewSupportService(db, logger.Service(log, "support"))
	banners := services.NewBannerService(db, logger.Service(log, "banners"))
	wishlist := services.NewWishlistService(db, logger.Service(log, "wishlist"))
	analytics := services.NewAnalyticsService(db, inventory, logger.Service(log, "analytics"))
	search := services.NewSearchService(db, products, logger.Service(log, "search"))

	h := &Handlers{
		Health:    controllers.NewHealthController(db, service),
		Auth:      controllers.NewAuthController(auth, users),
		Users:     controllers.NewUserController(users),
		Products:  controllers.NewProductController(products),
		Category:  controllers.NewCategoryController(categories),
		Cart:      controllers.NewCartController(carts),
		Wishlist:  controllers.NewWishlistController(wishlist),
		Orders:    controllers.NewOrderController(orders),
		Payments:  controllers.NewPaymentController(payments),
		Coupons:   controllers.NewCouponController(coupons, carts),
		Inventory: controllers.NewInventoryController(inventory),
		Shipping:  controllers.NewShippingController(shipping),
		Support:   controllers.NewSupportController(support),
		Banners:   controllers.NewBannerController(banners),
		Analytics: controllers.NewAnalyticsController(analytics),
		Search:    controllers.NewSearchController(search),
	}
	if local, ok := images.(*services.LocalImageService); ok {
		h.Uploads = controllers.NewUploadController(local.Dir())
	}
	return h
}

// SetupRouter builds the customer API. Admin routes are mounted on the same
// engine so a single process can serve both.
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	router, err := newEngine(deps, "customer")
	if err != nil {
		return nil, err
	}
	h := NewHandlers(deps, "Storefront API")
	mw := newAuthMiddleware(deps)

	api := router.Group("/api")
	registerCommon(api, h)
	registerCustomerRoutes(api, h, mw, deps.Config)
	registerAdminRoutes(api, h, mw)
	return router, nil
}

// SetupAdminRouter builds the back-office API only
func SetupAdminRouter(deps Dependencies) (*gin.Engine, error) {
	router, err := newEngine(deps, "admin")
	if err != nil {
		return nil, err
	}
	h := NewHandlers(deps, "Storefront Admin API")
	mw := newAuthMiddleware(deps)

	api := router.Group("/api")
	registerCommon(api, h)
	registerCatalogReads(api.Group("", mw.admin...), h)
	registerAdminRoutes(api, h, mw)
	return router, nil
}

type authMiddleware struct {
	required gin.HandlerFunc
	optional gin.HandlerFunc
	admin    []gin.HandlerFunc
}

func newAuthMiddleware(deps Dependencies) authMiddleware {
	log := logger.Service(deps.Logger, "auth")
	required := middleware.EnsureValidToken(deps.Config, log)
	return authMiddleware{
		required: required,
		optional: middleware.OptionalAuth(deps.Config, log),
		admin:    []gin.HandlerFunc{required, middleware.RequireRole(models.RoleAdmin)},
	}
}

func newEngine(deps Dependencies, api string) (*gin.Engine, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, err
	}
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpLog := logger.Service(deps.Logger, "http")

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(httpLog),
		middleware.NewMetrics(registry, api).Handler(),
		middleware.Recovery(httpLog),
		middleware.ErrorHandler(httpLog),
		cors.New(corsConfig(deps.Config.CORSOrigins)),
		middleware.Tenant(deps.Config.DefaultTenant),
	)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.TenantHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-Total-Count"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func registerCommon(api *gin.RouterGroup, h *Handlers) {
	api.GET("/health", h.Health.Health)
	api.GET("/database/status", h.Health.DatabaseStatus)
	if h.Uploads != nil {
		api.GET("/uploads/:filename", h.Uploads.GetUploadedImage)
	}
}
