package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/storefront-api/config"
	"github.com/kendall-kelly/storefront-api/middleware"
)

// authBurst is how many auth requests a client may make back to back
const authBurst = 10

func registerCustomerRoutes(api *gin.RouterGroup, h *Handlers, mw authMiddleware, cfg *config.Config) {
	// Auth routes
	auth := api.Group("/auth", middleware.NewRateLimiter(cfg.AuthRateLimit, authBurst).Handler())
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", mw.required, h.Auth.Me)
		auth.PUT("/password", mw.required, h.Auth.ChangePassword)
	}

	// User routes
	users := api.Group("/users", mw.required)
	{
		users.GET("/profile", h.Users.GetMyProfile)
		users.PUT("/profile", h.Users.UpdateMyProfile)
	}

	// Catalog routes are public; a token only widens what admins can see
	registerCatalogReads(api.Group("", mw.optional), h)

	cart := api.Group("/cart", mw.required)
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:itemId", h.Cart.UpdateItem)
		cart.DELETE("/items/:itemId", h.Cart.RemoveItem)
		cart.POST("/coupon", h.Cart.ApplyCoupon)
		cart.DELETE("/coupon", h.Cart.RemoveCoupon)
	}

	wishlist := api.Group("/wishlist", mw.required)
	{
		wishlist.GET("", h.Wishlist.List)
		wishlist.POST("", h.Wishlist.Add)
		wishlist.DELETE("/:productId", h.Wishlist.Remove)
	}

	orders := api.Group("/orders", mw.required)
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.ListMyOrders)
		orders.GET("/:id", h.Orders.GetMyOrder)
		orders.POST("/:id/cancel", h.Orders.CancelMyOrder)
	}

	payments := api.Group("/payments", mw.required)
	{
		payments.POST("", h.Payments.Create)
		payments.POST("/:id/verify", h.Payments.Verify)
		payments.GET("/order/:orderId", h.Payments.ListByOrder)
	}

	coupons := api.Group("/coupons")
	{
		coupons.GET("/active", h.Coupons.Active)
		coupons.GET("/validate/:code", mw.optional, h.Coupons.Validate)
	}

	shipping := api.Group("/shipping")
	{
		shipping.GET("/providers", h.Shipping.Providers)
		shipping.GET("/rates", h.Shipping.Rates)
		shipping.GET("/track/:orderId", mw.required, h.Shipping.Track)
	}

	tickets := api.Group("/support/tickets", mw.required)
	{
		tickets.POST("", h.Support.CreateTicket)
		tickets.GET("", h.Support.ListMyTickets)
		tickets.GET("/:ticketId", h.Support.GetMyTicket)
		tickets.POST("/:ticketId/close", h.Support.CloseMyTicket)
		tickets.POST("/:ticketId/reopen", h.Support.ReopenMyTicket)
		tickets.GET("/:ticketId/messages", h.Support.ListMessages)
		tickets.POST("/:ticketId/messages", h.Support.SendMessage)
	}

	api.GET("/banners", h.Banners.Active)

	search := api.Group("/search")
	{
		search.GET("", h.Search.Search)
		search.GET("/suggestions", h.Search.Suggest)
	}
}

// registerCatalogReads mounts product and category lookups on rg
func registerCatalogReads(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/slug/:slug", h.Products.GetBySlug)
		products.GET("/:id", h.Products.Get)
		products.GET("/:id/related", h.Products.Related)
	}

	categories := rg.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/tree", h.Category.Tree)
		categories.GET("/slug/:slug", h.Category.GetBySlug)
		categories.GET("/:id", h.Category.Get)
		categories.GET("/:id/descendants", h.Category.Descendants)
	}
}
