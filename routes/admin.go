package routes

import (
	"github.com/gin-gonic/gin"
)

func registerAdminRoutes(api *gin.RouterGroup, h *Handlers, mw authMiddleware) {
	admin := api.Group("", mw.admin...)

	products := admin.Group("/products")
	{
		products.POST("", h.Products.Create)
		products.PUT("/:id", h.Products.Update)
		products.DELETE("/:id", h.Products.Delete)
		products.POST("/:id/variants", h.Products.AddVariant)
		products.PUT("/:id/variants/:vid", h.Products.UpdateVariant)
		products.DELETE("/:id/variants/:vid", h.Products.DeleteVariant)
		products.POST("/:id/variants/:vid/images", h.Products.UploadImage)
	}

	categories := admin.Group("/categories")
	{
		categories.POST("", h.Category.Create)
		categories.PUT("/:id", h.Category.Update)
		categories.DELETE("/:id", h.Category.Delete)
	}

	coupons := admin.Group("/coupons")
	{
		coupons.POST("", h.Coupons.Create)
		coupons.POST("/bulk", h.Coupons.BulkCreate)
		coupons.GET("", h.Coupons.List)
		coupons.GET("/:id", h.Coupons.Get)
		coupons.PUT("/:id", h.Coupons.Update)
		coupons.DELETE("/:id", h.Coupons.Delete)
		coupons.PATCH("/:id/toggle", h.Coupons.Toggle)
	}

	inventory := admin.Group("/inventory")
	{
		inventory.GET("", h.Inventory.List)
		inventory.GET("/alerts", h.Inventory.Alerts)
		inventory.GET("/stats", h.Inventory.Stats)
		inventory.GET("/products/:id", h.Inventory.Product)
		inventory.PUT("/products/:id/variants/:vid/stock", h.Inventory.UpdateStock)
		inventory.POST("/bulk-update", h.Inventory.BulkUpdate)
	}

	analytics := admin.Group("/analytics")
	{
		analytics.GET("/sales", h.Analytics.Sales)
		analytics.GET("/top-products", h.Analytics.TopProducts)
	}

	// Back-office resources
	backOffice := admin.Group("/admin")
	{
		backOffice.GET("/dashboard", h.Analytics.Dashboard)

		backOffice.GET("/users", h.Users.List)
		backOffice.GET("/users/:id", h.Users.Get)
		backOffice.PATCH("/users/:id/role", h.Users.UpdateRole)

		backOffice.GET("/orders", h.Orders.List)
		backOffice.GET("/orders/:id", h.Orders.Get)
		backOffice.PATCH("/orders/:id/status", h.Orders.UpdateStatus)
		backOffice.GET("/orders/:id/payments", h.Payments.AdminListByOrder)
		backOffice.POST("/payments/:id/refund", h.Payments.Refund)

		backOffice.GET("/shipping/providers", h.Shipping.List)
		backOffice.GET("/shipping/providers/:id", h.Shipping.Get)
		backOffice.POST("/shipping/providers", h.Shipping.Create)
		backOffice.PUT("/shipping/providers/:id", h.Shipping.Update)
		backOffice.DELETE("/shipping/providers/:id", h.Shipping.Delete)

		backOffice.GET("/support/tickets", h.Support.List)
		backOffice.GET("/support/tickets/:ticketId", h.Support.Get)
		backOffice.PATCH("/support/tickets/:ticketId/status", h.Support.UpdateStatus)
		backOffice.PATCH("/support/tickets/:ticketId/assign", h.Support.Assign)
		backOffice.POST("/support/tickets/:ticketId/messages", h.Support.Reply)

		backOffice.GET("/banners", h.Banners.List)
		backOffice.GET("/banners/:id", h.Banners.Get)
		backOffice.POST("/banners", h.Banners.Create)
		backOffice.PUT("/banners/:id", h.Banners.Update)
		backOffice.DELETE("/banners/:id", h.Banners.Delete)
	}
}
