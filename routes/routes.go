package routes

import (
	"github.com/gin-gonic/gin"

	"restaurant-orders-api/handlers"
	"restaurant-orders-api/middleware"
	"restaurant-orders-api/realtime"
)

// Handlers bundles everything route registration needs.
type Handlers struct {
	Auth              *handlers.AuthHandler
	Public            *handlers.PublicHandler
	Cart              *handlers.CartHandler
	Checkout          *handlers.CheckoutHandler
	Reservations      *handlers.ReservationHandler
	AdminOrders       *handlers.AdminOrdersHandler
	AdminReservations *handlers.AdminReservationsHandler
	AdminCatalog      *handlers.AdminCatalogHandler
	AuthMW            *middleware.Auth
	Hub               *realtime.Hub
}

func Setup(r *gin.Engine, h Handlers) {
	// Public storefront
	public := r.Group("/api")
	{
		public.POST("/auth/login", h.Auth.Login)

		public.GET("/categories", h.Public.ListCategories)
		public.GET("/products", h.Public.ListProducts)
		public.GET("/products/:id", h.Public.GetProduct)

		public.GET("/cart", h.Cart.Get)
		public.POST("/cart/items", h.Cart.AddItem)
		public.PUT("/cart/items/:itemId", h.Cart.UpdateQuantity)
		public.DELETE("/cart/items/:itemId", h.Cart.RemoveItem)
		public.DELETE("/cart", h.Cart.Clear)

		public.POST("/checkout", h.Checkout.Submit)
		public.GET("/orders/:code", h.Public.GetOrder)

		public.POST("/reservations", h.Reservations.Create)
		public.GET("/reservations", h.Reservations.Lookup)
		public.GET("/reservations/:code", h.Reservations.GetByCode)
	}

	// Admin console
	admin := r.Group("/api/admin")
	admin.Use(h.AuthMW.Required())
	{
		admin.POST("/auth/logout", h.Auth.Logout)

		admin.GET("/orders", h.AdminOrders.List)
		admin.GET("/orders/:code", h.AdminOrders.Get)
		admin.PUT("/orders/:code/status", h.AdminOrders.UpdateStatus)
		admin.PUT("/orders/:code/force-status", h.AdminOrders.ForceStatus)
		admin.PUT("/orders/:code/payment-status", h.AdminOrders.UpdatePaymentStatus)

		admin.GET("/reservations", h.AdminReservations.List)
		admin.GET("/reservations/:code", h.AdminReservations.Get)
		admin.PUT("/reservations/:code/status", h.AdminReservations.UpdateStatus)

		admin.POST("/categories", h.AdminCatalog.CreateCategory)
		admin.PUT("/categories/:id", h.AdminCatalog.UpdateCategory)
		admin.DELETE("/categories/:id", h.AdminCatalog.DeleteCategory)
		admin.POST("/categories/:id/subcategories", h.AdminCatalog.CreateSubcategory)

		admin.GET("/products", h.AdminCatalog.ListProducts)
		admin.POST("/products", h.AdminCatalog.CreateProduct)
		admin.PUT("/products/:id", h.AdminCatalog.UpdateProduct)
		admin.DELETE("/products/:id", h.AdminCatalog.DeleteProduct)
		admin.GET("/products/:id/can-delete", h.AdminCatalog.CanDeleteProduct)

		// live status events for open consoles
		admin.GET("/ws", gin.WrapF(h.Hub.HandleWebSocket))
	}
}
