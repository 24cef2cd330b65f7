// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/interfaces/http/handlers"
	"github.com/freshbasket/storefront/internal/interfaces/http/middleware"
	"github.com/freshbasket/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

// Handlers groups every handler the API mounts
type Handlers struct {
	Auth     *handlers.AuthHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
	Admin    *handlers.AdminHandler
}

// SetupRoutes mounts all API routes under rg
func SetupRoutes(rg *gin.RouterGroup, h Handlers, tokens *auth.JWTManager) {
	authenticated := middleware.AuthMiddleware(tokens)

	SetupAuthRoutes(rg, h.Auth, authenticated)
	SetupCartRoutes(rg, h.Cart, h.Checkout, authenticated)
	SetupOrderRoutes(rg, h.Order, h.Checkout, authenticated)
	SetupAdminRoutes(rg, h.Admin, authenticated)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, authenticated gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.GET("/me", authenticated, h.Me)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler, checkout *handlers.CheckoutHandler, authenticated gin.HandlerFunc) {
	cart := rg.Group("/cart")
	cart.Use(authenticated)
	{
		cart.GET("", h.GetCart)
		cart.GET("/quote", checkout.Quote)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:productId", h.UpdateItem)
		cart.DELETE("/items/:productId", h.RemoveItem)
	}
}

// SetupOrderRoutes sets up the customer's order routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, checkout *handlers.CheckoutHandler, authenticated gin.HandlerFunc) {
	orders := rg.Group("/orders")
	orders.Use(authenticated)
	{
		orders.POST("/checkout", checkout.Checkout)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/tip", h.AddTip)
		orders.GET("/:id/invoice", h.DownloadInvoice)
	}
}

// SetupAdminRoutes sets up staff routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *handlers.AdminHandler, authenticated gin.HandlerFunc) {
	admin := rg.Group("/admin")
	admin.Use(authenticated, middleware.RequireRoles(user.RoleAdmin, user.RoleProductManager))
	{
		admin.GET("/orders", h.ListOrders)
		admin.GET("/orders/:id", h.GetOrder)
		admin.PUT("/orders/:id/status", h.UpdateStatus)
		admin.GET("/stats", h.Stats)
		admin.GET("/leaderboard", h.Leaderboard)
		admin.GET("/top-products", h.TopProducts)
	}
}
