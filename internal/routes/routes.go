package routes

import (
	"github.com/gin-gonic/gin"

	"mercado_gateway/internal/handlers"
	"mercado_gateway/internal/middleware"
)

// RegisterRoutes liga a superfície HTTP do gateway.
func RegisterRoutes(r *gin.Engine, h *handlers.CartHandler, jwtSecret []byte) {
	api := r.Group("/api")
	api.Use(
		middleware.RequestLogger(),
		middleware.APIRateLimit(),
		middleware.BearerAuth(jwtSecret),
	)

	// Carrinho
	api.GET("/cart", h.GetCart)
	api.POST("/cart/add", h.AddToCart)
	api.DELETE("/cart/items/:itemId", h.RemoveFromCart)
	api.DELETE("/cart/session", h.EndSession)
	api.GET("/cart/ws", h.CartWebSocket)
}
