// Package handler exposes the storefront over HTTP: catalog reads, cart
// mutations, checkout, order queries and the admin surface.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/inventory"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// errorResponse is the uniform error body returned by every endpoint.
type errorResponse struct {
	Error string `json:"error"`
}

// Handler holds the domain dependencies behind the HTTP surface.
type Handler struct {
	products product.Repository
	carts    *cart.Service
	orders   *order.Service
	ledger   inventory.Ledger
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	carts *cart.Service,
	orders *order.Service,
	ledger inventory.Ledger,
) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		orders:   orders,
		ledger:   ledger,
	}
}

// Router builds the gin engine with all storefront routes. Customer routes
// require the owner identity header; admin routes require a valid API key.
func Router(h *Handler, apikeys auth.Repository, pepper []byte) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)

		owned := api.Group("", OwnerRequired())
		{
			owned.GET("/cart", h.getCart)
			owned.POST("/cart/items", h.addCartItem)
			owned.POST("/cart/items/:productId", h.updateCartItem)
			owned.DELETE("/cart/items/:productId", h.removeCartItem)
			owned.DELETE("/cart", h.clearCart)

			owned.POST("/checkout", h.checkout)
			owned.GET("/orders", h.myOrders)
			owned.GET("/orders/:id", h.getOrder)
		}

		admin := api.Group("/admin", APIKeyRequired(apikeys, pepper))
		{
			admin.GET("/orders", h.adminListOrders)
			admin.GET("/orders/:id", h.adminGetOrder)
			admin.PUT("/orders/:id/status", h.adminUpdateOrderStatus)
			admin.PUT("/inventory/:productId", h.adminSetStock)
		}
	}

	return r
}
