package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

type cartLineResponse struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

type cartResponse struct {
	Lines     []cartLineResponse `json:"lines"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}

func toCartResponse(c *cart.Cart) cartResponse {
	resp := cartResponse{Lines: make([]cartLineResponse, len(c.Lines))}
	for i, l := range c.Lines {
		resp.Lines[i] = cartLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			AddedAt:   l.AddedAt,
		}
	}
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

func (h *Handler) getCart(c *gin.Context) {
	crt, err := h.carts.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	crt, err := h.carts.Add(c.Request.Context(), ownerID(c), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, product.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

type updateCartItemRequest struct {
	Action string `json:"action" binding:"required,oneof=increase decrease"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	crt, err := h.carts.SetQuantity(c.Request.Context(), ownerID(c), c.Param("productId"), cart.Action(req.Action))
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrLineNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "cart line not found"})
		case errors.Is(err, cart.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	crt, err := h.carts.Remove(c.Request.Context(), ownerID(c), c.Param("productId"))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}

func (h *Handler) clearCart(c *gin.Context) {
	crt, err := h.carts.Clear(c.Request.Context(), ownerID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(crt))
}
