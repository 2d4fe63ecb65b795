package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/inventory"
	"github.com/xenking/storefront/internal/domain/order"
)

func (h *Handler) adminListOrders(c *gin.Context) {
	list, err := h.orders.AdminList(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]orderResponse, len(list))
	for i := range list {
		resp[i] = toOrderResponse(&list[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) adminGetOrder(c *gin.Context) {
	o, err := h.orders.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "order not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), order.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "order not found"})
		default:
			h.internalError(c, err)
		}
		return
	}

	o, err := h.orders.AdminGet(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type setStockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

func (h *Handler) adminSetStock(c *gin.Context) {
	var req setStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	productID := c.Param("productId")
	if err := h.ledger.SetStock(c.Request.Context(), productID, *req.Quantity); err != nil {
		if errors.Is(err, inventory.ErrNegativeQuantity) {
			c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
		h.internalError(c, err)
		return
	}

	qty, err := h.ledger.Available(c.Request.Context(), productID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "quantity": qty})
}
