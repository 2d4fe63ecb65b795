package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/order"
)

type orderLineResponse struct {
	ProductID   *string `json:"productId"`
	Quantity    int     `json:"quantity"`
	UnitPrice   string  `json:"unitPrice"`
	Subtotal    string  `json:"subtotal"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	ShippingAddress string              `json:"shippingAddress"`
	Phone           string              `json:"phone,omitempty"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	Status          string              `json:"status"`
	Total           string              `json:"total"`
	Lines           []orderLineResponse `json:"lines"`
	CreatedAt       time.Time           `json:"createdAt"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	lines := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineResponse{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Subtotal:    l.Subtotal.StringFixed(2),
			Name:        l.Product.Name,
			Description: l.Product.Description,
			ImageURL:    l.Product.ImageURL,
		}
	}
	return orderResponse{
		ID:              o.ID,
		Number:          o.Number,
		ShippingAddress: o.ShippingAddress,
		Phone:           o.Phone,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   string(o.PaymentStatus),
		Status:          string(o.Status),
		Total:           o.Total.StringFixed(2),
		Lines:           lines,
		CreatedAt:       o.CreatedAt,
		DeliveredAt:     o.DeliveredAt,
	}
}

type checkoutRequest struct {
	Street        string `json:"street"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Phone         string `json:"phone"`
	PaymentMethod string `json:"paymentMethod"`
}

// checkout converts the owner's cart into an order. Validation failures
// (empty cart, stock shortfall) come back as 409 so the client can send the
// user back to the cart view with the message.
func (h *Handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	o, err := h.orders.Checkout(c.Request.Context(), ownerID(c), order.ShippingInput{
		Street:        req.Street,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			c.JSON(http.StatusConflict, errorResponse{Error: "cart is empty"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, errorResponse{Error: stockErr.Error()})
		default:
			h.internalError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) myOrders(c *gin.Context) {
	list, err := h.orders.MyOrders(c.Request.Context(), ownerID(c))
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

func (h *Handler) getOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, errorResponse{Error: "order not found"})
		case errors.Is(err, order.ErrForbidden):
			// Same body shape as any denial; no hint whether the order exists.
			c.JSON(http.StatusForbidden, errorResponse{Error: "access denied"})
		default:
			h.internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}
