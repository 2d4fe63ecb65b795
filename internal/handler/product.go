package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
)

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Category    string `json:"category,omitempty"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		ImageURL:    p.ImageURL,
		Category:    p.Category,
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorResponse{Error: "product not found"})
			return
		}
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

// internalError logs the error and replies 500 without leaking details.
func (h *Handler) internalError(c *gin.Context, err error) {
	zctx.From(c.Request.Context()).Error("internal error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
