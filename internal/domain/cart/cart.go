package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart operations.
var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrInvalidAction   = errors.New("action must be increase or decrease")
)

// Action names a quantity adjustment on an existing cart line.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
)

// Line is one product selection inside a cart. A product appears in at most
// one line; repeated adds increment the quantity instead.
type Line struct {
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// Cart is a customer's pending, mutable selection of products. The zero
// UpdatedAt means the cart has never been touched.
type Cart struct {
	OwnerID   string
	Lines     []Line
	UpdatedAt time.Time
}

// Line returns the line holding the given product, or nil.
func (c *Cart) Line(productID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// TotalQuantity is the sum of all line quantities.
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Repository defines persistence operations for carts. Get returns an empty
// cart (never an error) when the owner has no lines. AddLine increments the
// quantity when the product is already present. Every mutation refreshes the
// cart's last-modified timestamp.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*Cart, error)
	AddLine(ctx context.Context, ownerID, productID string, qty int) error
	SetLineQuantity(ctx context.Context, ownerID, productID string, qty int) error
	RemoveLine(ctx context.Context, ownerID, productID string) error
	Clear(ctx context.Context, ownerID string) error
}
