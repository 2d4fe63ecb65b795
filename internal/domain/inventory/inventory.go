package inventory

import (
	"context"

	"github.com/go-faster/errors"
)

// Sentinel errors for inventory operations.
var (
	// ErrInsufficientStock is returned by Reserve when the available quantity
	// is lower than the requested one. No stock is mutated in that case.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned when no stock record exists for the product.
	ErrNotFound = errors.New("inventory record not found")

	// ErrNegativeQuantity is returned by SetStock for quantities below zero.
	ErrNegativeQuantity = errors.New("stock quantity must not be negative")
)

// Ledger is the authoritative stock count per product.
//
// Reserve must be a single atomic check-and-decrement with respect to
// concurrent reservations of the same product: two customers racing for the
// last unit must never both succeed. Implementations back this with a
// conditional update (quantity >= qty) executed as one indivisible statement.
type Ledger interface {
	Available(ctx context.Context, productID string) (int, error)
	Reserve(ctx context.Context, productID string, qty int) error
	SetStock(ctx context.Context, productID string, qty int) error
}
