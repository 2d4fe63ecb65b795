package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// PaymentStatus tracks whether an order has been paid for.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Status tracks the fulfillment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known fulfillment status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Sentinel errors for order operations.
var (
	// ErrEmptyCart means checkout was attempted with no purchasable lines.
	// Recoverable: the caller redirects to the cart view.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrForbidden means the owner does not own the requested order.
	ErrForbidden = errors.New("order access denied")

	// ErrNotFound means the order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidStatus means an unknown fulfillment status was requested.
	ErrInvalidStatus = errors.New("invalid order status")
)

// InsufficientStockError aborts a checkout when a line's quantity exceeds the
// live availability. The whole checkout rolls back; nothing is committed.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Snapshot is the frozen copy of product details captured at checkout time.
// It keeps order history readable after the product itself is deleted.
type Snapshot struct {
	Name        string
	Description string
	ImageURL    string
}

// Line is an immutable record of one purchased item. ProductID is nil once
// the referenced product has been deleted; the Snapshot stays populated.
type Line struct {
	ID        string
	OrderID   string
	ProductID *string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Product   Snapshot
}

// Order is the immutable result of a successful checkout. Monetary fields are
// fixed at creation time and never recomputed from live product data.
type Order struct {
	ID              string
	OwnerID         string
	Number          string
	ShippingAddress string
	Phone           string
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	Status          Status
	Total           decimal.Decimal
	Lines           []Line
	CreatedAt       time.Time
	DeliveredAt     *time.Time
}

// Repository defines persistence operations for orders.
//
// UpdateStatus stamps delivered_at on the first transition into
// StatusDelivered and never overwrites it afterwards.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
