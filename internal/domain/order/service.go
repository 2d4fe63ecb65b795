package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/customer"
	"github.com/xenking/storefront/internal/domain/inventory"
	"github.com/xenking/storefront/internal/domain/product"
)

// Atomic is the transaction boundary the checkout runs inside. Every write
// performed by fn either commits as one unit or is rolled back entirely.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ShippingInput carries the optional checkout fields from the request. Empty
// fields fall back to the owner's stored profile.
type ShippingInput struct {
	Street        string
	City          string
	PostalCode    string
	Phone         string
	PaymentMethod string
}

// ServiceConfig holds non-dependency configuration for the order Service.
type ServiceConfig struct {
	// DefaultPaymentMethod is used when the request does not name one,
	// e.g. "cash" for cash-on-delivery.
	DefaultPaymentMethod string
}

// Service converts carts into orders and answers order queries. It is the
// only component that mutates the inventory ledger outside admin stock edits.
type Service struct {
	carts     cart.Repository
	products  product.Repository
	customers customer.Repository
	ledger    inventory.Ledger
	orders    Repository
	tx        Atomic
	numbers   *NumberGenerator

	defaultPayment string
	now            func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	cfg ServiceConfig,
	carts cart.Repository,
	products product.Repository,
	customers customer.Repository,
	ledger inventory.Ledger,
	orders Repository,
	tx Atomic,
) *Service {
	method := cfg.DefaultPaymentMethod
	if method == "" {
		method = "cash"
	}
	return &Service{
		carts:          carts,
		products:       products,
		customers:      customers,
		ledger:         ledger,
		orders:         orders,
		tx:             tx,
		numbers:        NewNumberGenerator(),
		defaultPayment: method,
		now:            time.Now,
	}
}

// Checkout converts the owner's cart into an immutable order.
//
// Inside a single transaction it prices every line from the live product,
// reserves stock per line, snapshots product details onto the lines, inserts
// the order, and clears the cart. Lines whose product vanished since being
// added are dropped silently. Any failure — most importantly a stock
// shortfall on any line — rolls back every mutation of the attempt: the
// caller observes either a complete order or no change at all.
func (s *Service) Checkout(ctx context.Context, ownerID string, in ShippingInput) (*Order, error) {
	shipping, phone, err := s.resolveShipping(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = s.defaultPayment
	}

	var created *Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.Get(ctx, ownerID)
		if err != nil {
			return errors.Wrap(err, "load cart")
		}
		if len(c.Lines) == 0 {
			return ErrEmptyCart
		}

		orderID := uuid.New().String()
		lines := make([]Line, 0, len(c.Lines))
		total := decimal.Zero

		for _, cl := range c.Lines {
			p, err := s.products.GetByID(ctx, cl.ProductID)
			if err != nil {
				// The product was deleted between cart-add and checkout.
				// Drop the line and keep going.
				if errors.Is(err, product.ErrNotFound) {
					continue
				}
				return errors.Wrapf(err, "get product %s", cl.ProductID)
			}

			// Checkout-time pricing: the unit price is read from the live
			// product here, not from when the line was added.
			subtotal := p.Price.Mul(decimal.NewFromInt(int64(cl.Quantity)))

			if err := s.ledger.Reserve(ctx, p.ID, cl.Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					avail, aerr := s.ledger.Available(ctx, p.ID)
					if aerr != nil {
						avail = 0
					}
					return &InsufficientStockError{
						ProductID:   p.ID,
						ProductName: p.Name,
						Requested:   cl.Quantity,
						Available:   avail,
					}
				}
				return errors.Wrapf(err, "reserve %d of %s", cl.Quantity, p.ID)
			}

			pid := p.ID
			lines = append(lines, Line{
				ID:        uuid.New().String(),
				OrderID:   orderID,
				ProductID: &pid,
				Quantity:  cl.Quantity,
				UnitPrice: p.Price,
				Subtotal:  subtotal,
				Product: Snapshot{
					Name:        p.Name,
					Description: p.Description,
					ImageURL:    p.ImageURL,
				},
			})
			total = total.Add(subtotal)
		}

		// Every product in the cart vanished: nothing left to purchase.
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		paymentStatus, status := deriveStatus(method)
		o := &Order{
			ID:              orderID,
			OwnerID:         ownerID,
			Number:          s.numbers.Next(),
			ShippingAddress: shipping,
			Phone:           phone,
			PaymentMethod:   method,
			PaymentStatus:   paymentStatus,
			Status:          status,
			Total:           total.Round(2),
			Lines:           lines,
			CreatedAt:       s.now().UTC(),
		}

		if err := s.orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}
		if err := s.carts.Clear(ctx, ownerID); err != nil {
			return errors.Wrap(err, "clear cart")
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// resolveShipping builds the shipping address and phone, falling back
// per-field to the stored profile when the request leaves a field empty.
// The combined address is street, city, postal code in that fixed order.
func (s *Service) resolveShipping(ctx context.Context, ownerID string, in ShippingInput) (address, phone string, err error) {
	profile := &customer.Profile{}
	p, err := s.customers.GetByID(ctx, ownerID)
	switch {
	case err == nil:
		profile = p
	case errors.Is(err, customer.ErrNotFound):
		// No stored profile; request fields are all we have.
	default:
		return "", "", errors.Wrap(err, "load profile")
	}

	street := fallback(in.Street, profile.Street)
	city := fallback(in.City, profile.City)
	postal := fallback(in.PostalCode, profile.PostalCode)
	phone = fallback(in.Phone, profile.Phone)

	parts := make([]string, 0, 3)
	for _, p := range []string{street, city, postal} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", "), phone, nil
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// deriveStatus maps the payment method onto the initial statuses: methods
// presumed pre-authorized (card) start paid and processing, everything else
// starts pending on both counts.
func deriveStatus(method string) (PaymentStatus, Status) {
	if method == "card" {
		return PaymentPaid, StatusProcessing
	}
	return PaymentPending, StatusPending
}

// MyOrders returns the owner's orders, newest first.
func (s *Service) MyOrders(ctx context.Context, ownerID string) ([]Order, error) {
	return s.orders.ListByOwner(ctx, ownerID)
}

// Get returns a single order after verifying ownership. A mismatched owner
// gets ErrForbidden; the response must not reveal whether the order exists.
func (s *Service) Get(ctx context.Context, ownerID, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return o, nil
}

// AdminGet returns any order without an ownership check.
func (s *Service) AdminGet(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// AdminList returns all orders, newest first.
func (s *Service) AdminList(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus transitions an order's fulfillment status. The first move into
// delivered stamps the delivery timestamp; later updates never touch it.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if !ValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.orders.UpdateStatus(ctx, orderID, status)
}
