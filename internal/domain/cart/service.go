package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/product"
)

// Service implements the cart contract on top of a Repository, adding the
// validation the storage layer does not know about: products must exist
// before they can be added, and a decrease never drops a line below one.
type Service struct {
	repo     Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(repo Repository, products product.Repository) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// Get returns the owner's current cart, empty if none exists.
func (s *Service) Get(ctx context.Context, ownerID string) (*Cart, error) {
	return s.repo.Get(ctx, ownerID)
}

// Add puts qty units of a product into the cart. If the product is already
// present its quantity is incremented, so adding twice yields one line.
// Returns product.ErrNotFound when the product does not exist.
func (s *Service) Add(ctx context.Context, ownerID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "lookup product %s", productID)
	}
	if err := s.repo.AddLine(ctx, ownerID, productID, qty); err != nil {
		return nil, errors.Wrapf(err, "add line %s", productID)
	}
	return s.repo.Get(ctx, ownerID)
}

// SetQuantity adjusts an existing line by one unit. Increase adds 1; decrease
// subtracts 1 but clamps at a floor of 1 — removing a line is always an
// explicit Remove, never a side effect of decrementing.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, action Action) (*Cart, error) {
	c, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	line := c.Line(productID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	qty := line.Quantity
	switch action {
	case ActionIncrease:
		qty++
	case ActionDecrease:
		if qty > 1 {
			qty--
		}
	default:
		return nil, ErrInvalidAction
	}

	if err := s.repo.SetLineQuantity(ctx, ownerID, productID, qty); err != nil {
		return nil, errors.Wrapf(err, "set quantity for %s", productID)
	}
	return s.repo.Get(ctx, ownerID)
}

// Remove deletes a line from the cart. Removing an absent product is a no-op.
func (s *Service) Remove(ctx context.Context, ownerID, productID string) (*Cart, error) {
	if err := s.repo.RemoveLine(ctx, ownerID, productID); err != nil {
		return nil, errors.Wrapf(err, "remove line %s", productID)
	}
	return s.repo.Get(ctx, ownerID)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, ownerID string) (*Cart, error) {
	if err := s.repo.Clear(ctx, ownerID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}
	return s.repo.Get(ctx, ownerID)
}
