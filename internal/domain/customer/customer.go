package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no profile exists for the given customer.
var ErrNotFound = errors.New("customer not found")

// Profile holds the stored contact details of a customer. Checkout falls back
// to these fields when the request omits shipping information.
type Profile struct {
	ID         string
	Email      string
	Street     string
	City       string
	PostalCode string
	Phone      string
}

// Repository defines read operations for customer profiles.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
}
