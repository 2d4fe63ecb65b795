package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/customer"
)

const getCustomerSQL = `SELECT id, email, street, city, postal_code, phone
	FROM customers WHERE id = $1`

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository returns a CustomerRepository using the given store.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

// GetByID returns the stored profile for a customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Profile, error) {
	var p customer.Profile
	err := r.store.db(ctx).QueryRow(ctx, getCustomerSQL, id).Scan(
		&p.ID, &p.Email, &p.Street, &p.City, &p.PostalCode, &p.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get customer %s", id)
	}
	return &p, nil
}
