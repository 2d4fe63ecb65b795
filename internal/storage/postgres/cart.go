package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/cart"
)

const (
	getCartLinesSQL = `SELECT product_id, quantity, added_at, updated_at
		FROM cart_items WHERE owner_id = $1 ORDER BY added_at, product_id`

	addCartLineSQL = `INSERT INTO cart_items (owner_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`

	setCartLineQuantitySQL = `UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE owner_id = $1 AND product_id = $2`

	// Touch the surviving lines when a delete actually happened, so the
	// cart's derived last-modified timestamp never moves backwards after
	// removing the most recently changed line.
	removeCartLineSQL = `WITH removed AS (
			DELETE FROM cart_items WHERE owner_id = $1 AND product_id = $2
			RETURNING product_id
		)
		UPDATE cart_items SET updated_at = now()
		WHERE owner_id = $1 AND product_id <> $2
		AND EXISTS (SELECT 1 FROM removed)`

	clearCartSQL = `DELETE FROM cart_items WHERE owner_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Lines are
// keyed (owner_id, product_id), so a repeated add becomes an upsert that
// increments the existing quantity.
type CartRepository struct {
	store *Store
}

// NewCartRepository returns a CartRepository using the given store.
func NewCartRepository(store *Store) *CartRepository {
	return &CartRepository{store: store}
}

// Get returns the owner's cart, empty (never nil, never an error) when the
// owner has no lines. The cart's UpdatedAt is the newest line timestamp.
func (r *CartRepository) Get(ctx context.Context, ownerID string) (*cart.Cart, error) {
	rows, err := r.store.db(ctx).Query(ctx, getCartLinesSQL, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	defer rows.Close()

	c := &cart.Cart{OwnerID: ownerID}
	for rows.Next() {
		var (
			l       cart.Line
			updated time.Time
		)
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.AddedAt, &updated); err != nil {
			return nil, errors.Wrap(err, "scan cart line")
		}
		if updated.After(c.UpdatedAt) {
			c.UpdatedAt = updated
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	return c, nil
}

// AddLine inserts a new line or increments an existing one.
func (r *CartRepository) AddLine(ctx context.Context, ownerID, productID string, qty int) error {
	if _, err := r.store.db(ctx).Exec(ctx, addCartLineSQL, ownerID, productID, qty); err != nil {
		return errors.Wrapf(err, "add cart line %s", productID)
	}
	return nil
}

// SetLineQuantity overwrites the quantity of an existing line.
func (r *CartRepository) SetLineQuantity(ctx context.Context, ownerID, productID string, qty int) error {
	tag, err := r.store.db(ctx).Exec(ctx, setCartLineQuantitySQL, ownerID, productID, qty)
	if err != nil {
		return errors.Wrapf(err, "set cart line quantity %s", productID)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrLineNotFound
	}
	return nil
}

// RemoveLine deletes a line and refreshes the remaining lines' updated_at;
// removing an absent line is a no-op.
func (r *CartRepository) RemoveLine(ctx context.Context, ownerID, productID string) error {
	if _, err := r.store.db(ctx).Exec(ctx, removeCartLineSQL, ownerID, productID); err != nil {
		return errors.Wrapf(err, "remove cart line %s", productID)
	}
	return nil
}

// Clear deletes all of the owner's lines.
func (r *CartRepository) Clear(ctx context.Context, ownerID string) error {
	if _, err := r.store.db(ctx).Exec(ctx, clearCartSQL, ownerID); err != nil {
		return errors.Wrap(err, "clear cart")
	}
	return nil
}
