package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/inventory"
)

const (
	availableSQL = `SELECT quantity FROM inventory WHERE product_id = $1`

	// The WHERE clause makes the check-and-decrement a single indivisible
	// statement: concurrent reservations of the same product serialize on the
	// row, and the one that would drive the count negative updates nothing.
	reserveSQL = `UPDATE inventory SET quantity = quantity - $2
		WHERE product_id = $1 AND quantity >= $2`

	setStockSQL = `INSERT INTO inventory (product_id, quantity) VALUES ($1, $2)
		ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity`
)

var _ inventory.Ledger = (*InventoryRepository)(nil)

// InventoryRepository implements inventory.Ledger backed by PostgreSQL.
type InventoryRepository struct {
	store *Store
}

// NewInventoryRepository returns an InventoryRepository using the given store.
func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

// Available returns the current stock count for a product.
func (r *InventoryRepository) Available(ctx context.Context, productID string) (int, error) {
	var qty int
	err := r.store.db(ctx).QueryRow(ctx, availableSQL, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, inventory.ErrNotFound
		}
		return 0, errors.Wrapf(err, "get stock for %s", productID)
	}
	return qty, nil
}

// Reserve decrements stock by qty if and only if at least qty units remain.
func (r *InventoryRepository) Reserve(ctx context.Context, productID string, qty int) error {
	tag, err := r.store.db(ctx).Exec(ctx, reserveSQL, productID, qty)
	if err != nil {
		return errors.Wrapf(err, "reserve stock for %s", productID)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrInsufficientStock
	}
	return nil
}

// SetStock overwrites the stock count, creating the record if needed.
func (r *InventoryRepository) SetStock(ctx context.Context, productID string, qty int) error {
	if qty < 0 {
		return inventory.ErrNegativeQuantity
	}
	if _, err := r.store.db(ctx).Exec(ctx, setStockSQL, productID, qty); err != nil {
		return errors.Wrapf(err, "set stock for %s", productID)
	}
	return nil
}
