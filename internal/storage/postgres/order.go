package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, owner_id, number, shipping_address, phone, payment_method,
		 payment_status, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	createOrderLineSQL = `INSERT INTO order_lines
		(id, order_id, line_no, product_id, quantity, unit_price, subtotal,
		 product_name, product_description, product_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getOrderSQL = `SELECT id, owner_id, number, shipping_address, phone,
		payment_method, payment_status, status, total, created_at, delivered_at
		FROM orders WHERE id = $1`

	listOrdersByOwnerSQL = `SELECT id, owner_id, number, shipping_address, phone,
		payment_method, payment_status, status, total, created_at, delivered_at
		FROM orders WHERE owner_id = $1 ORDER BY created_at DESC, id`

	listOrdersSQL = `SELECT id, owner_id, number, shipping_address, phone,
		payment_method, payment_status, status, total, created_at, delivered_at
		FROM orders ORDER BY created_at DESC, id`

	getOrderLinesSQL = `SELECT id, order_id, product_id, quantity, unit_price,
		subtotal, product_name, product_description, product_image
		FROM order_lines WHERE order_id = ANY($1) ORDER BY order_id, line_no`

	// delivered_at is stamped once, on the first transition to delivered, and
	// never overwritten afterwards.
	updateOrderStatusSQL = `UPDATE orders SET status = $2,
		delivered_at = CASE
			WHEN $2 = 'delivered' AND delivered_at IS NULL THEN now()
			ELSE delivered_at
		END
		WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	store *Store
}

// NewOrderRepository returns an OrderRepository using the given store.
func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

// Create persists the order and its lines. Callers wrap this in WithinTx
// together with the inventory reservations and the cart clear.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	q := r.store.db(ctx)

	_, err := q.Exec(ctx, createOrderSQL,
		o.ID, o.OwnerID, o.Number, o.ShippingAddress, o.Phone,
		o.PaymentMethod, string(o.PaymentStatus), string(o.Status),
		o.Total, o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %s", o.ID)
	}

	for i, l := range o.Lines {
		_, err := q.Exec(ctx, createOrderLineSQL,
			l.ID, o.ID, i, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal,
			l.Product.Name, l.Product.Description, l.Product.ImageURL,
		)
		if err != nil {
			return errors.Wrapf(err, "create order line %s", l.ID)
		}
	}
	return nil
}

// GetByID returns a single order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.store.db(ctx).Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %s", id)
	}

	if err := r.attachLines(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByOwner returns the owner's orders, newest first, with lines attached.
func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	rows, err := r.store.db(ctx).Query(ctx, listOrdersByOwnerSQL, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders by owner")
	}
	return r.collectWithLines(ctx, rows)
}

// List returns all orders, newest first, with lines attached.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.store.db(ctx).Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return r.collectWithLines(ctx, rows)
}

// UpdateStatus transitions the fulfillment status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.store.db(ctx).Exec(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return errors.Wrapf(err, "update status of order %s", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) collectWithLines(ctx context.Context, rows pgx.Rows) ([]order.Order, error) {
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, errors.Wrap(err, "scan orders")
	}

	refs := make([]*order.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachLines(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the lines for every given order in a single query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.store.db(ctx).Query(ctx, getOrderLinesSQL, ids)
	if err != nil {
		return errors.Wrap(err, "get order lines")
	}

	lines, err := pgx.CollectRows(rows, scanOrderLine)
	if err != nil {
		return errors.Wrap(err, "scan order lines")
	}
	for _, l := range lines {
		o := byID[l.OrderID]
		o.Lines = append(o.Lines, l)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o               order.Order
		payment, status string
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.Number, &o.ShippingAddress, &o.Phone,
		&o.PaymentMethod, &payment, &status, &o.Total, &o.CreatedAt, &o.DeliveredAt,
	)
	o.PaymentStatus = order.PaymentStatus(payment)
	o.Status = order.Status(status)
	return o, err
}

func scanOrderLine(row pgx.CollectableRow) (order.Line, error) {
	var l order.Line
	err := row.Scan(
		&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal,
		&l.Product.Name, &l.Product.Description, &l.Product.ImageURL,
	)
	return l, err
}
