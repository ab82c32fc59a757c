package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuhlin/craftshop/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders
		(subtotal_cents, shipping_cents, total_cents, customer_name, customer_phone, shipping_address)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING id, created_at`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4)`

	orderColumns = `id, created_at, subtotal_cents, shipping_cents, total_cents,
		COALESCE(customer_name, ''), COALESCE(customer_phone, ''), COALESCE(shipping_address, ''), status`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderLinesSQL = `SELECT oi.product_id, oi.quantity, oi.unit_price_cents,
			p.name, COALESCE(p.image, '')
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC`

	updateOrderSQL = `UPDATE orders SET
			status = COALESCE($2, status),
			customer_name = COALESCE($3, customer_name),
			customer_phone = COALESCE($4, customer_phone),
			shipping_address = COALESCE($5, shipping_address)
		WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all its lines in a single transaction.
// The database assigns id and created_at; both are written back to o. Either
// every row commits or none do.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin order transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, insertOrderSQL,
		o.SubtotalCents, o.ShippingCents, o.TotalCents,
		o.Customer.Name, o.Customer.Phone, o.Customer.Address,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "inserting order header")
	}

	batch := &pgx.Batch{}
	for _, line := range o.Lines {
		batch.Queue(insertOrderItemSQL, o.ID, line.ProductID, line.Quantity, line.UnitPriceCents)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrapf(err, "inserting order %d lines", o.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "committing order %d", o.ID)
	}
	return nil
}

// GetByID returns the order with its lines, joined with the current product
// names and images for display. Line prices stay the captured snapshots.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := r.scanOrder(r.pool.QueryRow(ctx, getOrderByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %d", id)
	}

	rows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting order %d lines", id)
	}

	o.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Line, error) {
		var l order.Line
		err := row.Scan(&l.ProductID, &l.Quantity, &l.UnitPriceCents, &l.ProductName, &l.ProductImage)
		return l, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "collecting order %d lines", id)
	}

	return o, nil
}

// List returns order headers for the admin surface, newest first.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}

	if f.Status != "" {
		args = append(args, string(f.Status))
		sql += ` WHERE status = $1`
	}
	args = append(args, f.Limit)
	if len(args) == 1 {
		sql += ` ORDER BY created_at DESC LIMIT $1`
	} else {
		sql += ` ORDER BY created_at DESC LIMIT $2`
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		o, err := r.scanOrder(row)
		if err != nil {
			return order.Order{}, err
		}
		return *o, nil
	})
}

// Update applies an admin patch (status and/or customer corrections) and
// returns the full refreshed order.
func (r *OrderRepository) Update(ctx context.Context, id int64, patch order.UpdatePatch) (*order.Order, error) {
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		id, status, patch.Name, patch.Phone, patch.Address,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "updating order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, order.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order; order_items cascade via the foreign key.
func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return errors.Wrapf(err, "deleting order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.CreatedAt, &o.SubtotalCents, &o.ShippingCents, &o.TotalCents,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Address, &o.Status,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
