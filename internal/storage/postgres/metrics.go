package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yuhlin/craftshop/internal/domain/metrics"
	"github.com/yuhlin/craftshop/internal/domain/product"
)

const (
	latestPendingSQL = `SELECT id, created_at, total_cents, COALESCE(customer_name, ''), status
		FROM orders
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT 5`

	topProducts30dSQL = `SELECT p.id, p.name,
			SUM(oi.quantity)::bigint AS qty,
			SUM(oi.quantity * oi.unit_price_cents)::bigint AS rev_cents
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= now() - interval '30 days' AND o.status <> 'canceled'
		GROUP BY p.id, p.name
		ORDER BY qty DESC
		LIMIT 5`

	avgOrderValueSQL = `SELECT COALESCE(AVG(total_cents), 0)
		FROM orders
		WHERE status <> 'canceled'`

	monthlyMetricsSQL = `SELECT to_char(created_at, 'YYYY-MM') AS ym,
			COUNT(*)::bigint AS orders_count,
			COALESCE(SUM(total_cents), 0)::bigint AS revenue_cents
		FROM orders
		WHERE created_at >= now() - interval '12 months' AND status <> 'canceled'
		GROUP BY ym
		ORDER BY ym ASC`
)

var _ metrics.Repository = (*MetricsRepository)(nil)

// MetricsRepository implements the dashboard aggregations over PostgreSQL.
type MetricsRepository struct {
	pool     *pgxpool.Pool
	products *ProductRepository
}

// NewMetricsRepository returns a MetricsRepository that uses the given pool.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool, products: NewProductRepository(pool)}
}

// Summary collects the dashboard snapshot queries.
func (r *MetricsRepository) Summary(ctx context.Context) (*metrics.Summary, error) {
	pending, err := r.latestPending(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "latest pending orders")
	}

	top, err := r.topProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "top products")
	}

	latest, err := r.products.ListRecent(ctx, 5)
	if err != nil {
		return nil, errors.Wrap(err, "latest products")
	}
	if latest == nil {
		latest = []product.Product{}
	}

	// AVG over BIGINT yields NUMERIC; scanned via the registered
	// shopspring/decimal codec.
	var avg decimal.Decimal
	if err := r.pool.QueryRow(ctx, avgOrderValueSQL).Scan(&avg); err != nil {
		return nil, errors.Wrap(err, "average order value")
	}

	return &metrics.Summary{
		LatestPending:  pending,
		TopProducts30d: top,
		LatestProducts: latest,
		AvgOrderValue:  avg,
	}, nil
}

// Monthly returns per-month order counts and revenue for the last year.
func (r *MetricsRepository) Monthly(ctx context.Context) ([]metrics.MonthlyPoint, error) {
	rows, err := r.pool.Query(ctx, monthlyMetricsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "monthly metrics")
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (metrics.MonthlyPoint, error) {
		var p metrics.MonthlyPoint
		err := row.Scan(&p.Month, &p.OrdersCount, &p.RevenueCents)
		return p, err
	})
}

func (r *MetricsRepository) latestPending(ctx context.Context) ([]metrics.PendingOrder, error) {
	rows, err := r.pool.Query(ctx, latestPendingSQL)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (metrics.PendingOrder, error) {
		var p metrics.PendingOrder
		err := row.Scan(&p.ID, &p.CreatedAt, &p.TotalCents, &p.CustomerName, &p.Status)
		return p, err
	})
}

func (r *MetricsRepository) topProducts(ctx context.Context) ([]metrics.TopProduct, error) {
	rows, err := r.pool.Query(ctx, topProducts30dSQL)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (metrics.TopProduct, error) {
		var p metrics.TopProduct
		err := row.Scan(&p.ID, &p.Name, &p.Quantity, &p.RevenueCents)
		return p, err
	})
}
