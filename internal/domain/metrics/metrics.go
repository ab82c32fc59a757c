// Package metrics defines the read models behind the admin dashboard.
package metrics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yuhlin/craftshop/internal/domain/product"
)

// PendingOrder is a dashboard row for a recently placed, still-pending order.
type PendingOrder struct {
	ID           int64
	CreatedAt    time.Time
	TotalCents   int64
	CustomerName string
	Status       string
}

// TopProduct aggregates sales for one product over the reporting window.
type TopProduct struct {
	ID           int64
	Name         string
	Quantity     int64
	RevenueCents int64
}

// Summary is the admin dashboard snapshot: newest pending orders, best
// sellers over the last 30 days, newest catalog entries, and the average
// order value across all non-cancelled orders.
type Summary struct {
	LatestPending  []PendingOrder
	TopProducts30d []TopProduct
	LatestProducts []product.Product
	AvgOrderValue  decimal.Decimal
}

// MonthlyPoint is one month of order volume and revenue.
type MonthlyPoint struct {
	Month        string
	OrdersCount  int64
	RevenueCents int64
}

// Repository provides the dashboard aggregation queries. Cancelled orders
// are excluded from every revenue figure.
type Repository interface {
	Summary(ctx context.Context) (*Summary, error)
	Monthly(ctx context.Context) ([]MonthlyPoint, error)
}
