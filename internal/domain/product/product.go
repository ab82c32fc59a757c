package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Prices are stored
// in minor currency units (cents) to avoid floating-point drift.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
	Category   string
	Image      string
}

// Filter narrows catalog listings. Zero values mean "no restriction".
type Filter struct {
	// Category matches the exact category label. The pseudo-category "all"
	// is treated as unset.
	Category string
	// Query is a case-insensitive substring match against the product name.
	Query string
}

// Repository defines persistence operations for the product catalog.
//
// Read methods are used by the storefront; the mutating methods back the
// admin surface and the bulk catalog importer.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	ListRecent(ctx context.Context, limit int) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)

	// Create inserts a product. When p.ID is zero a new identifier one past
	// the current maximum is assigned and written back to p.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) (*Product, error)
	Upsert(ctx context.Context, p Product) error
}
