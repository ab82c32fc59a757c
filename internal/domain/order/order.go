package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Status enumerates the order lifecycle states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusShipped  Status = "shipped"
	StatusCanceled Status = "canceled"
)

// Valid reports whether s is one of the known order states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCanceled:
		return true
	}
	return false
}

// Customer is the contact snapshot copied onto an order at creation time.
// It is not a live reference to any user record; all fields are optional and
// stored as given.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Line is a single order line. UnitPriceCents is the catalog price captured
// at order time and is never re-read from the live catalog afterwards, so
// historical orders keep their value when catalog prices change.
type Line struct {
	ProductID      int64
	Quantity       int32
	UnitPriceCents int64

	// ProductName and ProductImage are joined in on reads for display; they
	// are not part of the persisted line.
	ProductName  string
	ProductImage string
}

// Order is a committed customer order. ID and CreatedAt are assigned by the
// persistence layer at commit; the order number is always derived from them
// via Number and never stored independently.
type Order struct {
	ID            int64
	CreatedAt     time.Time
	SubtotalCents int64
	ShippingCents int64
	TotalCents    int64
	Customer      Customer
	Status        Status
	Lines         []Line
}

// Number returns the order's derived human-facing identifier.
func (o *Order) Number() string {
	return Number(o.ID, o.CreatedAt)
}

// UpdatePatch describes an admin correction to an order. Nil fields are left
// unchanged.
type UpdatePatch struct {
	Status  *Status
	Name    *string
	Phone   *string
	Address *string
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status Status
	Limit  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and every line as one atomic unit and
	// fills in the assigned ID and CreatedAt. No reader may ever observe the
	// header without its lines.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	Update(ctx context.Context, id int64, patch UpdatePatch) (*Order, error)
	// Delete removes the order; its lines are cascade-deleted with it.
	Delete(ctx context.Context, id int64) error
}

// ErrNotFound is returned when an order id does not exist.
var ErrNotFound = errors.New("order not found")
