package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/yuhlin/craftshop/internal/domain/product"
)

// ErrEmptyCart is returned when an order is submitted with no line items.
// It is raised before any catalog lookup or persistence work begins.
var ErrEmptyCart = errors.New("cart is empty")

// ErrDateMismatch is returned by LookupByNumber when the number parses but
// its date prefix does not match the stored order's creation date. Callers
// must present it to clients exactly like ErrNotFound so a guessed id with
// the wrong date reveals nothing.
var ErrDateMismatch = errors.New("order number date mismatch")

// ProductNotFoundError indicates a cart line references a catalog entry that
// does not exist. The whole creation attempt is aborted with no writes.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// CartItem is one submitted cart line. Quantity values below 1 are clamped
// up to 1 rather than rejected.
type CartItem struct {
	ProductID int64
	Quantity  int32
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Items    []CartItem
	Customer Customer
}

// Service encapsulates order creation and lookup business logic.
type Service struct {
	products product.Repository
	orders   Repository

	// shippingCents is the flat shipping fee, in minor units, applied once
	// per non-empty order.
	shippingCents int64
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, orders Repository, shippingCents int64) *Service {
	return &Service{
		products:      products,
		orders:        orders,
		shippingCents: shippingCents,
	}
}

// Create converts a submitted cart into a durable, correctly priced order.
//
// Every line is priced against the current catalog at submission time and the
// unit price is captured onto the line, so later catalog edits never change
// the value of an existing order. The header and all lines are committed as
// one atomic unit; any missing product aborts the attempt with no writes.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	// Batch fetch all referenced products in a single query.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[int64]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	var subtotal int64
	lines := make([]Line, len(req.Items))
	for i, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}

		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}

		lines[i] = Line{
			ProductID:      p.ID,
			Quantity:       qty,
			UnitPriceCents: p.PriceCents,
		}
		subtotal += p.PriceCents * int64(qty)
	}

	o := &Order{
		SubtotalCents: subtotal,
		ShippingCents: s.shippingCents,
		TotalCents:    subtotal + s.shippingCents,
		Customer:      req.Customer,
		Status:        StatusPending,
		Lines:         lines,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns an order with its lines by internal id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// LookupByNumber resolves a user-typed order number to the stored order.
//
// The parsed date digits are cross-checked against the stored creation date;
// a mismatch comes back as ErrDateMismatch, distinct from ErrInvalidNumber
// and ErrNotFound internally even though clients see all three identically.
func (s *Service) LookupByNumber(ctx context.Context, raw string) (*Order, error) {
	parsed, err := ParseNumber(raw)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, parsed.ID)
	if err != nil {
		return nil, err
	}

	if o.CreatedAt.Format("20060102") != parsed.DateDigits {
		return nil, ErrDateMismatch
	}

	return o, nil
}
