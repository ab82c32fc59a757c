package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/yuhlin/craftshop/internal/domain/order"
	"github.com/yuhlin/craftshop/internal/money"
)

type orderLineResponse struct {
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPriceText  string `json:"unitPriceText"`
	LineCents      int64  `json:"line_cents"`
	LineText       string `json:"lineText"`
}

type customerResponse struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	OrderNo       string              `json:"orderNo"`
	CreatedAt     time.Time           `json:"created_at"`
	Status        string              `json:"status"`
	SubtotalCents int64               `json:"subtotal_cents"`
	ShippingCents int64               `json:"shipping_cents"`
	TotalCents    int64               `json:"total_cents"`
	SubtotalText  string              `json:"subtotalText"`
	ShippingText  string              `json:"shippingText"`
	TotalText     string              `json:"totalText"`
	Customer      customerResponse    `json:"customer"`
	Items         []orderLineResponse `json:"items"`
}

func (h *Handler) toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lineCents := l.UnitPriceCents * int64(l.Quantity)
		items[i] = orderLineResponse{
			ProductID:      l.ProductID,
			Name:           l.ProductName,
			Image:          h.imageURL(l.ProductImage),
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			UnitPriceText:  money.FormatTWD(l.UnitPriceCents),
			LineCents:      lineCents,
			LineText:       money.FormatTWD(lineCents),
		}
	}

	return orderResponse{
		ID:            o.ID,
		OrderNo:       o.Number(),
		CreatedAt:     o.CreatedAt,
		Status:        string(o.Status),
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TotalCents:    o.TotalCents,
		SubtotalText:  money.FormatTWD(o.SubtotalCents),
		ShippingText:  money.FormatTWD(o.ShippingCents),
		TotalText:     money.FormatTWD(o.TotalCents),
		Customer: customerResponse{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Items: items,
	}
}

// decodeCreateOrder reads {customer?, items:[{productId, quantity}]} in a
// tolerant way: unknown keys are skipped, nulls read as zero values.
func decodeCreateOrder(d *jx.Decoder) (order.CreateRequest, error) {
	var req order.CreateRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var item order.CartItem
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "productId", "product_id":
						v, err := d.Int64()
						item.ProductID = v
						return err
					case "quantity":
						v, err := d.Int32()
						item.Quantity = v
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		case "customer":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Obj(func(d *jx.Decoder, key string) error {
				switch key {
				case "name":
					v, err := optStr(d)
					req.Customer.Name = v
					return err
				case "phone":
					v, err := optStr(d)
					req.Customer.Phone = v
					return err
				case "address":
					v, err := optStr(d)
					req.Customer.Address = v
					return err
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

// optStr reads a string value, treating JSON null as the empty string.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateOrder(jx.Decode(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), req)
	if err != nil {
		var pnf *order.ProductNotFoundError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.As(err, &pnf):
			writeError(w, http.StatusUnprocessableEntity, pnf.Error())
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{
		ID:            o.ID,
		OrderNo:       o.Number(),
		CreatedAt:     o.CreatedAt,
		Status:        string(o.Status),
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TotalCents:    o.TotalCents,
		SubtotalText:  money.FormatTWD(o.SubtotalCents),
		ShippingText:  money.FormatTWD(o.ShippingCents),
		TotalText:     money.FormatTWD(o.TotalCents),
		Customer: customerResponse{
			Name:    o.Customer.Name,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Items: []orderLineResponse{},
	})
}

// lookupOrder resolves a user-typed order number. Invalid numbers, date
// mismatches, and unknown ids all answer 404 so the endpoint reveals nothing
// about which ids exist.
func (h *Handler) lookupOrder(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("order_no")
	if raw == "" {
		raw = r.URL.Query().Get("orderNo")
	}
	if raw == "" {
		writeError(w, http.StatusBadRequest, "order_no is required")
		return
	}

	o, err := h.orders.LookupByNumber(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidNumber),
			errors.Is(err, order.ErrDateMismatch),
			errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		default:
			writeInternalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toOrderResponse(o))
}
