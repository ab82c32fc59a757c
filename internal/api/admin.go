package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/yuhlin/craftshop/internal/domain/order"
	"github.com/yuhlin/craftshop/internal/domain/product"
	"github.com/yuhlin/craftshop/internal/money"
)

func (h *Handler) adminPing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- dashboard ---

type pendingOrderResponse struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	TotalCents   int64     `json:"total_cents"`
	TotalText    string    `json:"totalText"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
}

type topProductResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Quantity     int64  `json:"qty"`
	RevenueCents int64  `json:"rev_cents"`
	RevenueText  string `json:"revText"`
}

type summaryResponse struct {
	LatestPending  []pendingOrderResponse `json:"latestPending"`
	TopProducts30d []topProductResponse   `json:"topProducts30d"`
	LatestProducts []productResponse      `json:"latestProducts"`
	AvgOrderCents  int64                  `json:"avg_order_cents"`
	AvgOrderText   string                 `json:"avgOrderText"`
}

func (h *Handler) adminSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.metrics.Summary(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := summaryResponse{
		LatestPending:  make([]pendingOrderResponse, len(s.LatestPending)),
		TopProducts30d: make([]topProductResponse, len(s.TopProducts30d)),
		LatestProducts: make([]productResponse, len(s.LatestProducts)),
		AvgOrderCents:  s.AvgOrderValue.Round(0).IntPart(),
	}
	resp.AvgOrderText = money.FormatTWD(resp.AvgOrderCents)

	for i, o := range s.LatestPending {
		resp.LatestPending[i] = pendingOrderResponse{
			ID:           o.ID,
			CreatedAt:    o.CreatedAt,
			TotalCents:   o.TotalCents,
			TotalText:    money.FormatTWD(o.TotalCents),
			CustomerName: o.CustomerName,
			Status:       o.Status,
		}
	}
	for i, p := range s.TopProducts30d {
		resp.TopProducts30d[i] = topProductResponse{
			ID:           p.ID,
			Name:         p.Name,
			Quantity:     p.Quantity,
			RevenueCents: p.RevenueCents,
			RevenueText:  money.FormatTWD(p.RevenueCents),
		}
	}
	for i, p := range s.LatestProducts {
		resp.LatestProducts[i] = h.toProductResponse(p)
	}

	writeJSON(w, http.StatusOK, resp)
}

type monthlyPointResponse struct {
	Month        string `json:"ym"`
	OrdersCount  int64  `json:"orders_count"`
	RevenueCents int64  `json:"revenue_cents"`
	RevenueText  string `json:"revenueText"`
}

func (h *Handler) adminMonthly(w http.ResponseWriter, r *http.Request) {
	points, err := h.metrics.Monthly(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]monthlyPointResponse, len(points))
	for i, p := range points {
		out[i] = monthlyPointResponse{
			Month:        p.Month,
			OrdersCount:  p.OrdersCount,
			RevenueCents: p.RevenueCents,
			RevenueText:  money.FormatTWD(p.RevenueCents),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// --- products ---

// productForm is the admin create/update payload. The price may arrive as
// integer cents or as a major-unit amount; cents win when both are present.
type productForm struct {
	ID         int64
	Name       string
	Category   string
	Image      string
	PriceCents int64
	priceSet   bool
	centsSet   bool
}

func decodeProductForm(d *jx.Decoder) (productForm, error) {
	var f productForm
	var priceMajor float64
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			f.ID = v
			return err
		case "name":
			v, err := optStr(d)
			f.Name = v
			return err
		case "category":
			v, err := optStr(d)
			f.Category = v
			return err
		case "image":
			v, err := optStr(d)
			f.Image = v
			return err
		case "price_cents":
			v, err := d.Int64()
			f.PriceCents = v
			f.centsSet = true
			return err
		case "price":
			v, err := d.Float64()
			priceMajor = v
			f.priceSet = true
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return f, err
	}
	if !f.centsSet && f.priceSet {
		f.PriceCents = money.ToCents(priceMajor)
	}
	return f, nil
}

func (f productForm) validate() string {
	switch {
	case f.Name == "":
		return "name is required"
	case f.Category == "":
		return "category is required"
	case f.PriceCents < 0:
		return "price must not be negative"
	}
	return ""
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(r.URL.Query().Get("limit"))

	products, err := h.products.ListRecent(r.Context(), limit)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	form, err := decodeProductForm(jx.Decode(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := form.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p := product.Product{
		ID:         form.ID,
		Name:       form.Name,
		PriceCents: form.PriceCents,
		Category:   form.Category,
		Image:      form.Image,
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toProductResponse(p))
}

func (h *Handler) adminGetProduct(w http.ResponseWriter, r *http.Request) {
	h.getProduct(w, r)
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	form, err := decodeProductForm(jx.Decode(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := form.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.products.Update(r.Context(), &product.Product{
		ID:         id,
		Name:       form.Name,
		PriceCents: form.PriceCents,
		Category:   form.Category,
		Image:      form.Image,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toProductResponse(*updated))
}

// --- orders ---

type adminOrderListItem struct {
	ID            int64     `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	OrderNo       string    `json:"orderNo"`
	TotalCents    int64     `json:"total_cents"`
	TotalText     string    `json:"totalText"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	Status        string    `json:"status"`
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	f := order.ListFilter{Limit: clampLimit(r.URL.Query().Get("limit"))}
	if s := order.Status(r.URL.Query().Get("status")); s != "" {
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		f.Status = s
	}

	orders, err := h.orderDB.List(r.Context(), f)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	out := make([]adminOrderListItem, len(orders))
	for i := range orders {
		o := &orders[i]
		out[i] = adminOrderListItem{
			ID:            o.ID,
			CreatedAt:     o.CreatedAt,
			OrderNo:       o.Number(),
			TotalCents:    o.TotalCents,
			TotalText:     money.FormatTWD(o.TotalCents),
			CustomerName:  o.Customer.Name,
			CustomerPhone: o.Customer.Phone,
			Status:        string(o.Status),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	h.getOrder(w, r)
}

// decodeOrderPatch reads {status?, customer?{name?, phone?, address?}};
// absent and null fields leave the stored values untouched.
func decodeOrderPatch(d *jx.Decoder) (order.UpdatePatch, error) {
	var patch order.UpdatePatch
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			s := order.Status(v)
			patch.Status = &s
			return nil
		case "customer":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Obj(func(d *jx.Decoder, key string) error {
				set := func(dst **string) error {
					if d.Next() == jx.Null {
						return d.Null()
					}
					v, err := d.Str()
					if err != nil {
						return err
					}
					*dst = &v
					return nil
				}
				switch key {
				case "name":
					return set(&patch.Name)
				case "phone":
					return set(&patch.Phone)
				case "address":
					return set(&patch.Address)
				default:
					return d.Skip()
				}
			})
		default:
			return d.Skip()
		}
	})
	return patch, err
}

func (h *Handler) adminPatchOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	patch, err := decodeOrderPatch(jx.Decode(r.Body, 4096))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Status != nil && !patch.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	o, err := h.orderDB.Update(r.Context(), id, patch)
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

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if err := h.orderDB.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// clampLimit parses a limit query parameter into the 1..1000 range,
// defaulting to 100.
func clampLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
