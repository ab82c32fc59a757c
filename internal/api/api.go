// Package api implements the storefront and back-office HTTP surface.
//
// Requests are decoded with go-faster/jx so malformed bodies fail fast with
// useful messages; responses are plain JSON structs shaped for the SPA.
package api

import (
	"net/http"

	"github.com/yuhlin/craftshop/internal/domain/metrics"
	"github.com/yuhlin/craftshop/internal/domain/order"
	"github.com/yuhlin/craftshop/internal/domain/product"
	"github.com/yuhlin/craftshop/internal/domain/settings"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored in the database.
	ImageBaseURL string

	// AdminKey authorizes the back-office routes via the X-Admin-Key header.
	// When empty, every admin request is rejected.
	AdminKey string
}

// Handler carries the domain dependencies for all HTTP endpoints.
type Handler struct {
	cfg      Config
	products product.Repository
	orders   *order.Service
	orderDB  order.Repository
	settings settings.Repository
	metrics  metrics.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products product.Repository,
	orders *order.Service,
	orderDB order.Repository,
	settingsRepo settings.Repository,
	metricsRepo metrics.Repository,
) *Handler {
	return &Handler{
		cfg:      cfg,
		products: products,
		orders:   orders,
		orderDB:  orderDB,
		settings: settingsRepo,
		metrics:  metricsRepo,
	}
}

// Routes returns the ServeMux with every API route registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.healthOK)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders/lookup", h.lookupOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/settings", h.getSettings)

	admin := h.adminOnly
	mux.HandleFunc("GET /api/admin/ping", admin(h.adminPing))
	mux.HandleFunc("GET /api/admin/summary", admin(h.adminSummary))
	mux.HandleFunc("GET /api/admin/metrics/monthly", admin(h.adminMonthly))
	mux.HandleFunc("GET /api/admin/products", admin(h.adminListProducts))
	mux.HandleFunc("POST /api/admin/products", admin(h.adminCreateProduct))
	mux.HandleFunc("GET /api/admin/products/{id}", admin(h.adminGetProduct))
	mux.HandleFunc("PUT /api/admin/products/{id}", admin(h.adminUpdateProduct))
	mux.HandleFunc("GET /api/admin/orders", admin(h.adminListOrders))
	mux.HandleFunc("GET /api/admin/orders/{id}", admin(h.adminGetOrder))
	mux.HandleFunc("PATCH /api/admin/orders/{id}", admin(h.adminPatchOrder))
	mux.HandleFunc("DELETE /api/admin/orders/{id}", admin(h.adminDeleteOrder))
	mux.HandleFunc("PUT /api/admin/settings", admin(h.adminUpdateSettings))

	return mux
}

func (h *Handler) healthOK(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
