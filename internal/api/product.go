package api

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/yuhlin/craftshop/internal/domain/product"
	"github.com/yuhlin/craftshop/internal/money"
)

// productResponse mirrors the storefront's product JSON: raw cents plus the
// derived major-unit price and display text.
type productResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"price_cents"`
	Price      float64 `json:"price"`
	PriceText  string  `json:"priceText"`
	Category   string  `json:"category"`
	Image      string  `json:"image"`
}

func (h *Handler) toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Price:      money.Major(p.PriceCents),
		PriceText:  money.FormatTWD(p.PriceCents),
		Category:   p.Category,
		Image:      h.imageURL(p.Image),
	}
}

// imageURL prefixes relative image paths with the configured base URL.
// Absolute URLs are returned untouched.
func (h *Handler) imageURL(image string) string {
	if image == "" || h.cfg.ImageBaseURL == "" || strings.Contains(image, "://") {
		return image
	}
	return strings.TrimSuffix(h.cfg.ImageBaseURL, "/") + "/" + strings.TrimPrefix(image, "/")
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	f := product.Filter{
		Category: r.URL.Query().Get("category"),
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
	}

	products, err := h.products.List(r.Context(), f)
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

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toProductResponse(*p))
}
