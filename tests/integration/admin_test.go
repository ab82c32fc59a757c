//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"
)

type summaryResponse struct {
	LatestPending []struct {
		ID         int64  `json:"id"`
		TotalCents int64  `json:"total_cents"`
		Status     string `json:"status"`
	} `json:"latestPending"`
	TopProducts30d []struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Quantity     int64  `json:"qty"`
		RevenueCents int64  `json:"rev_cents"`
	} `json:"topProducts30d"`
	LatestProducts []productResponse `json:"latestProducts"`
	AvgOrderCents  int64             `json:"avg_order_cents"`
}

type monthlyPoint struct {
	Month        string `json:"ym"`
	OrdersCount  int64  `json:"orders_count"`
	RevenueCents int64  `json:"revenue_cents"`
}

type adminOrderItem struct {
	ID           int64  `json:"id"`
	OrderNo      string `json:"orderNo"`
	TotalCents   int64  `json:"total_cents"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
}

type settingsResponse struct {
	SiteTitle   string   `json:"site_title"`
	FooterNotes []string `json:"footer_notes"`
	FooterLinks []struct {
		Label string `json:"label"`
		URL   string `json:"url"`
	} `json:"footer_links"`
}

func TestAdmin_Unauthorized(t *testing.T) {
	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/ping"},
		{http.MethodGet, "/api/admin/summary"},
		{http.MethodGet, "/api/admin/metrics/monthly"},
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodPost, "/api/admin/products"},
		{http.MethodPut, "/api/admin/settings"},
	}
	for _, p := range paths {
		resp, err := httpClient.Do(newRequest(t, p.method, p.path, nil))
		if err != nil {
			t.Fatalf("%s %s: %v", p.method, p.path, err)
		}
		wantStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	}
}

func TestAdmin_WrongKey(t *testing.T) {
	req := newRequest(t, http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("X-Admin-Key", "wrong-key")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusUnauthorized)
}

func TestAdmin_Ping(t *testing.T) {
	resp := doAdmin(t, http.MethodGet, "/api/admin/ping", nil)
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusOK)
}

func TestAdmin_ProductLifecycle(t *testing.T) {
	create := doAdmin(t, http.MethodPost, "/api/admin/products", map[string]any{
		"name":        "季節限定栗子蒙布朗",
		"category":    "蛋糕",
		"price_cents": 16000,
		"image":       "/images/mont-blanc.jpg",
	})
	wantStatus(t, create, http.StatusCreated)
	created := decodeJSON[productResponse](t, create)
	create.Body.Close()

	if created.ID == 0 {
		t.Fatal("created product has no id")
	}
	if created.PriceCents != 16000 {
		t.Errorf("price_cents: got %d, want 16000", created.PriceCents)
	}

	// Visible on the public catalog immediately.
	pub := doGet(t, "/api/products/"+itoa(created.ID))
	wantStatus(t, pub, http.StatusOK)
	pub.Body.Close()

	update := doAdmin(t, http.MethodPut, "/api/admin/products/"+itoa(created.ID), map[string]any{
		"name":        "季節限定栗子蒙布朗",
		"category":    "蛋糕",
		"price_cents": 14000,
	})
	wantStatus(t, update, http.StatusOK)
	updated := decodeJSON[productResponse](t, update)
	update.Body.Close()

	if updated.PriceCents != 14000 {
		t.Errorf("updated price_cents: got %d, want 14000", updated.PriceCents)
	}
}

func TestAdmin_CreateProductMajorUnits(t *testing.T) {
	resp := doAdmin(t, http.MethodPost, "/api/admin/products", map[string]any{
		"name":     "玫瑰荔枝慕斯",
		"category": "蛋糕",
		"price":    188.5,
	})
	wantStatus(t, resp, http.StatusCreated)
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()

	if created.PriceCents != 18850 {
		t.Errorf("price_cents: got %d, want 18850", created.PriceCents)
	}
}

func TestAdmin_CreateProductValidation(t *testing.T) {
	resp := doAdmin(t, http.MethodPost, "/api/admin/products", map[string]any{
		"category": "蛋糕",
	})
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestAdmin_OrderLifecycle(t *testing.T) {
	o := placeOrder(t, orderRequest{
		Items:    []orderItemRequest{{ProductID: 5, Quantity: 1}},
		Customer: &customerRequest{Name: "陳先生"},
	})

	list := doAdmin(t, http.MethodGet, "/api/admin/orders?status=pending", nil)
	wantStatus(t, list, http.StatusOK)
	orders := decodeJSON[[]adminOrderItem](t, list)
	list.Body.Close()

	var found bool
	for _, item := range orders {
		if item.ID == o.ID {
			found = true
			if item.OrderNo != o.OrderNo {
				t.Errorf("orderNo: got %q, want %q", item.OrderNo, o.OrderNo)
			}
		}
	}
	if !found {
		t.Fatalf("order %d missing from pending listing", o.ID)
	}

	patch := doAdmin(t, http.MethodPatch, "/api/admin/orders/"+itoa(o.ID), map[string]any{
		"status":   "paid",
		"customer": map[string]string{"phone": "0987654321"},
	})
	wantStatus(t, patch, http.StatusOK)
	patched := decodeJSON[orderResponse](t, patch)
	patch.Body.Close()

	if patched.Status != "paid" {
		t.Errorf("status: got %q, want paid", patched.Status)
	}
	if patched.Customer.Phone != "0987654321" {
		t.Errorf("phone: got %q, want 0987654321", patched.Customer.Phone)
	}
	if patched.Customer.Name != "陳先生" {
		t.Errorf("name changed by partial patch: got %q", patched.Customer.Name)
	}

	del := doAdmin(t, http.MethodDelete, "/api/admin/orders/"+itoa(o.ID), nil)
	wantStatus(t, del, http.StatusOK)
	del.Body.Close()

	gone := doGet(t, "/api/orders/"+itoa(o.ID))
	wantStatus(t, gone, http.StatusNotFound)
	gone.Body.Close()
}

func TestAdmin_ListOrdersUnknownStatus(t *testing.T) {
	resp := doAdmin(t, http.MethodGet, "/api/admin/orders?status=bogus", nil)
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusBadRequest)
}

func TestAdmin_Summary(t *testing.T) {
	o := placeOrder(t, orderRequest{
		Items:    []orderItemRequest{{ProductID: 7, Quantity: 1}},
		Customer: &customerRequest{Name: "張小姐"},
	})

	resp := doAdmin(t, http.MethodGet, "/api/admin/summary", nil)
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusOK)

	s := decodeJSON[summaryResponse](t, resp)

	var inPending bool
	for _, p := range s.LatestPending {
		if p.ID == o.ID {
			inPending = true
		}
	}
	if !inPending {
		t.Errorf("order %d missing from latestPending", o.ID)
	}
	if s.AvgOrderCents <= 0 {
		t.Errorf("avg_order_cents: got %d, want > 0", s.AvgOrderCents)
	}
	if len(s.LatestProducts) == 0 {
		t.Error("latestProducts is empty")
	}
}

func TestAdmin_MonthlyMetrics(t *testing.T) {
	placeOrder(t, orderRequest{
		Items: []orderItemRequest{{ProductID: 5, Quantity: 1}},
	})

	resp := doAdmin(t, http.MethodGet, "/api/admin/metrics/monthly", nil)
	defer resp.Body.Close()
	wantStatus(t, resp, http.StatusOK)

	points := decodeJSON[[]monthlyPoint](t, resp)
	if len(points) == 0 {
		t.Fatal("no monthly points")
	}

	thisMonth := time.Now().Format("2006-01")
	var found bool
	for _, p := range points {
		if p.Month == thisMonth {
			found = true
			if p.OrdersCount < 1 {
				t.Errorf("orders_count for %s: got %d, want >= 1", thisMonth, p.OrdersCount)
			}
		}
	}
	if !found {
		t.Errorf("month %s missing from metrics", thisMonth)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	get := doGet(t, "/api/settings")
	wantStatus(t, get, http.StatusOK)
	original := decodeJSON[settingsResponse](t, get)
	get.Body.Close()

	if original.SiteTitle == "" {
		t.Error("default site title is empty")
	}

	put := doAdmin(t, http.MethodPut, "/api/admin/settings", map[string]any{
		"site_title":   "整合測試商店",
		"footer_notes": []string{"週一公休", "訂單滿千免運"},
		"footer_links": []map[string]string{{"label": "IG", "url": "https://instagram.com/shop"}},
	})
	wantStatus(t, put, http.StatusOK)
	put.Body.Close()

	defer func() {
		restore := doAdmin(t, http.MethodPut, "/api/admin/settings", map[string]any{
			"site_title": original.SiteTitle,
		})
		restore.Body.Close()
	}()

	get = doGet(t, "/api/settings")
	wantStatus(t, get, http.StatusOK)
	updated := decodeJSON[settingsResponse](t, get)
	get.Body.Close()

	if updated.SiteTitle != "整合測試商店" {
		t.Errorf("site_title: got %q, want 整合測試商店", updated.SiteTitle)
	}
	if len(updated.FooterNotes) != 2 {
		t.Errorf("footer_notes: got %d entries, want 2", len(updated.FooterNotes))
	}
	if len(updated.FooterLinks) != 1 || updated.FooterLinks[0].Label != "IG" {
		t.Errorf("footer_links: got %+v", updated.FooterLinks)
	}
}
