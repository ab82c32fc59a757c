package api

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yuhlin/craftshop/internal/domain/metrics"
	"github.com/yuhlin/craftshop/internal/domain/order"
	"github.com/yuhlin/craftshop/internal/domain/product"
	"github.com/yuhlin/craftshop/internal/domain/settings"
)

// In-memory repository fakes backing handler tests. They mirror the
// PostgreSQL implementations closely enough for endpoint semantics: id
// assignment, filtering, and not-found errors.

type fakeProductRepo struct {
	byID map[int64]*product.Product
}

func (f *fakeProductRepo) List(_ context.Context, filter product.Filter) ([]product.Product, error) {
	var out []product.Product
	for _, p := range f.byID {
		if filter.Category != "" && filter.Category != "all" && p.Category != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) ListRecent(ctx context.Context, limit int) ([]product.Product, error) {
	out, _ := f.List(ctx, product.Filter{})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	if p.ID == 0 {
		for id := range f.byID {
			if id >= p.ID {
				p.ID = id + 1
			}
		}
		if p.ID == 0 {
			p.ID = 1
		}
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *product.Product) (*product.Product, error) {
	if _, ok := f.byID[p.ID]; !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakeProductRepo) Upsert(_ context.Context, p product.Product) error {
	f.byID[p.ID] = &p
	return nil
}

type fakeOrderRepo struct {
	byID   map[int64]*order.Order
	nextID int64
}

func (f *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	o.ID = f.nextID
	o.CreatedAt = time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC)
	f.nextID++
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) List(_ context.Context, filter order.ListFilter) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.byID {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeOrderRepo) Update(_ context.Context, id int64, patch order.UpdatePatch) (*order.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if patch.Status != nil {
		o.Status = *patch.Status
	}
	if patch.Name != nil {
		o.Customer.Name = *patch.Name
	}
	if patch.Phone != nil {
		o.Customer.Phone = *patch.Phone
	}
	if patch.Address != nil {
		o.Customer.Address = *patch.Address
	}
	return o, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return order.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeSettingsRepo struct {
	current settings.Settings
}

func (f *fakeSettingsRepo) Get(_ context.Context) (*settings.Settings, error) {
	cp := f.current
	return &cp, nil
}

func (f *fakeSettingsRepo) Update(_ context.Context, s settings.Settings) error {
	f.current = s
	return nil
}

type fakeMetricsRepo struct {
	summary *metrics.Summary
	monthly []metrics.MonthlyPoint
}

func (f *fakeMetricsRepo) Summary(_ context.Context) (*metrics.Summary, error) {
	return f.summary, nil
}

func (f *fakeMetricsRepo) Monthly(_ context.Context) ([]metrics.MonthlyPoint, error) {
	return f.monthly, nil
}
