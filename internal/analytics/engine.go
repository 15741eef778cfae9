// internal/analytics/engine.go
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/andresuchdata/stocksense/internal/modelstore"
)

const (
	defaultQueryLimit = 50000
	maxSeriesDays     = 180
)

// Engine runs every analytics operation against the ERP data source. It holds
// no hidden globals: the data-source handle, model store and clock are
// injected at construction.
type Engine struct {
	erp   erp.Client
	store *modelstore.Store
	limit int
	now   func() time.Time
}

type Option func(*Engine)

// WithClock fixes the engine's notion of "today", used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithQueryLimit caps records fetched per bulk ERP query.
func WithQueryLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.limit = limit
		}
	}
}

func NewEngine(client erp.Client, store *modelstore.Store, opts ...Option) *Engine {
	e := &Engine{
		erp:   client,
		store: store,
		limit: defaultQueryLimit,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetchProductSales returns the sale lines for one product over the last days.
func (e *Engine) fetchProductSales(ctx context.Context, productID, days int) ([]erp.Record, error) {
	filter := []erp.Condition{
		{Field: erp.FieldProductID, Op: "=", Value: productID},
		erp.SinceDate(e.now(), days),
	}
	return e.erp.Query(ctx, erp.EntitySaleLine, filter,
		[]string{erp.FieldQty, erp.FieldCreateDate}, e.limit)
}

// fetchAllSales returns every sale line over the last days with the given fields.
func (e *Engine) fetchAllSales(ctx context.Context, days int, fields []string) ([]erp.Record, error) {
	filter := []erp.Condition{erp.SinceDate(e.now(), days)}
	return e.erp.Query(ctx, erp.EntitySaleLine, filter, fields, e.limit)
}

// fetchProducts returns the catalog: id, name, and on-hand quantity.
func (e *Engine) fetchProducts(ctx context.Context) ([]domain.Product, error) {
	records, err := e.erp.Query(ctx, erp.EntityProduct, nil,
		[]string{erp.FieldID, erp.FieldName, erp.FieldQtyOnHand}, 0)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(records))
	for _, rec := range records {
		id, ok := rec.Int(erp.FieldID)
		if !ok {
			continue
		}
		products = append(products, domain.Product{
			ID:           id,
			Name:         rec.String(erp.FieldName),
			QtyAvailable: rec.Float(erp.FieldQtyOnHand),
		})
	}
	return products, nil
}

// fetchProductNames resolves display names for a set of product ids.
func (e *Engine) fetchProductNames(ctx context.Context, ids []int) map[int]string {
	if len(ids) == 0 {
		return map[int]string{}
	}
	filter := []erp.Condition{{Field: erp.FieldID, Op: "in", Value: ids}}
	records, err := e.erp.Query(ctx, erp.EntityProduct, filter,
		[]string{erp.FieldID, erp.FieldName}, 0)
	if err != nil {
		return map[int]string{}
	}

	names := make(map[int]string, len(records))
	for _, rec := range records {
		if id, ok := rec.Int(erp.FieldID); ok {
			names[id] = rec.String(erp.FieldName)
		}
	}
	return names
}

// TopProducts returns the ids of the n best-selling products over the last
// days, ordered by total sold quantity descending. Used by the training
// scheduler.
func (e *Engine) TopProducts(ctx context.Context, days, n int) ([]int, error) {
	lines, err := e.fetchAllSales(ctx, days, []string{erp.FieldProductID, erp.FieldQty})
	if err != nil {
		return nil, err
	}

	qtyByProduct := make(map[int]float64)
	for _, ln := range lines {
		pid, ok := ln.Int(erp.FieldProductID)
		if !ok {
			continue
		}
		qtyByProduct[pid] += ln.Float(erp.FieldQty)
	}

	ids := make([]int, 0, len(qtyByProduct))
	for pid := range qtyByProduct {
		ids = append(ids, pid)
	}
	sort.Slice(ids, func(i, j int) bool {
		qi, qj := qtyByProduct[ids[i]], qtyByProduct[ids[j]]
		if qi == qj {
			return ids[i] < ids[j]
		}
		return qi > qj
	})

	if n > 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}
