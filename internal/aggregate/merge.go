package aggregate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starfeu1331-jpg/MagicSysteme/pkg/contracts/domain"
)

// Merge folds another engine's state into this one. Accumulator cells
// sum; first-seen metadata keeps this engine's value when both sides
// recorded one, so merge partitions in input order to keep results
// stable.
func (e *Engine) Merge(o *Engine) {
	e.rows += o.rows

	e.families.merge(o.families)
	e.subFamilies.merge(o.subFamilies)
	e.products.merge(o.products)
	e.months.merge(o.months)

	e.stores.merge(o.stores)
	e.postalCodes.merge(o.postalCodes)
	e.cities.merge(o.cities)

	e.monthlyFamilies.merge(o.monthlyFamilies)
	e.monthlyProducts.merge(o.monthlyProducts)

	for k, v := range o.productInfo {
		if _, ok := e.productInfo[k]; !ok {
			e.productInfo[k] = v
		}
	}
	for k, v := range o.cityByPostal {
		if _, ok := e.cityByPostal[k]; !ok {
			e.cityByPostal[k] = v
		}
	}

	e.loyalty.Global.merge(o.loyalty.Global)
	e.loyalty.Store.merge(o.loyalty.Store)
	e.loyalty.Web.merge(o.loyalty.Web)

	e.webRevenue += o.webRevenue
	e.webVolume += o.webVolume
	for t := range o.webTickets {
		e.webTickets[t] = struct{}{}
	}

	mergeFamilySets(e.crossGlobal, o.crossGlobal)
	mergeFamilySets(e.crossStore, o.crossStore)
	mergeFamilySets(e.crossWeb, o.crossWeb)

	for card, ocb := range o.customers {
		cb := e.customers[card]
		if cb == nil {
			e.customers[card] = ocb
			continue
		}
		if cb.city == "" {
			cb.city = ocb.city
		}
		if cb.postal == "" {
			cb.postal = ocb.postal
		}
		cb.total += ocb.total
		for _, otb := range ocb.order {
			tb := cb.byID[otb.id]
			if tb == nil {
				cb.byID[otb.id] = otb
				cb.order = append(cb.order, otb)
				continue
			}
			if tb.date.IsZero() {
				tb.date = otb.date
			}
			if tb.city == "" {
				tb.city = otb.city
			}
			if tb.postal == "" {
				tb.postal = otb.postal
			}
			tb.lines = append(tb.lines, otb.lines...)
			tb.total += otb.total
		}
	}

	e.dateRange.merge(o.dateRange)
}

func mergeFamilySets(dst, src map[string]familySet) {
	for ticket, set := range src {
		d := dst[ticket]
		if d == nil {
			dst[ticket] = set
			continue
		}
		for f := range set {
			d[f] = struct{}{}
		}
	}
}

// Aggregate runs a plain single-pass aggregation over records
func Aggregate(records []domain.TransactionRecord) *Result {
	e := NewEngine()
	for _, rec := range records {
		e.Add(rec)
	}
	return e.Result()
}

// AggregateParallel partitions the input across workers and merges the
// partial engines in partition order. Accumulator updates commute, so
// the totals match the sequential pass; first-seen tie-breaks follow
// partition order instead of strict input order.
func AggregateParallel(ctx context.Context, records []domain.TransactionRecord, workers int) (*Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 || len(records) < 2*workers {
		return Aggregate(records), nil
	}

	engines := make([]*Engine, workers)
	chunk := (len(records) + workers - 1) / workers

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		lo := i * chunk
		hi := lo + chunk
		if lo >= len(records) {
			engines[i] = NewEngine()
			continue
		}
		if hi > len(records) {
			hi = len(records)
		}
		part := records[lo:hi]
		e := NewEngine()
		engines[i] = e
		g.Go(func() error {
			for _, rec := range part {
				e.Add(rec)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	root := engines[0]
	for _, e := range engines[1:] {
		root.Merge(e)
	}
	return root.Result(), nil
}
