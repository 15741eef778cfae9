// internal/analytics/segmentation.go
package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/rs/zerolog/log"
)

// XYZ coefficient-of-variation thresholds.
const (
	xyzLowCV  = 0.3
	xyzHighCV = 0.7
)

// Segment classifies the catalog into ABC value classes and XYZ variability
// classes over the lookback window.
//
// ABC is assigned by rank position among products ordered by revenue
// descending: the top 20% of positions are A, the next 30% B, the rest C.
// This is a positional percentile, not a cumulative-revenue Pareto split,
// and is kept that way deliberately. XYZ comes from the coefficient of
// variation of the product's per-line quantities; a product with no lines is
// Z, the least predictable class.
func (e *Engine) Segment(ctx context.Context, lookbackDays int) *domain.SegmentationReport {
	report := &domain.SegmentationReport{
		DaysLookback: lookbackDays,
		Items:        []domain.SegmentAssignment{},
	}

	lines, err := e.fetchAllSales(ctx, lookbackDays,
		[]string{erp.FieldProductID, erp.FieldQty, erp.FieldPriceTotal, erp.FieldCreateDate})
	if err != nil {
		log.Warn().Err(err).Msg("segmentation: sales fetch failed, returning empty result")
		return report
	}

	revenueByProduct := make(map[int]float64)
	qtyLinesByProduct := make(map[int][]float64)
	for _, ln := range lines {
		pid, ok := ln.Int(erp.FieldProductID)
		if !ok {
			continue
		}
		revenueByProduct[pid] += ln.Float(erp.FieldPriceTotal)
		qtyLinesByProduct[pid] = append(qtyLinesByProduct[pid], ln.Float(erp.FieldQty))
	}

	pids := make([]int, 0, len(revenueByProduct))
	for pid := range revenueByProduct {
		pids = append(pids, pid)
	}
	// Revenue descending; equal revenue ranked by ascending id so the ABC
	// split is deterministic.
	sort.Slice(pids, func(i, j int) bool {
		ri, rj := revenueByProduct[pids[i]], revenueByProduct[pids[j]]
		if ri == rj {
			return pids[i] < pids[j]
		}
		return ri > rj
	})

	names := e.fetchProductNames(ctx, pids)

	n := len(pids)
	if n == 0 {
		return report
	}

	for i, pid := range pids {
		name, ok := names[pid]
		if !ok || name == "" {
			name = fmt.Sprintf("Product %d", pid)
		}
		report.Items = append(report.Items, domain.SegmentAssignment{
			ProductID:   pid,
			ProductName: name,
			ABC:         abcClass(i, n),
			XYZ:         xyzClass(qtyLinesByProduct[pid]),
			Revenue:     roundTo(revenueByProduct[pid], 2),
		})
	}

	report.Total = len(report.Items)
	return report
}

// abcClass maps a zero-based rank position to its value class.
func abcClass(rank, total int) string {
	pct := float64(rank+1) / float64(total)
	switch {
	case pct <= 0.2:
		return "A"
	case pct <= 0.5:
		return "B"
	default:
		return "C"
	}
}

// xyzClass scores demand variability from per-line quantities.
func xyzClass(quantities []float64) string {
	if len(quantities) == 0 {
		return "Z"
	}
	m := mean(quantities)
	ratio := 1.0
	if m > 0 {
		ratio = popStdDev(quantities) / (m + 1e-6)
	}
	switch {
	case ratio < xyzLowCV:
		return "X"
	case ratio < xyzHighCV:
		return "Y"
	default:
		return "Z"
	}
}
