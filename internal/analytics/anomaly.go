// internal/analytics/anomaly.go
package analytics

import (
	"context"
	"sort"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/rs/zerolog/log"
)

const (
	// minAnomalyDays is the minimum number of distinct observed sales days
	// before a product is scored at all.
	minAnomalyDays = 7
	// highSeverityZ marks the HIGH severity boundary.
	highSeverityZ = 4.0
)

// DetectAnomalies flags days whose quantity deviates from the product's mean
// by at least zThreshold population standard deviations. Statistics run over
// the observed days only, not a zero-filled calendar. A failed data fetch
// yields an empty report, never an error.
func (e *Engine) DetectAnomalies(ctx context.Context, lookbackDays int, zThreshold float64) *domain.AnomalyReport {
	report := &domain.AnomalyReport{
		DaysLookback: lookbackDays,
		Items:        []domain.AnomalyEvent{},
	}

	lines, err := e.fetchAllSales(ctx, lookbackDays,
		[]string{erp.FieldProductID, erp.FieldQty, erp.FieldCreateDate})
	if err != nil {
		log.Warn().Err(err).Msg("anomalies: sales fetch failed, returning empty result")
		return report
	}

	// Per-product per-day quantity totals, keyed by the date portion of the
	// raw timestamp.
	dailyByProduct := make(map[int]map[string]float64)
	for _, ln := range lines {
		pid, ok := ln.Int(erp.FieldProductID)
		if !ok {
			continue
		}
		date := ln.String(erp.FieldCreateDate)
		if len(date) > 10 {
			date = date[:10]
		}
		if dailyByProduct[pid] == nil {
			dailyByProduct[pid] = make(map[string]float64)
		}
		dailyByProduct[pid][date] += ln.Float(erp.FieldQty)
	}

	pids := make([]int, 0, len(dailyByProduct))
	for pid := range dailyByProduct {
		pids = append(pids, pid)
	}
	sort.Ints(pids)

	for _, pid := range pids {
		dayMap := dailyByProduct[pid]
		if len(dayMap) < minAnomalyDays {
			continue
		}

		days := make([]string, 0, len(dayMap))
		for d := range dayMap {
			days = append(days, d)
		}
		sort.Strings(days)

		series := make([]float64, len(days))
		for i, d := range days {
			series[i] = dayMap[d]
		}
		m := mean(series)
		std := popStdDev(series)

		for _, d := range days {
			x := dayMap[d]
			z := 0.0
			if std != 0 {
				z = (x - m) / std
			}
			if abs(z) < zThreshold {
				continue
			}

			direction := domain.DirectionDrop
			if z > 0 {
				direction = domain.DirectionSpike
			}
			severity := domain.SeverityMedium
			if abs(z) >= highSeverityZ {
				severity = domain.SeverityHigh
			}

			report.Items = append(report.Items, domain.AnomalyEvent{
				ProductID: pid,
				Date:      d,
				Quantity:  roundTo(x, 2),
				ZScore:    roundTo(z, 2),
				Direction: direction,
				Severity:  severity,
			})
		}
	}

	report.Total = len(report.Items)
	return report
}
