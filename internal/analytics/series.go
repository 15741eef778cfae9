// internal/analytics/series.go
package analytics

import (
	"time"

	"github.com/andresuchdata/stocksense/internal/erp"
)

// BuildDailySeries buckets raw sale lines into a zero-filled daily quantity
// series of exactly `days` entries ending today, oldest first. A record whose
// timestamp fails to parse is bucketed into today rather than dropped: this
// keeps totals intact at the cost of misplacing the odd bad record, matching
// the upstream behavior consumers already depend on. Records dated outside
// the window are ignored.
func BuildDailySeries(records []erp.Record, days int, now time.Time) []float64 {
	if days <= 0 {
		return nil
	}

	today := now.UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	series := make([]float64, days)
	for _, rec := range records {
		qty := rec.Float(erp.FieldQty)
		day := today
		if t, ok := rec.Time(erp.FieldCreateDate); ok {
			day = t.UTC().Truncate(24 * time.Hour)
		}
		idx := int(day.Sub(start).Hours() / 24)
		if idx < 0 || idx >= days {
			continue
		}
		series[idx] += qty
	}
	return series
}

// MovingAverage smooths a series with a trailing window that shrinks at the
// start, so the output always has the same length as the input. A window of
// one or less returns a copy of the input.
func MovingAverage(series []float64, window int) []float64 {
	if window <= 1 {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}

	out := make([]float64, 0, len(series))
	acc := 0.0
	for i, v := range series {
		acc += v
		if i >= window {
			acc -= series[i-window]
		}
		denom := float64(min(i+1, window))
		out = append(out, acc/denom)
	}
	return out
}
