// internal/analytics/demand.go
package analytics

import (
	"context"
	"math"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/rs/zerolog/log"
)

// demandSeriesCapDays caps the demand-prediction series window.
const demandSeriesCapDays = 90

// trendSlopeThreshold separates UP/DOWN from STABLE.
const trendSlopeThreshold = 0.2

// PredictDemand estimates each product's next-30-day demand from the last
// smoothed daily value, together with a trend direction and a heuristic
// confidence score.
func (e *Engine) PredictDemand(ctx context.Context, lookbackDays, limit int) *domain.DemandReport {
	report := &domain.DemandReport{Items: []domain.DemandPrediction{}}

	products, err := e.fetchProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("demand: product fetch failed, returning empty result")
		return report
	}

	lines, err := e.fetchAllSales(ctx, lookbackDays,
		[]string{erp.FieldProductID, erp.FieldQty, erp.FieldCreateDate})
	if err != nil {
		log.Warn().Err(err).Msg("demand: sales fetch failed, predicting without history")
		lines = nil
	}

	linesByProduct := make(map[int][]erp.Record)
	for _, ln := range lines {
		pid, ok := ln.Int(erp.FieldProductID)
		if !ok {
			continue
		}
		linesByProduct[pid] = append(linesByProduct[pid], ln)
	}

	for _, prod := range products {
		productLines := linesByProduct[prod.ID]

		var series []float64
		if len(productLines) > 0 {
			series = BuildDailySeries(productLines, min(lookbackDays, demandSeriesCapDays), e.now())
		}

		var currentDaily, slope, confidence float64
		if len(series) > 0 {
			smooth := MovingAverage(series, smoothingWindow)
			currentDaily = smooth[len(smooth)-1]
			slope = (smooth[len(smooth)-1] - smooth[0]) / float64(len(smooth))

			m := mean(series)
			variability := 1.0
			if m > 0 {
				variability = popStdDev(series) / (m + 1e-6)
			}
			confidence = demandConfidence(len(series), variability, len(productLines))
		} else {
			// No history at all: neutral trend, low confidence.
			confidence = 0.3
		}

		trend := domain.TrendStable
		switch {
		case slope > trendSlopeThreshold:
			trend = domain.TrendUp
		case slope < -trendSlopeThreshold:
			trend = domain.TrendDown
		}

		report.Items = append(report.Items, domain.DemandPrediction{
			ProductID:    prod.ID,
			ProductName:  prod.Name,
			Predicted30d: roundTo(math.Max(0, currentDaily)*30, 2),
			Trend:        trend,
			Confidence:   confidence,
		})

		if limit > 0 && len(report.Items) >= limit {
			break
		}
	}

	report.Total = len(report.Items)
	return report
}

// demandConfidence blends coverage, variability and sample count: more
// coverage, lower variability and more samples raise confidence. Bounded to
// [0.2, 0.98].
func demandConfidence(daysCovered int, variability float64, samples int) float64 {
	base := math.Min(1, math.Max(0.2, float64(daysCovered)/30))
	varPenalty := math.Max(0.5, 1-math.Min(1, variability))
	sampleBoost := math.Min(1, 0.5+math.Min(0.5, float64(samples)/50))
	conf := base*0.4 + varPenalty*0.3 + sampleBoost*0.3
	return roundTo(math.Min(0.98, math.Max(0.2, conf)), 2)
}
