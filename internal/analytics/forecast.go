// internal/analytics/forecast.go
package analytics

import (
	"context"
	"math"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	smoothingWindow = 7
	driftTailLen    = 14
)

// ForecastHeuristic projects demand as a moving-average baseline plus the
// linear drift of the last two weeks of the smoothed series. A failed or
// empty data fetch degrades to an all-zero forecast, never an error.
func (e *Engine) ForecastHeuristic(ctx context.Context, productID, horizonDays, lookbackDays int) *domain.ForecastResult {
	lines, err := e.fetchProductSales(ctx, productID, lookbackDays)
	if err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("forecast: sales fetch failed, returning zero forecast")
		lines = nil
	}

	var series []float64
	if len(lines) > 0 {
		series = BuildDailySeries(lines, min(lookbackDays, maxSeriesDays), e.now())
	}
	if len(series) == 0 {
		return zeroForecast(productID, horizonDays)
	}

	smooth := MovingAverage(series, smoothingWindow)
	baseline := smooth[len(smooth)-1]

	tail := smooth
	if len(smooth) >= driftTailLen {
		tail = smooth[len(smooth)-driftTailLen:]
	}
	drift := (tail[len(tail)-1] - tail[0]) / float64(len(tail))

	daily := make([]float64, 0, horizonDays)
	for d := 0; d < horizonDays; d++ {
		daily = append(daily, roundTo(math.Max(0, baseline+drift*float64(d)), 2))
	}

	return &domain.ForecastResult{
		ProductID:     productID,
		HorizonDays:   horizonDays,
		DailyForecast: daily,
		Totals:        forecastTotals(daily),
	}
}

func zeroForecast(productID, horizonDays int) *domain.ForecastResult {
	return &domain.ForecastResult{
		ProductID:     productID,
		HorizonDays:   horizonDays,
		DailyForecast: make([]float64, horizonDays),
		Totals:        domain.ForecastTotals{},
	}
}

// forecastTotals sums the daily forecast over 7/30/90 days, each truncated to
// the horizon when it is shorter.
func forecastTotals(daily []float64) domain.ForecastTotals {
	sumDays := func(n int) float64 {
		total := 0.0
		for _, v := range daily[:min(n, len(daily))] {
			total += v
		}
		return roundTo(total, 2)
	}
	return domain.ForecastTotals{
		Week:    sumDays(7),
		Month:   sumDays(30),
		Quarter: sumDays(90),
	}
}
