// internal/analytics/mlforecast.go
package analytics

import (
	"context"
	"errors"
	"math"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	modelType      = "poly2-least-squares"
	minTrainPoints = 14
	// z for a 95% confidence band.
	ciZ = 1.96
	// Denominator floor sklearn uses for MAPE.
	mapeEps = 2.220446049250313e-16
)

// TrainModel fits a degree-2 polynomial regression on the smoothed daily
// series and persists it, overwriting any previous model. Fewer than 14
// observed days is reported as a structured status, not an error.
func (e *Engine) TrainModel(ctx context.Context, productID, lookbackDays int) (*domain.TrainingResult, error) {
	lines, err := e.fetchProductSales(ctx, productID, lookbackDays)
	if err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("train: sales fetch failed")
		lines = nil
	}

	var series []float64
	if len(lines) > 0 {
		series = BuildDailySeries(lines, min(lookbackDays, maxSeriesDays), e.now())
	}
	if len(series) < minTrainPoints {
		return &domain.TrainingResult{
			ProductID: productID,
			Trained:   false,
			Reason:    "insufficient_history",
		}, nil
	}

	y := MovingAverage(series, smoothingWindow)
	coeffs := fitQuadratic(y)

	fitted := make([]float64, len(y))
	for i := range y {
		fitted[i] = predictQuadratic(coeffs, float64(i))
	}
	metrics := fitMetrics(y, fitted)

	model := &domain.TrainedModel{
		ProductID:    productID,
		Coefficients: coeffs[:],
		Samples:      len(y),
		Metrics:      metrics,
		ModelType:    modelType,
		TrainedAt:    e.now(),
	}
	if err := e.store.Save(model); err != nil {
		return nil, err
	}

	return &domain.TrainingResult{
		ProductID: productID,
		Trained:   true,
		Samples:   len(y),
		Metrics:   &metrics,
		ModelType: modelType,
	}, nil
}

// fitMetrics reports MAE and sMAPE against the training fit, plus MAPE when
// any quantity was observed at all. The sMAPE denominator treats zero as one
// so all-zero stretches do not blow up the metric.
func fitMetrics(y, fitted []float64) domain.ModelMetrics {
	n := float64(len(y))
	var absErrSum, mapeSum, smapeSum, totalQty float64
	for i := range y {
		diff := math.Abs(y[i] - fitted[i])
		absErrSum += diff
		mapeSum += diff / math.Max(mapeEps, math.Abs(y[i]))

		denom := math.Abs(y[i]) + math.Abs(fitted[i])
		if denom == 0 {
			denom = 1
		}
		smapeSum += 2 * diff / denom
		totalQty += y[i]
	}

	metrics := domain.ModelMetrics{
		MAE:   roundTo(absErrSum/n, 3),
		SMAPE: roundTo(smapeSum/n, 3),
	}
	if totalQty > 0 {
		mape := roundTo(mapeSum/n, 3)
		metrics.MAPE = &mape
	}
	return metrics
}

// ForecastML predicts with the persisted model, training one synchronously
// first when none exists. A model that cannot be deserialized surfaces as a
// domain.ModelLoadError; the caller is expected to fall back to the
// heuristic engine.
func (e *Engine) ForecastML(ctx context.Context, productID, horizonDays, lookbackDays int) (*domain.ForecastResult, error) {
	if !e.store.Exists(productID) {
		if _, err := e.TrainModel(ctx, productID, lookbackDays); err != nil {
			log.Warn().Err(err).Int("product_id", productID).Msg("ml forecast: on-demand training failed")
		}
	}

	model, err := e.store.Load(productID)
	if err != nil {
		if errors.Is(err, domain.ErrModelNotFound) {
			return nil, &domain.ModelLoadError{ProductID: productID, Err: err}
		}
		return nil, err
	}

	lines, fetchErr := e.fetchProductSales(ctx, productID, lookbackDays)
	if fetchErr != nil {
		log.Warn().Err(fetchErr).Int("product_id", productID).Msg("ml forecast: sales fetch failed")
		lines = nil
	}

	var series []float64
	if len(lines) > 0 {
		series = BuildDailySeries(lines, min(lookbackDays, maxSeriesDays), e.now())
	}
	if len(series) == 0 {
		result := zeroForecast(productID, horizonDays)
		result.ModelType = model.ModelType
		return result, nil
	}

	var coeffs [3]float64
	copy(coeffs[:], model.Coefficients)

	y := MovingAverage(series, smoothingWindow)

	// Extend the time index past the observed window.
	daily := make([]float64, 0, horizonDays)
	raw := make([]float64, 0, horizonDays)
	for d := 0; d < horizonDays; d++ {
		v := predictQuadratic(coeffs, float64(len(y)+d))
		raw = append(raw, v)
		daily = append(daily, math.Max(0, roundTo(v, 2)))
	}

	// Confidence band from the in-sample residual spread.
	resid := make([]float64, len(y))
	for i := range y {
		resid[i] = y[i] - predictQuadratic(coeffs, float64(i))
	}
	sigma := popStdDev(resid)

	ci := &domain.ConfidenceInterval{
		Low:  make([]float64, 0, horizonDays),
		High: make([]float64, 0, horizonDays),
	}
	for _, v := range raw {
		ci.Low = append(ci.Low, math.Max(0, roundTo(v-ciZ*sigma, 2)))
		ci.High = append(ci.High, math.Max(0, roundTo(v+ciZ*sigma, 2)))
	}

	return &domain.ForecastResult{
		ProductID:          productID,
		HorizonDays:        horizonDays,
		DailyForecast:      daily,
		Totals:             forecastTotals(daily),
		ModelType:          model.ModelType,
		ConfidenceInterval: ci,
	}, nil
}
