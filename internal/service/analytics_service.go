// internal/service/analytics_service.go
package service

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/stocksense/internal/analytics"
	"github.com/andresuchdata/stocksense/internal/cache"
	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// AnalyticsService is the explicitly constructed context every operation runs
// in: the engine, the result cache and the TTL policy are injected, nothing
// is process-global. Concurrent cache misses on the same key are collapsed
// through a singleflight group so an expensive computation runs once.
type AnalyticsService struct {
	engine *analytics.Engine
	cache  *cache.TTLCache
	ttl    config.CacheConfig
	group  singleflight.Group
}

func NewAnalyticsService(engine *analytics.Engine, resultCache *cache.TTLCache, ttl config.CacheConfig) *AnalyticsService {
	if resultCache == nil {
		resultCache = cache.NewTTLCache()
	}
	return &AnalyticsService{
		engine: engine,
		cache:  resultCache,
		ttl:    ttl,
	}
}

// cached runs compute through the result cache under the given key.
func (s *AnalyticsService) cached(key string, ttlSeconds int, compute func() (interface{}, error)) (interface{}, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have filled the
		// entry between the miss and the flight starting.
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, v, time.Duration(ttlSeconds)*time.Second)
		return v, nil
	})
	return v, err
}

// ForecastHeuristic serves the baseline+drift forecast.
func (s *AnalyticsService) ForecastHeuristic(ctx context.Context, productID, horizonDays, lookbackDays int) (*domain.ForecastResult, error) {
	key := cache.Key("ai:forecast:heuristic", map[string]interface{}{
		"product_id": productID, "horizon_days": horizonDays, "lookback_days": lookbackDays,
	})
	v, err := s.cached(key, s.ttl.ForecastTTLSeconds, func() (interface{}, error) {
		return s.engine.ForecastHeuristic(ctx, productID, horizonDays, lookbackDays), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ForecastResult), nil
}

// ForecastML serves the model-based forecast without any fallback; a load
// failure propagates as a structured error.
func (s *AnalyticsService) ForecastML(ctx context.Context, productID, horizonDays, lookbackDays int) (*domain.ForecastResult, error) {
	key := cache.Key("ai:forecast:ml", map[string]interface{}{
		"product_id": productID, "horizon_days": horizonDays, "lookback_days": lookbackDays,
	})
	v, err := s.cached(key, s.ttl.ForecastTTLSeconds, func() (interface{}, error) {
		return s.engine.ForecastML(ctx, productID, horizonDays, lookbackDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ForecastResult), nil
}

// Forecast prefers the ML engine and falls back to the heuristic one when the
// model errors out or predicts nothing at all. This cross-engine fallback is
// the documented contract, not an internal detail of the ML engine.
func (s *AnalyticsService) Forecast(ctx context.Context, productID, horizonDays, lookbackDays int) (*domain.ForecastResult, error) {
	key := cache.Key("ai:forecast", map[string]interface{}{
		"product_id": productID, "horizon_days": horizonDays, "lookback_days": lookbackDays,
	})
	v, err := s.cached(key, s.ttl.ForecastTTLSeconds, func() (interface{}, error) {
		result, err := s.engine.ForecastML(ctx, productID, horizonDays, lookbackDays)
		if err != nil || allZero(result.DailyForecast) {
			if err != nil {
				log.Warn().Err(err).Int("product_id", productID).Msg("ml forecast unusable, falling back to heuristic")
			}
			return s.engine.ForecastHeuristic(ctx, productID, horizonDays, lookbackDays), nil
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ForecastResult), nil
}

// TrainModel trains and persists a product model, then drops any cached
// forecasts so the next request sees the fresh model.
func (s *AnalyticsService) TrainModel(ctx context.Context, productID, lookbackDays int) (*domain.TrainingResult, error) {
	result, err := s.engine.TrainModel(ctx, productID, lookbackDays)
	if err != nil {
		return nil, err
	}
	// Forecast keys embed horizon and lookback, so a clear is the only way
	// to invalidate every variant for the product.
	s.cache.Clear()
	return result, nil
}

// DetectAnomalies serves z-score outlier flags for the catalog.
func (s *AnalyticsService) DetectAnomalies(ctx context.Context, lookbackDays int, zThreshold float64) (*domain.AnomalyReport, error) {
	key := cache.Key("ai:anomalies", map[string]interface{}{
		"days": lookbackDays, "z": zThreshold,
	})
	v, err := s.cached(key, s.ttl.AnomalyTTLSeconds, func() (interface{}, error) {
		return s.engine.DetectAnomalies(ctx, lookbackDays, zThreshold), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.AnomalyReport), nil
}

// Segment serves the ABC/XYZ classification.
func (s *AnalyticsService) Segment(ctx context.Context, lookbackDays int) (*domain.SegmentationReport, error) {
	key := cache.Key("ai:segmentation", map[string]interface{}{"days": lookbackDays})
	v, err := s.cached(key, s.ttl.SegmentationTTLSeconds, func() (interface{}, error) {
		return s.engine.Segment(ctx, lookbackDays), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SegmentationReport), nil
}

// Replenish serves reorder recommendations under the named policy.
func (s *AnalyticsService) Replenish(ctx context.Context, policyName string) (*domain.ReplenishmentReport, error) {
	policy := analytics.PolicyByName(policyName)
	key := cache.Key("ai:replenishment", map[string]interface{}{"engine": policy.Name()})
	v, err := s.cached(key, s.ttl.ReplenishmentTTLSeconds, func() (interface{}, error) {
		return s.engine.Replenish(ctx, policy), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ReplenishmentReport), nil
}

// ReplenishWithROP augments the recommendations with a reorder point and a
// suggested order quantity derived from lead-time assumptions.
func (s *AnalyticsService) ReplenishWithROP(ctx context.Context, policyName string, leadTimeDays, safetyDays int) (*domain.ReplenishmentReport, error) {
	base, err := s.Replenish(ctx, policyName)
	if err != nil {
		return nil, err
	}

	leadTimeDays = max(leadTimeDays, 0)
	safetyDays = max(safetyDays, 0)

	// Copy before decorating: the cached report is shared.
	augmented := *base
	augmented.Recommendations = make([]domain.ReplenishmentRecommendation, len(base.Recommendations))
	copy(augmented.Recommendations, base.Recommendations)

	for i := range augmented.Recommendations {
		rec := &augmented.Recommendations[i]
		rop := rec.AvgDailySales*float64(leadTimeDays) + rec.AvgDailySales*float64(safetyDays)
		rop = math.Round(rop*100) / 100
		suggested := math.Max(0, math.Round((rop-rec.CurrentStock)*100)/100)
		rec.ROP = &rop
		rec.SuggestedOrderQty = &suggested
	}
	augmented.ROPParams = &domain.ROPParams{
		DefaultLeadTimeDays: leadTimeDays,
		SafetyStockDays:     safetyDays,
	}
	return &augmented, nil
}

// PredictDemand serves per-product 30-day demand predictions.
func (s *AnalyticsService) PredictDemand(ctx context.Context, lookbackDays, limit int) (*domain.DemandReport, error) {
	key := cache.Key("ai:demand", map[string]interface{}{
		"lookback_days": lookbackDays, "limit": limit,
	})
	v, err := s.cached(key, s.ttl.DemandTTLSeconds, func() (interface{}, error) {
		return s.engine.PredictDemand(ctx, lookbackDays, limit), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DemandReport), nil
}

// StockAlerts passes through uncached: alerting on stale stock defeats the point.
func (s *AnalyticsService) StockAlerts(ctx context.Context) (*domain.AlertReport, error) {
	return s.engine.StockAlerts(ctx)
}

// TrainTopProducts retrains models for the best sellers; invoked by the
// nightly scheduler. Per-product failures are logged and skipped so one bad
// product does not abort the batch.
func (s *AnalyticsService) TrainTopProducts(ctx context.Context, rankWindowDays, topN, lookbackDays int) (int, error) {
	ids, err := s.engine.TopProducts(ctx, rankWindowDays, topN)
	if err != nil {
		return 0, err
	}

	trained := 0
	for _, pid := range ids {
		result, err := s.engine.TrainModel(ctx, pid, lookbackDays)
		if err != nil {
			log.Warn().Err(err).Int("product_id", pid).Msg("scheduled training failed")
			continue
		}
		if result.Trained {
			trained++
		}
	}
	s.cache.Clear()
	return trained, nil
}

func allZero(series []float64) bool {
	for _, v := range series {
		if v != 0 {
			return false
		}
	}
	return true
}
