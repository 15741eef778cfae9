// internal/analytics/mlforecast_test.go
package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/andresuchdata/stocksense/internal/modelstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineWithStore(t *testing.T, client erp.Client) (*Engine, *modelstore.Store) {
	t.Helper()
	store, err := modelstore.New(t.TempDir())
	require.NoError(t, err)
	engine := NewEngine(client, store, WithClock(func() time.Time { return testNow }))
	return engine, store
}

func steadySales(productID, days int, qty float64) []erp.Record {
	records := make([]erp.Record, 0, days)
	for d := 0; d < days; d++ {
		records = append(records, saleRec(productID, qty, d))
	}
	return records
}

func TestTrainModelPersists(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 60, 5)}
	engine, store := newEngineWithStore(t, client)

	result, err := engine.TrainModel(context.Background(), 1, 60)
	require.NoError(t, err)
	assert.True(t, result.Trained)
	assert.Equal(t, 60, result.Samples)
	assert.Equal(t, "poly2-least-squares", result.ModelType)
	require.NotNil(t, result.Metrics)
	// A constant series fits exactly.
	assert.InDelta(t, 0, result.Metrics.MAE, 1e-6)

	model, err := store.Load(1)
	require.NoError(t, err)
	assert.Len(t, model.Coefficients, 3)
	assert.Equal(t, testNow, model.TrainedAt)
}

func TestTrainModelInsufficientHistory(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 5, 3)}
	engine, store := newEngineWithStore(t, client)

	result, err := engine.TrainModel(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.False(t, result.Trained)
	assert.Equal(t, "insufficient_history", result.Reason)
	assert.False(t, store.Exists(1))
}

func TestTrainModelNoSalesAtAll(t *testing.T) {
	engine, store := newEngineWithStore(t, &stubClient{})

	result, err := engine.TrainModel(context.Background(), 1, 180)
	require.NoError(t, err)
	assert.False(t, result.Trained)
	assert.Equal(t, "insufficient_history", result.Reason)
	assert.False(t, store.Exists(1))
}

func TestTrainModelOverwritesPrevious(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 60, 5)}
	engine, store := newEngineWithStore(t, client)

	_, err := engine.TrainModel(context.Background(), 1, 60)
	require.NoError(t, err)
	first, err := store.Load(1)
	require.NoError(t, err)

	client.sales = steadySales(1, 90, 8)
	_, err = engine.TrainModel(context.Background(), 1, 90)
	require.NoError(t, err)
	second, err := store.Load(1)
	require.NoError(t, err)

	assert.NotEqual(t, first.Samples, second.Samples)
	assert.Equal(t, 90, second.Samples)
}

func TestForecastMLTrainsOnDemand(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 60, 5)}
	engine, store := newEngineWithStore(t, client)
	require.False(t, store.Exists(1))

	result, err := engine.ForecastML(context.Background(), 1, 30, 60)
	require.NoError(t, err)
	assert.True(t, store.Exists(1))

	require.Len(t, result.DailyForecast, 30)
	assert.Equal(t, "poly2-least-squares", result.ModelType)
	for i, v := range result.DailyForecast {
		assert.GreaterOrEqual(t, v, 0.0, "day %d", i)
	}
}

func TestForecastMLConstantDemandProjectsFlat(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 90, 10)}
	engine, _ := newEngineWithStore(t, client)

	result, err := engine.ForecastML(context.Background(), 1, 14, 90)
	require.NoError(t, err)
	for i, v := range result.DailyForecast {
		assert.InDelta(t, 10, v, 0.5, "day %d", i)
	}
}

func TestForecastMLConfidenceInterval(t *testing.T) {
	client := &stubClient{sales: steadySales(1, 60, 5)}
	engine, _ := newEngineWithStore(t, client)

	result, err := engine.ForecastML(context.Background(), 1, 30, 60)
	require.NoError(t, err)
	require.NotNil(t, result.ConfidenceInterval)
	require.Len(t, result.ConfidenceInterval.Low, 30)
	require.Len(t, result.ConfidenceInterval.High, 30)

	for i := range result.ConfidenceInterval.Low {
		lo, hi := result.ConfidenceInterval.Low[i], result.ConfidenceInterval.High[i]
		assert.LessOrEqual(t, lo, hi, "day %d", i)
		assert.GreaterOrEqual(t, lo, 0.0, "day %d", i)
	}
}

func TestForecastMLMissingModelAfterFailedTraining(t *testing.T) {
	// Too little history: on-demand training declines, no model lands on
	// disk, so the load reports a structured failure.
	client := &stubClient{sales: steadySales(1, 3, 2)}
	engine, _ := newEngineWithStore(t, client)

	_, err := engine.ForecastML(context.Background(), 1, 30, 10)
	require.Error(t, err)
	var loadErr *domain.ModelLoadError
	assert.ErrorAs(t, err, &loadErr)
}
