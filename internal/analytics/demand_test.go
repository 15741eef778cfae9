// internal/analytics/demand_test.go
package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictDemandTrends(t *testing.T) {
	client := &stubClient{
		products: []erp.Record{
			productRec(1, "Climber", 100),
			productRec(2, "Steady", 100),
		},
	}
	for d := 0; d < 30; d++ {
		// Product 1 climbs from 1 to 30 units/day; product 2 stays at 5.
		client.sales = append(client.sales, saleRec(1, float64(30-d), d))
		client.sales = append(client.sales, saleRec(2, 5, d))
	}
	engine := newTestEngine(t, client)

	report := engine.PredictDemand(context.Background(), 30, 0)
	require.Equal(t, 2, report.Total)

	byID := make(map[int]domain.DemandPrediction)
	for _, item := range report.Items {
		byID[item.ProductID] = item
	}

	climber := byID[1]
	assert.Equal(t, domain.TrendUp, climber.Trend)
	assert.Greater(t, climber.Predicted30d, 0.0)
	assert.Greater(t, climber.Confidence, 0.3)

	steady := byID[2]
	assert.Equal(t, domain.TrendStable, steady.Trend)
	assert.InDelta(t, 150, steady.Predicted30d, 1e-6)
}

func TestPredictDemandNoHistory(t *testing.T) {
	client := &stubClient{
		products: []erp.Record{productRec(9, "Dust Collector", 40)},
	}
	engine := newTestEngine(t, client)

	report := engine.PredictDemand(context.Background(), 30, 0)
	require.Equal(t, 1, report.Total)

	item := report.Items[0]
	assert.Equal(t, 0.0, item.Predicted30d)
	assert.Equal(t, domain.TrendStable, item.Trend)
	assert.Equal(t, 0.3, item.Confidence)
}

func TestPredictDemandLimit(t *testing.T) {
	client := &stubClient{}
	for pid := 1; pid <= 5; pid++ {
		client.products = append(client.products, productRec(pid, fmt.Sprintf("P%d", pid), 10))
	}
	engine := newTestEngine(t, client)

	report := engine.PredictDemand(context.Background(), 30, 2)
	assert.Equal(t, 2, report.Total)
	assert.Len(t, report.Items, 2)
}

func TestPredictDemandFetchFailure(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("erp unavailable")}
	engine := newTestEngine(t, client)

	report := engine.PredictDemand(context.Background(), 30, 0)
	assert.Equal(t, 0, report.Total)
	assert.NotNil(t, report.Items)
}

func TestDemandConfidenceBounds(t *testing.T) {
	assert.GreaterOrEqual(t, demandConfidence(0, 5, 0), 0.2)
	assert.LessOrEqual(t, demandConfidence(365, 0, 10000), 0.98)
	// More history and samples beats sparse, noisy data.
	assert.Greater(t, demandConfidence(90, 0.1, 200), demandConfidence(3, 2.0, 1))
}
