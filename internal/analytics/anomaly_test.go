// internal/analytics/anomaly_test.go
package analytics

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAnomaliesFlagsSpike(t *testing.T) {
	// Twenty quiet days at 5 units, then one day at 500.
	client := &stubClient{}
	for d := 1; d <= 20; d++ {
		client.sales = append(client.sales, saleRec(7, 5, d))
	}
	client.sales = append(client.sales, saleRec(7, 500, 0))
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	require.Equal(t, 1, report.Total)

	event := report.Items[0]
	assert.Equal(t, 7, event.ProductID)
	assert.Equal(t, 500.0, event.Quantity)
	assert.Equal(t, domain.DirectionSpike, event.Direction)
	assert.Equal(t, domain.SeverityHigh, event.Severity)
	assert.Greater(t, event.ZScore, 3.0)
	assert.Equal(t, testNow.Format("2006-01-02"), event.Date)
}

func TestDetectAnomaliesFlagsDrop(t *testing.T) {
	client := &stubClient{}
	for d := 1; d <= 20; d++ {
		client.sales = append(client.sales, saleRec(7, 100, d))
	}
	client.sales = append(client.sales, saleRec(7, 1, 0))
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	require.Equal(t, 1, report.Total)
	assert.Equal(t, domain.DirectionDrop, report.Items[0].Direction)
	assert.Less(t, report.Items[0].ZScore, 0.0)
}

func TestDetectAnomaliesConstantSeriesIsQuiet(t *testing.T) {
	// Zero deviation means z-scores of zero, never NaN, never a flag.
	client := &stubClient{sales: steadySales(1, 20, 5)}
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.Items)
}

func TestDetectAnomaliesSkipsSparseProducts(t *testing.T) {
	// Fewer than seven observed days: not scored, even with a wild outlier.
	client := &stubClient{}
	for d := 1; d <= 5; d++ {
		client.sales = append(client.sales, saleRec(3, 5, d))
	}
	client.sales = append(client.sales, saleRec(3, 10000, 0))
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	assert.Equal(t, 0, report.Total)
}

func TestDetectAnomaliesFetchFailureDegradesToEmpty(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("erp unavailable")}
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	assert.Equal(t, 30, report.DaysLookback)
	assert.Equal(t, 0, report.Total)
	assert.NotNil(t, report.Items)
}

func TestDetectAnomaliesOrdersByProductID(t *testing.T) {
	client := &stubClient{}
	for _, pid := range []int{42, 3, 17} {
		for d := 1; d <= 10; d++ {
			client.sales = append(client.sales, saleRec(pid, 5, d))
		}
		client.sales = append(client.sales, saleRec(pid, 300, 0))
	}
	engine := newTestEngine(t, client)

	report := engine.DetectAnomalies(context.Background(), 30, 3.0)
	require.Equal(t, 3, report.Total)

	ids := []int{report.Items[0].ProductID, report.Items[1].ProductID, report.Items[2].ProductID}
	assert.True(t, sort.IntsAreSorted(ids))
	assert.Equal(t, []int{3, 17, 42}, ids)
}
