// internal/analytics/alerts_test.go
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

func TestStockAlerts(t *testing.T) {
	client := &stubClient{products: []erp.Record{
		productRec(1, "Gone", 0),
		productRec(2, "Running Low", 4),
		productRec(3, "Fine", 50),
	}}
	engine := newTestEngine(t, client)

	report, err := engine.StockAlerts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalAlerts)

	assert.Equal(t, domain.AlertOutOfStock, report.Alerts[0].Type)
	assert.Equal(t, 1, report.Alerts[0].ProductID)
	assert.Equal(t, "Product is out of stock", report.Alerts[0].Message)

	assert.Equal(t, domain.AlertLowStock, report.Alerts[1].Type)
	assert.Equal(t, 2, report.Alerts[1].ProductID)
	assert.Equal(t, "Stock level low: 4 units", report.Alerts[1].Message)
}

func TestStockAlertsThresholdBoundary(t *testing.T) {
	// Exactly 10 units is not low stock; 9.5 is.
	client := &stubClient{products: []erp.Record{
		productRec(1, "At Threshold", 10),
		productRec(2, "Just Under", 9.5),
	}}
	engine := newTestEngine(t, client)

	report, err := engine.StockAlerts(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalAlerts)
	assert.Equal(t, 2, report.Alerts[0].ProductID)
	assert.Equal(t, "Stock level low: 9.5 units", report.Alerts[0].Message)
}

func TestStockAlertsHealthyCatalog(t *testing.T) {
	client := &stubClient{products: []erp.Record{productRec(1, "Fine", 100)}}
	engine := newTestEngine(t, client)

	report, err := engine.StockAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalAlerts)
	assert.NotNil(t, report.Alerts)
}

func TestStockAlertsPropagatesFetchError(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("erp unavailable")}
	engine := newTestEngine(t, client)

	_, err := engine.StockAlerts(context.Background())
	assert.Error(t, err)
}
