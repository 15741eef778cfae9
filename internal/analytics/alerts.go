// internal/analytics/alerts.go
package analytics

import (
	"context"
	"fmt"

	"github.com/andresuchdata/stocksense/internal/domain"
)

// lowStockThreshold is the unit count below which a LOW_STOCK alert fires.
const lowStockThreshold = 10

// StockAlerts flags out-of-stock and low-stock products across the catalog.
func (e *Engine) StockAlerts(ctx context.Context) (*domain.AlertReport, error) {
	products, err := e.fetchProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("alerts: product fetch failed: %w", err)
	}

	alerts := []domain.StockAlert{}
	for _, prod := range products {
		switch {
		case prod.QtyAvailable == 0:
			alerts = append(alerts, domain.StockAlert{
				Type:        domain.AlertOutOfStock,
				ProductID:   prod.ID,
				ProductName: prod.Name,
				Message:     "Product is out of stock",
			})
		case prod.QtyAvailable < lowStockThreshold:
			alerts = append(alerts, domain.StockAlert{
				Type:        domain.AlertLowStock,
				ProductID:   prod.ID,
				ProductName: prod.Name,
				Message:     fmt.Sprintf("Stock level low: %g units", prod.QtyAvailable),
			})
		}
	}

	return &domain.AlertReport{TotalAlerts: len(alerts), Alerts: alerts}, nil
}
