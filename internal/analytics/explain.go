// internal/analytics/explain.go
package analytics

import (
	"fmt"
	"math"

	"github.com/andresuchdata/stocksense/internal/domain"
)

// fallbackExplanation covers decision/risk pairs without templates and
// products whose cover is infinite (no recorded demand).
const fallbackExplanation = "Stock analysis: inventory position appears adequate."

// explain renders the recommendation text for a decision/risk pair. Template
// choice is a pure function of the product id, so repeated runs over the same
// catalog produce identical output.
func explain(decision, risk string, productID int, cover, avgSales, stock float64) string {
	if math.IsInf(cover, 0) {
		return fallbackExplanation
	}

	var options []string
	switch decision + "_" + risk {
	case domain.DecisionReorder + "_" + domain.RiskHigh:
		options = []string{
			fmt.Sprintf("Critical stock level: only %.1f days of inventory available. Immediate replenishment required.", cover),
			fmt.Sprintf("Stock depletion imminent with %.0f units sold daily. Order now to prevent stockout.", avgSales),
			fmt.Sprintf("Inventory critically low at %.0f units. Expected to run out within %.1f days.", stock, cover),
			fmt.Sprintf("Below safety stock threshold. High sales velocity (%.0f/day) depletes supply rapidly.", avgSales),
			fmt.Sprintf("Emergency reorder needed: stock covers less than %.1f days of operations.", cover),
		}
	case domain.DecisionMonitor + "_" + domain.RiskMedium:
		options = []string{
			fmt.Sprintf("Stock level is moderate with %.1f days of coverage. Monitor closely for trends.", cover),
			fmt.Sprintf("Adequate inventory currently (%.0f units), but approaching reorder point. Plan replenishment soon.", stock),
			fmt.Sprintf("Average daily sales of %.0f units indicates moderate consumption. Watch for increases.", avgSales),
			"Stock sufficient for near-term operations. Recommend scheduling purchase order within 1-2 weeks.",
			fmt.Sprintf("Current inventory provides %.1f days of buffer. Track sales velocity for optimal timing.", cover),
		}
	case domain.DecisionOK + "_" + domain.RiskLow:
		options = []string{
			fmt.Sprintf("Stock position healthy with %.1f days of coverage. No immediate action required.", cover),
			fmt.Sprintf("Inventory well-stocked at %.0f units. Current consumption rate (%.0f/day) is sustainable.", stock, avgSales),
			fmt.Sprintf("Strong stock position. Ample supply for %.1f days of operations at current pace.", cover),
			"No concerns: stock level is optimal relative to demand patterns.",
			fmt.Sprintf("Inventory in excellent condition. Continue monitoring, next reorder in %d days.", 30-int(cover)),
		}
	default:
		return fallbackExplanation
	}

	idx := productID % len(options)
	if idx < 0 {
		idx += len(options)
	}
	return options[idx]
}
