// internal/analytics/replenishment.go
package analytics

import (
	"context"
	"fmt"
	"math"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/rs/zerolog/log"
)

// replenishmentWindowDays is the sales window every policy evaluates against.
const replenishmentWindowDays = 90

// SaleLine is the minimal sales fact the replenishment policies consume:
// the calendar date of the sale and the quantity sold.
type SaleLine struct {
	Date string
	Qty  float64
}

// ReplenishmentPolicy turns the catalog plus its sales history into reorder
// recommendations. Two divergent heuristics ship side by side on purpose;
// downstream consumers depend on each one's numeric behavior, so neither
// replaces the other.
type ReplenishmentPolicy interface {
	Name() string
	Evaluate(products []domain.Product, salesByProduct map[int][]SaleLine) []domain.ReplenishmentRecommendation
}

// Replenish runs the given policy over the whole catalog. A failed catalog or
// sales fetch degrades to an empty report.
func (e *Engine) Replenish(ctx context.Context, policy ReplenishmentPolicy) *domain.ReplenishmentReport {
	report := &domain.ReplenishmentReport{
		Engine:          policy.Name(),
		GeneratedAt:     e.now(),
		Recommendations: []domain.ReplenishmentRecommendation{},
	}

	products, err := e.fetchProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("replenishment: product fetch failed, returning empty result")
		return report
	}
	report.TotalAnalyzed = len(products)

	lines, err := e.fetchAllSales(ctx, replenishmentWindowDays,
		[]string{erp.FieldProductID, erp.FieldQty, erp.FieldCreateDate})
	if err != nil {
		log.Warn().Err(err).Msg("replenishment: sales fetch failed, treating catalog as demandless")
		lines = nil
	}

	salesByProduct := make(map[int][]SaleLine)
	for _, ln := range lines {
		pid, ok := ln.Int(erp.FieldProductID)
		if !ok {
			continue
		}
		date := ln.String(erp.FieldCreateDate)
		if len(date) > 10 {
			date = date[:10]
		}
		salesByProduct[pid] = append(salesByProduct[pid], SaleLine{
			Date: date,
			Qty:  ln.Float(erp.FieldQty),
		})
	}

	report.Recommendations = policy.Evaluate(products, salesByProduct)
	if report.Recommendations == nil {
		report.Recommendations = []domain.ReplenishmentRecommendation{}
	}
	return report
}

// avgDailyDemand averages sold quantity over the distinct days that saw any
// sale, not over the whole window. No sales means zero demand.
func avgDailyDemand(lines []SaleLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	total := 0.0
	days := make(map[string]struct{})
	for _, ln := range lines {
		total += ln.Qty
		if ln.Date != "" {
			days[ln.Date] = struct{}{}
		}
	}
	return total / float64(max(len(days), 1))
}

// coverPtr rounds a finite days-of-cover for output; infinite cover (zero
// demand) stays nil.
func coverPtr(cover float64, decimals int) *float64 {
	if math.IsInf(cover, 0) {
		return nil
	}
	v := roundTo(cover, decimals)
	return &v
}

// PercentileCappedPolicy classifies products as FAST/NORMAL/SLOW against the
// portfolio's demand percentiles and caps each product's effective demand at
// the 70th percentile to suppress outliers.
type PercentileCappedPolicy struct{}

func NewPercentileCappedPolicy() *PercentileCappedPolicy { return &PercentileCappedPolicy{} }

func (p *PercentileCappedPolicy) Name() string { return "rule-based-replenishment-v3" }

func (p *PercentileCappedPolicy) Evaluate(products []domain.Product, salesByProduct map[int][]SaleLine) []domain.ReplenishmentRecommendation {
	demandByProduct := make(map[int]float64, len(products))
	positive := make([]float64, 0, len(products))
	for _, prod := range products {
		d := avgDailyDemand(salesByProduct[prod.ID])
		demandByProduct[prod.ID] = d
		if d > 0 {
			positive = append(positive, d)
		}
	}
	if len(positive) == 0 {
		return []domain.ReplenishmentRecommendation{}
	}

	p50 := percentile(positive, 50)
	p70 := percentile(positive, 70)
	p85 := percentile(positive, 85)

	recs := make([]domain.ReplenishmentRecommendation, 0, len(products))
	for _, prod := range products {
		stock := prod.QtyAvailable
		rawDaily := demandByProduct[prod.ID]

		effective := 0.0
		if rawDaily > 0 {
			effective = math.Min(rawDaily, p70)
		}

		var category string
		var targetDays int
		switch {
		case rawDaily >= p85:
			category, targetDays = "FAST", 30
		case rawDaily >= p50:
			category, targetDays = "NORMAL", 45
		default:
			category, targetDays = "SLOW", 60
		}

		cover := math.Inf(1)
		if effective > 0 {
			cover = stock / effective
		}

		var decision, risk string
		switch {
		case cover < 10:
			decision, risk = domain.DecisionReorder, domain.RiskHigh
		case cover < 25:
			decision, risk = domain.DecisionMonitor, domain.RiskMedium
		default:
			decision, risk = domain.DecisionOK, domain.RiskLow
		}

		reorderQty := math.Max(0, effective*float64(targetDays)-stock)
		reorderQty = math.Min(reorderQty, effective*60)

		confidence := 0.5
		if p70 > 0 {
			confidence = roundTo(math.Min(1, rawDaily/p70), 2)
		}

		recs = append(recs, domain.ReplenishmentRecommendation{
			ProductID:            prod.ID,
			ProductName:          prod.Name,
			Category:             category,
			CurrentStock:         roundTo(stock, 2),
			AvgDailySales:        roundTo(rawDaily, 2),
			EffectiveDailyDemand: roundTo(effective, 2),
			DaysOfCover:          coverPtr(cover, 1),
			RecommendedQty:       int(reorderQty),
			Decision:             decision,
			RiskLevel:            risk,
			ConfidenceScore:      confidence,
			Explanation: fmt.Sprintf(
				"%s product with target %d days coverage. Demand capped using portfolio percentile.",
				category, targetDays),
		})
	}
	return recs
}

// RelativeCoverPolicy ranks every product's days of cover against the 30th
// and 70th percentile of the catalog's finite covers: the bottom band
// reorders, the middle band is monitored.
type RelativeCoverPolicy struct{}

func NewRelativeCoverPolicy() *RelativeCoverPolicy { return &RelativeCoverPolicy{} }

func (p *RelativeCoverPolicy) Name() string { return "relative-stock-replenishment-v2" }

// reorderHorizonDays is the fixed horizon a REORDER decision buys stock for.
const reorderHorizonDays = 20

func (p *RelativeCoverPolicy) Evaluate(products []domain.Product, salesByProduct map[int][]SaleLine) []domain.ReplenishmentRecommendation {
	type productCover struct {
		product domain.Product
		avg     float64
		cover   float64
	}

	covers := make([]productCover, 0, len(products))
	finite := make([]float64, 0, len(products))
	for _, prod := range products {
		avg := avgDailyDemand(salesByProduct[prod.ID])
		cover := math.Inf(1)
		if avg > 0 {
			cover = prod.QtyAvailable / avg
		}
		covers = append(covers, productCover{product: prod, avg: avg, cover: cover})
		if !math.IsInf(cover, 0) {
			finite = append(finite, cover)
		}
	}
	if len(finite) == 0 {
		return []domain.ReplenishmentRecommendation{}
	}

	q30 := percentile(finite, 30)
	q70 := percentile(finite, 70)

	recs := make([]domain.ReplenishmentRecommendation, 0, len(covers))
	for _, pc := range covers {
		var decision, risk string
		switch {
		case pc.cover <= q30:
			decision, risk = domain.DecisionReorder, domain.RiskHigh
		case pc.cover <= q70:
			decision, risk = domain.DecisionMonitor, domain.RiskMedium
		default:
			decision, risk = domain.DecisionOK, domain.RiskLow
		}

		qty := 0
		if decision == domain.DecisionReorder {
			qty = int(pc.avg * reorderHorizonDays)
		}

		confidence := roundTo(math.Min(pc.avg/math.Max(pc.cover, 1), 1), 2)

		recs = append(recs, domain.ReplenishmentRecommendation{
			ProductID:       pc.product.ID,
			ProductName:     pc.product.Name,
			CurrentStock:    roundTo(pc.product.QtyAvailable, 2),
			AvgDailySales:   roundTo(pc.avg, 2),
			DaysOfCover:     coverPtr(pc.cover, 2),
			RecommendedQty:  qty,
			Decision:        decision,
			RiskLevel:       risk,
			ConfidenceScore: confidence,
			Explanation:     explain(decision, risk, pc.product.ID, pc.cover, pc.avg, pc.product.QtyAvailable),
		})
	}
	return recs
}

// PolicyByName resolves a policy selector from the API/CLI surface.
// Unrecognized names fall back to the relative-cover policy, the original
// default engine.
func PolicyByName(name string) ReplenishmentPolicy {
	switch name {
	case "percentile", "percentile-capped", "rule-based-replenishment-v3":
		return NewPercentileCappedPolicy()
	default:
		return NewRelativeCoverPolicy()
	}
}
