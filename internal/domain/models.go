// internal/domain/models.go
package domain

import "time"

// ForecastTotals holds prefix sums of the daily forecast truncated at the horizon.
type ForecastTotals struct {
	Week    float64 `json:"7d"`
	Month   float64 `json:"30d"`
	Quarter float64 `json:"90d"`
}

// ConfidenceInterval is a per-day 95% band around the ML forecast.
type ConfidenceInterval struct {
	Low  []float64 `json:"low"`
	High []float64 `json:"high"`
}

// ForecastResult is the output of a forecast operation, heuristic or ML.
type ForecastResult struct {
	ProductID          int                 `json:"product_id"`
	HorizonDays        int                 `json:"horizon_days"`
	DailyForecast      []float64           `json:"daily_forecast"`
	Totals             ForecastTotals      `json:"totals"`
	ModelType          string              `json:"model_type,omitempty"`
	ConfidenceInterval *ConfidenceInterval `json:"confidence_interval,omitempty"`
}

// ModelMetrics reports training-fit accuracy of a persisted model.
type ModelMetrics struct {
	MAE   float64  `json:"mae"`
	MAPE  *float64 `json:"mape"`
	SMAPE float64  `json:"smape"`
}

// TrainingResult reports the outcome of a model training run.
type TrainingResult struct {
	ProductID int           `json:"product_id"`
	Trained   bool          `json:"trained"`
	Reason    string        `json:"reason,omitempty"`
	Samples   int           `json:"samples,omitempty"`
	Metrics   *ModelMetrics `json:"metrics,omitempty"`
	ModelType string        `json:"model_type,omitempty"`
}

// TrainedModel is the persisted regression artifact for one product.
// It is overwritten, not versioned, on retrain.
type TrainedModel struct {
	ProductID    int          `json:"product_id"`
	Coefficients []float64    `json:"coefficients"`
	Samples      int          `json:"samples"`
	Metrics      ModelMetrics `json:"metrics"`
	ModelType    string       `json:"model_type"`
	TrainedAt    time.Time    `json:"trained_at"`
}

// Anomaly direction and severity values.
const (
	DirectionSpike = "SPIKE"
	DirectionDrop  = "DROP"

	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

// AnomalyEvent is one flagged day for one product.
type AnomalyEvent struct {
	ProductID int     `json:"product_id"`
	Date      string  `json:"date"`
	Quantity  float64 `json:"quantity"`
	ZScore    float64 `json:"z_score"`
	Direction string  `json:"direction"`
	Severity  string  `json:"severity"`
}

// AnomalyReport is the full output of anomaly detection.
type AnomalyReport struct {
	DaysLookback int            `json:"days_lookback"`
	Total        int            `json:"total"`
	Items        []AnomalyEvent `json:"items"`
}

// SegmentAssignment is one product's ABC/XYZ classification.
type SegmentAssignment struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	ABC         string  `json:"abc"`
	XYZ         string  `json:"xyz"`
	Revenue     float64 `json:"revenue"`
}

// SegmentationReport is the full output of catalog segmentation.
type SegmentationReport struct {
	DaysLookback int                 `json:"days_lookback"`
	Total        int                 `json:"total"`
	Items        []SegmentAssignment `json:"items"`
}

// Replenishment decision and risk values.
const (
	DecisionReorder = "REORDER"
	DecisionMonitor = "MONITOR"
	DecisionOK      = "OK"

	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// ReplenishmentRecommendation is one product's reorder decision.
// DaysOfCover is nil when demand is zero (infinite cover).
type ReplenishmentRecommendation struct {
	ProductID            int      `json:"product_id"`
	ProductName          string   `json:"product_name"`
	Category             string   `json:"category,omitempty"`
	CurrentStock         float64  `json:"current_stock"`
	AvgDailySales        float64  `json:"avg_daily_sales"`
	EffectiveDailyDemand float64  `json:"effective_daily_demand,omitempty"`
	DaysOfCover          *float64 `json:"days_of_cover"`
	RecommendedQty       int      `json:"recommended_qty"`
	Decision             string   `json:"decision"`
	RiskLevel            string   `json:"risk_level"`
	ConfidenceScore      float64  `json:"confidence_score"`
	Explanation          string   `json:"explanation"`

	// Reorder-point augmentation, populated on request.
	ROP               *float64 `json:"rop,omitempty"`
	SuggestedOrderQty *float64 `json:"suggested_order_qty,omitempty"`
}

// ReplenishmentReport is the full output of a replenishment run.
type ReplenishmentReport struct {
	Engine          string                        `json:"engine"`
	GeneratedAt     time.Time                     `json:"generated_at"`
	TotalAnalyzed   int                           `json:"total_products_analyzed"`
	Recommendations []ReplenishmentRecommendation `json:"replenishment_recommendations"`
	ROPParams       *ROPParams                    `json:"rop_params,omitempty"`
}

// ROPParams documents the lead-time assumptions used for the ROP augmentation.
type ROPParams struct {
	DefaultLeadTimeDays int `json:"default_lead_time_days"`
	SafetyStockDays     int `json:"safety_stock_days"`
}

// Demand trend values.
const (
	TrendUp     = "UP"
	TrendDown   = "DOWN"
	TrendStable = "STABLE"
)

// DemandPrediction is a per-product 30-day demand estimate.
type DemandPrediction struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Predicted30d float64 `json:"predicted_30d_demand"`
	Trend        string  `json:"trend"`
	Confidence   float64 `json:"confidence"`
}

// DemandReport wraps demand predictions for the API surface.
type DemandReport struct {
	Total int                `json:"total"`
	Items []DemandPrediction `json:"items"`
}

// Stock alert types.
const (
	AlertOutOfStock = "OUT_OF_STOCK"
	AlertLowStock   = "LOW_STOCK"
)

// StockAlert flags a product with critically low inventory.
type StockAlert struct {
	Type        string `json:"type"`
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Message     string `json:"message"`
}

// AlertReport wraps stock alerts for the API surface.
type AlertReport struct {
	TotalAlerts int          `json:"total_alerts"`
	Alerts      []StockAlert `json:"alerts"`
}

// Product is the catalog view the engines consume: identity plus on-hand stock.
type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	QtyAvailable float64 `json:"qty_available"`
}
