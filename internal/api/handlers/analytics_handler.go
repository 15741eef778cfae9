// internal/api/handlers/analytics_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/stocksense/internal/domain"
	"github.com/andresuchdata/stocksense/internal/export"
	"github.com/andresuchdata/stocksense/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultHorizonDays  = 30
	defaultLookbackDays = 180
	defaultAnomalyDays  = 30
	defaultSegmentDays  = 60
	defaultDemandDays   = 60
	defaultDemandLimit  = 200
	defaultZThreshold   = 3.0
	defaultLeadTimeDays = 7
	defaultSafetyDays   = 3
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.DefaultQuery(name, "")); err == nil && v > 0 {
		return v
	}
	return fallback
}

func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(c.DefaultQuery(name, ""), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

func (h *AnalyticsHandler) productID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("product_id")))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

// Forecast serves the ML forecast with heuristic fallback.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	pid, ok := h.productID(c)
	if !ok {
		return
	}
	horizon := queryInt(c, "horizon_days", defaultHorizonDays)
	lookback := queryInt(c, "lookback_days", defaultLookbackDays)

	result, err := h.service.Forecast(c.Request.Context(), pid, horizon, lookback)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("forecast failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForecastHeuristic serves the baseline+drift forecast only.
func (h *AnalyticsHandler) ForecastHeuristic(c *gin.Context) {
	pid, ok := h.productID(c)
	if !ok {
		return
	}
	horizon := queryInt(c, "horizon_days", defaultHorizonDays)
	lookback := queryInt(c, "lookback_days", defaultLookbackDays)

	result, err := h.service.ForecastHeuristic(c.Request.Context(), pid, horizon, lookback)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("forecast failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForecastML serves the model-based forecast; a load failure comes back as a
// structured error payload rather than a 5xx.
func (h *AnalyticsHandler) ForecastML(c *gin.Context) {
	pid, ok := h.productID(c)
	if !ok {
		return
	}
	horizon := queryInt(c, "horizon_days", defaultHorizonDays)
	lookback := queryInt(c, "lookback_days", defaultLookbackDays)

	result, err := h.service.ForecastML(c.Request.Context(), pid, horizon, lookback)
	if err != nil {
		var loadErr *domain.ModelLoadError
		if errors.As(err, &loadErr) {
			c.JSON(http.StatusOK, gin.H{"product_id": pid, "error": "model_load_failed"})
			return
		}
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("ml forecast failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// TrainModel triggers synchronous training for one product.
func (h *AnalyticsHandler) TrainModel(c *gin.Context) {
	pid, ok := h.productID(c)
	if !ok {
		return
	}
	lookback := queryInt(c, "lookback_days", defaultLookbackDays)

	result, err := h.service.TrainModel(c.Request.Context(), pid, lookback)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, fmt.Sprintf("training failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Anomalies serves z-score outlier flags.
func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	days := queryInt(c, "days", defaultAnomalyDays)
	z := queryFloat(c, "z", defaultZThreshold)

	report, err := h.service.DetectAnomalies(c.Request.Context(), days, z)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("anomaly detection failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Segmentation serves the ABC/XYZ classification.
func (h *AnalyticsHandler) Segmentation(c *gin.Context) {
	days := queryInt(c, "days", defaultSegmentDays)

	report, err := h.service.Segment(c.Request.Context(), days)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("segmentation failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Replenishment serves reorder recommendations under the selected policy.
func (h *AnalyticsHandler) Replenishment(c *gin.Context) {
	policy := strings.TrimSpace(c.Query("policy"))

	report, err := h.service.Replenish(c.Request.Context(), policy)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("replenishment failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReplenishmentROP augments recommendations with reorder-point math.
func (h *AnalyticsHandler) ReplenishmentROP(c *gin.Context) {
	policy := strings.TrimSpace(c.Query("policy"))
	leadTime := queryInt(c, "default_lead_time_days", defaultLeadTimeDays)
	safety := queryInt(c, "safety_stock_days", defaultSafetyDays)

	report, err := h.service.ReplenishWithROP(c.Request.Context(), policy, leadTime, safety)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("replenishment failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ReplenishmentExport streams the recommendations as a CSV or XLSX download.
func (h *AnalyticsHandler) ReplenishmentExport(c *gin.Context) {
	policy := strings.TrimSpace(c.Query("policy"))
	format := strings.ToLower(c.DefaultQuery("format", "csv"))

	report, err := h.service.Replenish(c.Request.Context(), policy)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("replenishment failed: %v", err))
		return
	}

	switch format {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="replenishment.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := export.WriteRecommendationsCSV(c.Writer, report.Recommendations); err != nil {
			log.Error().Err(err).Msg("csv export failed")
		}
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="replenishment.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteRecommendationsXLSX(c.Writer, report.Recommendations); err != nil {
			log.Error().Err(err).Msg("xlsx export failed")
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
	}
}

// Demand serves per-product 30-day demand predictions.
func (h *AnalyticsHandler) Demand(c *gin.Context) {
	lookback := queryInt(c, "lookback_days", defaultDemandDays)
	limit := queryInt(c, "limit", defaultDemandLimit)

	report, err := h.service.PredictDemand(c.Request.Context(), lookback, limit)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("demand prediction failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Alerts serves low-stock and out-of-stock alerts.
func (h *AnalyticsHandler) Alerts(c *gin.Context) {
	report, err := h.service.StockAlerts(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusBadGateway, fmt.Sprintf("alerts failed: %v", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
