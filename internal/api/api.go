// internal/api/api.go
package api

import (
	"net/http"
	"time"

	"github.com/andresuchdata/stocksense/internal/api/handlers"
	"github.com/andresuchdata/stocksense/internal/api/middleware"
	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/andresuchdata/stocksense/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface: request-id + logging + recovery
// middleware, CORS, the health probe and the /api/v1/ai route group.
func NewRouter(cfg *config.Config, analytics *service.AnalyticsService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	handler := handlers.NewAnalyticsHandler(analytics)

	ai := router.Group("/api/v1/ai")
	{
		ai.GET("/forecast/:product_id", handler.Forecast)
		ai.GET("/forecast/:product_id/heuristic", handler.ForecastHeuristic)
		ai.GET("/forecast/:product_id/ml", handler.ForecastML)
		ai.POST("/models/:product_id/train", handler.TrainModel)
		ai.GET("/anomalies", handler.Anomalies)
		ai.GET("/segmentation", handler.Segmentation)
		ai.GET("/replenishment", handler.Replenishment)
		ai.GET("/replenishment/rop", handler.ReplenishmentROP)
		ai.GET("/replenishment/export", handler.ReplenishmentExport)
		ai.GET("/demand", handler.Demand)
		ai.GET("/alerts", handler.Alerts)
	}

	return router
}
