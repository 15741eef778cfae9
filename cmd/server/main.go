// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stocksense/internal/analytics"
	"github.com/andresuchdata/stocksense/internal/api"
	"github.com/andresuchdata/stocksense/internal/cache"
	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/andresuchdata/stocksense/internal/modelstore"
	"github.com/andresuchdata/stocksense/internal/scheduler"
	"github.com/andresuchdata/stocksense/internal/service"
	"github.com/andresuchdata/stocksense/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	if cfg.Server.Mode == "release" {
		logger.SetLevel("info")
	} else {
		logger.SetLevel("debug")
	}

	store, err := modelstore.New(cfg.Analytics.ModelsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open model store")
	}

	erpClient := erp.NewOdooClient(cfg.ERP)
	engine := analytics.NewEngine(erpClient, store, analytics.WithQueryLimit(cfg.ERP.QueryLimit))
	analyticsService := service.NewAnalyticsService(engine, cache.NewTTLCache(), cfg.Cache)

	trainer := scheduler.New(analyticsService, cfg.Analytics)
	if err := trainer.Start(); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Analytics.TrainCron).Msg("Failed to schedule model training")
	}

	router := api.NewRouter(cfg, analyticsService)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting analytics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	trainer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
