// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/andresuchdata/stocksense/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	trainRankWindowDays = 60
	trainLookbackDays   = 180
	trainJobTimeout     = 30 * time.Minute
)

// Scheduler owns the nightly model-training job.
type Scheduler struct {
	cron      *cron.Cron
	analytics *service.AnalyticsService
	cfg       config.AnalyticsConfig
}

func New(analytics *service.AnalyticsService, cfg config.AnalyticsConfig) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		analytics: analytics,
		cfg:       cfg,
	}
}

// Start registers the training job and begins the cron loop. Returns an error
// only when the configured cron expression does not parse.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.cfg.TrainCron, s.runTraining)
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Info().
		Str("cron", s.cfg.TrainCron).
		Int("top_n", s.cfg.TrainTopN).
		Int("entry_id", int(id)).
		Msg("model training scheduled")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runTraining() {
	ctx, cancel := context.WithTimeout(context.Background(), trainJobTimeout)
	defer cancel()

	start := time.Now()
	trained, err := s.analytics.TrainTopProducts(ctx, trainRankWindowDays, s.cfg.TrainTopN, trainLookbackDays)
	if err != nil {
		log.Error().Err(err).Msg("scheduled training run failed")
		return
	}
	log.Info().
		Int("trained", trained).
		Dur("elapsed", time.Since(start)).
		Msg("scheduled training run complete")
}
