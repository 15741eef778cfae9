// cmd/analytics/main.go
//
// Operational CLI for running the analytics pipeline against the ERP without
// the HTTP server: train models, print forecasts and reports, export
// replenishment recommendations.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/stocksense/internal/analytics"
	"github.com/andresuchdata/stocksense/internal/cache"
	"github.com/andresuchdata/stocksense/internal/config"
	"github.com/andresuchdata/stocksense/internal/erp"
	"github.com/andresuchdata/stocksense/internal/export"
	"github.com/andresuchdata/stocksense/internal/modelstore"
	"github.com/andresuchdata/stocksense/internal/service"
	"github.com/andresuchdata/stocksense/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newService() (*service.AnalyticsService, error) {
	cfg := config.Load()
	store, err := modelstore.New(cfg.Analytics.ModelsDir)
	if err != nil {
		return nil, err
	}
	engine := analytics.NewEngine(erp.NewOdooClient(cfg.ERP), store, analytics.WithQueryLimit(cfg.ERP.QueryLimit))
	return service.NewAnalyticsService(engine, cache.NewTTLCache(), cfg.Cache), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	logger.SetLevel("info")

	app := &cli.App{
		Name:  "analytics",
		Usage: "run forecasting, anomaly, segmentation and replenishment jobs from the command line",
		Commands: []*cli.Command{
			{
				Name:  "train",
				Usage: "train a demand model for one product, or the top sellers with --top",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "product", Usage: "product id to train"},
					&cli.IntFlag{Name: "top", Usage: "train the N best-selling products instead"},
					&cli.IntFlag{Name: "lookback", Value: 180, Usage: "history window in days"},
				},
				Action: func(c *cli.Context) error {
					svc, err := newService()
					if err != nil {
						return err
					}
					if top := c.Int("top"); top > 0 {
						trained, err := svc.TrainTopProducts(context.Background(), 60, top, c.Int("lookback"))
						if err != nil {
							return err
						}
						log.Info().Int("trained", trained).Msg("batch training complete")
						return nil
					}
					pid := c.Int("product")
					if pid <= 0 {
						return fmt.Errorf("either --product or --top is required")
					}
					result, err := svc.TrainModel(context.Background(), pid, c.Int("lookback"))
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "forecast",
				Usage: "forecast daily demand for a product",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "product", Required: true, Usage: "product id"},
					&cli.IntFlag{Name: "horizon", Value: 30, Usage: "forecast horizon in days"},
					&cli.IntFlag{Name: "lookback", Value: 180, Usage: "history window in days"},
					&cli.BoolFlag{Name: "heuristic", Usage: "skip the model and use the smoothing forecast"},
				},
				Action: func(c *cli.Context) error {
					svc, err := newService()
					if err != nil {
						return err
					}
					ctx := context.Background()
					if c.Bool("heuristic") {
						result, err := svc.ForecastHeuristic(ctx, c.Int("product"), c.Int("horizon"), c.Int("lookback"))
						if err != nil {
							return err
						}
						return printJSON(result)
					}
					result, err := svc.Forecast(ctx, c.Int("product"), c.Int("horizon"), c.Int("lookback"))
					if err != nil {
						return err
					}
					return printJSON(result)
				},
			},
			{
				Name:  "anomalies",
				Usage: "flag products with outlier daily sales",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 30, Usage: "lookback window in days"},
					&cli.Float64Flag{Name: "z", Value: 3.0, Usage: "z-score threshold"},
				},
				Action: func(c *cli.Context) error {
					svc, err := newService()
					if err != nil {
						return err
					}
					report, err := svc.DetectAnomalies(context.Background(), c.Int("days"), c.Float64("z"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
			{
				Name:  "segment",
				Usage: "classify products into ABC/XYZ segments",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "days", Value: 60, Usage: "lookback window in days"},
				},
				Action: func(c *cli.Context) error {
					svc, err := newService()
					if err != nil {
						return err
					}
					report, err := svc.Segment(context.Background(), c.Int("days"))
					if err != nil {
						return err
					}
					return printJSON(report)
				},
			},
			{
				Name:  "replenish",
				Usage: "print or export replenishment recommendations",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "policy", Usage: "policy name (percentile or relative)"},
					&cli.StringFlag{Name: "out", Usage: "write recommendations to this .csv or .xlsx file"},
				},
				Action: func(c *cli.Context) error {
					svc, err := newService()
					if err != nil {
						return err
					}
					report, err := svc.Replenish(context.Background(), c.String("policy"))
					if err != nil {
						return err
					}

					out := c.String("out")
					if out == "" {
						return printJSON(report)
					}

					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()

					switch {
					case strings.HasSuffix(out, ".csv"):
						err = export.WriteRecommendationsCSV(f, report.Recommendations)
					case strings.HasSuffix(out, ".xlsx"):
						err = export.WriteRecommendationsXLSX(f, report.Recommendations)
					default:
						err = fmt.Errorf("unsupported output extension: %s", out)
					}
					if err != nil {
						return err
					}
					log.Info().Str("file", out).Int("rows", len(report.Recommendations)).Msg("export written")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
