// 采集工具：以文字查询搜索餐厅并补齐评论，写出批次 JSON 供 safety-classify 使用
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"haoshiji/internal/config"
	"haoshiji/internal/logger"
	"haoshiji/internal/models"
	"haoshiji/internal/places"
)

var flags struct {
	query      string
	output     string
	minRating  float64
	maxResults int
	maxReviews int
	workers    int
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "places-ingest",
		Short:        "Fetch restaurants and reviews from Google Places into a batch file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	minRating := cfg.Places.MinRating
	if minRating == 0 {
		minRating = 4.0
	}
	f := cmd.Flags()
	f.StringVar(&flags.query, "query", "台北市 大安區 餐廳", "Text Search query")
	f.StringVarP(&flags.output, "output", "o", cfg.Paths.Input, "Batch output path")
	f.Float64Var(&flags.minRating, "min-rating", minRating, "Drop places rated below this")
	f.IntVar(&flags.maxResults, "max-results", cfg.Places.MaxResults, "Maximum places to keep")
	f.IntVar(&flags.maxReviews, "max-reviews", cfg.Places.MaxReviews, "Maximum reviews per place")
	f.IntVarP(&flags.workers, "workers", "w", 4, "Concurrent review fetches")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Places.APIKey == "" {
		return fmt.Errorf("GOOGLE_PLACES_API_KEY is not set")
	}
	l := logger.With("places-ingest")
	c := places.New(cfg.Places.APIKey, cfg.Places.BaseURL, cfg.Places.Language, cfg.PlacesTimeout())
	l.Info("ingest_begin", "query", flags.query, "min_rating", flags.minRating, "max_results", flags.maxResults)
	list, err := c.Collect(ctx, flags.query, places.CollectOptions{
		SearchOptions: places.SearchOptions{MinRating: flags.minRating, MaxResults: flags.maxResults},
		MaxReviews:    flags.maxReviews,
		Workers:       flags.workers,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flags.output), 0o755); err != nil {
		return err
	}
	b, err := models.MarshalPlain(list)
	if err != nil {
		return err
	}
	if err := os.WriteFile(flags.output, append(b, '\n'), 0o644); err != nil {
		return err
	}
	l.Info("ingest_done", "places", len(list), "output", flags.output)
	return nil
}

func main() {
	cfg, cfgErr := config.Load()
	l := logger.Setup()
	if cfgErr != nil {
		l.Error("config_error", "err", cfgErr)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		l.Error("ingest_failed", "err", err)
		stop()
		os.Exit(1)
	}
}
