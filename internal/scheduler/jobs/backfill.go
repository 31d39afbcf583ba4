package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/s0_data/collector"
	"github.com/wonny/bist-swing/pkg/logger"
)

// DefaultBackfillSchedule runs before the scan so stored bars are fresh
const DefaultBackfillSchedule = "0 0 18 * * 1-5"

// BackfillJob copies recent bars for the universe into the price store
type BackfillJob struct {
	collector *collector.Collector
	universe  contracts.UniverseBuilder
	config    collector.Config
	logger    *logger.Logger
}

// NewBackfillJob creates a backfill job
func NewBackfillJob(c *collector.Collector, universe contracts.UniverseBuilder, cfg collector.Config, log *logger.Logger) *BackfillJob {
	return &BackfillJob{
		collector: c,
		universe:  universe,
		config:    cfg,
		logger:    log.WithComponent("backfill_job"),
	}
}

func (j *BackfillJob) Name() string     { return "price_backfill" }
func (j *BackfillJob) Schedule() string { return DefaultBackfillSchedule }

// Run fails only when every ticker failed
func (j *BackfillJob) Run(ctx context.Context) error {
	universe, err := j.universe.Build(ctx)
	if err != nil {
		return fmt.Errorf("build universe: %w", err)
	}

	start := time.Now()
	results := j.collector.Backfill(ctx, universe.Tickers, j.config)

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if len(results) > 0 && failed == len(results) {
		return fmt.Errorf("backfill failed for all %d tickers", failed)
	}

	j.logger.WithFields(map[string]interface{}{
		"tickers":  len(results),
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("Backfill finished")
	return nil
}
