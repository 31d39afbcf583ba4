package collector

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/s0_data"
	"github.com/wonny/bist-swing/pkg/logger"
)

// Collector copies histories from a remote provider into the local price store
// ⭐ SSOT: price backfill orchestration lives here only
type Collector struct {
	source contracts.TimeSeriesProvider
	store  s0_data.HistoryStore
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	Workers  int // Number of concurrent workers
	Lookback time.Duration
}

// NewCollector creates a new Collector instance
func NewCollector(source contracts.TimeSeriesProvider, store s0_data.HistoryStore, log *logger.Logger) *Collector {
	return &Collector{
		source: source,
		store:  store,
		logger: log.WithComponent("collector"),
	}
}

// FetchResult represents the result of one ticker backfill
type FetchResult struct {
	Ticker   string
	BarCount int
	Error    error
}

// Backfill fetches and stores every ticker. Results come back in input order.
func (c *Collector) Backfill(ctx context.Context, tickers []string, cfg Config) []FetchResult {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	c.logger.WithFields(map[string]interface{}{
		"tickers":  len(tickers),
		"lookback": cfg.Lookback.String(),
		"workers":  workers,
	}).Info("Starting price backfill")

	results := make([]FetchResult, len(tickers))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.collect(ctx, workerID, tickers[i], cfg.Lookback)
			}
		}(w)
	}

	for i := range tickers {
		if ctx.Err() != nil {
			results[i] = FetchResult{Ticker: tickers[i], Error: ctx.Err()}
			continue
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"success": len(results) - failed,
		"failed":  failed,
		"total":   len(results),
	}).Info("Price backfill completed")

	return results
}

func (c *Collector) collect(ctx context.Context, workerID int, ticker string, lookback time.Duration) FetchResult {
	if err := ctx.Err(); err != nil {
		return FetchResult{Ticker: ticker, Error: err}
	}

	history, err := c.source.Fetch(ctx, ticker, lookback)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"worker": workerID,
			"ticker": ticker,
		}).Warn("Failed to fetch prices")
		return FetchResult{Ticker: ticker, Error: err}
	}

	if err := c.store.SaveHistory(ctx, history); err != nil {
		c.logger.WithError(err).WithTicker(ticker).Error("Failed to save prices")
		return FetchResult{Ticker: ticker, Error: err}
	}

	return FetchResult{Ticker: ticker, BarCount: history.Len()}
}
