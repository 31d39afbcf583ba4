// Package s4_scan drives the fetch → frame → score pipeline across a ticker universe.
package s4_scan

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/metrics"
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
	"github.com/wonny/bist-swing/pkg/logger"
)

// Config holds scanner settings
type Config struct {
	Lookback    time.Duration
	Concurrency int // tickers evaluated at once, 1 = strictly sequential
}

// DefaultConfig returns a sequential scan over 180 calendar days
func DefaultConfig() Config {
	return Config{
		Lookback:    180 * 24 * time.Hour,
		Concurrency: 1,
	}
}

// ProgressFunc observes each processed ticker during Scan
type ProgressFunc func(event contracts.ScanEvent)

// Scanner scores every ticker of a universe and ranks the results
// ⭐ SSOT: S4 scan orchestration lives here only
type Scanner struct {
	provider contracts.TimeSeriesProvider
	frames   *s2_signals.FrameBuilder
	scorer   *s3_scoring.Scorer
	config   Config
	metrics  *metrics.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewScanner creates a scanner. m may be nil.
func NewScanner(
	provider contracts.TimeSeriesProvider,
	frames *s2_signals.FrameBuilder,
	scorer *s3_scoring.Scorer,
	cfg Config,
	m *metrics.Metrics,
	log *logger.Logger,
) *Scanner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultConfig().Lookback
	}
	return &Scanner{
		provider: provider,
		frames:   frames,
		scorer:   scorer,
		config:   cfg,
		metrics:  m,
		logger:   log.WithComponent("scanner"),
		now:      time.Now,
	}
}

// outcome is one ticker's evaluation, tagged with its input position
type outcome struct {
	index   int
	ticker  string
	result  *contracts.ScoreResult
	skip    *contracts.SkipRecord
	aborted bool // fetch interrupted by cancellation
}

// ScoreTicker runs the pipeline for a single ticker
func (s *Scanner) ScoreTicker(ctx context.Context, ticker string) (*contracts.ScoreResult, error) {
	history, err := s.fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return s.score(history)
}

// Stream evaluates tickers and emits one event per processed ticker.
// The channel closes when the scan finishes or ctx is cancelled.
func (s *Scanner) Stream(ctx context.Context, tickers []string) <-chan contracts.ScanEvent {
	out := make(chan contracts.ScanEvent)
	go func() {
		defer close(out)
		s.run(ctx, s.dedupe(tickers), func(o outcome, p contracts.Progress) {
			select {
			case out <- event(o, p):
			case <-ctx.Done():
			}
		})
	}()
	return out
}

// Scan evaluates every ticker and returns the ranked report.
// On cancellation the partial report is returned together with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, tickers []string, onProgress ProgressFunc) (*contracts.ScanReport, error) {
	unique := s.dedupe(tickers)

	report := &contracts.ScanReport{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		Total:     len(unique),
		Results:   []contracts.ScoreResult{},
		Skipped:   []contracts.SkipRecord{},
	}

	log := s.logger.WithField("scan_id", report.ID)
	log.WithFields(map[string]interface{}{
		"tickers":     report.Total,
		"concurrency": s.config.Concurrency,
	}).Info("Scan started")

	if s.metrics != nil {
		s.metrics.ScanInFlight.Set(1)
		defer s.metrics.ScanInFlight.Set(0)
	}

	var outcomes []outcome
	report.Attempted = s.run(ctx, unique, func(o outcome, p contracts.Progress) {
		outcomes = append(outcomes, o)
		if onProgress != nil {
			onProgress(event(o, p))
		}
	})

	report.Completed = len(outcomes)
	report.Results, report.Skipped = rank(outcomes)
	report.FinishedAt = s.now()
	report.Cancelled = ctx.Err() != nil

	if s.metrics != nil {
		s.metrics.ObserveReport(report)
	}

	log.WithFields(map[string]interface{}{
		"attempted": report.Attempted,
		"completed": report.Completed,
		"scored":    len(report.Results),
		"skipped":   len(report.Skipped),
		"cancelled": report.Cancelled,
		"duration":  report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Scan finished")

	if report.Cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// run dispatches tickers to at most Concurrency workers and calls emit once per
// completed ticker from a single goroutine, so Progress.Completed counts up by one.
// It returns the number of tickers whose evaluation started before cancellation.
func (s *Scanner) run(ctx context.Context, tickers []string, emit func(outcome, contracts.Progress)) int {
	total := len(tickers)
	results := make(chan outcome)
	var attempted atomic.Int64

	go func() {
		var g errgroup.Group
		g.SetLimit(s.config.Concurrency)

		for i, ticker := range tickers {
			if ctx.Err() != nil {
				break
			}
			i, ticker := i, ticker
			g.Go(func() error {
				// a slot may free up only after cancellation
				if ctx.Err() != nil {
					return nil
				}
				attempted.Add(1)
				results <- s.evaluate(ctx, i, ticker)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	completed := 0
	for o := range results {
		if o.aborted {
			continue
		}
		completed++
		s.observe(o)
		emit(o, contracts.Progress{Completed: completed, Total: total, Ticker: o.ticker})
	}
	return int(attempted.Load())
}

func (s *Scanner) evaluate(ctx context.Context, index int, ticker string) outcome {
	o := outcome{index: index, ticker: ticker}

	history, err := s.fetch(ctx, ticker)
	if err != nil {
		if ctx.Err() != nil {
			o.aborted = true
			return o
		}
		o.skip = skipFor(ticker, err)
		return o
	}

	result, err := s.score(history)
	if err != nil {
		o.skip = skipFor(ticker, err)
		return o
	}
	o.result = result
	return o
}

// fetch calls the provider and maps every non-cancellation failure to ErrFetchFailed
func (s *Scanner) fetch(ctx context.Context, ticker string) (*contracts.PriceHistory, error) {
	start := time.Now()
	history, err := s.provider.Fetch(ctx, ticker, s.config.Lookback)
	if s.metrics != nil {
		s.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, contracts.ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", contracts.ErrFetchFailed, err)
		}
		return nil, err
	}
	if history == nil || history.Len() == 0 {
		return nil, fmt.Errorf("%s: provider returned no bars: %w", ticker, contracts.ErrFetchFailed)
	}

	history.Ticker = ticker
	return history, nil
}

func (s *Scanner) score(history *contracts.PriceHistory) (*contracts.ScoreResult, error) {
	frame, err := s.frames.Build(history)
	if err != nil {
		return nil, err
	}
	return s.scorer.Score(frame)
}

func (s *Scanner) observe(o outcome) {
	if o.skip != nil {
		s.logger.WithTicker(o.ticker).WithFields(map[string]interface{}{
			"kind":   string(o.skip.Kind),
			"reason": o.skip.Reason,
		}).Warn("Ticker skipped")
		if s.metrics != nil {
			s.metrics.ObserveSkip(o.skip)
		}
		return
	}

	s.logger.WithTicker(o.ticker).WithFields(map[string]interface{}{
		"score": o.result.CompositeScore,
		"grade": string(o.result.Grade),
	}).Debug("Ticker scored")
	if s.metrics != nil {
		s.metrics.ObserveResult(o.result)
	}
}

// dedupe keeps the first occurrence of each ticker
func (s *Scanner) dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if seen[t] {
			s.logger.WithTicker(t).Warn("Duplicate ticker dropped")
			continue
		}
		seen[t] = true
		unique = append(unique, t)
	}
	return unique
}

func skipFor(ticker string, err error) *contracts.SkipRecord {
	return &contracts.SkipRecord{
		Ticker: ticker,
		Kind:   contracts.KindOf(err),
		Reason: err.Error(),
	}
}

func event(o outcome, p contracts.Progress) contracts.ScanEvent {
	return contracts.ScanEvent{Progress: p, Result: o.result, Skip: o.skip}
}
