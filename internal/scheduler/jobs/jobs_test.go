package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/report"
	"github.com/wonny/bist-swing/internal/s0_data/collector"
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
	"github.com/wonny/bist-swing/internal/s4_scan"
	"github.com/wonny/bist-swing/pkg/logger"
)

// stubProvider serves a steady uptrend, fails FAIL* tickers and parks HOLD* tickers until ctx ends
type stubProvider struct {
	entered chan struct{}
	once    sync.Once
}

func (p *stubProvider) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	switch {
	case strings.HasPrefix(ticker, "FAIL"):
		return nil, fmt.Errorf("%w: no data", contracts.ErrFetchFailed)
	case strings.HasPrefix(ticker, "HOLD"):
		p.once.Do(func() { close(p.entered) })
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, 60)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = contracts.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1_000_000}
	}
	return &contracts.PriceHistory{Ticker: ticker, Bars: bars}, nil
}

type stubUniverse struct {
	tickers []string
	err     error
}

func (u stubUniverse) Build(ctx context.Context) (*contracts.Universe, error) {
	if u.err != nil {
		return nil, u.err
	}
	return &contracts.Universe{Source: "test", Tickers: u.tickers}, nil
}

type memoryStore struct {
	mu    sync.Mutex
	saved []string
}

func (s *memoryStore) SaveHistory(ctx context.Context, history *contracts.PriceHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, history.Ticker)
	return nil
}

func newRunner(t *testing.T, provider contracts.TimeSeriesProvider, tickers []string) *s4_scan.Runner {
	t.Helper()
	frames, err := s2_signals.NewFrameBuilder(s2_signals.DefaultParams(), logger.NewNop())
	require.NoError(t, err)
	scorer, err := s3_scoring.NewScorer(s3_scoring.DefaultParams())
	require.NoError(t, err)

	scanner := s4_scan.NewScanner(provider, frames, scorer, s4_scan.DefaultConfig(), nil, logger.NewNop())
	return s4_scan.NewRunner(scanner, stubUniverse{tickers: tickers}, report.NewMemoryRepository(), logger.NewNop())
}

func TestScanJob_Run(t *testing.T) {
	runner := newRunner(t, &stubProvider{entered: make(chan struct{})}, []string{"UP1", "FAIL1"})
	job := NewScanJob(runner, "", logger.NewNop())

	assert.Equal(t, "market_scan", job.Name())
	assert.Equal(t, DefaultScanSchedule, job.Schedule())
	require.NoError(t, job.Run(context.Background()))

	latest, err := runner.Latest(context.Background())
	require.NoError(t, err)
	assert.Len(t, latest.Results, 1)
	assert.Len(t, latest.Skipped, 1)
}

func TestScanJob_ScanInFlightIsNotAFailure(t *testing.T) {
	provider := &stubProvider{entered: make(chan struct{})}
	runner := newRunner(t, provider, []string{"HOLD1"})

	require.NoError(t, runner.Start(context.Background()))
	select {
	case <-provider.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("background scan never reached the provider")
	}

	job := NewScanJob(runner, "0 0 9 * * *", logger.NewNop())
	assert.Equal(t, "0 0 9 * * *", job.Schedule())
	assert.NoError(t, job.Run(context.Background()))
	assert.True(t, runner.Running())

	require.True(t, runner.Cancel())
	assert.Eventually(t, func() bool { return !runner.Running() }, 2*time.Second, 5*time.Millisecond)
}

func TestBackfillJob_Run(t *testing.T) {
	tests := []struct {
		name      string
		universe  stubUniverse
		wantErr   bool
		wantSaved []string
	}{
		{"all succeed", stubUniverse{tickers: []string{"UP1", "UP2"}}, false, []string{"UP1", "UP2"}},
		{"partial failure", stubUniverse{tickers: []string{"UP1", "FAIL1", "FAIL2"}}, false, []string{"UP1"}},
		{"all failed", stubUniverse{tickers: []string{"FAIL1", "FAIL2"}}, true, nil},
		{"universe error", stubUniverse{err: errors.New("no source")}, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			col := collector.NewCollector(&stubProvider{entered: make(chan struct{})}, store, logger.NewNop())
			job := NewBackfillJob(col, tt.universe, collector.Config{Workers: 1, Lookback: 90 * 24 * time.Hour}, logger.NewNop())

			assert.Equal(t, "price_backfill", job.Name())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantSaved, store.saved)
		})
	}
}
