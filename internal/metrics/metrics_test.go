package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bist-swing/internal/contracts"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveResult(&contracts.ScoreResult{Ticker: "A", CompositeScore: 70})
	m.ObserveResult(&contracts.ScoreResult{Ticker: "B", CompositeScore: 20})
	m.ObserveSkip(&contracts.SkipRecord{Ticker: "C", Kind: contracts.KindFetchFailed})

	start := time.Now()
	m.ObserveReport(&contracts.ScanReport{
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Cancelled:  true,
		Results:    make([]contracts.ScoreResult, 2),
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TickersScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TickersSkipped.WithLabelValues("FETCH_FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LastScanResults))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewMetrics_NilRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(nil)
		NewMetrics(nil)
	})
}
