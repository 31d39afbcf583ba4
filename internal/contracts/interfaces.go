package contracts

import (
	"context"
	"time"
)

// TimeSeriesProvider supplies daily bars (S0).
// Implementations wrap every failure, including an empty result, in ErrFetchFailed.
type TimeSeriesProvider interface {
	Fetch(ctx context.Context, ticker string, lookback time.Duration) (*PriceHistory, error)
}

// ReportRepository persists scan reports (S4)
type ReportRepository interface {
	Save(ctx context.Context, report *ScanReport) error
	Latest(ctx context.Context) (*ScanReport, error)
	LatestResult(ctx context.Context, ticker string) (*ScoreResult, error)
}

// UniverseBuilder resolves the tickers to scan (S1)
type UniverseBuilder interface {
	Build(ctx context.Context) (*Universe, error)
}
