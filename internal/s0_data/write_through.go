package s0_data

import (
	"context"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/pkg/logger"
)

// HistoryStore persists fetched histories
type HistoryStore interface {
	SaveHistory(ctx context.Context, history *contracts.PriceHistory) error
}

// WriteThroughProvider stores every successful fetch. A store failure is logged, not returned.
type WriteThroughProvider struct {
	inner  contracts.TimeSeriesProvider
	store  HistoryStore
	logger *logger.Logger
}

// NewWriteThroughProvider wraps inner with store
func NewWriteThroughProvider(inner contracts.TimeSeriesProvider, store HistoryStore, log *logger.Logger) *WriteThroughProvider {
	return &WriteThroughProvider{
		inner:  inner,
		store:  store,
		logger: log.WithComponent("write_through"),
	}
}

// Fetch delegates to the inner provider and saves the result
func (p *WriteThroughProvider) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	history, err := p.inner.Fetch(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}

	if err := p.store.SaveHistory(ctx, history); err != nil {
		p.logger.WithTicker(ticker).WithError(err).Warn("Failed to store fetched bars")
	}
	return history, nil
}

var _ contracts.TimeSeriesProvider = (*WriteThroughProvider)(nil)
