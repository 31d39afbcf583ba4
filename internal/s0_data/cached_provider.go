package s0_data

import (
	"context"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/pkg/logger"
	"github.com/wonny/bist-swing/pkg/redis"
)

// CachedProvider memoises histories in Redis. Cache errors never fail a fetch.
type CachedProvider struct {
	inner  contracts.TimeSeriesProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider wraps inner. A zero ttl falls back to redis.TTLMedium.
func NewCachedProvider(inner contracts.TimeSeriesProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("series_cache"),
	}
}

// Fetch serves from cache when present, otherwise fetches and stores
func (p *CachedProvider) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	key := redis.SeriesKey(ticker, lookbackDays(lookback))

	var cached contracts.PriceHistory
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithTicker(ticker).WithError(err).Warn("Series cache read failed")
	}
	if found && len(cached.Bars) > 0 {
		return &cached, nil
	}

	history, err := p.inner.Fetch(ctx, ticker, lookback)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, history, p.ttl); err != nil {
		p.logger.WithTicker(ticker).WithError(err).Warn("Series cache write failed")
	}
	return history, nil
}

func lookbackDays(lookback time.Duration) int {
	return int(lookback / (24 * time.Hour))
}

var _ contracts.TimeSeriesProvider = (*CachedProvider)(nil)
