package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"golang.org/x/time/rate"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/pkg/config"
	"github.com/wonny/bist-swing/pkg/logger"
	"github.com/wonny/bist-swing/pkg/redis"
)

// barsClient is the subset of marketdata.Client the provider uses
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// limiter gates one GetBars call. *rate.Limiter satisfies it.
type limiter interface {
	Wait(ctx context.Context) error
}

// sharedLimit adapts the Redis sliding window so every process shares the Alpaca quota
type sharedLimit struct {
	limiter *redis.RateLimiter
	config  redis.RateLimitConfig
}

func (l sharedLimit) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx, l.config)
}

// Provider serves daily bars from the Alpaca market data API (US listings)
type Provider struct {
	client   barsClient
	feed     marketdata.Feed
	limiters []limiter
	logger   *logger.Logger
	now      func() time.Time
}

// NewProvider creates a provider with the IEX feed. A positive RateLimit throttles calls in process.
func NewProvider(cfg config.ProviderConfig, log *logger.Logger) *Provider {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	p := newProvider(client, log)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		p.limiters = append(p.limiters, rate.NewLimiter(rate.Limit(cfg.RateLimit), burst))
	}
	return p
}

// WithRateLimiter adds a Redis window shared across processes, e.g. redis.AlpacaRateLimit
func (p *Provider) WithRateLimiter(l *redis.RateLimiter, cfg redis.RateLimitConfig) *Provider {
	p.limiters = append(p.limiters, sharedLimit{limiter: l, config: cfg})
	return p
}

func newProvider(client barsClient, log *logger.Logger) *Provider {
	return &Provider{
		client: client,
		feed:   marketdata.IEX,
		logger: log.WithComponent("alpaca"),
		now:    time.Now,
	}
}

// Fetch returns daily bars covering lookback, oldest first
func (p *Provider) Fetch(ctx context.Context, ticker string, lookback time.Duration) (*contracts.PriceHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, l := range p.limiters {
		if err := l.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: alpaca %s: rate limit: %w", contracts.ErrFetchFailed, ticker, err)
		}
	}

	end := p.now()
	bars, err := p.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.Add(-lookback),
		End:       end,
		Feed:      p.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: alpaca %s: %w", contracts.ErrFetchFailed, ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: alpaca %s: no bars returned", contracts.ErrFetchFailed, ticker)
	}

	history := &contracts.PriceHistory{
		Ticker: ticker,
		Bars:   make([]contracts.Bar, len(bars)),
	}
	for i, b := range bars {
		history.Bars[i] = contracts.Bar{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		}
	}

	p.logger.WithTicker(ticker).WithField("bars", len(bars)).Debug("Fetched bars")
	return history, nil
}

var _ contracts.TimeSeriesProvider = (*Provider)(nil)
