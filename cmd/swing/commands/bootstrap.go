package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/external/alpaca"
	"github.com/wonny/bist-swing/internal/external/yahoo"
	"github.com/wonny/bist-swing/internal/metrics"
	"github.com/wonny/bist-swing/internal/report"
	"github.com/wonny/bist-swing/internal/s0_data"
	"github.com/wonny/bist-swing/internal/s1_universe"
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
	"github.com/wonny/bist-swing/internal/s4_scan"
	"github.com/wonny/bist-swing/internal/strategyconfig"
	"github.com/wonny/bist-swing/pkg/config"
	"github.com/wonny/bist-swing/pkg/database"
	"github.com/wonny/bist-swing/pkg/httputil"
	"github.com/wonny/bist-swing/pkg/logger"
	"github.com/wonny/bist-swing/pkg/redis"
)

// bootOptions tweak the shared wiring per command
type bootOptions struct {
	tickers     []string // explicit universe, wins over strategy and scrape
	concurrency int      // 0 keeps SCAN_CONCURRENCY
	// memoryReports keeps the latest report in process when REPORT_STORE=none
	memoryReports bool
	// needDatabase forces a Postgres connection even if nothing else asks for one
	needDatabase bool
}

// app holds every wired dependency of a command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	strategy *strategyconfig.Config

	redis      *redis.Client
	cache      *redis.Cache
	db         *database.DB
	httpClient *httputil.Client
	limiter    *redis.RateLimiter // nil without Redis

	prices   *s0_data.PriceRepository // nil without a database
	remote   contracts.TimeSeriesProvider
	provider contracts.TimeSeriesProvider
	reports  contracts.ReportRepository

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	tickers     []string
	concurrency int
	closers     []func()
}

// bootstrap loads config and connects everything the commands share.
// The caller must call close.
func bootstrap(ctx context.Context, opts bootOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}

	// 2. Initialize logger
	a := &app{
		cfg:         cfg,
		log:         logger.New(cfg),
		tickers:     opts.tickers,
		concurrency: opts.concurrency,
	}
	if len(a.tickers) == 0 {
		a.tickers = cfg.Scan.Tickers
	}
	if a.concurrency <= 0 {
		a.concurrency = cfg.Scan.Concurrency
	}

	// 3. Strategy parameters
	a.strategy, err = strategyconfig.LoadOrDefault(cfg.StrategyFile)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}

	if err := a.connect(ctx, opts.needDatabase); err != nil {
		a.close()
		return nil, err
	}
	if err := a.wireProvider(); err != nil {
		a.close()
		return nil, err
	}
	if err := a.wireReports(ctx, opts.memoryReports); err != nil {
		a.close()
		return nil, err
	}
	a.wireMetrics()

	a.log.WithFields(map[string]interface{}{
		"provider": cfg.Provider.Name,
		"store":    cfg.Report.Store,
		"strategy": a.strategy.Meta.StrategyID,
		"redis":    a.redis.Enabled(),
		"database": a.db != nil,
	}).Debug("Bootstrap complete")

	return a, nil
}

// connect opens Redis and, when required, PostgreSQL
func (a *app) connect(ctx context.Context, needDatabase bool) error {
	rc, err := redis.New(ctx, a.cfg.Redis)
	if err != nil {
		a.log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Disabled()
	}
	a.redis = rc
	a.closers = append(a.closers, func() { _ = rc.Close() })
	a.cache = redis.NewCache(rc, "swing")

	// Yahoo and the universe scraper share this client; Alpaca has its own transport
	a.httpClient = httputil.New(a.cfg.Provider, a.log)
	if rc.Enabled() {
		a.limiter = redis.NewRateLimiter(rc, "ratelimit")
		a.httpClient.WithRateLimiter(a.limiter, redis.YahooRateLimit)
	}

	if !a.cfg.NeedsDatabase() && !needDatabase {
		return nil
	}
	if a.cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required for this command")
	}

	db, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	a.prices = s0_data.NewPriceRepository(db.Pool)
	if err := a.prices.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("price schema: %w", err)
	}
	return nil
}

// wireProvider builds remote → write-through → cache
func (a *app) wireProvider() error {
	switch a.cfg.Provider.Name {
	case config.ProviderAlpaca:
		p := alpaca.NewProvider(a.cfg.Provider, a.log)
		if a.limiter != nil {
			p.WithRateLimiter(a.limiter, redis.AlpacaRateLimit)
		}
		a.remote = p
	default:
		a.remote = yahoo.NewClient(a.httpClient, a.cfg.Provider.BaseURL, a.log)
	}

	var p contracts.TimeSeriesProvider
	switch {
	case a.cfg.Provider.Name == config.ProviderPostgres:
		p = a.prices
	case a.cfg.Provider.WriteThrough && a.prices != nil:
		p = s0_data.NewWriteThroughProvider(a.remote, a.prices, a.log)
	default:
		p = a.remote
	}

	a.provider = s0_data.NewCachedProvider(p, a.cache, a.cfg.Scan.CacheTTL, a.log)
	return nil
}

func (a *app) wireReports(ctx context.Context, memory bool) error {
	switch a.cfg.Report.Store {
	case config.StorePostgres:
		repo := report.NewPostgresRepository(a.db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("report schema: %w", err)
		}
		a.reports = repo
	case config.StoreSQLite:
		repo, err := report.NewSQLiteRepository(a.cfg.Report.SQLitePath)
		if err != nil {
			return fmt.Errorf("open report store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = repo.Close() })
		a.reports = repo
	default:
		if memory {
			a.reports = report.NewMemoryRepository()
		} else {
			a.reports = report.NoopRepository{}
		}
	}
	return nil
}

func (a *app) wireMetrics() {
	a.registry = prometheus.NewRegistry()
	if !a.cfg.MetricsEnabled {
		return
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.NewMetrics(a.registry)
}

// lookback prefers the strategy file's window when one is configured
func (a *app) lookback() time.Duration {
	if a.cfg.StrategyFile != "" && a.strategy.Data.LookbackDays > 0 {
		return time.Duration(a.strategy.Data.LookbackDays) * 24 * time.Hour
	}
	return a.cfg.LookbackWindow()
}

func (a *app) universe() *s1_universe.Builder {
	var scraper *s1_universe.Scraper
	if a.strategy.Universe.SourceURL != "" {
		scraper = s1_universe.NewScraper(a.httpClient, a.cache, a.log)
	}
	return s1_universe.NewBuilder(a.strategy.Universe, a.tickers, scraper, a.log)
}

func (a *app) scanner() (*s4_scan.Scanner, error) {
	frames, err := s2_signals.NewFrameBuilder(a.strategy.IndicatorParams(), a.log)
	if err != nil {
		return nil, fmt.Errorf("frame builder: %w", err)
	}
	scorer, err := s3_scoring.NewScorer(a.strategy.ScoringParams())
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}

	cfg := s4_scan.Config{
		Lookback:    a.lookback(),
		Concurrency: a.concurrency,
	}
	return s4_scan.NewScanner(a.provider, frames, scorer, cfg, a.metrics, a.log), nil
}

func (a *app) runner() (*s4_scan.Runner, error) {
	scanner, err := a.scanner()
	if err != nil {
		return nil, err
	}
	return s4_scan.NewRunner(scanner, a.universe(), a.reports, a.log), nil
}

func (a *app) suffix() string {
	return a.strategy.Universe.Suffix
}

// close releases connections in reverse order
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
