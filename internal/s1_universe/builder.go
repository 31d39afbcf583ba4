package s1_universe

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/strategyconfig"
	"github.com/wonny/bist-swing/pkg/logger"
)

// Universe sources, in precedence order
const (
	SourceExplicit = "explicit"
	SourceStrategy = "strategy"
	SourceScrape   = "scrape"
	SourceDefault  = "default"
)

// Builder resolves the scan universe
// ⭐ SSOT: S1 ticker list resolution
type Builder struct {
	cfg      strategyconfig.Universe
	explicit []string
	scraper  *Scraper
	logger   *logger.Logger
}

// NewBuilder creates a builder. explicit tickers (e.g. from the CLI) win over everything else.
// scraper may be nil when no source URL is configured.
func NewBuilder(cfg strategyconfig.Universe, explicit []string, scraper *Scraper, log *logger.Logger) *Builder {
	return &Builder{
		cfg:      cfg,
		explicit: explicit,
		scraper:  scraper,
		logger:   log.WithComponent("universe"),
	}
}

// Build returns the ordered, duplicate-free ticker list
func (b *Builder) Build(ctx context.Context) (*contracts.Universe, error) {
	raw, source := b.resolve(ctx)

	tickers, excluded := Normalize(raw, b.cfg.Suffix)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe from %s source is empty", source)
	}

	universe := &contracts.Universe{
		Source:    source,
		Tickers:   tickers,
		Excluded:  excluded,
		CreatedAt: time.Now(),
	}

	b.logger.WithFields(map[string]interface{}{
		"source":   source,
		"count":    universe.Count(),
		"excluded": len(excluded),
	}).Info("Universe built")

	return universe, nil
}

func (b *Builder) resolve(ctx context.Context) ([]string, string) {
	if len(b.explicit) > 0 {
		return b.explicit, SourceExplicit
	}
	if len(b.cfg.Tickers) > 0 {
		return b.cfg.Tickers, SourceStrategy
	}

	if b.cfg.SourceURL != "" && b.scraper != nil {
		codes, err := b.scraper.Scrape(ctx, b.cfg.SourceURL, b.cfg.Selector)
		if err == nil {
			return codes, SourceScrape
		}
		b.logger.WithError(err).Warn("Constituent scrape failed, using default list")
	}

	return DefaultBIST, SourceDefault
}

var _ contracts.UniverseBuilder = (*Builder)(nil)
