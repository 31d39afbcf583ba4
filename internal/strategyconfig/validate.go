package strategyconfig

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Istanbul must resolve on hosts without zoneinfo
)

// ValidationError names the offending field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every section
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}
	if cfg.Meta.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Meta.Timezone); err != nil {
			return ValidationError{"meta.timezone", err.Error()}
		}
	}

	if s := cfg.Universe.Suffix; s != "" && !strings.HasPrefix(s, ".") {
		return ValidationError{"universe.suffix", "must start with '.'"}
	}
	if cfg.Universe.SourceURL != "" {
		u, err := url.Parse(cfg.Universe.SourceURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return ValidationError{"universe.source_url", "must be an http(s) URL"}
		}
		if cfg.Universe.Selector == "" {
			return ValidationError{"universe.selector", "required when source_url is set"}
		}
	}

	if cfg.Data.LookbackDays < 75 {
		// 50 trading sessions need roughly 75 calendar days
		return ValidationError{"data.lookback_days", "must be at least 75"}
	}

	if err := cfg.IndicatorParams().Validate(); err != nil {
		return ValidationError{"indicators", err.Error()}
	}
	if err := cfg.ScoringParams().Validate(); err != nil {
		return ValidationError{"scoring", err.Error()}
	}
	return nil
}
