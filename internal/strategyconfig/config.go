package strategyconfig

import (
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
)

// Config is the swing strategy definition loaded from YAML
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Data       Data       `yaml:"data" json:"data"`
	Indicators Indicators `yaml:"indicators" json:"indicators"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
}

// Meta identifies the strategy
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Universe selects the tickers to scan. Precedence: Tickers, then SourceURL, then the built-in list.
type Universe struct {
	Suffix    string   `yaml:"suffix" json:"suffix"` // exchange suffix appended to bare symbols, e.g. ".IS"
	Tickers   []string `yaml:"tickers" json:"tickers"`
	SourceURL string   `yaml:"source_url" json:"source_url"`
	Selector  string   `yaml:"selector" json:"selector"` // CSS selector for ticker cells on SourceURL
}

// Data controls how much history is requested per ticker
type Data struct {
	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`
}

// Indicators mirrors s2_signals.Params
type Indicators struct {
	RSIPeriod            int     `yaml:"rsi_period" json:"rsi_period"`
	MACDFast             int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow             int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal           int     `yaml:"macd_signal" json:"macd_signal"`
	MFIPeriod            int     `yaml:"mfi_period" json:"mfi_period"`
	VolumeSMAPeriod      int     `yaml:"volume_sma_period" json:"volume_sma_period"`
	ADXPeriod            int     `yaml:"adx_period" json:"adx_period"`
	SuperTrendPeriod     int     `yaml:"supertrend_period" json:"supertrend_period"`
	SuperTrendMultiplier float64 `yaml:"supertrend_multiplier" json:"supertrend_multiplier"`
	BBPeriod             int     `yaml:"bb_period" json:"bb_period"`
	BBStdDev             float64 `yaml:"bb_stddev" json:"bb_stddev"`
	BandwidthAvgPeriod   int     `yaml:"bandwidth_avg_period" json:"bandwidth_avg_period"`
	EMAShort             int     `yaml:"ema_short" json:"ema_short"`
	EMALong              int     `yaml:"ema_long" json:"ema_long"`
}

// Scoring mirrors s3_scoring.Params
type Scoring struct {
	SqueezeFactor float64 `yaml:"squeeze_factor" json:"squeeze_factor"`
}

// Default returns the canonical strategy used when no file is configured
func Default() *Config {
	p := s2_signals.DefaultParams()
	return &Config{
		Meta: Meta{
			StrategyID: "bist_swing_v1",
			Version:    "1.0.0",
			Timezone:   "Europe/Istanbul",
		},
		Universe: Universe{Suffix: ".IS"},
		Data:     Data{LookbackDays: 180},
		Indicators: Indicators{
			RSIPeriod:            p.RSIPeriod,
			MACDFast:             p.MACDFast,
			MACDSlow:             p.MACDSlow,
			MACDSignal:           p.MACDSignal,
			MFIPeriod:            p.MFIPeriod,
			VolumeSMAPeriod:      p.VolumeSMAPeriod,
			ADXPeriod:            p.ADXPeriod,
			SuperTrendPeriod:     p.SuperTrendPeriod,
			SuperTrendMultiplier: p.SuperTrendMultiplier,
			BBPeriod:             p.BBPeriod,
			BBStdDev:             p.BBStdDev,
			BandwidthAvgPeriod:   p.BandwidthAvgPeriod,
			EMAShort:             p.EMAShort,
			EMALong:              p.EMALong,
		},
		Scoring: Scoring{SqueezeFactor: s3_scoring.DefaultParams().SqueezeFactor},
	}
}

// IndicatorParams converts the indicator section for the frame builder
func (c *Config) IndicatorParams() s2_signals.Params {
	i := c.Indicators
	return s2_signals.Params{
		RSIPeriod:            i.RSIPeriod,
		MACDFast:             i.MACDFast,
		MACDSlow:             i.MACDSlow,
		MACDSignal:           i.MACDSignal,
		MFIPeriod:            i.MFIPeriod,
		VolumeSMAPeriod:      i.VolumeSMAPeriod,
		ADXPeriod:            i.ADXPeriod,
		SuperTrendPeriod:     i.SuperTrendPeriod,
		SuperTrendMultiplier: i.SuperTrendMultiplier,
		BBPeriod:             i.BBPeriod,
		BBStdDev:             i.BBStdDev,
		BandwidthAvgPeriod:   i.BandwidthAvgPeriod,
		EMAShort:             i.EMAShort,
		EMALong:              i.EMALong,
	}
}

// ScoringParams converts the scoring section for the scorer
func (c *Config) ScoringParams() s3_scoring.Params {
	return s3_scoring.Params{SqueezeFactor: c.Scoring.SqueezeFactor}
}
