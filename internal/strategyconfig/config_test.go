package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/bist-swing/internal/s2_signals"
	"github.com/wonny/bist-swing/internal/s3_scoring"
)

func TestLoad_RepositoryStrategy(t *testing.T) {
	path := "../../config/strategy/bist_swing_v1.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("strategy file not found")
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bist_swing_v1", cfg.Meta.StrategyID)
	assert.Len(t, cfg.Universe.Tickers, 30)
	assert.Equal(t, ".IS", cfg.Universe.Suffix)
	assert.Equal(t, s2_signals.DefaultParams(), cfg.IndicatorParams())
	assert.Equal(t, s3_scoring.DefaultParams(), cfg.ScoringParams())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 7, cfg.Indicators.SuperTrendPeriod)
	assert.Equal(t, 3.0, cfg.Indicators.SuperTrendMultiplier)
	assert.Equal(t, 0.9, cfg.Scoring.SqueezeFactor)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
meta:
  strategy_id: custom
scoring:
  squeeze_factor: 0.8
`))
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.Meta.StrategyID)
	assert.Equal(t, 0.8, cfg.Scoring.SqueezeFactor)
	assert.Equal(t, 14, cfg.Indicators.RSIPeriod)
	assert.Equal(t, ".IS", cfg.Universe.Suffix)
	assert.Equal(t, "Europe/Istanbul", cfg.Meta.Timezone)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"unknown field", "scoring:\n  squeez_factor: 0.9\n", ""},
		{"bad suffix", "universe:\n  suffix: IS\n", "universe.suffix"},
		{"source without selector", "universe:\n  source_url: https://example.com/bist30\n", "universe.selector"},
		{"non-http source", "universe:\n  source_url: ftp://example.com\n  selector: td\n", "universe.source_url"},
		{"short lookback", "data:\n  lookback_days: 30\n", "data.lookback_days"},
		{"bad macd", "indicators:\n  macd_fast: 40\n", "indicators"},
		{"bad squeeze", "scoring:\n  squeeze_factor: 2\n", "scoring"},
		{"missing id", "meta:\n  strategy_id: \"\"\n", "meta.strategy_id"},
		{"bad timezone", "meta:\n  timezone: Mars/Olympus\n", "meta.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)

			if tt.field != "" {
				var verr ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "bist_swing_v1", cfg.Meta.StrategyID)

	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meta:\n  strategy_id: from_file\n"), 0o644))

	cfg, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.Meta.StrategyID)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := Default()
	changed.Scoring.SqueezeFactor = 0.85
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
