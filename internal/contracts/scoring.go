package contracts

import "time"

// Criterion names in evaluation order
const (
	CriterionRSI        = "RSI"
	CriterionMACD       = "MACD"
	CriterionVolumeMFI  = "Volume/MFI"
	CriterionADX        = "ADX"
	CriterionSuperTrend = "SuperTrend"
	CriterionBollinger  = "Bollinger"
)

// Grade buckets the composite score for display
type Grade string

const (
	GradeStrong   Grade = "STRONG"
	GradeModerate Grade = "MODERATE"
	GradeWeak     Grade = "WEAK"
	GradeNone     Grade = "NONE"
)

// GradeFor maps a composite score to its grade
func GradeFor(score int) Grade {
	switch {
	case score >= 75:
		return GradeStrong
	case score >= 50:
		return GradeModerate
	case score > 0:
		return GradeWeak
	default:
		return GradeNone
	}
}

// ScoreComponent is the outcome of one rule
type ScoreComponent struct {
	Criterion string `json:"criterion"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
	Rationale string `json:"rationale"`
}

// ScoreDetails exposes the headline flags behind the score
type ScoreDetails struct {
	RSI              float64 `json:"rsi"`
	MACDBullish      bool    `json:"macd_bullish"`
	VolumeSurge      bool    `json:"volume_surge"`
	ADXTrend         bool    `json:"adx_trend"`
	SuperTrendBuy    bool    `json:"supertrend_buy"`
	BollingerSqueeze bool    `json:"bollinger_squeeze"`
}

// ScoreResult is the full evaluation of one ticker
// ⭐ SSOT: S3 → S4 scored output
type ScoreResult struct {
	Ticker         string           `json:"ticker"`
	CompositeScore int              `json:"composite_score"`
	LastClose      float64          `json:"last_close"`
	PctChange      float64          `json:"pct_change"`
	Components     []ScoreComponent `json:"components"`
	Details        ScoreDetails     `json:"details"`
	Grade          Grade            `json:"grade"`
	Summary        string           `json:"summary"`
	EvaluatedAt    time.Time        `json:"evaluated_at"` // timestamp of the latest bar
}

// Component returns the component for a criterion name
func (r *ScoreResult) Component(criterion string) (ScoreComponent, bool) {
	for _, c := range r.Components {
		if c.Criterion == criterion {
			return c, true
		}
	}
	return ScoreComponent{}, false
}
