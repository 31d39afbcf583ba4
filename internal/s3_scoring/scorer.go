package s3_scoring

import (
	"fmt"
	"strings"

	"github.com/wonny/bist-swing/internal/contracts"
)

// Params tune the parts of the rule table that are not fixed thresholds
type Params struct {
	// SqueezeFactor: bandwidth below this fraction of its 20-bar average counts as a squeeze
	SqueezeFactor float64
}

// DefaultParams returns the canonical scoring parameters
func DefaultParams() Params {
	return Params{SqueezeFactor: 0.9}
}

// Validate checks parameter ranges
func (p Params) Validate() error {
	if p.SqueezeFactor <= 0 || p.SqueezeFactor > 1 {
		return fmt.Errorf("squeeze_factor must be in (0, 1], got %v", p.SqueezeFactor)
	}
	return nil
}

// Scorer evaluates the rule table against the latest two rows of a frame.
// It holds no state between calls, so the same frame always yields the same result.
// ⭐ SSOT: composite swing score is computed here only
type Scorer struct {
	params Params
}

// NewScorer creates a scorer
func NewScorer(params Params) (*Scorer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring params: %w", err)
	}
	return &Scorer{params: params}, nil
}

// Score evaluates the frame's latest bar against the prior bar
func (s *Scorer) Score(frame *contracts.IndicatorFrame) (*contracts.ScoreResult, error) {
	if frame == nil || len(frame.Rows) != len(frame.Bars) {
		return nil, fmt.Errorf("frame rows and bars differ in length: %w", contracts.ErrIndicatorComputation)
	}

	n := frame.Len()
	if n < 2 {
		return nil, fmt.Errorf("%s: frame has %d rows, need 2: %w", frame.Ticker, n, contracts.ErrInsufficientHistory)
	}

	cur, prev := frame.Rows[n-1], frame.Rows[n-2]
	if !cur.Valid() || !prev.Valid() {
		return nil, fmt.Errorf("%s: latest rows still in indicator warm-up: %w", frame.Ticker, contracts.ErrInsufficientHistory)
	}

	lastBar, prevBar := frame.Bars[n-1], frame.Bars[n-2]
	if prevBar.Close <= 0 {
		return nil, fmt.Errorf("%s: prior close %.4f: %w", frame.Ticker, prevBar.Close, contracts.ErrIndicatorComputation)
	}

	snap := &snapshot{
		cur:     cur,
		prev:    prev,
		close:   lastBar.Close,
		volume:  lastBar.Volume,
		squeeze: cur.BBBandwidth < cur.BBBandwidthAvg20*s.params.SqueezeFactor,
	}

	components := make([]contracts.ScoreComponent, 0, len(ruleTable))
	total := 0
	for _, r := range ruleTable {
		c := r.evaluate(snap)
		total += c.Points
		components = append(components, c)
	}

	result := &contracts.ScoreResult{
		Ticker:         frame.Ticker,
		CompositeScore: total,
		LastClose:      lastBar.Close,
		PctChange:      (lastBar.Close - prevBar.Close) / prevBar.Close * 100,
		Components:     components,
		Details: contracts.ScoreDetails{
			RSI:              cur.RSI14,
			MACDBullish:      cur.MACD > cur.MACDSignal,
			VolumeSurge:      snap.volume > 1.5*cur.VolumeSMA20,
			ADXTrend:         cur.ADX14 > 25 && cur.DIPlus14 > cur.DIMinus14,
			SuperTrendBuy:    snap.close > cur.SuperTrend,
			BollingerSqueeze: snap.squeeze,
		},
		Grade:       contracts.GradeFor(total),
		EvaluatedAt: lastBar.Time,
	}
	result.Summary = summarize(result)

	return result, nil
}

// summarize builds a one-line explanation from the components
func summarize(r *contracts.ScoreResult) string {
	var firing, flat []string
	for _, c := range r.Components {
		if c.Points > 0 {
			firing = append(firing, c.Criterion)
		} else {
			flat = append(flat, c.Criterion)
		}
	}

	head := fmt.Sprintf("%s scores %d/100 (%s)", r.Ticker, r.CompositeScore, r.Grade)
	switch {
	case len(firing) == 0:
		return head + ": no criteria met"
	case len(flat) == 0:
		return head + ": all criteria met"
	default:
		return fmt.Sprintf("%s: %s supporting; %s not met", head, strings.Join(firing, ", "), strings.Join(flat, ", "))
	}
}
