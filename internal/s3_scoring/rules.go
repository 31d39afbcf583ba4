package s3_scoring

import (
	"fmt"

	"github.com/wonny/bist-swing/internal/contracts"
)

// snapshot is what every rule sees: the two latest rows and the latest close
type snapshot struct {
	cur, prev contracts.IndicatorRow
	close     float64
	volume    float64
	squeeze   bool
}

type branch struct {
	points int
	label  string
	when   func(s *snapshot) bool
}

type rule struct {
	criterion string
	max       int
	measure   func(s *snapshot) string
	branches  []branch // first match wins
}

// BranchInfo and RuleInfo describe the rule table for display
type BranchInfo struct {
	Points int    `json:"points"`
	Label  string `json:"label"`
}

type RuleInfo struct {
	Criterion string       `json:"criterion"`
	MaxPoints int          `json:"max_points"`
	Branches  []BranchInfo `json:"branches"`
}

func between(v, lo, hi float64) bool { return v >= lo && v <= hi }

// ruleTable lists the six criteria in evaluation order. Maxima sum to 100.
var ruleTable = []rule{
	{
		criterion: contracts.CriterionRSI,
		max:       20,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("rsi=%.2f", s.cur.RSI14)
		},
		branches: []branch{
			{20, "RSI in 55-60 sweet spot", func(s *snapshot) bool {
				return between(s.cur.RSI14, 55, 60)
			}},
			{15, "RSI in 50-55 or 60-65", func(s *snapshot) bool {
				r := s.cur.RSI14
				return (r >= 50 && r < 55) || (r > 60 && r <= 65)
			}},
			{10, "RSI in 45-50 or 65-70", func(s *snapshot) bool {
				r := s.cur.RSI14
				return (r >= 45 && r < 50) || (r > 65 && r <= 70)
			}},
		},
	},
	{
		criterion: contracts.CriterionMACD,
		max:       20,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("macd=%.4f signal=%.4f hist=%.4f prev_hist=%.4f",
				s.cur.MACD, s.cur.MACDSignal, s.cur.MACDHist, s.prev.MACDHist)
		},
		branches: []branch{
			{20, "MACD above signal and zero with rising histogram", func(s *snapshot) bool {
				return s.cur.MACD > s.cur.MACDSignal && s.cur.MACD > 0 && s.cur.MACDHist > s.prev.MACDHist
			}},
			{15, "MACD above signal and zero", func(s *snapshot) bool {
				return s.cur.MACD > s.cur.MACDSignal && s.cur.MACD > 0
			}},
			{12, "MACD above signal below zero", func(s *snapshot) bool {
				return s.cur.MACD > s.cur.MACDSignal && s.cur.MACD < 0
			}},
		},
	},
	{
		criterion: contracts.CriterionVolumeMFI,
		max:       20,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("volume=%.0f avg20=%.0f mfi=%.2f prev_mfi=%.2f",
				s.volume, s.cur.VolumeSMA20, s.cur.MFI14, s.prev.MFI14)
		},
		branches: []branch{
			{20, "volume above 1.5x average with MFI 50-80", func(s *snapshot) bool {
				return s.volume > 1.5*s.cur.VolumeSMA20 && between(s.cur.MFI14, 50, 80)
			}},
			{15, "volume above 1.2x average with rising MFI", func(s *snapshot) bool {
				return s.volume > 1.2*s.cur.VolumeSMA20 && s.cur.MFI14 > s.prev.MFI14
			}},
			{10, "volume above average", func(s *snapshot) bool {
				return s.volume > s.cur.VolumeSMA20
			}},
		},
	},
	{
		criterion: contracts.CriterionADX,
		max:       15,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("adx=%.2f prev_adx=%.2f di+=%.2f di-=%.2f",
				s.cur.ADX14, s.prev.ADX14, s.cur.DIPlus14, s.cur.DIMinus14)
		},
		branches: []branch{
			{15, "strong trend with DI+ leading", func(s *snapshot) bool {
				return s.cur.ADX14 > 25 && s.cur.DIPlus14 > s.cur.DIMinus14
			}},
			{10, "developing trend with ADX rising", func(s *snapshot) bool {
				return between(s.cur.ADX14, 20, 25) && s.cur.ADX14 > s.prev.ADX14
			}},
		},
	},
	{
		criterion: contracts.CriterionSuperTrend,
		max:       15,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("close=%.2f supertrend=%.2f", s.close, s.cur.SuperTrend)
		},
		branches: []branch{
			{15, "close above SuperTrend", func(s *snapshot) bool {
				return s.close > s.cur.SuperTrend
			}},
		},
	},
	{
		criterion: contracts.CriterionBollinger,
		max:       10,
		measure: func(s *snapshot) string {
			return fmt.Sprintf("%%b=%.3f bandwidth=%.4f avg20=%.4f close=%.2f mid=%.2f",
				s.cur.BBPercentB, s.cur.BBBandwidth, s.cur.BBBandwidthAvg20, s.close, s.cur.BBMid)
		},
		branches: []branch{
			{10, "%B above 0.8", func(s *snapshot) bool {
				return s.cur.BBPercentB > 0.8
			}},
			{8, "band squeeze with close above mid band", func(s *snapshot) bool {
				return s.squeeze && s.close > s.cur.BBMid
			}},
			{5, "%B in 0.5-0.8", func(s *snapshot) bool {
				return between(s.cur.BBPercentB, 0.5, 0.8)
			}},
		},
	},
}

// RuleTable returns a description of the scoring rules in evaluation order
func RuleTable() []RuleInfo {
	out := make([]RuleInfo, 0, len(ruleTable))
	for _, r := range ruleTable {
		info := RuleInfo{Criterion: r.criterion, MaxPoints: r.max}
		for _, b := range r.branches {
			info.Branches = append(info.Branches, BranchInfo{Points: b.points, Label: b.label})
		}
		out = append(out, info)
	}
	return out
}

// evaluate applies one rule. The rationale names the branch taken and the values it saw.
func (r rule) evaluate(s *snapshot) contracts.ScoreComponent {
	c := contracts.ScoreComponent{
		Criterion: r.criterion,
		MaxPoints: r.max,
	}

	for _, b := range r.branches {
		if b.when(s) {
			c.Points = b.points
			c.Rationale = fmt.Sprintf("%s (%s)", b.label, r.measure(s))
			return c
		}
	}

	c.Rationale = fmt.Sprintf("no condition met (%s)", r.measure(s))
	return c
}
