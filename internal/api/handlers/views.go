package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/bist-swing/internal/contracts"
)

// ResultView is the API shape of a score. Prices and percentages are rounded decimals.
type ResultView struct {
	Rank           int                        `json:"rank,omitempty"`
	Ticker         string                     `json:"ticker"`
	CompositeScore int                        `json:"composite_score"`
	Grade          contracts.Grade            `json:"grade"`
	LastClose      decimal.Decimal            `json:"last_close"`
	PctChange      decimal.Decimal            `json:"pct_change"`
	Components     []contracts.ScoreComponent `json:"components"`
	Details        DetailsView                `json:"details"`
	Summary        string                     `json:"summary"`
	EvaluatedAt    time.Time                  `json:"evaluated_at"`
}

// DetailsView mirrors contracts.ScoreDetails with a rounded RSI
type DetailsView struct {
	RSI              decimal.Decimal `json:"rsi"`
	MACDBullish      bool            `json:"macd_bullish"`
	VolumeSurge      bool            `json:"volume_surge"`
	ADXTrend         bool            `json:"adx_trend"`
	SuperTrendBuy    bool            `json:"supertrend_buy"`
	BollingerSqueeze bool            `json:"bollinger_squeeze"`
}

// ReportView is the API shape of a scan report
type ReportView struct {
	ID         string                      `json:"id"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Total      int                         `json:"total"`
	Attempted  int                         `json:"attempted"`
	Completed  int                         `json:"completed"`
	Cancelled  bool                        `json:"cancelled"`
	Results    []ResultView                `json:"results"`
	Skipped    []contracts.SkipRecord      `json:"skipped"`
	SkipCounts map[contracts.ErrorKind]int `json:"skip_counts"`
}

func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// NewResultView converts a score for output. rank 0 omits the field.
func NewResultView(r *contracts.ScoreResult, rank int) ResultView {
	return ResultView{
		Rank:           rank,
		Ticker:         r.Ticker,
		CompositeScore: r.CompositeScore,
		Grade:          r.Grade,
		LastClose:      round(r.LastClose, 2),
		PctChange:      round(r.PctChange, 2),
		Components:     r.Components,
		Details: DetailsView{
			RSI:              round(r.Details.RSI, 1),
			MACDBullish:      r.Details.MACDBullish,
			VolumeSurge:      r.Details.VolumeSurge,
			ADXTrend:         r.Details.ADXTrend,
			SuperTrendBuy:    r.Details.SuperTrendBuy,
			BollingerSqueeze: r.Details.BollingerSqueeze,
		},
		Summary:     r.Summary,
		EvaluatedAt: r.EvaluatedAt,
	}
}

// NewReportView converts a report, keeping at most top results (0 = all)
func NewReportView(r *contracts.ScanReport, top int) ReportView {
	results := r.Top(top)
	views := make([]ResultView, len(results))
	for i := range results {
		views[i] = NewResultView(&results[i], i+1)
	}

	skipped := r.Skipped
	if skipped == nil {
		skipped = []contracts.SkipRecord{}
	}

	return ReportView{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Total:      r.Total,
		Attempted:  r.Attempted,
		Completed:  r.Completed,
		Cancelled:  r.Cancelled,
		Results:    views,
		Skipped:    skipped,
		SkipCounts: r.SkipCounts(),
	}
}
