package s2_signals

import (
	"fmt"

	"github.com/wonny/bist-swing/internal/contracts"
	"github.com/wonny/bist-swing/internal/indicator"
	"github.com/wonny/bist-swing/pkg/logger"
)

// FrameBuilder turns a price history into an indicator frame
// ⭐ SSOT: the only place indicators are computed for scoring
type FrameBuilder struct {
	params Params
	logger *logger.Logger
}

// NewFrameBuilder creates a builder. Params are validated once here.
func NewFrameBuilder(params Params, log *logger.Logger) (*FrameBuilder, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid indicator params: %w", err)
	}
	return &FrameBuilder{params: params, logger: log}, nil
}

// Params returns the builder's indicator lengths
func (b *FrameBuilder) Params() Params {
	return b.params
}

// Build computes every indicator once over the full history and zips the results
// with the bars. The history is not modified and the frame does not share its slice.
func (b *FrameBuilder) Build(history *contracts.PriceHistory) (*contracts.IndicatorFrame, error) {
	n := history.Len()
	if n < contracts.MinBars {
		return nil, fmt.Errorf("%s has %d bars, need %d: %w", history.Ticker, n, contracts.MinBars, contracts.ErrInsufficientHistory)
	}
	if err := checkBars(history.Bars); err != nil {
		return nil, fmt.Errorf("%s: %w", history.Ticker, err)
	}

	p := b.params
	_, high, low, closes, volume := history.Columns()

	rsi := indicator.RSI(closes, p.RSIPeriod)
	macd, macdSignal, macdHist := indicator.MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	mfi := indicator.MFI(high, low, closes, volume, p.MFIPeriod)
	volSMA := indicator.SMA(volume, p.VolumeSMAPeriod)
	adx, diPlus, diMinus := indicator.ADX(high, low, closes, p.ADXPeriod)
	st, stUp := indicator.SuperTrend(high, low, closes, p.SuperTrendPeriod, p.SuperTrendMultiplier)
	bands := indicator.Bollinger(closes, p.BBPeriod, p.BBStdDev)
	bwAvg := indicator.TrailingMean(bands.Bandwidth, p.BandwidthAvgPeriod)
	emaShort := indicator.EMA(closes, p.EMAShort)
	emaLong := indicator.EMA(closes, p.EMALong)

	rows := make([]contracts.IndicatorRow, n)
	for i := range rows {
		rows[i] = contracts.IndicatorRow{
			RSI14:            rsi[i],
			MACD:             macd[i],
			MACDSignal:       macdSignal[i],
			MACDHist:         macdHist[i],
			MFI14:            mfi[i],
			VolumeSMA20:      volSMA[i],
			ADX14:            adx[i],
			DIPlus14:         diPlus[i],
			DIMinus14:        diMinus[i],
			SuperTrend:       st[i],
			SuperTrendUp:     stUp[i],
			BBUpper:          bands.Upper[i],
			BBMid:            bands.Mid[i],
			BBLower:          bands.Lower[i],
			BBPercentB:       bands.PercentB[i],
			BBBandwidth:      bands.Bandwidth[i],
			BBBandwidthAvg20: bwAvg[i],
			EMA20:            emaShort[i],
			EMA50:            emaLong[i],
		}
	}

	bars := make([]contracts.Bar, n)
	copy(bars, history.Bars)

	frame := &contracts.IndicatorFrame{
		Ticker: history.Ticker,
		Bars:   bars,
		Rows:   rows,
	}

	b.logger.WithFields(map[string]interface{}{
		"ticker":      history.Ticker,
		"bars":        n,
		"valid_rows":  frame.ValidCount(),
		"first_valid": frame.FirstValid(),
	}).Debug("Built indicator frame")

	return frame, nil
}
