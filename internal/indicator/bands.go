package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// Bands holds Bollinger band outputs and the derived %B and bandwidth
type Bands struct {
	Upper     []float64
	Mid       []float64
	Lower     []float64
	PercentB  []float64 // (close − lower) / (upper − lower), 0.5 when the band has zero width
	Bandwidth []float64 // (upper − lower) / mid
}

// Bollinger computes SMA-based bands at k population standard deviations
func Bollinger(closes []float64, period int, k float64) Bands {
	n := len(closes)
	b := Bands{
		Upper:     nans(n),
		Mid:       nans(n),
		Lower:     nans(n),
		PercentB:  nans(n),
		Bandwidth: nans(n),
	}

	lookback := period - 1
	if period < 2 || !enough(n, lookback) {
		return b
	}

	upper, mid, lower := talib.BBands(closes, period, k, k, talib.SMA)
	b.Upper = mask(upper, lookback)
	b.Mid = mask(mid, lookback)
	b.Lower = mask(lower, lookback)

	for i := lookback; i < n; i++ {
		width := b.Upper[i] - b.Lower[i]
		if width > 0 {
			b.PercentB[i] = (closes[i] - b.Lower[i]) / width
		} else {
			b.PercentB[i] = 0.5
		}
		if b.Mid[i] != 0 {
			b.Bandwidth[i] = width / b.Mid[i]
		}
	}
	return b
}

// SuperTrend returns the trailing stop line and whether the trend is up at each bar.
// Bands are hl2 ∓ multiplier×ATR, ratcheted toward price while the prior close stays
// on the same side. The trend starts up and flips when close crosses the prior band.
func SuperTrend(high, low, closes []float64, period int, multiplier float64) (line []float64, up []bool) {
	n := len(closes)
	line = nans(n)
	up = make([]bool, n)

	atr := ATR(high, low, closes, period)
	if n == 0 || math.IsNaN(atr[n-1]) {
		return line, up
	}

	var lowerBand, upperBand float64
	trendUp := true

	for i := period; i < n; i++ {
		hl2 := (high[i] + low[i]) / 2
		basicLower := hl2 - multiplier*atr[i]
		basicUpper := hl2 + multiplier*atr[i]

		if i == period {
			lowerBand, upperBand = basicLower, basicUpper
		} else {
			prevLower, prevUpper := lowerBand, upperBand

			lowerBand = basicLower
			if closes[i-1] > prevLower {
				lowerBand = math.Max(basicLower, prevLower)
			}
			upperBand = basicUpper
			if closes[i-1] < prevUpper {
				upperBand = math.Min(basicUpper, prevUpper)
			}

			switch {
			case !trendUp && closes[i] > prevUpper:
				trendUp = true
			case trendUp && closes[i] < prevLower:
				trendUp = false
			}
		}

		up[i] = trendUp
		if trendUp {
			line[i] = lowerBand
		} else {
			line[i] = upperBand
		}
	}
	return line, up
}
