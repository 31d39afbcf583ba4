// Package indicator wraps go-talib with NaN warm-up semantics.
//
// Every function returns slices as long as its inputs. Positions before an
// indicator's lookback hold NaN instead of talib's zero fill, and inputs that are
// too short to produce a single value come back as all-NaN rather than panicking
// inside talib.
package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// mask overwrites the warm-up region of a talib output with NaN
func mask(out []float64, lookback int) []float64 {
	for i := 0; i < lookback && i < len(out); i++ {
		out[i] = math.NaN()
	}
	return out
}

// enough reports whether n samples produce at least one value after lookback
func enough(n, lookback int) bool {
	return lookback >= 0 && n > lookback
}

// SMA is the simple moving average
func SMA(x []float64, period int) []float64 {
	lookback := period - 1
	if period < 1 || !enough(len(x), lookback) {
		return nans(len(x))
	}
	return mask(talib.Sma(x, period), lookback)
}

// EMA is the exponential moving average seeded with the SMA of the first period values
func EMA(x []float64, period int) []float64 {
	lookback := period - 1
	if period < 1 || !enough(len(x), lookback) {
		return nans(len(x))
	}
	return mask(talib.Ema(x, period), lookback)
}

// TrailingMean is an SMA that starts at the first non-NaN value of x.
// Used for series that themselves have a warm-up, such as Bollinger bandwidth.
func TrailingMean(x []float64, period int) []float64 {
	start := -1
	for i, v := range x {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}

	out := nans(len(x))
	if start < 0 {
		return out
	}
	copy(out[start:], SMA(x[start:], period))
	return out
}

// RSI is Wilder's relative strength index
func RSI(closes []float64, period int) []float64 {
	lookback := period
	if period < 2 || !enough(len(closes), lookback) {
		return nans(len(closes))
	}
	return mask(talib.Rsi(closes, period), lookback)
}

// MACD returns the MACD line (fast EMA − slow EMA), its signal EMA and the histogram.
// The signal EMA is seeded from the first computable MACD values, so the first
// complete row sits at index slow+signal−2.
func MACD(closes []float64, fast, slow, signal int) (macd, sig, hist []float64) {
	n := len(closes)
	if fast > slow {
		fast, slow = slow, fast
	}

	macd = nans(n)
	sig = nans(n)
	hist = nans(n)
	if fast < 1 || signal < 1 || !enough(n, slow-1+signal-1) {
		return macd, sig, hist
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := slow - 1; i < n; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	start := slow - 1
	copy(sig[start:], EMA(macd[start:], signal))
	for i := start + signal - 1; i < n; i++ {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist
}

// ADX returns the average directional index with the +DI and −DI lines
func ADX(high, low, closes []float64, period int) (adx, diPlus, diMinus []float64) {
	n := len(closes)
	if period < 2 || len(high) != n || len(low) != n {
		return nans(n), nans(n), nans(n)
	}

	if enough(n, period) {
		diPlus = mask(talib.PlusDI(high, low, closes, period), period)
		diMinus = mask(talib.MinusDI(high, low, closes, period), period)
	} else {
		diPlus, diMinus = nans(n), nans(n)
	}

	adxLookback := 2*period - 1
	if enough(n, adxLookback) {
		adx = mask(talib.Adx(high, low, closes, period), adxLookback)
	} else {
		adx = nans(n)
	}
	return adx, diPlus, diMinus
}

// ATR is Wilder's average true range
func ATR(high, low, closes []float64, period int) []float64 {
	n := len(closes)
	if period < 1 || len(high) != n || len(low) != n || !enough(n, period) {
		return nans(n)
	}
	return mask(talib.Atr(high, low, closes, period), period)
}

// MFI is the money flow index
func MFI(high, low, closes, volume []float64, period int) []float64 {
	n := len(closes)
	if period < 2 || len(high) != n || len(low) != n || len(volume) != n || !enough(n, period) {
		return nans(n)
	}
	return mask(talib.Mfi(high, low, closes, volume, period), period)
}
