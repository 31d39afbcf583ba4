package contracts

import "math"

// IndicatorRow holds every indicator value for one bar index.
// Fields are NaN until the indicator's warm-up period has passed.
type IndicatorRow struct {
	RSI14 float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	MFI14       float64
	VolumeSMA20 float64

	ADX14     float64
	DIPlus14  float64
	DIMinus14 float64

	SuperTrend   float64
	SuperTrendUp bool

	BBUpper          float64
	BBMid            float64
	BBLower          float64
	BBPercentB       float64
	BBBandwidth      float64
	BBBandwidthAvg20 float64 // trailing mean of BBBandwidth, used for squeeze detection

	// informational, not read by the scorer
	EMA20 float64
	EMA50 float64
}

// Valid reports whether every value the scorer reads has been computed
func (r *IndicatorRow) Valid() bool {
	for _, v := range [...]float64{
		r.RSI14,
		r.MACD, r.MACDSignal, r.MACDHist,
		r.MFI14, r.VolumeSMA20,
		r.ADX14, r.DIPlus14, r.DIMinus14,
		r.SuperTrend,
		r.BBMid, r.BBPercentB, r.BBBandwidth, r.BBBandwidthAvg20,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IndicatorFrame zips bars with their indicator rows. Bars[i] and Rows[i] describe the same session.
// ⭐ SSOT: S2 → S3 handoff; never mutated after the builder returns it
type IndicatorFrame struct {
	Ticker string
	Bars   []Bar
	Rows   []IndicatorRow
}

// Len returns the number of sessions in the frame
func (f *IndicatorFrame) Len() int {
	return len(f.Rows)
}

// ValidCount returns how many rows have every scoring input populated
func (f *IndicatorFrame) ValidCount() int {
	n := 0
	for i := range f.Rows {
		if f.Rows[i].Valid() {
			n++
		}
	}
	return n
}

// FirstValid returns the index of the first fully populated row, or -1
func (f *IndicatorFrame) FirstValid() int {
	for i := range f.Rows {
		if f.Rows[i].Valid() {
			return i
		}
	}
	return -1
}
