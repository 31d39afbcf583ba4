package contracts

import "time"

// MinBars is the shortest history the engine will score
const MinBars = 50

// Bar is one daily OHLCV session
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceHistory is an ascending series of bars for one ticker
// ⭐ SSOT: S0 → S2 price data handoff
type PriceHistory struct {
	Ticker string `json:"ticker"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars
func (h *PriceHistory) Len() int {
	return len(h.Bars)
}

// Latest returns the newest bar
func (h *PriceHistory) Latest() (Bar, bool) {
	if len(h.Bars) == 0 {
		return Bar{}, false
	}
	return h.Bars[len(h.Bars)-1], true
}

// Columns splits the bars into parallel OHLCV slices for the indicator library
func (h *PriceHistory) Columns() (open, high, low, closes, volume []float64) {
	n := len(h.Bars)
	open = make([]float64, n)
	high = make([]float64, n)
	low = make([]float64, n)
	closes = make([]float64, n)
	volume = make([]float64, n)

	for i, b := range h.Bars {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		volume[i] = b.Volume
	}
	return open, high, low, closes, volume
}
