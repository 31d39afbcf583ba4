package s2_signals

import "fmt"

// Params are the indicator lengths used to build a frame
type Params struct {
	RSIPeriod            int
	MACDFast             int
	MACDSlow             int
	MACDSignal           int
	MFIPeriod            int
	VolumeSMAPeriod      int
	ADXPeriod            int
	SuperTrendPeriod     int
	SuperTrendMultiplier float64
	BBPeriod             int
	BBStdDev             float64
	BandwidthAvgPeriod   int
	EMAShort             int
	EMALong              int
}

// DefaultParams returns the canonical parameter set
func DefaultParams() Params {
	return Params{
		RSIPeriod:            14,
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		MFIPeriod:            14,
		VolumeSMAPeriod:      20,
		ADXPeriod:            14,
		SuperTrendPeriod:     7,
		SuperTrendMultiplier: 3.0,
		BBPeriod:             20,
		BBStdDev:             2.0,
		BandwidthAvgPeriod:   20,
		EMAShort:             20,
		EMALong:              50,
	}
}

// Validate rejects lengths the indicator library cannot use
func (p Params) Validate() error {
	periods := map[string]int{
		"rsi_period":           p.RSIPeriod,
		"macd_fast":            p.MACDFast,
		"macd_slow":            p.MACDSlow,
		"macd_signal":          p.MACDSignal,
		"mfi_period":           p.MFIPeriod,
		"volume_sma_period":    p.VolumeSMAPeriod,
		"adx_period":           p.ADXPeriod,
		"supertrend_period":    p.SuperTrendPeriod,
		"bb_period":            p.BBPeriod,
		"bandwidth_avg_period": p.BandwidthAvgPeriod,
		"ema_short":            p.EMAShort,
		"ema_long":             p.EMALong,
	}
	for name, v := range periods {
		if v < 2 {
			return fmt.Errorf("%s must be at least 2, got %d", name, v)
		}
	}

	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be shorter than macd_slow (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.SuperTrendMultiplier <= 0 {
		return fmt.Errorf("supertrend_multiplier must be positive")
	}
	if p.BBStdDev <= 0 {
		return fmt.Errorf("bb_stddev must be positive")
	}
	return nil
}

// Warmup returns the index of the first bar at which every scored indicator is defined
func (p Params) Warmup() int {
	w := 0
	for _, lb := range []int{
		p.RSIPeriod,
		p.MACDSlow + p.MACDSignal - 2,
		p.MFIPeriod,
		p.VolumeSMAPeriod - 1,
		2*p.ADXPeriod - 1,
		p.SuperTrendPeriod,
		p.BBPeriod + p.BandwidthAvgPeriod - 2,
	} {
		if lb > w {
			w = lb
		}
	}
	return w
}
