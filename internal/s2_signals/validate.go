package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/bist-swing/internal/contracts"
)

// checkBars rejects series the indicator math cannot be trusted on
func checkBars(bars []contracts.Bar) error {
	for i, b := range bars {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("bar %d (%s): non-finite value: %w", i, day(b), contracts.ErrIndicatorComputation)
			}
		}

		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("bar %d (%s): non-positive price: %w", i, day(b), contracts.ErrIndicatorComputation)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s): negative volume: %w", i, day(b), contracts.ErrIndicatorComputation)
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s): high %.4f below low %.4f: %w", i, day(b), b.High, b.Low, contracts.ErrIndicatorComputation)
		}

		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar %d (%s): timestamps not strictly increasing: %w", i, day(b), contracts.ErrIndicatorComputation)
		}
	}
	return nil
}

func day(b contracts.Bar) string {
	return b.Time.Format("2006-01-02")
}
