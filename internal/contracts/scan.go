package contracts

import "time"

// SkipRecord explains why a ticker is absent from the ranked results
type SkipRecord struct {
	Ticker string    `json:"ticker"`
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
}

// Progress is emitted once per processed ticker. Completed increases by exactly one per event.
type Progress struct {
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Ticker    string `json:"ticker"`
}

// Fraction returns Completed/Total in [0,1]
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// ScanEvent carries progress plus either a result or a skip for the processed ticker
type ScanEvent struct {
	Progress Progress     `json:"progress"`
	Result   *ScoreResult `json:"result,omitempty"`
	Skip     *SkipRecord  `json:"skip,omitempty"`
}

// ScanReport is the ranked outcome of one scan. A new scan replaces it, never merges into it.
// ⭐ SSOT: S4 output
type ScanReport struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Total      int           `json:"total"`
	Attempted  int           `json:"attempted"`
	Completed  int           `json:"completed"`
	Cancelled  bool          `json:"cancelled"`
	Results    []ScoreResult `json:"results"` // score desc, input order on ties
	Skipped    []SkipRecord  `json:"skipped"`
}

// Find returns the result for a ticker
func (r *ScanReport) Find(ticker string) (*ScoreResult, bool) {
	for i := range r.Results {
		if r.Results[i].Ticker == ticker {
			return &r.Results[i], true
		}
	}
	return nil, false
}

// Top returns at most n leading results
func (r *ScanReport) Top(n int) []ScoreResult {
	if n <= 0 || n >= len(r.Results) {
		return r.Results
	}
	return r.Results[:n]
}

// SkipCounts tallies skips by kind
func (r *ScanReport) SkipCounts() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, s := range r.Skipped {
		counts[s.Kind]++
	}
	return counts
}
