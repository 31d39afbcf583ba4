package contracts

import "time"

// Universe is the ordered, duplicate-free list of tickers for one scan
// ⭐ SSOT: S1 → S4 handoff
type Universe struct {
	Source    string            `json:"source"` // explicit, strategy, scrape, default
	Tickers   []string          `json:"tickers"`
	Excluded  map[string]string `json:"excluded"` // raw symbol → reason
	CreatedAt time.Time         `json:"created_at"`
}

// Contains reports whether ticker is part of the universe
func (u *Universe) Contains(ticker string) bool {
	for _, t := range u.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Count returns the number of tickers
func (u *Universe) Count() int {
	return len(u.Tickers)
}
