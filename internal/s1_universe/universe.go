package s1_universe

import (
	"regexp"
	"strings"
)

// DefaultBIST is the built-in scan list: liquid Borsa Istanbul names
var DefaultBIST = []string{
	"THYAO", "ASELS", "KCHOL", "AKBNK", "GARAN", "SISE", "EREGL", "TUPRS", "BIMAS", "SASA",
	"HEKTS", "PETKM", "ISCTR", "SAHOL", "FROTO", "YKBNK", "ENKAI", "TOASO", "PGSUS", "TCELL",
	"ASTOR", "EUPWR", "KONTR", "GESAN", "ODAS", "KOZAL", "KRDMD", "VESTL", "ARCLK", "ALARK",
}

// symbol is an exchange code optionally followed by a market suffix, e.g. THYAO or THYAO.IS
var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}(\.[A-Z]{1,4})?$`)

// Exclusion reasons
const (
	ReasonInvalid   = "invalid symbol"
	ReasonDuplicate = "duplicate"
)

// Normalize upper-cases symbols, appends suffix to bare codes, and drops blanks,
// malformed entries and repeats. Order of first occurrence is kept.
func Normalize(symbols []string, suffix string) (tickers []string, excluded map[string]string) {
	seen := make(map[string]bool, len(symbols))
	excluded = make(map[string]string)

	for _, raw := range symbols {
		s := strings.ToUpper(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		if !symbolPattern.MatchString(s) {
			excluded[raw] = ReasonInvalid
			continue
		}

		if suffix != "" && !strings.Contains(s, ".") {
			s += strings.ToUpper(suffix)
		}

		if seen[s] {
			excluded[raw] = ReasonDuplicate
			continue
		}
		seen[s] = true
		tickers = append(tickers, s)
	}
	return tickers, excluded
}

// Display strips the market suffix for compact tables
func Display(ticker string) string {
	if i := strings.IndexByte(ticker, '.'); i > 0 {
		return ticker[:i]
	}
	return ticker
}
