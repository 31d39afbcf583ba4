package s4_scan

import (
	"sort"

	"github.com/wonny/bist-swing/internal/contracts"
)

// rank orders results by composite score descending, ties by input position,
// and skips by input position. Completion order never affects the output.
func rank(outcomes []outcome) ([]contracts.ScoreResult, []contracts.SkipRecord) {
	ordered := make([]outcome, len(outcomes))
	copy(ordered, outcomes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].index < ordered[j].index })

	var scored []outcome
	skipped := []contracts.SkipRecord{}
	for _, o := range ordered {
		switch {
		case o.result != nil:
			scored = append(scored, o)
		case o.skip != nil:
			skipped = append(skipped, *o.skip)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].result.CompositeScore > scored[j].result.CompositeScore
	})

	results := make([]contracts.ScoreResult, len(scored))
	for i, o := range scored {
		results[i] = *o.result
	}
	return results, skipped
}
