package stats

import (
	"sort"

	"github.com/verte-zerg/typer/internal/model"
)

// SelectWeakChars selects the lowest-accuracy characters from aggregates.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	if len(aggs) == 0 {
		return weakSet
	}
	candidates := make([]model.CharAggregate, len(aggs))
	copy(candidates, aggs)
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			// Slower hits first among equally accurate characters.
			oi, oj := MeanOffsetMs(candidates[i]), MeanOffsetMs(candidates[j])
			if oi != oj {
				return oi > oj
			}
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		runes := []rune(candidates[i].Char)
		if len(runes) > 0 {
			weakSet[runes[0]] = struct{}{}
		}
	}
	return weakSet
}

// accuracy treats characters with no judgements as perfect so they are not
// selected as weak.
func accuracy(agg model.CharAggregate) float64 {
	total := agg.Hits + agg.Misses
	if total == 0 {
		return 1.0
	}
	return float64(agg.Hits) / float64(total)
}
