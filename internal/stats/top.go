package stats

import (
	"sort"

	"github.com/verte-zerg/typer/internal/model"
)

// TopCharsByFrequency returns the n characters with the most judgements.
// Among equally practised characters the one with the larger mean offset
// comes first.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []model.CharAggregate {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	ranked := make([]model.CharAggregate, len(aggs))
	copy(ranked, aggs)
	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := judgements(ranked[i]), judgements(ranked[j])
		if ti != tj {
			return ti > tj
		}
		if oi, oj := MeanOffsetMs(ranked[i]), MeanOffsetMs(ranked[j]); oi != oj {
			return oi > oj
		}
		return ranked[i].Char < ranked[j].Char
	})
	return ranked[:min(n, len(ranked))]
}

func judgements(agg model.CharAggregate) int {
	return agg.Hits + agg.Misses
}
