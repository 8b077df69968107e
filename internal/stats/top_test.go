package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/typer/internal/model"
)

func chars(aggs []model.CharAggregate) []string {
	out := make([]string, len(aggs))
	for i, agg := range aggs {
		out[i] = agg.Char
	}
	return out
}

func TestTopCharsByFrequencyRanksByJudgements(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "в", Hits: 1, Misses: 0},
		{Char: "б", Hits: 3, Misses: 3},
		{Char: "а", Hits: 2, Misses: 2, OffsetSumMs: 40, OffsetCount: 2},
		{Char: "ж", Hits: 4, Misses: 0, OffsetSumMs: 240, OffsetCount: 4},
	}
	assert.Equal(t, []string{"б", "ж", "а"}, chars(TopCharsByFrequency(aggs, 3)))
	assert.Equal(t, "в", aggs[0].Char, "input order is kept")
}

func TestTopCharsByFrequencyOffsetTieBreak(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "а", Hits: 2, Misses: 0, OffsetSumMs: 20, OffsetCount: 2},
		{Char: "ю", Hits: 2, Misses: 0, OffsetSumMs: 200, OffsetCount: 2},
		{Char: "б", Hits: 1, Misses: 1},
	}
	assert.Equal(t, []string{"ю", "а", "б"}, chars(TopCharsByFrequency(aggs, 5)))
}

func TestTopCharsByFrequencyEmpty(t *testing.T) {
	assert.Nil(t, TopCharsByFrequency(nil, 3))
	assert.Nil(t, TopCharsByFrequency([]model.CharAggregate{{Char: "а", Hits: 1}}, 0))
}
