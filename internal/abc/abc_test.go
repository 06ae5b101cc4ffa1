package abc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
)

func accOf(revenues map[string]float64) aggregate.Accumulator {
	acc := make(aggregate.Accumulator)
	for key, rev := range revenues {
		acc.Add(key, rev)
	}
	return acc
}

func TestClassify(t *testing.T) {
	acc := accOf(map[string]float64{
		"big":    700,
		"medium": 200,
		"small":  60,
		"tiny":   40,
	})

	items := Classify(acc)
	require.Len(t, items, 4)

	assert.Equal(t, "big", items[0].Key)
	assert.Equal(t, 1, items[0].Rank)
	assert.InDelta(t, 70, items[0].CumulativeShare, 1e-9)
	assert.Equal(t, "A", items[0].Category)

	assert.Equal(t, "medium", items[1].Key)
	assert.InDelta(t, 90, items[1].CumulativeShare, 1e-9)
	assert.Equal(t, "B", items[1].Category)

	assert.Equal(t, "small", items[2].Key)
	assert.InDelta(t, 96, items[2].CumulativeShare, 1e-9)
	assert.Equal(t, "C", items[2].Category)

	assert.Equal(t, "tiny", items[3].Key)
	assert.InDelta(t, 100, items[3].CumulativeShare, 1e-9)
	assert.Equal(t, "C", items[3].Category)
}

func TestClassify_CumulativeShareMonotonic(t *testing.T) {
	acc := accOf(map[string]float64{
		"a": 5, "b": 12, "c": 33, "d": 7, "e": 41, "f": 2,
	})

	items := Classify(acc)
	prev := 0.0
	for _, it := range items {
		assert.GreaterOrEqual(t, it.CumulativeShare, prev)
		prev = it.CumulativeShare
	}
	assert.InDelta(t, 100, items[len(items)-1].CumulativeShare, 1e-9)
}

func TestClassify_TiesAreDeterministic(t *testing.T) {
	acc := accOf(map[string]float64{"z": 10, "a": 10, "m": 10})

	items := Classify(acc)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Key)
	assert.Equal(t, "m", items[1].Key)
	assert.Equal(t, "z", items[2].Key)
}

func TestClassify_ZeroTotal(t *testing.T) {
	acc := make(aggregate.Accumulator)
	acc.Add("refund", -10)
	acc.Add("purchase", 10)

	items := Classify(acc)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Zero(t, it.CumulativeShare, "zero total leaves shares at zero")
	}
}

func TestClassify_Empty(t *testing.T) {
	assert.Empty(t, Classify(make(aggregate.Accumulator)))
}

func TestSummarize(t *testing.T) {
	acc := accOf(map[string]float64{
		"big": 700, "medium": 200, "small": 60, "tiny": 40,
	})
	stats := Summarize(Classify(acc))

	require.Contains(t, stats, "A")
	require.Contains(t, stats, "B")
	require.Contains(t, stats, "C")
	assert.Equal(t, 1, stats["A"].Count)
	assert.InDelta(t, 700, stats["A"].Revenue, 1e-9)
	assert.Equal(t, 2, stats["C"].Count)
}
