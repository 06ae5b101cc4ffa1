// Package abc ranks entities by revenue contribution and assigns
// Pareto categories from cumulative share: the entities producing the
// first 80% of revenue are A, the next 15% B, the tail C.
package abc

import (
	"sort"

	"github.com/starfeu1331-jpg/MagicSysteme/internal/aggregate"
)

// Category boundaries on cumulative revenue share
const (
	boundaryA = 80.0
	boundaryB = 95.0
)

// Item is one ranked, categorized entity
type Item struct {
	Key             string  `json:"key"`
	Revenue         float64 `json:"revenue"`
	Volume          int64   `json:"volume"`
	Rank            int     `json:"rank"`
	CumulativeShare float64 `json:"cumulative_share"`
	Category        string  `json:"category"`
}

// Classify ranks an accumulator's entries descending by revenue and
// assigns A/B/C from the cumulative share at each position. Revenue
// ties keep a stable order (key ascending as secondary sort, purely
// for determinism; category boundaries are statistical, not exact).
// A zero revenue total leaves every share at zero rather than dividing
// by zero.
func Classify(acc aggregate.Accumulator) []Item {
	items := make([]Item, 0, len(acc))
	for key, e := range acc {
		items = append(items, Item{Key: key, Revenue: e.Revenue, Volume: e.Volume})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Revenue != items[j].Revenue {
			return items[i].Revenue > items[j].Revenue
		}
		return items[i].Key < items[j].Key
	})

	var total float64
	for _, it := range items {
		total += it.Revenue
	}

	var cumulative float64
	for i := range items {
		cumulative += items[i].Revenue
		if total != 0 {
			items[i].CumulativeShare = cumulative / total * 100
		}
		items[i].Rank = i + 1
		switch {
		case items[i].CumulativeShare <= boundaryA:
			items[i].Category = "A"
		case items[i].CumulativeShare <= boundaryB:
			items[i].Category = "B"
		default:
			items[i].Category = "C"
		}
	}
	return items
}

// CategoryStat aggregates one category of a classified list
type CategoryStat struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Volume  int64   `json:"volume"`
}

// Summarize totals a classified list per category
func Summarize(items []Item) map[string]*CategoryStat {
	stats := make(map[string]*CategoryStat, 3)
	for _, it := range items {
		s := stats[it.Category]
		if s == nil {
			s = &CategoryStat{}
			stats[it.Category] = s
		}
		s.Count++
		s.Revenue += it.Revenue
		s.Volume += it.Volume
	}
	return stats
}
