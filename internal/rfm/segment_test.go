package rfm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		r, f, m int
		want    Segment
	}{
		{5, 5, 5, SegmentUltraChampions},
		{5, 5, 4, SegmentChampions},
		{4, 4, 4, SegmentChampions},
		{5, 4, 4, SegmentChampions},
		{4, 3, 5, SegmentNew},
		{5, 3, 1, SegmentNew},
		{3, 3, 1, SegmentOccasional},
		{3, 3, 5, SegmentOccasional}, // order matters: not Loyaux
		{3, 4, 3, SegmentLoyal},
		{3, 5, 5, SegmentLoyal},
		{4, 5, 3, SegmentLoyal}, // misses Champions on M, catches Loyaux
		{2, 3, 5, SegmentAtRisk},
		{1, 5, 5, SegmentAtRisk},
		{2, 2, 5, SegmentLost},
		{1, 1, 1, SegmentLost},
		{5, 2, 5, SegmentLost}, // recent but infrequent falls through
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d%d%d", tt.r, tt.f, tt.m), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.r, tt.f, tt.m))
		})
	}
}

// Every score combination must land in exactly one segment: Classify is
// a total function over 1..5 cubes and the cascade order makes overlaps
// unambiguous.
func TestClassify_TotalCoverage(t *testing.T) {
	counts := make(map[Segment]int)
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				seg := Classify(r, f, m)
				assert.Contains(t, Segments, seg)
				counts[seg]++
			}
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 125, total)
	assert.Equal(t, 1, counts[SegmentUltraChampions])
}
