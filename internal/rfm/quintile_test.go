package rfm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		want   [4]float64
	}{
		{
			name:   "descending frequency population",
			sorted: []float64{10, 8, 5, 3, 1},
			want:   [4]float64{8, 5, 3, 1},
		},
		{
			name:   "ascending recency population",
			sorted: []float64{1, 3, 5, 8, 10},
			want:   [4]float64{3, 5, 8, 10},
		},
		{
			name:   "single value clamps every cut",
			sorted: []float64{42},
			want:   [4]float64{42, 42, 42, 42},
		},
		{
			// floor(2*0.2) and floor(2*0.4) both land on index 0.
			name:   "two values",
			sorted: []float64{7, 3},
			want:   [4]float64{7, 7, 3, 3},
		},
		{
			name:   "empty population",
			sorted: nil,
			want:   [4]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Thresholds(tt.sorted))
		})
	}
}

func TestScore(t *testing.T) {
	// Thresholds from the descending population {10, 8, 5, 3, 1}.
	desc := [4]float64{8, 5, 3, 1}

	tests := []struct {
		value float64
		want  int
	}{
		{value: 10, want: 5},
		{value: 8, want: 5}, // boundary takes the higher score
		{value: 7, want: 4},
		{value: 5, want: 4},
		{value: 4, want: 3},
		{value: 3, want: 3},
		{value: 2, want: 2},
		{value: 1, want: 2},
		{value: 0.5, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.value, desc, false), "value %v", tt.value)
	}
}

func TestScore_Reverse(t *testing.T) {
	// Thresholds from the ascending recency population {5, 30, 90, 200, 400}.
	asc := [4]float64{30, 90, 200, 400}

	tests := []struct {
		value float64
		want  int
	}{
		{value: 5, want: 5},
		{value: 30, want: 5}, // boundary inclusive
		{value: 60, want: 4},
		{value: 150, want: 3},
		{value: 300, want: 2},
		{value: 500, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Score(tt.value, asc, true), "value %v", tt.value)
	}
}
