package rfm

// Thresholds derives the four quintile cut-points from a sorted value
// slice: the values at positions floor(len*0.2), floor(len*0.4),
// floor(len*0.6) and floor(len*0.8). The caller chooses the sort
// direction (ascending for recency, descending for frequency and
// monetary); indexes are clamped for tiny populations.
func Thresholds(sorted []float64) [4]float64 {
	var th [4]float64
	n := len(sorted)
	if n == 0 {
		return th
	}
	for i, q := range [4]float64{0.2, 0.4, 0.6, 0.8} {
		idx := int(float64(n) * q)
		if idx >= n {
			idx = n - 1
		}
		th[i] = sorted[idx]
	}
	return th
}

// Score places a value into its quintile score 1..5.
//
// Non-reverse (frequency, monetary; thresholds from a descending
// sort): 5 when value ≥ th[0], 4 when ≥ th[1], and so on down to 1.
// Reverse (recency; thresholds from an ascending sort): 5 when value ≤
// th[0], 4 when ≤ th[1], and so on. Low recency means a recent,
// therefore good, customer.
//
// Boundaries are inclusive: a value equal to a cut-point takes the
// higher score.
func Score(value float64, th [4]float64, reverse bool) int {
	if !reverse {
		switch {
		case value >= th[0]:
			return 5
		case value >= th[1]:
			return 4
		case value >= th[2]:
			return 3
		case value >= th[3]:
			return 2
		default:
			return 1
		}
	}
	switch {
	case value <= th[0]:
		return 5
	case value <= th[1]:
		return 4
	case value <= th[2]:
		return 3
	case value <= th[3]:
		return 2
	default:
		return 1
	}
}
