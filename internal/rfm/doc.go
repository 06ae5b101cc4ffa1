// Package rfm scores customers on Recency, Frequency and Monetary
// value and classifies them into behavioral segments.
//
// Thresholds are data-relative, never fixed: each run derives the four
// quintile cut-points from the scored population itself (recency
// sorted ascending, frequency and monetary descending), so a score of
// 5 always means "top ~20% of this dataset". Duplicate values at a
// cut-point all receive the same score, which can skew bucket sizes
// away from exactly 20%.
//
// Classification is a prioritized cascade evaluated in a fixed order;
// the rules overlap, so first match wins and every customer lands in
// exactly one segment.
package rfm
