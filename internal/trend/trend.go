// Package trend computes the peripheral statistics over a monthly
// revenue series: a trailing moving average, a least-squares linear
// forecast, and moving-average deviation anomalies.
package trend

import (
	"math"
	"sort"
)

// DefaultWindow is the moving-average window in months
const DefaultWindow = 3

// DefaultThreshold is the anomaly deviation threshold (20%)
const DefaultThreshold = 0.20

// forecastSpan bounds how many trailing points feed the regression
const forecastSpan = 6

// Point is one month of a chronological revenue series
type Point struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// SeriesFromTotals converts a month-to-revenue map into a
// chronological series. Month keys are "YYYY-MM", so lexical order is
// time order.
func SeriesFromTotals(totals map[string]float64) []Point {
	series := make([]Point, 0, len(totals))
	for month, revenue := range totals {
		series = append(series, Point{Month: month, Revenue: revenue})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Month < series[j].Month })
	return series
}

// MAPoint is a series point with its trailing moving average
type MAPoint struct {
	Point
	MovingAvg float64 `json:"moving_avg"`
	HasMA     bool    `json:"has_ma"`
}

// MovingAverage annotates each point with the mean of itself and the
// preceding window-1 points. The first window-1 points have no
// average.
func MovingAverage(series []Point, window int) []MAPoint {
	if window <= 0 {
		window = DefaultWindow
	}
	out := make([]MAPoint, len(series))
	for i, p := range series {
		out[i] = MAPoint{Point: p}
		if i < window-1 {
			continue
		}
		var sum float64
		for _, q := range series[i-window+1 : i+1] {
			sum += q.Revenue
		}
		out[i].MovingAvg = sum / float64(window)
		out[i].HasMA = true
	}
	return out
}

// ForecastPoint is one extrapolated future period
type ForecastPoint struct {
	Period  int     `json:"period"` // 1 = first month after the series
	Revenue float64 `json:"revenue"`
}

// Forecast fits an ordinary least-squares line over the trailing six
// points (or fewer) and extrapolates it for the requested number of
// periods, floored at zero. Fewer than three points produce no
// forecast.
func Forecast(series []Point, periods int) []ForecastPoint {
	if len(series) < 3 || periods <= 0 {
		return nil
	}
	recent := series
	if len(recent) > forecastSpan {
		recent = recent[len(recent)-forecastSpan:]
	}
	n := float64(len(recent))

	var sumX, sumY, sumXY, sumX2 float64
	for i, p := range recent {
		x := float64(i)
		sumX += x
		sumY += p.Revenue
		sumXY += x * p.Revenue
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	out := make([]ForecastPoint, 0, periods)
	for i := 1; i <= periods; i++ {
		x := n + float64(i) - 1
		out = append(out, ForecastPoint{
			Period:  i,
			Revenue: math.Max(0, slope*x+intercept),
		})
	}
	return out
}

// Anomaly flags a month whose revenue deviates from its moving average
// by more than the threshold.
type Anomaly struct {
	Month     string  `json:"month"`
	Revenue   float64 `json:"revenue"`
	MovingAvg float64 `json:"moving_avg"`
	Deviation float64 `json:"deviation"` // signed, as a percentage
	Type      string  `json:"type"`      // "positive" (spike) or "negative" (drop)
}

// DetectAnomalies flags points where |actual-ma| / ma exceeds the
// threshold. Points without a moving average, or with a zero moving
// average, are never flagged because the ratio is undefined there.
func DetectAnomalies(series []Point, window int, threshold float64) []Anomaly {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var anomalies []Anomaly
	for _, p := range MovingAverage(series, window) {
		if !p.HasMA || p.MovingAvg == 0 {
			continue
		}
		deviation := (p.Revenue - p.MovingAvg) / p.MovingAvg
		if math.Abs(deviation) <= threshold {
			continue
		}
		kind := "positive"
		if deviation < 0 {
			kind = "negative"
		}
		anomalies = append(anomalies, Anomaly{
			Month:     p.Month,
			Revenue:   p.Revenue,
			MovingAvg: p.MovingAvg,
			Deviation: deviation * 100,
			Type:      kind,
		})
	}
	return anomalies
}
