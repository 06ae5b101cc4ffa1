package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesFromTotals(t *testing.T) {
	series := SeriesFromTotals(map[string]float64{
		"2024-03": 30,
		"2024-01": 10,
		"2024-02": 20,
	})

	require.Len(t, series, 3)
	assert.Equal(t, "2024-01", series[0].Month)
	assert.Equal(t, "2024-02", series[1].Month)
	assert.Equal(t, "2024-03", series[2].Month)
}

func TestMovingAverage(t *testing.T) {
	series := []Point{
		{Month: "2024-01", Revenue: 10},
		{Month: "2024-02", Revenue: 20},
		{Month: "2024-03", Revenue: 30},
		{Month: "2024-04", Revenue: 40},
	}

	out := MovingAverage(series, 3)
	require.Len(t, out, 4)

	assert.False(t, out[0].HasMA)
	assert.False(t, out[1].HasMA)
	require.True(t, out[2].HasMA)
	assert.InDelta(t, 20, out[2].MovingAvg, 1e-9)
	require.True(t, out[3].HasMA)
	assert.InDelta(t, 30, out[3].MovingAvg, 1e-9)
}

func TestMovingAverage_DefaultWindow(t *testing.T) {
	series := []Point{{Revenue: 1}, {Revenue: 2}, {Revenue: 3}}
	out := MovingAverage(series, 0)
	assert.True(t, out[2].HasMA)
	assert.InDelta(t, 2, out[2].MovingAvg, 1e-9)
}

func TestForecast_LinearSeries(t *testing.T) {
	// Perfectly linear input: the OLS fit must continue the line.
	series := []Point{
		{Month: "2024-01", Revenue: 100},
		{Month: "2024-02", Revenue: 200},
		{Month: "2024-03", Revenue: 300},
	}

	out := Forecast(series, 2)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Period)
	assert.InDelta(t, 400, out[0].Revenue, 1e-6)
	assert.InDelta(t, 500, out[1].Revenue, 1e-6)
}

func TestForecast_TooFewPoints(t *testing.T) {
	series := []Point{{Revenue: 10}, {Revenue: 20}}
	assert.Nil(t, Forecast(series, 3))
}

func TestForecast_FlooredAtZero(t *testing.T) {
	series := []Point{
		{Month: "2024-01", Revenue: 300},
		{Month: "2024-02", Revenue: 150},
		{Month: "2024-03", Revenue: 10},
	}

	out := Forecast(series, 3)
	require.Len(t, out, 3)
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Revenue, 0.0)
	}
}

func TestForecast_UsesTrailingSpanOnly(t *testing.T) {
	// Old points far off the recent line must not drag the fit: the
	// regression sees at most the trailing six points.
	series := []Point{
		{Month: "2023-01", Revenue: 100000},
		{Month: "2023-02", Revenue: 100000},
		{Month: "2024-01", Revenue: 100},
		{Month: "2024-02", Revenue: 200},
		{Month: "2024-03", Revenue: 300},
		{Month: "2024-04", Revenue: 400},
		{Month: "2024-05", Revenue: 500},
		{Month: "2024-06", Revenue: 600},
	}

	out := Forecast(series, 1)
	require.Len(t, out, 1)
	assert.InDelta(t, 700, out[0].Revenue, 1e-6)
}

func TestDetectAnomalies(t *testing.T) {
	series := []Point{
		{Month: "2024-01", Revenue: 100},
		{Month: "2024-02", Revenue: 100},
		{Month: "2024-03", Revenue: 100},
		{Month: "2024-04", Revenue: 200}, // spike vs MA(100,100,200)=133.3
		{Month: "2024-05", Revenue: 20},  // drop
	}

	anomalies := DetectAnomalies(series, 3, 0.20)
	require.Len(t, anomalies, 2)

	assert.Equal(t, "2024-04", anomalies[0].Month)
	assert.Equal(t, "positive", anomalies[0].Type)
	assert.Greater(t, anomalies[0].Deviation, 20.0)

	assert.Equal(t, "2024-05", anomalies[1].Month)
	assert.Equal(t, "negative", anomalies[1].Type)
	assert.Less(t, anomalies[1].Deviation, -20.0)
}

func TestDetectAnomalies_QuietSeries(t *testing.T) {
	series := []Point{
		{Revenue: 100}, {Revenue: 105}, {Revenue: 95}, {Revenue: 102},
	}
	assert.Empty(t, DetectAnomalies(series, 3, 0.20))
}

func TestDetectAnomalies_ZeroMASkipped(t *testing.T) {
	series := []Point{
		{Revenue: 0}, {Revenue: 0}, {Revenue: 0}, {Revenue: 50},
	}
	anomalies := DetectAnomalies(series, 3, 0.20)
	// The fourth point's window still includes the 50, so its MA is not
	// zero; only true zero-MA points are skipped.
	for _, a := range anomalies {
		assert.NotZero(t, a.MovingAvg)
	}
}
