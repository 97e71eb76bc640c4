package treasury

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

func TestComputePerformance(t *testing.T) {
	t.Run("Alternating Series", func(t *testing.T) {
		// Returns are exactly +10%, -10%, +10%, -10%: zero mean, sigma 0.1.
		p := types.Portfolio{DailyValues: []float64{100, 110, 99, 108.9, 98.01}}

		perf := computePerformance(p)

		assert.InDelta(t, -0.1, perf.DailyChange, 1e-9)
		assert.InDelta(t, 0.1*math.Sqrt(30), perf.Volatility30d, 1e-9)
		assert.InDelta(t, 0, perf.AnnualizedReturn, 1e-9)
		assert.InDelta(t, 0, perf.SharpeRatio, 1e-9)
		// Deepest decline: 110 down to 98.01.
		assert.InDelta(t, (98.01-110)/110, perf.MaxDrawdown, 1e-9)
		// Too short for the 7-day moving average.
		assert.Zero(t, perf.SMA7d)
		assert.Equal(t, "flat", perf.Trend)
	})

	t.Run("Rising Series Trends Upward", func(t *testing.T) {
		series := make([]float64, 31)
		for i := range series {
			series[i] = 1_000_000 + float64(i)*10_000
		}
		perf := computePerformance(types.Portfolio{DailyValues: series})

		assert.Greater(t, perf.SharpeRatio, 1.0)
		assert.Greater(t, perf.SMA7d, 0.0)
		assert.Less(t, perf.SMA7d, series[30])
		assert.Equal(t, "upward", perf.Trend)
		assert.InDelta(t, 300_000.0/1_000_000, perf.MonthlyChange, 1e-9)
		assert.InDelta(t, 70_000.0/1_230_000, perf.WeeklyChange, 1e-9)
	})

	t.Run("Short Series Yields Zero Stats", func(t *testing.T) {
		for _, series := range [][]float64{nil, {2_500_000}} {
			perf := computePerformance(types.Portfolio{DailyValues: series})
			assert.Zero(t, perf.DailyChange)
			assert.Zero(t, perf.Volatility30d)
			assert.Zero(t, perf.SharpeRatio)
			assert.Equal(t, "flat", perf.Trend)
		}
	})

	t.Run("Zero Value Points Are Skipped", func(t *testing.T) {
		perf := computePerformance(types.Portfolio{DailyValues: []float64{100, 0, 100, 110}})
		assert.False(t, math.IsInf(perf.AnnualizedReturn, 0))
		assert.False(t, math.IsNaN(perf.Volatility30d))
	})
}

func TestChangeOver(t *testing.T) {
	series := []float64{100, 105, 110, 121}

	assert.InDelta(t, 0.1, changeOver(series, 1), 1e-9)
	// Window longer than the series falls back to the full span.
	assert.InDelta(t, 0.21, changeOver(series, 30), 1e-9)
	assert.Zero(t, changeOver([]float64{100}, 7))
	assert.Zero(t, changeOver([]float64{0, 100}, 1))
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, (80.0-120)/120, maxDrawdown([]float64{100, 120, 90, 110, 80}), 1e-9)
	assert.Zero(t, maxDrawdown([]float64{100, 110, 120}))
	assert.Zero(t, maxDrawdown(nil))
}

func TestTrendAgainst(t *testing.T) {
	assert.Equal(t, "upward", trendAgainst(101, 100))
	assert.Equal(t, "downward", trendAgainst(99, 100))
	assert.Equal(t, "flat", trendAgainst(100.05, 100))
	assert.Equal(t, "flat", trendAgainst(10, 0))
}
