package treasury

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const (
	daysPerYear = 365 // crypto markets never close
	smaPeriod   = 7
)

// computePerformance derives realized performance figures from the trailing
// daily value series. Series with fewer than two points carry no return
// information and yield zero stats.
func computePerformance(p types.Portfolio) types.PerformanceStats {
	series := p.DailyValues
	n := len(series)
	stats := types.PerformanceStats{DailyChange: p.DailyChange(), Trend: "flat"}
	if n < 2 {
		return stats
	}
	stats.WeeklyChange = changeOver(series, 7)
	stats.MonthlyChange = changeOver(series, 30)
	stats.MaxDrawdown = maxDrawdown(series)

	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		if series[i-1] == 0 {
			continue
		}
		returns = append(returns, series[i]/series[i-1]-1)
	}
	if len(returns) >= 2 {
		sd := talib.StdDev(returns, len(returns), 1.0)
		sigma := sd[len(sd)-1]
		mean := 0.0
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))

		stats.Volatility30d = sigma * math.Sqrt(30)
		stats.AnnualizedReturn = mean * daysPerYear
		if sigma > 0 {
			stats.SharpeRatio = mean / sigma * math.Sqrt(daysPerYear)
		}
	}

	if n >= smaPeriod {
		sma := talib.Sma(series, smaPeriod)
		stats.SMA7d = sma[len(sma)-1]
		stats.Trend = trendAgainst(series[n-1], stats.SMA7d)
	}
	return stats
}

// trendAgainst compares the latest value to its moving average with a 0.1%
// dead band so noise does not flip the label.
func trendAgainst(last, sma float64) string {
	switch {
	case sma <= 0:
		return "flat"
	case last > sma*1.001:
		return "upward"
	case last < sma*0.999:
		return "downward"
	default:
		return "flat"
	}
}

// changeOver is the relative change across the trailing days, falling back
// to the full series when it is shorter than the window.
func changeOver(series []float64, days int) float64 {
	n := len(series)
	if n < 2 {
		return 0
	}
	if days > n-1 {
		days = n - 1
	}
	base := series[n-1-days]
	if base == 0 {
		return 0
	}
	return (series[n-1] - base) / base
}

// maxDrawdown is the deepest peak-to-trough decline in the series,
// expressed as a non-positive fraction.
func maxDrawdown(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	peak := series[0]
	worst := 0.0
	for _, v := range series[1:] {
		if v > peak {
			peak = v
			continue
		}
		if peak > 0 {
			if d := (v - peak) / peak; d < worst {
				worst = d
			}
		}
	}
	return worst
}
