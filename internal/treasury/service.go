// Package treasury analyzes DAO treasury portfolios: score computation,
// realized performance from the daily value series, risk factors,
// rebalancing suggestions, alerts and value forecasts.
package treasury

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/scoring"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const (
	noRisksIdentified = "No significant risks identified"

	maxRiskFactors = 5
	topHoldingsCap = 5

	severityHigh   = "high"
	severityMedium = "medium"
)

// Chain is the slice of the chain client the treasury analysis reads.
type Chain interface {
	Treasury(ctx context.Context, address string) (types.Portfolio, error)
}

// Recorder persists completed analyses. Failures are logged and never
// surface to callers.
type Recorder interface {
	SaveTreasurySnapshot(ctx context.Context, analysis types.TreasuryAnalysis) error
}

type Service struct {
	chain    Chain
	engine   *scoring.Engine
	recorder Recorder
}

func NewService(chain Chain, engine *scoring.Engine) *Service {
	if engine == nil {
		engine = scoring.NewEngine(nil)
	}
	return &Service{chain: chain, engine: engine}
}

// AttachRecorder enables best-effort persistence of analysis snapshots.
func (s *Service) AttachRecorder(r Recorder) { s.recorder = r }

// Analysis builds the full treasury assessment. A portfolio without value
// cannot be scored and is reported as missing data; every other degraded
// input yields a best-effort result.
func (s *Service) Analysis(ctx context.Context, address string) (types.TreasuryAnalysis, error) {
	portfolio, err := s.chain.Treasury(ctx, address)
	if err != nil {
		return types.TreasuryAnalysis{}, err
	}

	diversification, err := s.engine.Diversification(portfolio)
	if err != nil {
		return types.TreasuryAnalysis{}, err
	}
	risk := s.engine.TreasuryRisk(portfolio)
	liquidity := s.engine.Liquidity(portfolio)
	perf := computePerformance(portfolio)
	total := totalValue(portfolio)

	analysis := types.TreasuryAnalysis{
		DAOAddress:           address,
		TotalValueUSD:        total,
		DiversificationScore: diversification,
		RiskScore:            risk,
		LiquidityScore:       liquidity,
		StablecoinRatio:      s.engine.StableRatio(portfolio),
		TopHoldings:          topHoldings(portfolio, topHoldingsCap),
		Performance:          perf,
		RiskFactors:          riskFactors(diversification, liquidity, total, perf),
		Recommendations:      recommendations(diversification, risk, liquidity),
		Rebalancing:          rebalanceSuggestions(diversification, risk, liquidity, perf.SharpeRatio),
		LastUpdated:          time.Now().UTC(),
	}
	if s.recorder != nil {
		if err := s.recorder.SaveTreasurySnapshot(ctx, analysis); err != nil {
			logger.Warnf("[Treasury] persisting snapshot for %s: %v", address, err)
		}
	}
	return analysis, nil
}

// Alerts reports conditions that warrant operator attention. A valueless
// portfolio raises nothing.
func (s *Service) Alerts(ctx context.Context, address string) ([]types.TreasuryAlert, error) {
	portfolio, err := s.chain.Treasury(ctx, address)
	if err != nil {
		return nil, err
	}

	alerts := make([]types.TreasuryAlert, 0, 3)
	if totalValue(portfolio) <= 0 {
		return alerts, nil
	}
	now := time.Now().UTC()
	perf := computePerformance(portfolio)

	if math.Abs(perf.DailyChange) > 0.05 {
		severity := severityMedium
		if math.Abs(perf.DailyChange) > 0.1 {
			severity = severityHigh
		}
		alerts = append(alerts, types.TreasuryAlert{
			Type:           "value_change",
			Severity:       severity,
			Message:        fmt.Sprintf("Treasury value changed by %.1f%% in 24 hours", perf.DailyChange*100),
			Timestamp:      now,
			ActionRequired: math.Abs(perf.DailyChange) > 0.1,
		})
	}
	if perf.Volatility30d > 0.2 {
		alerts = append(alerts, types.TreasuryAlert{
			Type:           "risk",
			Severity:       severityMedium,
			Message:        "High volatility detected - consider risk management",
			Timestamp:      now,
			ActionRequired: true,
		})
	}
	if s.engine.StableRatio(portfolio) < 0.2 {
		alerts = append(alerts, types.TreasuryAlert{
			Type:           "liquidity",
			Severity:       severityMedium,
			Message:        "Low stablecoin allocation - consider increasing liquidity",
			Timestamp:      now,
			ActionRequired: false,
		})
	}
	return alerts, nil
}

// Forecast projects the treasury value over the given number of days from
// the realized return and volatility of the daily series.
func (s *Service) Forecast(ctx context.Context, address string, days int) (types.TreasuryForecast, error) {
	if days < 1 {
		return types.TreasuryForecast{}, apperr.InvalidParams("forecast window must cover at least one day",
			map[string]string{"days": "must be a positive number of days"})
	}
	portfolio, err := s.chain.Treasury(ctx, address)
	if err != nil {
		return types.TreasuryForecast{}, err
	}

	perf := computePerformance(portfolio)
	current := totalValue(portfolio)
	expected := perf.AnnualizedReturn / 365 * float64(days)
	scenarios := types.ForecastScenarios{
		Optimistic:  current * (1 + expected + perf.Volatility30d),
		BaseCase:    current * (1 + expected),
		Pessimistic: current * (1 + expected - perf.Volatility30d),
	}

	return types.TreasuryForecast{
		DAOAddress:   address,
		ForecastDays: days,
		CurrentValue: current,
		Scenarios:    scenarios,
		Confidence:   types.ForecastBounds{Lower: scenarios.Pessimistic, Upper: scenarios.Optimistic},
		Assumptions: []string{
			"Market conditions remain stable",
			"No major protocol changes",
			"Current asset allocation maintained",
		},
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func riskFactors(diversification, liquidity, total float64, perf types.PerformanceStats) []string {
	var factors []string
	if diversification < 0.3 {
		factors = append(factors, "High asset concentration - consider diversifying holdings")
	}
	if perf.Volatility30d > 0.2 {
		factors = append(factors, "High volatility detected - consider stablecoin allocation")
	}
	if liquidity < 0.6 {
		factors = append(factors, "Low liquidity - ensure sufficient liquid assets")
	}
	if perf.DailyChange < -0.05 {
		factors = append(factors, "Recent significant decline - monitor market conditions")
	}
	if total < 100_000 {
		factors = append(factors, "Small treasury size - consider growth strategies")
	}
	if len(factors) == 0 {
		factors = append(factors, noRisksIdentified)
	}
	if len(factors) > maxRiskFactors {
		factors = factors[:maxRiskFactors]
	}
	return factors
}

func recommendations(diversification, risk, liquidity float64) []string {
	var recs []string
	if diversification < 0.3 {
		recs = append(recs, "Consider diversifying treasury holdings to reduce concentration risk")
	}
	if risk > 0.7 {
		recs = append(recs, "High risk detected - consider increasing stablecoin allocation")
	}
	if liquidity < 0.6 {
		recs = append(recs, "Low liquidity detected - ensure sufficient liquid assets for operations")
	}
	if len(recs) == 0 {
		recs = append(recs, "Treasury appears well-balanced - maintain current allocation strategy")
	}
	return recs
}

func rebalanceSuggestions(diversification, risk, liquidity, sharpe float64) []types.RebalanceSuggestion {
	suggestions := make([]types.RebalanceSuggestion, 0, 4)
	if diversification < 0.4 {
		suggestions = append(suggestions, types.RebalanceSuggestion{
			Type:            "diversification",
			Action:          "Increase asset diversity",
			Description:     "Consider adding more assets to reduce concentration risk",
			Priority:        severityHigh,
			EstimatedImpact: "Reduce concentration risk by 30%",
		})
	}
	if risk > 0.7 {
		suggestions = append(suggestions, types.RebalanceSuggestion{
			Type:            "risk_management",
			Action:          "Increase stablecoin allocation",
			Description:     "Allocate more funds to stablecoins to reduce volatility",
			Priority:        severityHigh,
			EstimatedImpact: "Reduce risk score by 20%",
		})
	}
	if liquidity < 0.6 {
		suggestions = append(suggestions, types.RebalanceSuggestion{
			Type:            "liquidity",
			Action:          "Maintain liquid reserves",
			Description:     "Ensure sufficient liquid assets for operations",
			Priority:        severityMedium,
			EstimatedImpact: "Improve liquidity score by 25%",
		})
	}
	if sharpe < 1.0 {
		suggestions = append(suggestions, types.RebalanceSuggestion{
			Type:            "performance",
			Action:          "Optimize risk-adjusted returns",
			Description:     "Review asset allocation for better risk-adjusted performance",
			Priority:        severityMedium,
			EstimatedImpact: "Improve Sharpe ratio by 15%",
		})
	}
	return suggestions
}

func topHoldings(p types.Portfolio, n int) []types.AssetHolding {
	top := make([]types.AssetHolding, len(p.Holdings))
	copy(top, p.Holdings)
	sort.SliceStable(top, func(i, j int) bool { return top[i].ValueUSD > top[j].ValueUSD })
	if len(top) > n {
		top = top[:n]
	}
	return top
}

func totalValue(p types.Portfolio) float64 {
	if p.TotalValueUSD > 0 {
		return p.TotalValueUSD
	}
	sum := 0.0
	for _, h := range p.Holdings {
		sum += h.ValueUSD
	}
	return sum
}
