package types

import "time"

// AssetHolding is one treasury position. Percentage is the share of total
// portfolio value in [0,1].
type AssetHolding struct {
	Symbol     string  `json:"symbol"`
	Balance    float64 `json:"balance"`
	PriceUSD   float64 `json:"price_usd"`
	ValueUSD   float64 `json:"value_usd"`
	Percentage float64 `json:"percentage"`
}

// Portfolio is a DAO treasury snapshot. Holding percentages sum to 1.0
// (within 0.01) once normalized against TotalValueUSD. DailyValues holds the
// trailing total-value series, oldest first.
type Portfolio struct {
	DAOAddress    string         `json:"dao_address"`
	TotalValueUSD float64        `json:"total_value_usd"`
	Holdings      []AssetHolding `json:"holdings"`
	DailyValues   []float64      `json:"daily_values"`
	LastUpdated   time.Time      `json:"last_updated"`
}

// DailyChange returns the most recent day-over-day relative change of the
// value series, or 0 when fewer than two points exist.
func (p Portfolio) DailyChange() float64 {
	n := len(p.DailyValues)
	if n < 2 {
		return 0
	}
	prev := p.DailyValues[n-2]
	if prev == 0 {
		return 0
	}
	return (p.DailyValues[n-1] - prev) / prev
}

// PerformanceStats are realized performance figures derived from the
// trailing daily value series. Volatility is scaled to the 30-day window,
// return and Sharpe are annualized.
type PerformanceStats struct {
	DailyChange      float64 `json:"daily_change"`
	WeeklyChange     float64 `json:"weekly_change"`
	MonthlyChange    float64 `json:"monthly_change"`
	Volatility30d    float64 `json:"volatility_30d"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	AnnualizedReturn float64 `json:"annualized_return"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	SMA7d            float64 `json:"sma_7d"`
	Trend            string  `json:"trend"`
}

// RebalanceSuggestion is one concrete treasury adjustment proposal.
type RebalanceSuggestion struct {
	Type            string `json:"type"`
	Action          string `json:"action"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
	EstimatedImpact string `json:"estimated_impact"`
}

// TreasuryAnalysis is the full treasury health assessment for one DAO.
type TreasuryAnalysis struct {
	DAOAddress           string                `json:"dao_address"`
	TotalValueUSD        float64               `json:"total_value_usd"`
	DiversificationScore float64               `json:"asset_diversification_score"`
	RiskScore            float64               `json:"risk_score"`
	LiquidityScore       float64               `json:"liquidity_score"`
	StablecoinRatio      float64               `json:"stablecoin_ratio"`
	TopHoldings          []AssetHolding        `json:"top_holdings"`
	Performance          PerformanceStats      `json:"performance"`
	RiskFactors          []string              `json:"risk_factors"`
	Recommendations      []string              `json:"recommendations"`
	Rebalancing          []RebalanceSuggestion `json:"rebalancing_suggestions"`
	LastUpdated          time.Time             `json:"last_updated"`
}

// TreasuryAlert flags a treasury condition operators should look at.
type TreasuryAlert struct {
	Type           string    `json:"type"`
	Severity       string    `json:"severity"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	ActionRequired bool      `json:"action_required"`
}

// ForecastScenarios are projected treasury values per scenario.
type ForecastScenarios struct {
	Optimistic  float64 `json:"optimistic"`
	BaseCase    float64 `json:"base_case"`
	Pessimistic float64 `json:"pessimistic"`
}

// ForecastBounds is the confidence interval around the base case.
type ForecastBounds struct {
	Lower float64 `json:"lower_bound"`
	Upper float64 `json:"upper_bound"`
}

// TreasuryForecast projects the treasury value over a forward window.
type TreasuryForecast struct {
	DAOAddress   string            `json:"dao_address"`
	ForecastDays int               `json:"forecast_period"`
	CurrentValue float64           `json:"current_value"`
	Scenarios    ForecastScenarios `json:"scenarios"`
	Confidence   ForecastBounds    `json:"confidence_interval"`
	Assumptions  []string          `json:"key_assumptions"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// CrossChainAsset is one bridged position on a remote chain.
type CrossChainAsset struct {
	Chain        string  `json:"chain"`
	Symbol       string  `json:"symbol"`
	Address      string  `json:"address"`
	Balance      float64 `json:"balance"`
	ValueUSD     float64 `json:"value_usd"`
	BridgeStatus string  `json:"bridge_status"`
}

// CrossChainView aggregates a DAO's bridged holdings across chains with the
// derived bridge-risk assessment.
type CrossChainView struct {
	DAOAddress      string             `json:"dao_address"`
	TotalValueUSD   float64            `json:"total_value_usd"`
	Assets          []CrossChainAsset  `json:"assets"`
	ChainBreakdown  map[string]float64 `json:"chain_breakdown"`
	RiskScore       float64            `json:"risk_score"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	RiskFactors     []string           `json:"risk_factors"`
	Recommendations []string           `json:"recommendations"`
	FetchedAt       time.Time          `json:"fetched_at"`
}
