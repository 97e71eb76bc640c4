// Package scoring holds the pure score math: weighted component scores,
// concentration (HHI) based diversification, and value-weighted risk and
// liquidity over the asset classifier tables.
package scoring

import (
	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

var (
	governanceWeights = map[string]float64{
		"success_rate":  0.3,
		"participation": 0.4,
		"activity":      0.3,
	}
	financialWeights = map[string]float64{
		"diversification": 0.4,
		"safety":          0.4, // applied to (1 - risk)
		"liquidity":       0.2,
	}
	communityWeights = map[string]float64{
		"active_ratio": 0.4,
		"engagement":   0.4,
		"sentiment":    0.2,
	}
)

// Engine computes all scores. It carries no mutable state and is safe for
// concurrent use.
type Engine struct {
	classifier *AssetClassifier
}

func NewEngine(classifier *AssetClassifier) *Engine {
	if classifier == nil {
		classifier = NewAssetClassifier()
	}
	return &Engine{classifier: classifier}
}

func (e *Engine) Classifier() *AssetClassifier {
	return e.classifier
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 { return clamp01(v) }

// RatioOrNeutral returns num/den clamped to [0,1], substituting the neutral
// 0.5 when den is zero.
func RatioOrNeutral(num, den float64) float64 {
	if den == 0 {
		return neutralScore
	}
	return clamp01(num / den)
}

// SuccessRate is the passed share of all proposals; an empty history counts
// as zero successes, not an error.
func SuccessRate(passed, total int) float64 {
	if total < 1 {
		total = 1
	}
	return clamp01(float64(passed) / float64(total))
}

// ActivityLevel normalizes a 30-day proposal count against a target cadence
// of ten proposals.
func ActivityLevel(recentProposals int) float64 {
	return clamp01(float64(recentProposals) / 10)
}

// GovernanceScore blends proposal success rate, voter participation and
// recent activity.
func (e *Engine) GovernanceScore(successRate, participation, activity float64) float64 {
	score := governanceWeights["success_rate"]*clamp01(successRate) +
		governanceWeights["participation"]*clamp01(participation) +
		governanceWeights["activity"]*clamp01(activity)
	return clamp01(score)
}

// FinancialScore blends diversification, inverted risk exposure and
// liquidity.
func (e *Engine) FinancialScore(diversification, risk, liquidity float64) float64 {
	score := financialWeights["diversification"]*clamp01(diversification) +
		financialWeights["safety"]*(1-clamp01(risk)) +
		financialWeights["liquidity"]*clamp01(liquidity)
	return clamp01(score)
}

// CommunityScore blends member activity ratio, engagement and sentiment.
func (e *Engine) CommunityScore(activeRatio, engagement, sentiment float64) float64 {
	score := communityWeights["active_ratio"]*clamp01(activeRatio) +
		communityWeights["engagement"]*clamp01(engagement) +
		communityWeights["sentiment"]*clamp01(sentiment)
	return clamp01(score)
}

// OverallHealth is the arithmetic mean of the three component scores.
func (e *Engine) OverallHealth(governance, financial, community float64) float64 {
	return clamp01((clamp01(governance) + clamp01(financial) + clamp01(community)) / 3)
}

// Diversification is 1 minus the Herfindahl-Hirschman index of the holding
// value shares: a single asset scores 0, N equal holdings score 1 - 1/N.
// A portfolio with zero total value carries no information and is reported
// as missing data rather than divided through.
func (e *Engine) Diversification(p types.Portfolio) (float64, error) {
	total := portfolioTotal(p)
	if total <= 0 {
		return 0, apperr.NoData("portfolio", p.DAOAddress)
	}
	hhi := 0.0
	for _, h := range p.Holdings {
		share := h.ValueUSD / total
		hhi += share * share
	}
	return clamp01(1 - hhi), nil
}

// TreasuryRisk is the value-weighted average of per-symbol risk scores.
// Empty portfolios score the neutral 0.5.
func (e *Engine) TreasuryRisk(p types.Portfolio) float64 {
	return e.weightedAverage(p, e.classifier.Risk)
}

// Liquidity is the value-weighted average of per-symbol liquidity scores.
// Empty portfolios score the neutral 0.5.
func (e *Engine) Liquidity(p types.Portfolio) float64 {
	return e.weightedAverage(p, e.classifier.Liquidity)
}

// StableRatio is the value share held in stablecoins, 0 for an empty
// portfolio.
func (e *Engine) StableRatio(p types.Portfolio) float64 {
	total := portfolioTotal(p)
	if total <= 0 {
		return 0
	}
	stable := 0.0
	for _, h := range p.Holdings {
		if e.classifier.IsStable(h.Symbol) {
			stable += h.ValueUSD
		}
	}
	return clamp01(stable / total)
}

func (e *Engine) weightedAverage(p types.Portfolio, score func(string) float64) float64 {
	total := portfolioTotal(p)
	if total <= 0 {
		return neutralScore
	}
	sum := 0.0
	for _, h := range p.Holdings {
		sum += (h.ValueUSD / total) * score(h.Symbol)
	}
	return clamp01(sum)
}

func portfolioTotal(p types.Portfolio) float64 {
	if p.TotalValueUSD > 0 {
		return p.TotalValueUSD
	}
	total := 0.0
	for _, h := range p.Holdings {
		total += h.ValueUSD
	}
	return total
}
