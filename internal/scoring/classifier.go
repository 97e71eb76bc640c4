package scoring

import "strings"

// Default per-symbol profiles. Stablecoins sit at the safe/liquid end,
// governance tokens at the volatile end; anything unknown is scored neutral.
var (
	defaultRiskProfile = map[string]float64{
		"USDC": 0.1,
		"USDT": 0.1,
		"DAI":  0.1,
		"ETH":  0.6,
		"BTC":  0.7,
		"UNI":  0.8,
		"AAVE": 0.8,
		"COMP": 0.8,
	}
	defaultLiquidityProfile = map[string]float64{
		"USDC": 1.0,
		"USDT": 1.0,
		"DAI":  1.0,
		"ETH":  0.9,
		"BTC":  0.9,
		"UNI":  0.7,
		"AAVE": 0.6,
		"COMP": 0.6,
	}
	stableSymbols = map[string]bool{
		"USDC": true,
		"USDT": true,
		"DAI":  true,
	}
)

const neutralScore = 0.5

// AssetClassifier maps token symbols to risk and liquidity scores. Lookup is
// case-insensitive; the tables are fixed at construction.
type AssetClassifier struct {
	risk      map[string]float64
	liquidity map[string]float64
}

func NewAssetClassifier() *AssetClassifier {
	return &AssetClassifier{
		risk:      defaultRiskProfile,
		liquidity: defaultLiquidityProfile,
	}
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Risk returns the per-symbol risk score, 0.5 for unknown symbols.
func (c *AssetClassifier) Risk(symbol string) float64 {
	if v, ok := c.risk[normalizeSymbol(symbol)]; ok {
		return v
	}
	return neutralScore
}

// Liquidity returns the per-symbol liquidity score, 0.5 for unknown symbols.
func (c *AssetClassifier) Liquidity(symbol string) float64 {
	if v, ok := c.liquidity[normalizeSymbol(symbol)]; ok {
		return v
	}
	return neutralScore
}

// IsStable reports whether symbol is one of the tracked stablecoins.
func (c *AssetClassifier) IsStable(symbol string) bool {
	return stableSymbols[normalizeSymbol(symbol)]
}
