package hathor

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

// Nano-contract addresses the mock network pretends to have deployed.
const (
	ContractProposalExecutor = "proposal_executor"
	ContractTreasuryManager  = "treasury_manager"
	ContractGovernanceVoter  = "governance_voter"
)

var nanoContracts = map[string]string{
	ContractProposalExecutor: "0x1234567890123456789012345678901234567890",
	ContractTreasuryManager:  "0x2345678901234567890123456789012345678901",
	ContractGovernanceVoter:  "0x3456789012345678901234567890123456789012",
}

var mockTxHashes = []string{
	"0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890",
	"0xbcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890ab",
	"0xcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890abc",
}

// treasuryAssets is the mock on-chain treasury. ValueUSD and Percentage are
// derived from balance×price so the portfolio always reconciles with itself.
var treasuryAssets = []struct {
	symbol  string
	balance int64
	price   int64
}{
	{"USDC", 1_000_000, 1},
	{"ETH", 400, 2_000},
	{"UNI", 5_000, 80},
	{"AAVE", 2_000, 150},
}

// valueWaypoints anchor the 30-day treasury value curve: a month ago, a week
// ago, yesterday, today.
var valueWaypoints = []struct {
	day   int
	value float64
}{
	{0, 2_300_000},
	{23, 2_450_000},
	{29, 2_480_000},
	{30, 2_500_000},
}

var proposalTopics = []string{
	"treasury_management",
	"governance_updates",
	"security_enhancement",
	"community_engagement",
	"cross_chain_integration",
	"defi_partnerships",
	"voting_optimization",
	"yield_farming",
	"framework_updates",
	"emergency_funds",
}

func buildDAOContext(now time.Time) types.DAOContext {
	return types.DAOContext{
		Name:             "Sample DAO",
		TreasuryValueUSD: 2_500_000,
		TotalMembers:     1250,
		ActiveMembers:    850,
		TotalProposals:   45,
		ActiveProposals:  3,
		PassedProposals:  32,
		FailedProposals:  10,
		AvgParticipation: 0.68,
		AvgVotingHours:   72,
		RecentActivity: types.ActivitySnapshot{
			ProposalsLast30d: 8,
			VotesLast30d:     1250,
		},
		Governance: types.GovernanceParams{
			QuorumRatio:         0.1,
			VotingPeriodHours:   168,
			ExecutionDelayHours: 24,
		},
		FetchedAt: now,
	}
}

func buildPortfolio(now time.Time) types.Portfolio {
	values := make([]decimal.Decimal, len(treasuryAssets))
	total := decimal.Zero
	for i, a := range treasuryAssets {
		values[i] = decimal.NewFromInt(a.balance).Mul(decimal.NewFromInt(a.price))
		total = total.Add(values[i])
	}
	holdings := make([]types.AssetHolding, 0, len(treasuryAssets))
	for i, a := range treasuryAssets {
		share := decimal.Zero
		if !total.IsZero() {
			share = values[i].Div(total)
		}
		valueF, _ := values[i].Float64()
		shareF, _ := share.Float64()
		holdings = append(holdings, types.AssetHolding{
			Symbol:     a.symbol,
			Balance:    float64(a.balance),
			PriceUSD:   float64(a.price),
			ValueUSD:   valueF,
			Percentage: shareF,
		})
	}
	totalF, _ := total.Float64()
	return types.Portfolio{
		TotalValueUSD: totalF,
		Holdings:      holdings,
		DailyValues:   buildDailySeries(),
		LastUpdated:   now,
	}
}

// buildDailySeries interpolates the waypoint curve into one value per day,
// with a small sine ripple that vanishes at the waypoints themselves.
func buildDailySeries() []float64 {
	last := valueWaypoints[len(valueWaypoints)-1]
	out := make([]float64, last.day+1)
	for s := 1; s < len(valueWaypoints); s++ {
		a, b := valueWaypoints[s-1], valueWaypoints[s]
		span := float64(b.day - a.day)
		for d := a.day; d <= b.day; d++ {
			t := float64(d-a.day) / span
			base := a.value + (b.value-a.value)*t
			ripple := math.Sin(t*math.Pi) * math.Sin(float64(d)*2.3) * 12_000
			out[d] = base + ripple
		}
	}
	return out
}

func buildProposals(now time.Time) []types.Proposal {
	active := []types.Proposal{
		{
			ID:           "prop-001",
			Title:        "Treasury Diversification Strategy",
			Description:  "Rebalance the treasury allocation to increase stablecoin reserves and reduce concentration risk. The proposal would move 10% of ETH holdings into USDC to improve liquidity for operational funding and protect the fund against market volatility.",
			Proposer:     "0x8a9c11Ff43d1c0Db2C9a2E5a840Ba2e48a2C5F31",
			Topic:        "treasury_management",
			Status:       types.ProposalStatusActive,
			VotesFor:     412,
			VotesAgainst: 97,
			CreatedAt:    now.Add(-72 * time.Hour),
			EndsAt:       now.Add(96 * time.Hour),
		},
		{
			ID:           "prop-002",
			Title:        "Smart Contract Security Enhancement",
			Description:  "Commission an external security audit of the governance contracts and establish a bug bounty program. The audit would cover the voting module and the treasury manager to protect user funds and improve the safety of the protocol.",
			Proposer:     "0x5b3e77Ac21F09d3C58bB1fE0a0fC2Ee19c70A844",
			Topic:        "security_enhancement",
			Status:       types.ProposalStatusActive,
			VotesFor:     523,
			VotesAgainst: 41,
			CreatedAt:    now.Add(-48 * time.Hour),
			EndsAt:       now.Add(120 * time.Hour),
		},
		{
			ID:           "prop-003",
			Title:        "Voting Mechanism Optimization",
			Description:  "Change the voting mechanism to quadratic voting and reduce the quorum requirement from 10% to 8%. The update aims to increase participation from smaller token holders and enhance the fairness of governance decisions.",
			Proposer:     "0xD24cB90FF4b68aD0Af734EfD75cCF0e2C39Ab1C7",
			Topic:        "voting_optimization",
			Status:       types.ProposalStatusActive,
			VotesFor:     288,
			VotesAgainst: 194,
			CreatedAt:    now.Add(-24 * time.Hour),
			EndsAt:       now.Add(144 * time.Hour),
		},
	}

	// 42 settled proposals, newest first. The failure pattern (every fourth)
	// yields exactly 32 passed / 10 failed, matching the context counters.
	history := make([]types.Proposal, 0, 42)
	for i := 0; i < 42; i++ {
		passed := i%4 != 3
		status := types.ProposalStatusPassed
		forShare := 0.7
		if !passed {
			status = types.ProposalStatusFailed
			forShare = 0.45
		}
		totalVotes := float64(800 + i*10)
		created := now.Add(-time.Duration(i+1) * 7 * 24 * time.Hour)
		history = append(history, types.Proposal{
			ID:           fmt.Sprintf("hist-prop-%02d", i),
			Title:        fmt.Sprintf("Historical Proposal %d", i),
			Description:  fmt.Sprintf("Archived governance item %d covering %s.", i, proposalTopics[i%len(proposalTopics)]),
			Proposer:     "0x1f4E63aa80CcD306BfB7cB82EeF56258D3930C2B",
			Topic:        proposalTopics[i%len(proposalTopics)],
			Status:       status,
			VotesFor:     math.Round(totalVotes * forShare),
			VotesAgainst: math.Round(totalVotes * (1 - forShare)),
			CreatedAt:    created,
			EndsAt:       created.Add(168 * time.Hour),
		})
	}
	return append(active, history...)
}

func buildCrossChainAssets() []types.CrossChainAsset {
	return []types.CrossChainAsset{
		{Chain: "ethereum", Symbol: "ETH", Address: "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6", Balance: 200, ValueUSD: 400_000, BridgeStatus: "active"},
		{Chain: "ethereum", Symbol: "USDC", Address: "0xA0b86a33E6441b8c4C8C8C8C8C8C8C8C8C8C8C8C8", Balance: 500_000, ValueUSD: 500_000, BridgeStatus: "active"},
		{Chain: "polygon", Symbol: "MATIC", Address: "0x0000000000000000000000000000000000001010", Balance: 10_000, ValueUSD: 8_000, BridgeStatus: "active"},
		{Chain: "arbitrum", Symbol: "ARB", Address: "0x912CE59144191C1204E64559FE8253a0e49E6548", Balance: 5_000, ValueUSD: 5_000, BridgeStatus: "pending"},
	}
}
