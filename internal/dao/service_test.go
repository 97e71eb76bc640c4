package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

type stubChain struct {
	info        types.DAOContext
	infoErr     error
	portfolio   types.Portfolio
	treasuryErr error
}

func (s *stubChain) DAOInfo(_ context.Context, address string) (types.DAOContext, error) {
	if s.infoErr != nil {
		return types.DAOContext{}, s.infoErr
	}
	info := s.info
	info.Address = address
	return info, nil
}

func (s *stubChain) Treasury(_ context.Context, address string) (types.Portfolio, error) {
	if s.treasuryErr != nil {
		return types.Portfolio{}, s.treasuryErr
	}
	p := s.portfolio
	p.DAOAddress = address
	return p, nil
}

// healthyDAO mirrors the reference dataset served by the chain gateway.
func healthyDAO() types.DAOContext {
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
		RecentActivity:   types.ActivitySnapshot{ProposalsLast30d: 8, VotesLast30d: 1250},
	}
}

func healthyPortfolio() types.Portfolio {
	return types.Portfolio{
		TotalValueUSD: 2_500_000,
		Holdings: []types.AssetHolding{
			{Symbol: "USDC", ValueUSD: 1_000_000, Percentage: 0.40},
			{Symbol: "ETH", ValueUSD: 800_000, Percentage: 0.32},
			{Symbol: "UNI", ValueUSD: 400_000, Percentage: 0.16},
			{Symbol: "AAVE", ValueUSD: 300_000, Percentage: 0.12},
		},
	}
}

func TestService_HealthReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Healthy DAO", func(t *testing.T) {
		svc := NewService(&stubChain{info: healthyDAO(), portfolio: healthyPortfolio()}, nil)

		report, err := svc.HealthReport(ctx, "dao-main")
		require.NoError(t, err)

		assert.Equal(t, "dao-main", report.DAOAddress)
		// governance: 0.3*(32/45) + 0.4*0.68 + 0.3*min(8/10,1)
		assert.InDelta(t, 0.725333, report.GovernanceScore, 1e-6)
		// financial: 0.4*0.6976 + 0.4*(1-0.456) + 0.2*0.872
		assert.InDelta(t, 0.67104, report.FinancialScore, 1e-6)
		// community: 0.4*(850/1250) + 0.4*min(1250/1000,1) + 0.2*0.7
		assert.InDelta(t, 0.812, report.CommunityScore, 1e-6)
		assert.InDelta(t, 0.736124, report.OverallScore, 1e-6)

		assert.Equal(t, []string{"No significant risks identified"}, report.RiskFactors)
		assert.Equal(t, []string{"DAO appears healthy - maintain current practices"}, report.Recommendations)
		assert.InDelta(t, 0.85, report.Confidence, 1e-9)
		assert.False(t, report.LastUpdated.IsZero())
	})

	t.Run("Ailing DAO Hits Factor Cap", func(t *testing.T) {
		chain := &stubChain{
			info: types.DAOContext{
				TreasuryValueUSD: 50_000,
				TotalMembers:     100,
				ActiveMembers:    20,
				TotalProposals:   20,
				PassedProposals:  4,
				FailedProposals:  16,
				AvgParticipation: 0.2,
				RecentActivity:   types.ActivitySnapshot{ProposalsLast30d: 1, VotesLast30d: 50},
			},
			portfolio: types.Portfolio{
				TotalValueUSD: 50_000,
				Holdings:      []types.AssetHolding{{Symbol: "UNI", ValueUSD: 50_000, Percentage: 1}},
			},
		}
		svc := NewService(chain, nil)

		report, err := svc.HealthReport(ctx, "dao-ailing")
		require.NoError(t, err)

		assert.InDelta(t, 0.17, report.GovernanceScore, 1e-9)
		assert.InDelta(t, 0.22, report.FinancialScore, 1e-9)
		assert.InDelta(t, 0.24, report.CommunityScore, 1e-9)
		assert.InDelta(t, 0.21, report.OverallScore, 1e-9)

		// Eight factors trigger; the report keeps the first five.
		assert.Equal(t, []string{
			"Low voter participation rate",
			"Insufficient quorum participation",
			"Low governance activity",
			"Treasury concentration risk",
			"High treasury risk exposure",
		}, report.RiskFactors)

		assert.Equal(t, []string{
			"Consider implementing governance incentives to increase participation",
			"Review and potentially lower quorum requirements",
			"Implement proposal templates to improve quality",
			"Diversify treasury holdings to reduce concentration risk",
			"Consider establishing a treasury management policy",
		}, report.Recommendations)
	})

	t.Run("Identified Risks Surface In Recommendations", func(t *testing.T) {
		chain := &stubChain{
			info: types.DAOContext{
				TreasuryValueUSD: 80_000,
				TotalMembers:     1000,
				ActiveMembers:    700,
				TotalProposals:   40,
				PassedProposals:  32,
				FailedProposals:  8,
				AvgParticipation: 0.7,
				RecentActivity:   types.ActivitySnapshot{ProposalsLast30d: 9, VotesLast30d: 900},
			},
			portfolio: types.Portfolio{
				TotalValueUSD: 80_000,
				Holdings: []types.AssetHolding{
					{Symbol: "USDC", ValueUSD: 40_000, Percentage: 0.5},
					{Symbol: "ETH", ValueUSD: 24_000, Percentage: 0.3},
					{Symbol: "UNI", ValueUSD: 16_000, Percentage: 0.2},
				},
			},
		}
		svc := NewService(chain, nil)

		report, err := svc.HealthReport(ctx, "dao-small")
		require.NoError(t, err)

		assert.InDelta(t, 0.79, report.GovernanceScore, 1e-9)
		assert.InDelta(t, 0.674, report.FinancialScore, 1e-9)
		assert.InDelta(t, 0.78, report.CommunityScore, 1e-9)

		assert.Equal(t, []string{"Low treasury value"}, report.RiskFactors)
		assert.Equal(t, []string{"Address identified risks: Low treasury value"}, report.Recommendations)
	})

	t.Run("Empty Treasury Scores Neutral Financial", func(t *testing.T) {
		chain := &stubChain{
			info:        healthyDAO(),
			treasuryErr: apperr.NoData("portfolio", "dao-main"),
		}
		svc := NewService(chain, nil)

		report, err := svc.HealthReport(ctx, "dao-main")
		require.NoError(t, err)

		// Diversification, risk and liquidity all fall back to 0.5.
		assert.InDelta(t, 0.5, report.FinancialScore, 1e-9)
		assert.InDelta(t, 0.725333, report.GovernanceScore, 1e-6)
		assert.Contains(t, report.RiskFactors, "Treasury concentration risk")
	})

	t.Run("Chain Error Propagates", func(t *testing.T) {
		chain := &stubChain{infoErr: apperr.ExternalService("hathor node", errors.New("connection refused"))}
		svc := NewService(chain, nil)

		_, err := svc.HealthReport(ctx, "dao-main")
		require.Error(t, err)
		assert.Equal(t, apperr.KindExternalService, apperr.KindOf(err))
	})
}

func TestService_GovernanceMetrics(t *testing.T) {
	svc := NewService(&stubChain{info: healthyDAO(), portfolio: healthyPortfolio()}, nil)

	metrics, err := svc.GovernanceMetrics(context.Background(), "dao-main")
	require.NoError(t, err)

	assert.Equal(t, "dao-main", metrics.DAOAddress)
	assert.Equal(t, 45, metrics.TotalProposals)
	assert.Equal(t, 3, metrics.ActiveProposals)
	assert.InDelta(t, 0.68, metrics.AvgParticipation, 1e-9)
	assert.InDelta(t, 32.0/45.0, metrics.SuccessRate, 1e-9)
	assert.InDelta(t, 72, metrics.AvgVotingDuration, 1e-9)

	require.Len(t, metrics.TopVoters, 3)
	assert.Equal(t, types.VoterStanding{Address: "0x1234...", Votes: 45, Percentage: 0.15}, metrics.TopVoters[0])
	assert.Equal(t, "increasing", metrics.Trends["participation_trend"])
	assert.InDelta(t, 0.72, metrics.Predictions.NextMonthParticipation, 1e-9)
	assert.InDelta(t, 0.68, metrics.Predictions.ProposalSuccessProb, 1e-9)
	assert.Equal(t, []string{"treasury_management", "governance_updates"}, metrics.Predictions.TrendingTopics)

	t.Run("Chain Error Propagates", func(t *testing.T) {
		svc := NewService(&stubChain{infoErr: apperr.Internal("snapshot rebuild failed", nil)}, nil)
		_, err := svc.GovernanceMetrics(context.Background(), "dao-main")
		require.Error(t, err)
	})
}
