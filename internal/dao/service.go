// Package dao produces DAO-level health reports and governance metrics from
// chain data and the scoring engine.
package dao

import (
	"context"
	"strings"
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/scoring"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const (
	// communitySentiment stands in until a social sentiment feed exists.
	communitySentiment = 0.7

	// engagementTarget normalizes 30-day vote counts.
	engagementTarget = 1000.0

	noRisksIdentified = "No significant risks identified"

	maxRiskFactors     = 5
	maxRecommendations = 5
)

// Chain is the slice of the chain client the health analysis reads.
type Chain interface {
	DAOInfo(ctx context.Context, address string) (types.DAOContext, error)
	Treasury(ctx context.Context, address string) (types.Portfolio, error)
}

// Recorder persists fetched contexts and generated reports. Failures are
// logged and never surface to callers.
type Recorder interface {
	SaveDAOSnapshot(ctx context.Context, dctx types.DAOContext) error
	SaveHealthReport(ctx context.Context, report types.HealthReport) error
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

// AttachRecorder enables best-effort persistence of snapshots and reports.
func (s *Service) AttachRecorder(r Recorder) { s.recorder = r }

// HealthReport computes the weighted component scores for one DAO and
// derives risk factors and improvement recommendations from them. Degraded
// inputs (zero members, empty treasury) produce neutral scores, never errors.
func (s *Service) HealthReport(ctx context.Context, address string) (types.HealthReport, error) {
	info, err := s.chain.DAOInfo(ctx, address)
	if err != nil {
		return types.HealthReport{}, err
	}
	portfolio, err := s.chain.Treasury(ctx, address)
	if err != nil && !apperr.Is(err, apperr.KindNoData) {
		return types.HealthReport{}, err
	}

	governance := s.engine.GovernanceScore(
		scoring.SuccessRate(info.PassedProposals, info.TotalProposals),
		info.AvgParticipation,
		scoring.ActivityLevel(info.RecentActivity.ProposalsLast30d),
	)

	diversification, derr := s.engine.Diversification(portfolio)
	if derr != nil {
		logger.Warnf("[DAO] %s: treasury carries no value, scoring financial health neutrally", address)
		diversification = 0.5
	}
	treasuryRisk := s.engine.TreasuryRisk(portfolio)
	financial := s.engine.FinancialScore(diversification, treasuryRisk, s.engine.Liquidity(portfolio))

	community := s.engine.CommunityScore(
		scoring.RatioOrNeutral(float64(info.ActiveMembers), float64(info.TotalMembers)),
		scoring.Clamp01(float64(info.RecentActivity.VotesLast30d)/engagementTarget),
		communitySentiment,
	)

	overall := s.engine.OverallHealth(governance, financial, community)
	factors := riskFactors(info, governance, financial, community, treasuryRisk)

	report := types.HealthReport{
		DAOAddress:      address,
		OverallScore:    overall,
		GovernanceScore: governance,
		FinancialScore:  financial,
		CommunityScore:  community,
		RiskFactors:     factors,
		Recommendations: recommendations(overall, governance, financial, community, factors),
		Confidence:      healthConfidence(),
		LastUpdated:     time.Now().UTC(),
	}
	s.record(ctx, info, report)
	return report, nil
}

func (s *Service) record(ctx context.Context, info types.DAOContext, report types.HealthReport) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveDAOSnapshot(ctx, info); err != nil {
		logger.Warnf("[DAO] persisting snapshot for %s: %v", info.Address, err)
	}
	if err := s.recorder.SaveHealthReport(ctx, report); err != nil {
		logger.Warnf("[DAO] persisting health report for %s: %v", report.DAOAddress, err)
	}
}

// GovernanceMetrics reports the governance counters with leaderboard, trend
// and prediction blocks.
func (s *Service) GovernanceMetrics(ctx context.Context, address string) (types.GovernanceMetrics, error) {
	info, err := s.chain.DAOInfo(ctx, address)
	if err != nil {
		return types.GovernanceMetrics{}, err
	}
	return types.GovernanceMetrics{
		DAOAddress:        address,
		TotalProposals:    info.TotalProposals,
		ActiveProposals:   info.ActiveProposals,
		AvgParticipation:  info.AvgParticipation,
		SuccessRate:       scoring.SuccessRate(info.PassedProposals, info.TotalProposals),
		AvgVotingDuration: info.AvgVotingHours,
		TopVoters: []types.VoterStanding{
			{Address: "0x1234...", Votes: 45, Percentage: 0.15},
			{Address: "0x5678...", Votes: 38, Percentage: 0.12},
			{Address: "0x9abc...", Votes: 32, Percentage: 0.10},
		},
		Trends: map[string]string{
			"participation_trend": "increasing",
			"proposal_quality":    "improving",
			"voting_efficiency":   "stable",
		},
		Predictions: types.GovernancePredictions{
			NextMonthParticipation: 0.72,
			ProposalSuccessProb:    0.68,
			TrendingTopics:         []string{"treasury_management", "governance_updates"},
		},
		LastUpdated: time.Now().UTC(),
	}, nil
}

func riskFactors(info types.DAOContext, governance, financial, community, treasuryRisk float64) []string {
	var factors []string
	if governance < 0.6 {
		factors = append(factors, "Low voter participation rate")
	}
	if info.AvgParticipation < 0.3 {
		factors = append(factors, "Insufficient quorum participation")
	}
	if info.RecentActivity.ProposalsLast30d < 3 {
		factors = append(factors, "Low governance activity")
	}
	if financial < 0.6 {
		factors = append(factors, "Treasury concentration risk")
	}
	if treasuryRisk > 0.7 {
		factors = append(factors, "High treasury risk exposure")
	}
	if info.TreasuryValueUSD < 100_000 {
		factors = append(factors, "Low treasury value")
	}
	if community < 0.6 {
		factors = append(factors, "Declining community engagement")
	}
	if info.TotalMembers > 0 && float64(info.ActiveMembers)/float64(info.TotalMembers) < 0.5 {
		factors = append(factors, "Low active member ratio")
	}
	if len(factors) == 0 {
		factors = append(factors, noRisksIdentified)
	}
	if len(factors) > maxRiskFactors {
		factors = factors[:maxRiskFactors]
	}
	return factors
}

func recommendations(overall, governance, financial, community float64, factors []string) []string {
	var recs []string
	if overall < 0.7 {
		recs = append(recs, "Consider implementing governance incentives to increase participation")
	}
	if governance < 0.6 {
		recs = append(recs,
			"Review and potentially lower quorum requirements",
			"Implement proposal templates to improve quality")
	}
	if financial < 0.6 {
		recs = append(recs,
			"Diversify treasury holdings to reduce concentration risk",
			"Consider establishing a treasury management policy")
	}
	if community < 0.6 {
		recs = append(recs,
			"Launch community engagement initiatives",
			"Improve communication channels and transparency")
	}
	if real := realRisks(factors); len(real) > 0 {
		top := real
		if len(top) > 2 {
			top = top[:2]
		}
		recs = append(recs, "Address identified risks: "+strings.Join(top, ", "))
	}
	if len(recs) == 0 {
		recs = append(recs, "DAO appears healthy - maintain current practices")
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// realRisks filters out the all-clear placeholder so it never shows up as a
// risk to address.
func realRisks(factors []string) []string {
	out := make([]string, 0, len(factors))
	for _, f := range factors {
		if f != noRisksIdentified {
			out = append(out, f)
		}
	}
	return out
}

func healthConfidence() float64 {
	// Data completeness and analysis quality are fixed for the mock data
	// plane; a live chain indexer would measure both.
	const dataCompleteness = 0.8
	const analysisQuality = 0.9
	return scoring.Clamp01((dataCompleteness + analysisQuality) / 2)
}
