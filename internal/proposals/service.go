// Package proposals runs proposal analysis end to end: feature extraction,
// orchestrated AI scoring, voting recommendations, history, analytics and
// forward predictions.
package proposals

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/scoring"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const (
	defaultHistoryLimit    = 20
	defaultPredictionLimit = 10
	maxPredictionLimit     = 50
	topTopicsCap           = 3
	persistTimeout         = 5 * time.Second
)

// Chain is the slice of the chain client the proposal flows read.
type Chain interface {
	DAOInfo(ctx context.Context, address string) (types.DAOContext, error)
	Proposal(ctx context.Context, id string) (types.Proposal, error)
	Proposals(ctx context.Context, address string) ([]types.Proposal, error)
}

// Analyzer produces a fully populated analysis for one proposal.
type Analyzer interface {
	Analyze(ctx context.Context, fv types.FeatureVector, dctx types.DAOContext) types.AnalysisResult
}

// AnalysisStore persists and recalls analysis results. Missing records are
// reported as missing data, not as plain errors.
type AnalysisStore interface {
	SaveProposalAnalysis(ctx context.Context, result types.AnalysisResult) error
	ProposalAnalysis(ctx context.Context, proposalID string) (types.AnalysisResult, error)
}

type Service struct {
	chain    Chain
	analyzer Analyzer
	store    AnalysisStore
}

// NewService wires the proposal service. store may be nil; summaries then
// always fall back to the canned preview.
func NewService(chain Chain, analyzer Analyzer, store AnalysisStore) *Service {
	return &Service{chain: chain, analyzer: analyzer, store: store}
}

// Analyze loads the proposal, runs the analysis fan-out and derives the
// voting recommendation. The result is persisted in the background so a
// slow store never delays the response.
func (s *Service) Analyze(ctx context.Context, proposalID, daoAddress string) (types.ProposalAnalysisReport, error) {
	if err := validateAnalyzeArgs(proposalID, daoAddress); err != nil {
		return types.ProposalAnalysisReport{}, err
	}
	proposal, err := s.chain.Proposal(ctx, proposalID)
	if err != nil {
		return types.ProposalAnalysisReport{}, err
	}
	dctx, err := s.chain.DAOInfo(ctx, daoAddress)
	if err != nil {
		return types.ProposalAnalysisReport{}, err
	}

	result := s.analyzer.Analyze(ctx, featureVector(proposal), dctx)
	result.ProposalID = proposalID
	result.DAOAddress = daoAddress
	s.persistAsync(result)

	return types.ProposalAnalysisReport{
		AnalysisResult:       result,
		VotingRecommendation: votingRecommendation(result),
	}, nil
}

func (s *Service) persistAsync(result types.AnalysisResult) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.store.SaveProposalAnalysis(ctx, result); err != nil {
			logger.Errorf("[Proposals] persisting analysis for %s: %v", result.ProposalID, err)
			return
		}
		logger.Infof("[Proposals] stored analysis for %s", result.ProposalID)
	}()
}

// Summary returns the condensed view of a stored analysis, or a canned
// preview when the proposal was never analyzed.
func (s *Service) Summary(ctx context.Context, proposalID string) (types.ProposalSummary, error) {
	if strings.TrimSpace(proposalID) == "" {
		return types.ProposalSummary{}, apperr.InvalidParams("proposal id is required",
			map[string]string{"proposal_id": "must not be empty"})
	}
	if s.store != nil {
		result, err := s.store.ProposalAnalysis(ctx, proposalID)
		switch {
		case err == nil:
			return s.summaryFromResult(ctx, proposalID, result), nil
		case !apperr.Is(err, apperr.KindNoData):
			return types.ProposalSummary{}, err
		}
	}
	return mockSummary(proposalID), nil
}

func (s *Service) summaryFromResult(ctx context.Context, proposalID string, result types.AnalysisResult) types.ProposalSummary {
	title := "Proposal Analysis"
	if p, err := s.chain.Proposal(ctx, proposalID); err == nil && p.Title != "" {
		title = p.Title
	}
	return types.ProposalSummary{
		ProposalID:           proposalID,
		Title:                title,
		Summary:              result.Summary,
		KeyPoints:            result.KeyPoints,
		RiskLevel:            result.Risk.Level,
		EstimatedImpact:      impactDescription(result.Impact),
		VotingRecommendation: votingRecommendation(result),
		CreatedAt:            time.Now().UTC(),
	}
}

// History returns the DAO's settled proposals, newest first.
func (s *Service) History(ctx context.Context, address string, limit int) ([]types.ProposalHistoryItem, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	all, err := s.chain.Proposals(ctx, address)
	if err != nil {
		return nil, err
	}
	dctx, err := s.chain.DAOInfo(ctx, address)
	if err != nil {
		return nil, err
	}

	settled := make([]types.Proposal, 0, len(all))
	for _, p := range all {
		if p.Status != types.ProposalStatusActive {
			settled = append(settled, p)
		}
	}
	sort.SliceStable(settled, func(i, j int) bool {
		return settled[i].CreatedAt.After(settled[j].CreatedAt)
	})
	if len(settled) > limit {
		settled = settled[:limit]
	}

	items := make([]types.ProposalHistoryItem, 0, len(settled))
	for _, p := range settled {
		items = append(items, types.ProposalHistoryItem{
			ProposalID:    p.ID,
			Title:         p.Title,
			Topic:         p.Topic,
			Status:        p.Status,
			Participation: turnout(p, dctx.TotalMembers),
			SupportRatio:  p.ForShare(),
			TotalVotes:    p.TotalVotes(),
			VotingHours:   p.EndsAt.Sub(p.CreatedAt).Hours(),
			CreatedAt:     p.CreatedAt,
		})
	}
	return items, nil
}

// Analytics aggregates outcomes across the DAO's settled proposals.
func (s *Service) Analytics(ctx context.Context, address string) (types.ProposalAnalytics, error) {
	all, err := s.chain.Proposals(ctx, address)
	if err != nil {
		return types.ProposalAnalytics{}, err
	}
	dctx, err := s.chain.DAOInfo(ctx, address)
	if err != nil {
		return types.ProposalAnalytics{}, err
	}

	topicCounts := map[string]int{}
	var (
		settled, passed         int
		sumTurnout, sumForShare float64
	)
	for _, p := range all {
		if p.Topic != "" {
			topicCounts[p.Topic]++
		}
		if p.Status == types.ProposalStatusActive {
			continue
		}
		settled++
		if p.Status == types.ProposalStatusPassed || p.Status == types.ProposalStatusExecuted {
			passed++
		}
		sumTurnout += turnout(p, dctx.TotalMembers)
		sumForShare += p.ForShare()
	}

	analytics := types.ProposalAnalytics{
		DAOAddress:       address,
		TotalProposals:   len(all),
		SettledProposals: settled,
		ApprovalRate:     scoring.SuccessRate(passed, settled),
		TopTopics:        topTopics(topicCounts, topTopicsCap),
		GeneratedAt:      time.Now().UTC(),
	}
	if settled > 0 {
		analytics.AvgParticipation = sumTurnout / float64(settled)
		analytics.AvgSupportRatio = sumForShare / float64(settled)
	}
	return analytics, nil
}

// Predictions returns mock forecasts for upcoming proposals. The DAO address
// is validated against the chain; limit is capped to keep responses bounded.
func (s *Service) Predictions(ctx context.Context, address string, limit int) ([]types.ProposalPrediction, error) {
	if limit <= 0 {
		limit = defaultPredictionLimit
	}
	if limit > maxPredictionLimit {
		limit = maxPredictionLimit
	}
	if _, err := s.chain.DAOInfo(ctx, address); err != nil {
		return nil, err
	}

	predictions := make([]types.ProposalPrediction, 0, limit)
	for i := 1; i <= limit; i++ {
		success := scoring.Clamp01(0.65 + 0.05*float64(i))
		predictions = append(predictions, types.ProposalPrediction{
			ProposalID:       fmt.Sprintf("prop_%d", i),
			Title:            fmt.Sprintf("Proposal %d: %s", i, upcomingTitles[(i-1)%len(upcomingTitles)]),
			PredictedSuccess: success,
			Confidence:       scoring.Clamp01(0.7 + 0.02*float64(i)),
			EstimatedImpact:  "medium",
			TrendingTopic:    trendingTopics[(i-1)%len(trendingTopics)],
			KeyFactors:       predictionFactors(success),
			Recommendation:   predictionRecommendation(success),
		})
	}
	return predictions, nil
}

func validateAnalyzeArgs(proposalID, daoAddress string) error {
	details := map[string]string{}
	if strings.TrimSpace(proposalID) == "" {
		details["proposal_id"] = "must not be empty"
	}
	if strings.TrimSpace(daoAddress) == "" {
		details["dao_address"] = "must not be empty"
	}
	if len(details) > 0 {
		return apperr.InvalidParams("proposal id and dao address are required", details)
	}
	return nil
}

// featureVector derives the normalized analysis inputs from the proposal.
// Reputation, sentiment and financial impact use neutral priors until real
// per-proposer data exists.
func featureVector(p types.Proposal) types.FeatureVector {
	text := strings.TrimSpace(p.Title + "\n\n" + p.Description)
	return types.FeatureVector{
		ProposalText:       text,
		ProposerReputation: 0.5,
		ProposalComplexity: scoring.Clamp01(float64(len(strings.Fields(text))) / 100),
		CommunitySentiment: 0,
		FinancialImpact:    0.5,
	}
}

func votingRecommendation(result types.AnalysisResult) string {
	switch {
	case result.PredictedOutcome > 0.7 && result.Sentiment > 0.3:
		return "Strong recommendation to vote YES - high success probability with positive sentiment"
	case result.PredictedOutcome > 0.6 && result.Risk.Level == types.RiskLow:
		return "Recommend voting YES - good success probability with low risk"
	case result.PredictedOutcome < 0.4 || result.Sentiment < -0.3:
		return "Recommend voting NO - low success probability or negative sentiment"
	case result.Risk.Level == types.RiskHigh:
		return "Exercise caution - high risk proposal, consider additional research"
	default:
		return "Neutral recommendation - consider all factors carefully"
	}
}

func impactDescription(impact types.ImpactAssessment) string {
	dims := []struct {
		name string
		dim  types.ImpactDimension
	}{
		{"treasury", impact.Treasury},
		{"governance", impact.Governance},
		{"community", impact.Community},
	}
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		switch {
		case d.dim.Score > 0.7:
			parts = append(parts, fmt.Sprintf("High %s impact", d.name))
		case d.dim.Score > 0.4:
			parts = append(parts, fmt.Sprintf("Medium %s impact", d.name))
		default:
			parts = append(parts, fmt.Sprintf("Low %s impact", d.name))
		}
	}
	return strings.Join(parts, "; ")
}

func turnout(p types.Proposal, members int) float64 {
	if members <= 0 {
		return 0
	}
	return scoring.Clamp01(p.TotalVotes() / float64(members))
}

func topTopics(counts map[string]int, n int) []types.TopicCount {
	top := make([]types.TopicCount, 0, len(counts))
	for topic, count := range counts {
		top = append(top, types.TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Topic < top[j].Topic
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}

func mockSummary(proposalID string) types.ProposalSummary {
	return types.ProposalSummary{
		ProposalID: proposalID,
		Title:      "Sample Governance Proposal",
		Summary: "This proposal aims to improve the DAO's governance structure by " +
			"implementing new voting mechanisms and treasury management strategies.",
		KeyPoints: []string{
			"Introduces new voting mechanism",
			"Updates treasury allocation strategy",
			"Improves governance transparency",
		},
		RiskLevel:            types.RiskMedium,
		EstimatedImpact:      "Medium impact on governance and treasury management",
		VotingRecommendation: "Consider voting YES after reviewing detailed analysis",
		CreatedAt:            time.Now().UTC(),
	}
}

func predictionFactors(success float64) []string {
	switch {
	case success > 0.7:
		return []string{"High community support", "Clear proposal objectives", "Low risk assessment"}
	case success > 0.5:
		return []string{"Moderate community interest", "Standard proposal type", "Medium risk"}
	default:
		return []string{"Limited community engagement", "Complex proposal", "High risk factors"}
	}
}

func predictionRecommendation(success float64) string {
	switch {
	case success > 0.7:
		return "High likelihood of success - consider supporting"
	case success > 0.5:
		return "Moderate success probability - review carefully"
	default:
		return "Low success probability - may need revision"
	}
}

var upcomingTitles = []string{
	"Treasury Diversification Strategy",
	"Governance Token Distribution Update",
	"Smart Contract Security Enhancement",
	"Community Incentive Program",
	"Cross-Chain Integration Proposal",
	"DeFi Protocol Partnership",
	"Voting Mechanism Optimization",
	"Treasury Yield Farming Strategy",
	"Governance Framework Update",
	"Emergency Fund Establishment",
}

var trendingTopics = []string{
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
