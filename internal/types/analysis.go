package types

import "time"

// FeatureVector is the per-request input bundle for proposal analysis.
// Numeric features are normalized to [0,1]; it is built once and never
// mutated afterwards.
type FeatureVector struct {
	ProposalText       string  `json:"proposal_text"`
	ProposerReputation float64 `json:"proposer_reputation"`
	ProposalComplexity float64 `json:"proposal_complexity"`
	CommunitySentiment float64 `json:"community_sentiment"`
	FinancialImpact    float64 `json:"financial_impact"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type RiskAssessment struct {
	Level   RiskLevel `json:"level"`
	Score   float64   `json:"score"`
	Factors []string  `json:"factors"`
}

type ImpactDimension struct {
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

type ImpactAssessment struct {
	Treasury   ImpactDimension `json:"treasury"`
	Governance ImpactDimension `json:"governance"`
	Community  ImpactDimension `json:"community"`
}

// AnalysisResult is the assembled output of one orchestrator run.
// Sentiment lives in [-1,1]; every other score in [0,1].
type AnalysisResult struct {
	ProposalID           string           `json:"proposal_id"`
	DAOAddress           string           `json:"dao_address"`
	Sentiment            float64          `json:"sentiment_score"`
	Summary              string           `json:"summary"`
	Risk                 RiskAssessment   `json:"risk_assessment"`
	Impact               ImpactAssessment `json:"impact_analysis"`
	KeyPoints            []string         `json:"key_points"`
	Recommendations      []string         `json:"recommendations"`
	PredictedOutcome     float64          `json:"predicted_outcome"`
	PredictionConfidence float64          `json:"prediction_confidence"`
	Confidence           float64          `json:"confidence"`
	GeneratorID          string           `json:"generator_id,omitempty"`
	AnalyzedAt           time.Time        `json:"analyzed_at"`
}

// ProposalAnalysisReport is the analysis response served to API callers:
// the full result plus the derived voting recommendation.
type ProposalAnalysisReport struct {
	AnalysisResult
	VotingRecommendation string `json:"voting_recommendation"`
}

// ProposalSummary is the condensed analysis view of one proposal.
type ProposalSummary struct {
	ProposalID           string    `json:"proposal_id"`
	Title                string    `json:"title"`
	Summary              string    `json:"summary"`
	KeyPoints            []string  `json:"key_points"`
	RiskLevel            RiskLevel `json:"risk_level"`
	EstimatedImpact      string    `json:"estimated_impact"`
	VotingRecommendation string    `json:"voting_recommendation"`
	CreatedAt            time.Time `json:"created_at"`
}

// ProposalPrediction is one forward-looking proposal forecast.
type ProposalPrediction struct {
	ProposalID       string   `json:"proposal_id"`
	Title            string   `json:"title"`
	PredictedSuccess float64  `json:"predicted_success_rate"`
	Confidence       float64  `json:"confidence"`
	EstimatedImpact  string   `json:"estimated_impact"`
	TrendingTopic    string   `json:"trending_topic"`
	KeyFactors       []string `json:"key_factors"`
	Recommendation   string   `json:"recommendation"`
}

// ProposalHistoryItem is one settled proposal with its outcome.
type ProposalHistoryItem struct {
	ProposalID    string         `json:"proposal_id"`
	Title         string         `json:"title"`
	Topic         string         `json:"topic"`
	Status        ProposalStatus `json:"status"`
	Participation float64        `json:"voter_participation"`
	SupportRatio  float64        `json:"support_ratio"`
	TotalVotes    float64        `json:"total_votes"`
	VotingHours   float64        `json:"voting_duration"`
	CreatedAt     time.Time      `json:"created_at"`
}

// TopicCount pairs a proposal topic with how often it appeared.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// ProposalAnalytics aggregates outcomes across a DAO's settled proposals.
type ProposalAnalytics struct {
	DAOAddress       string       `json:"dao_address"`
	TotalProposals   int          `json:"total_proposals"`
	SettledProposals int          `json:"settled_proposals"`
	ApprovalRate     float64      `json:"approval_rate"`
	AvgParticipation float64      `json:"average_participation"`
	AvgSupportRatio  float64      `json:"average_support_ratio"`
	TopTopics        []TopicCount `json:"top_topics"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

// ScoreBundle carries the component and derived scores for one DAO,
// each clamped to [0,1].
type ScoreBundle struct {
	Governance      float64 `json:"governance"`
	Financial       float64 `json:"financial"`
	Community       float64 `json:"community"`
	Overall         float64 `json:"overall"`
	Diversification float64 `json:"diversification"`
	Risk            float64 `json:"risk"`
	Liquidity       float64 `json:"liquidity"`
	Confidence      float64 `json:"confidence"`
}
