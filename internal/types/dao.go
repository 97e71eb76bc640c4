package types

import "time"

// GovernanceParams are the on-chain voting rules for a DAO.
type GovernanceParams struct {
	QuorumRatio         float64 `json:"quorum_ratio"`
	VotingPeriodHours   float64 `json:"voting_period_hours"`
	ExecutionDelayHours float64 `json:"execution_delay_hours"`
}

// ActivitySnapshot counts governance activity over the trailing 30 days.
type ActivitySnapshot struct {
	ProposalsLast30d int `json:"proposals_last_30d"`
	VotesLast30d     int `json:"votes_last_30d"`
}

// DAOContext is the aggregated feature-source view of one DAO. It is a
// point-in-time snapshot; services treat it as immutable.
type DAOContext struct {
	Address          string           `json:"address"`
	Name             string           `json:"name"`
	TreasuryValueUSD float64          `json:"treasury_value_usd"`
	TotalMembers     int              `json:"total_members"`
	ActiveMembers    int              `json:"active_members"`
	TotalProposals   int              `json:"total_proposals"`
	ActiveProposals  int              `json:"active_proposals"`
	PassedProposals  int              `json:"passed_proposals"`
	FailedProposals  int              `json:"failed_proposals"`
	AvgParticipation float64          `json:"avg_participation"`
	AvgVotingHours   float64          `json:"avg_voting_duration_hours"`
	RecentActivity   ActivitySnapshot `json:"recent_activity"`
	Governance       GovernanceParams `json:"governance_params"`
	FetchedAt        time.Time        `json:"fetched_at"`
}

type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusPassed   ProposalStatus = "passed"
	ProposalStatusFailed   ProposalStatus = "failed"
	ProposalStatusExecuted ProposalStatus = "executed"
)

type Proposal struct {
	ID           string         `json:"id"`
	DAOAddress   string         `json:"dao_address"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Proposer     string         `json:"proposer"`
	Topic        string         `json:"topic,omitempty"`
	Status       ProposalStatus `json:"status"`
	VotesFor     float64        `json:"votes_for"`
	VotesAgainst float64        `json:"votes_against"`
	CreatedAt    time.Time      `json:"created_at"`
	EndsAt       time.Time      `json:"ends_at"`
}

// ForShare returns the supporting share of the recorded vote, or 0.5 when
// no votes were cast.
func (p Proposal) ForShare() float64 {
	total := p.VotesFor + p.VotesAgainst
	if total <= 0 {
		return 0.5
	}
	return p.VotesFor / total
}

// TotalVotes is the combined for and against turnout.
func (p Proposal) TotalVotes() float64 {
	return p.VotesFor + p.VotesAgainst
}

// HealthReport is the assembled multi-factor DAO health analysis.
type HealthReport struct {
	DAOAddress      string    `json:"dao_address"`
	OverallScore    float64   `json:"overall_health_score"`
	GovernanceScore float64   `json:"governance_score"`
	FinancialScore  float64   `json:"financial_score"`
	CommunityScore  float64   `json:"community_score"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"analysis_confidence"`
	LastUpdated     time.Time `json:"last_updated"`
}

// VoterStanding is one entry of the most-active-voter leaderboard.
type VoterStanding struct {
	Address    string  `json:"address"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// GovernancePredictions carries the forward-looking governance estimates.
type GovernancePredictions struct {
	NextMonthParticipation float64  `json:"next_month_participation"`
	ProposalSuccessProb    float64  `json:"proposal_success_probability"`
	TrendingTopics         []string `json:"trending_topics"`
}

// GovernanceMetrics summarizes a DAO's governance activity.
type GovernanceMetrics struct {
	DAOAddress        string                `json:"dao_address"`
	TotalProposals    int                   `json:"total_proposals"`
	ActiveProposals   int                   `json:"active_proposals"`
	AvgParticipation  float64               `json:"average_voter_participation"`
	SuccessRate       float64               `json:"proposal_success_rate"`
	AvgVotingDuration float64               `json:"average_voting_duration_hours"`
	TopVoters         []VoterStanding       `json:"top_voters"`
	Trends            map[string]string     `json:"governance_trends"`
	Predictions       GovernancePredictions `json:"predictions"`
	LastUpdated       time.Time             `json:"last_updated"`
}
