package model

import "gorm.io/datatypes"

// DAOSnapshotModel maps to 'dao_snapshots'. One row per DAO, refreshed on
// every successful context fetch; payload carries the full DAOContext.
type DAOSnapshotModel struct {
	ID               int64          `gorm:"column:id;primaryKey"`
	DAOAddress       string         `gorm:"column:dao_address;uniqueIndex"`
	Name             string         `gorm:"column:name"`
	TreasuryValueUSD float64        `gorm:"column:treasury_value_usd"`
	TotalMembers     int            `gorm:"column:total_members"`
	ActiveMembers    int            `gorm:"column:active_members"`
	TotalProposals   int            `gorm:"column:total_proposals"`
	ActiveProposals  int            `gorm:"column:active_proposals"`
	PassedProposals  int            `gorm:"column:passed_proposals"`
	FailedProposals  int            `gorm:"column:failed_proposals"`
	AvgParticipation float64        `gorm:"column:avg_participation"`
	Payload          datatypes.JSON `gorm:"column:payload;type:TEXT"`
	FetchedAtMs      int64          `gorm:"column:fetched_at"`
	CreatedAtMs      int64          `gorm:"column:created_at"`
	UpdatedAtMs      int64          `gorm:"column:updated_at"`
}

func (DAOSnapshotModel) TableName() string { return "dao_snapshots" }

// ProposalAnalysisModel maps to 'proposal_analyses'. One row per proposal,
// overwritten on re-analysis; payload carries the full AnalysisResult.
type ProposalAnalysisModel struct {
	ID               int64          `gorm:"column:id;primaryKey"`
	ProposalID       string         `gorm:"column:proposal_id;uniqueIndex"`
	DAOAddress       string         `gorm:"column:dao_address;index"`
	Sentiment        float64        `gorm:"column:sentiment"`
	RiskLevel        string         `gorm:"column:risk_level"`
	PredictedOutcome float64        `gorm:"column:predicted_outcome"`
	Confidence       float64        `gorm:"column:confidence"`
	GeneratorID      string         `gorm:"column:generator_id"`
	Payload          datatypes.JSON `gorm:"column:payload;type:TEXT"`
	AnalyzedAtMs     int64          `gorm:"column:analyzed_at;index"`
	CreatedAtMs      int64          `gorm:"column:created_at"`
	UpdatedAtMs      int64          `gorm:"column:updated_at"`
}

func (ProposalAnalysisModel) TableName() string { return "proposal_analyses" }

// HealthReportModel maps to 'health_reports'. Append-only history of
// generated reports, queried newest first per DAO.
type HealthReportModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	DAOAddress    string         `gorm:"column:dao_address;index:idx_health_reports_addr_ts,priority:1"`
	OverallScore  float64        `gorm:"column:overall_score"`
	Governance    float64        `gorm:"column:governance_score"`
	Financial     float64        `gorm:"column:financial_score"`
	Community     float64        `gorm:"column:community_score"`
	Confidence    float64        `gorm:"column:confidence"`
	Payload       datatypes.JSON `gorm:"column:payload;type:TEXT"`
	GeneratedAtMs int64          `gorm:"column:generated_at;index:idx_health_reports_addr_ts,priority:2"`
	CreatedAtMs   int64          `gorm:"column:created_at"`
}

func (HealthReportModel) TableName() string { return "health_reports" }

// TreasurySnapshotModel maps to 'treasury_snapshots'. Append-only history of
// treasury analyses, queried newest first per DAO.
type TreasurySnapshotModel struct {
	ID              int64          `gorm:"column:id;primaryKey"`
	DAOAddress      string         `gorm:"column:dao_address;index:idx_treasury_snapshots_addr_ts,priority:1"`
	TotalValueUSD   float64        `gorm:"column:total_value_usd"`
	Diversification float64        `gorm:"column:diversification_score"`
	RiskScore       float64        `gorm:"column:risk_score"`
	LiquidityScore  float64        `gorm:"column:liquidity_score"`
	Payload         datatypes.JSON `gorm:"column:payload;type:TEXT"`
	CapturedAtMs    int64          `gorm:"column:captured_at;index:idx_treasury_snapshots_addr_ts,priority:2"`
	CreatedAtMs     int64          `gorm:"column:created_at"`
}

func (TreasurySnapshotModel) TableName() string { return "treasury_snapshots" }
