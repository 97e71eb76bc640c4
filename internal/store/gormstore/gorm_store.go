// Package gormstore persists DAO snapshots, proposal analyses, health
// reports and treasury snapshots in SQLite through Gorm. Writes are
// best-effort from the callers' point of view: services log failures and
// keep serving.
package gormstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/dao"
	"github.com/RachelGanonNew/AIDA-Project/internal/proposals"
	storemodel "github.com/RachelGanonNew/AIDA-Project/internal/store/model"
	"github.com/RachelGanonNew/AIDA-Project/internal/treasury"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

type daoSnapshotModel = storemodel.DAOSnapshotModel
type proposalAnalysisModel = storemodel.ProposalAnalysisModel
type healthReportModel = storemodel.HealthReportModel
type treasurySnapshotModel = storemodel.TreasurySnapshotModel

var errNotInitialized = errors.New("gorm store not initialized")

var (
	_ proposals.AnalysisStore = (*Store)(nil)
	_ dao.Recorder            = (*Store)(nil)
	_ treasury.Recorder       = (*Store)(nil)
)

// Store implements snapshot and analysis persistence using Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the database at path and migrates the schema.
func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: database path must not be empty")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	models := []interface{}{
		&daoSnapshotModel{},
		&proposalAnalysisModel{},
		&healthReportModel{},
		&treasurySnapshotModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a small amount of parallelism for concurrent HTTP reads
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying *sql.DB for shared connections.
func (s *Store) SQLDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	return s.db.DB()
}

// --------------------------- DAO Snapshots ------------------------------

func (s *Store) SaveDAOSnapshot(ctx context.Context, dctx types.DAOContext) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	address := strings.TrimSpace(dctx.Address)
	if address == "" {
		return apperr.InvalidParams("dao address is required", nil)
	}
	payload, err := json.Marshal(dctx)
	if err != nil {
		return fmt.Errorf("encode dao snapshot: %w", err)
	}
	now := time.Now().UnixMilli()
	m := daoSnapshotModel{
		DAOAddress:       address,
		Name:             dctx.Name,
		TreasuryValueUSD: dctx.TreasuryValueUSD,
		TotalMembers:     dctx.TotalMembers,
		ActiveMembers:    dctx.ActiveMembers,
		TotalProposals:   dctx.TotalProposals,
		ActiveProposals:  dctx.ActiveProposals,
		PassedProposals:  dctx.PassedProposals,
		FailedProposals:  dctx.FailedProposals,
		AvgParticipation: dctx.AvgParticipation,
		Payload:          datatypes.JSON(payload),
		FetchedAtMs:      msOrNow(dctx.FetchedAt, now),
		CreatedAtMs:      now,
		UpdatedAtMs:      now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "dao_address"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "treasury_value_usd", "total_members", "active_members",
				"total_proposals", "active_proposals", "passed_proposals",
				"failed_proposals", "avg_participation", "payload", "fetched_at",
				"updated_at",
			}),
		}).
		Create(&m).Error
}

func (s *Store) DAOSnapshot(ctx context.Context, address string) (types.DAOContext, error) {
	if s == nil || s.db == nil {
		return types.DAOContext{}, errNotInitialized
	}
	var m daoSnapshotModel
	if err := s.db.WithContext(ctx).Where("dao_address = ?", strings.TrimSpace(address)).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.DAOContext{}, apperr.NoData("dao snapshot", address)
		}
		return types.DAOContext{}, err
	}
	var dctx types.DAOContext
	if err := json.Unmarshal(m.Payload, &dctx); err != nil {
		return types.DAOContext{}, fmt.Errorf("decode dao snapshot: %w", err)
	}
	return dctx, nil
}

// ------------------------- Proposal Analyses ----------------------------

func (s *Store) SaveProposalAnalysis(ctx context.Context, result types.AnalysisResult) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	proposalID := strings.TrimSpace(result.ProposalID)
	if proposalID == "" {
		return apperr.InvalidParams("proposal id is required", nil)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode proposal analysis: %w", err)
	}
	now := time.Now().UnixMilli()
	m := proposalAnalysisModel{
		ProposalID:       proposalID,
		DAOAddress:       strings.TrimSpace(result.DAOAddress),
		Sentiment:        result.Sentiment,
		RiskLevel:        string(result.Risk.Level),
		PredictedOutcome: result.PredictedOutcome,
		Confidence:       result.Confidence,
		GeneratorID:      result.GeneratorID,
		Payload:          datatypes.JSON(payload),
		AnalyzedAtMs:     msOrNow(result.AnalyzedAt, now),
		CreatedAtMs:      now,
		UpdatedAtMs:      now,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "proposal_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"dao_address", "sentiment", "risk_level", "predicted_outcome",
				"confidence", "generator_id", "payload", "analyzed_at", "updated_at",
			}),
		}).
		Create(&m).Error
}

func (s *Store) ProposalAnalysis(ctx context.Context, proposalID string) (types.AnalysisResult, error) {
	if s == nil || s.db == nil {
		return types.AnalysisResult{}, errNotInitialized
	}
	var m proposalAnalysisModel
	if err := s.db.WithContext(ctx).Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.AnalysisResult{}, apperr.NoData("proposal analysis", proposalID)
		}
		return types.AnalysisResult{}, err
	}
	return decodeAnalysis(m)
}

// ListProposalAnalyses returns a DAO's stored analyses, newest first.
func (s *Store) ListProposalAnalyses(ctx context.Context, daoAddress string, limit int) ([]types.AnalysisResult, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var models []proposalAnalysisModel
	if err := s.db.WithContext(ctx).
		Where("dao_address = ?", strings.TrimSpace(daoAddress)).
		Order("analyzed_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.AnalysisResult, 0, len(models))
	for _, m := range models {
		result, err := decodeAnalysis(m)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func decodeAnalysis(m proposalAnalysisModel) (types.AnalysisResult, error) {
	var result types.AnalysisResult
	if err := json.Unmarshal(m.Payload, &result); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("decode proposal analysis %s: %w", m.ProposalID, err)
	}
	return result, nil
}

// --------------------------- Health Reports -----------------------------

func (s *Store) SaveHealthReport(ctx context.Context, report types.HealthReport) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	address := strings.TrimSpace(report.DAOAddress)
	if address == "" {
		return apperr.InvalidParams("dao address is required", nil)
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode health report: %w", err)
	}
	now := time.Now().UnixMilli()
	m := healthReportModel{
		DAOAddress:    address,
		OverallScore:  report.OverallScore,
		Governance:    report.GovernanceScore,
		Financial:     report.FinancialScore,
		Community:     report.CommunityScore,
		Confidence:    report.Confidence,
		Payload:       datatypes.JSON(payload),
		GeneratedAtMs: msOrNow(report.LastUpdated, now),
		CreatedAtMs:   now,
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) LatestHealthReport(ctx context.Context, address string) (types.HealthReport, error) {
	if s == nil || s.db == nil {
		return types.HealthReport{}, errNotInitialized
	}
	var m healthReportModel
	if err := s.db.WithContext(ctx).
		Where("dao_address = ?", strings.TrimSpace(address)).
		Order("generated_at DESC, id DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.HealthReport{}, apperr.NoData("health report", address)
		}
		return types.HealthReport{}, err
	}
	var report types.HealthReport
	if err := json.Unmarshal(m.Payload, &report); err != nil {
		return types.HealthReport{}, fmt.Errorf("decode health report: %w", err)
	}
	return report, nil
}

// ListHealthReports returns a DAO's report history, newest first.
func (s *Store) ListHealthReports(ctx context.Context, address string, limit int) ([]types.HealthReport, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var models []healthReportModel
	if err := s.db.WithContext(ctx).
		Where("dao_address = ?", strings.TrimSpace(address)).
		Order("generated_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.HealthReport, 0, len(models))
	for _, m := range models {
		var report types.HealthReport
		if err := json.Unmarshal(m.Payload, &report); err != nil {
			return nil, fmt.Errorf("decode health report: %w", err)
		}
		out = append(out, report)
	}
	return out, nil
}

// ------------------------- Treasury Snapshots ---------------------------

func (s *Store) SaveTreasurySnapshot(ctx context.Context, analysis types.TreasuryAnalysis) error {
	if s == nil || s.db == nil {
		return errNotInitialized
	}
	address := strings.TrimSpace(analysis.DAOAddress)
	if address == "" {
		return apperr.InvalidParams("dao address is required", nil)
	}
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode treasury snapshot: %w", err)
	}
	now := time.Now().UnixMilli()
	m := treasurySnapshotModel{
		DAOAddress:      address,
		TotalValueUSD:   analysis.TotalValueUSD,
		Diversification: analysis.DiversificationScore,
		RiskScore:       analysis.RiskScore,
		LiquidityScore:  analysis.LiquidityScore,
		Payload:         datatypes.JSON(payload),
		CapturedAtMs:    msOrNow(analysis.LastUpdated, now),
		CreatedAtMs:     now,
	}
	return s.db.WithContext(ctx).Create(&m).Error
}

func (s *Store) LatestTreasurySnapshot(ctx context.Context, address string) (types.TreasuryAnalysis, error) {
	if s == nil || s.db == nil {
		return types.TreasuryAnalysis{}, errNotInitialized
	}
	var m treasurySnapshotModel
	if err := s.db.WithContext(ctx).
		Where("dao_address = ?", strings.TrimSpace(address)).
		Order("captured_at DESC, id DESC").
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.TreasuryAnalysis{}, apperr.NoData("treasury snapshot", address)
		}
		return types.TreasuryAnalysis{}, err
	}
	var analysis types.TreasuryAnalysis
	if err := json.Unmarshal(m.Payload, &analysis); err != nil {
		return types.TreasuryAnalysis{}, fmt.Errorf("decode treasury snapshot: %w", err)
	}
	return analysis, nil
}

// ListTreasurySnapshots returns a DAO's snapshot history, newest first.
func (s *Store) ListTreasurySnapshots(ctx context.Context, address string, limit int) ([]types.TreasuryAnalysis, error) {
	if s == nil || s.db == nil {
		return nil, errNotInitialized
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var models []treasurySnapshotModel
	if err := s.db.WithContext(ctx).
		Where("dao_address = ?", strings.TrimSpace(address)).
		Order("captured_at DESC, id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]types.TreasuryAnalysis, 0, len(models))
	for _, m := range models {
		var analysis types.TreasuryAnalysis
		if err := json.Unmarshal(m.Payload, &analysis); err != nil {
			return nil, fmt.Errorf("decode treasury snapshot: %w", err)
		}
		out = append(out, analysis)
	}
	return out, nil
}

func msOrNow(t time.Time, now int64) int64 {
	if t.IsZero() {
		return now
	}
	return t.UnixMilli()
}
