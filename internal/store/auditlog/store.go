// Package auditlog keeps an append-only trail of dispatched DAO actions in
// SQLite, independent of the Gorm-managed tables so the trail survives
// schema churn in the main store.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RachelGanonNew/AIDA-Project/internal/actions"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"

	_ "modernc.org/sqlite"
)

var _ actions.Audit = (*Recorder)(nil)

// ActionAuditRecord is one persisted dispatch attempt, successful or not.
type ActionAuditRecord struct {
	ID              int64  `json:"id"`
	ActionID        string `json:"action_id"`
	DAOAddress      string `json:"dao_address"`
	ActionType      string `json:"action_type"`
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	GasUsed         int64  `json:"gas_used,omitempty"`
	ParamsJSON      string `json:"params_json,omitempty"`
	Error           string `json:"error,omitempty"`
	Note            string `json:"note,omitempty"`
	Timestamp       int64  `json:"ts"`
	CreatedAt       int64  `json:"created_at"`
}

// AuditQuery filters the trail. Zero-value fields match everything.
type AuditQuery struct {
	DAOAddress string
	ActionType string
	Status     string
	Limit      int
	Offset     int
}

// Store manages the audit trail database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	ownsDB bool
}

// New opens (or creates) the audit database at path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureAuditSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path, ownsDB: true}, nil
}

// UseExternalDB reuses a connection opened elsewhere (e.g. by the Gorm
// store) to avoid SQLite multi-connection lock contention.
func (s *Store) UseExternalDB(db *sql.DB) error {
	if s == nil {
		return fmt.Errorf("audit log store not initialized")
	}
	if db == nil {
		return fmt.Errorf("external db must not be nil")
	}
	if err := ensureAuditSchema(db); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownsDB && s.db != nil && s.db != db {
		_ = s.db.Close()
	}
	s.db = db
	s.ownsDB = false
	return nil
}

// Close closes the underlying DB if this store owns it.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if !s.ownsDB {
		s.db = nil
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureAuditSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS action_audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			action_id TEXT NOT NULL,
			dao_address TEXT NOT NULL,
			action_type TEXT NOT NULL,
			status TEXT NOT NULL,
			tx_hash TEXT,
			gas_used INTEGER NOT NULL DEFAULT 0,
			params_json TEXT,
			error TEXT,
			note TEXT,
			created_at INTEGER NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_action_audit_dao_ts_id ON action_audit_log(dao_address, ts DESC, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_action_audit_type_ts_id ON action_audit_log(action_type, ts DESC, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_action_audit_action_id ON action_audit_log(action_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return ensureAuditColumns(db)
}

func ensureAuditColumns(db *sql.DB) error {
	cols := []struct {
		table  string
		column string
		typ    string
	}{
		{"action_audit_log", "error", "TEXT"},
		{"action_audit_log", "note", "TEXT"},
	}
	for _, col := range cols {
		if err := addColumnIfMissing(db, col.table, col.column, col.typ); err != nil {
			return err
		}
	}
	return nil
}

func addColumnIfMissing(db *sql.DB, table, column, typ string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()
	exists := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			exists = true
			break
		}
	}
	if exists {
		return nil
	}
	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, typ))
	return err
}

// Insert appends one record and returns its row ID.
func (s *Store) Insert(ctx context.Context, rec ActionAuditRecord) (int64, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return 0, fmt.Errorf("audit log store not initialized")
	}
	ts := rec.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO action_audit_log
			(ts, action_id, dao_address, action_type, status, tx_hash, gas_used,
			 params_json, error, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts,
		strings.TrimSpace(rec.ActionID),
		strings.TrimSpace(rec.DAOAddress),
		strings.TrimSpace(rec.ActionType),
		strings.TrimSpace(rec.Status),
		strings.TrimSpace(rec.TransactionHash),
		rec.GasUsed,
		rec.ParamsJSON,
		rec.Error,
		rec.Note,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func buildAuditFilter(q AuditQuery) (string, []interface{}) {
	var args []interface{}
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")
	if addr := strings.TrimSpace(q.DAOAddress); addr != "" {
		sb.WriteString(" AND dao_address=?")
		args = append(args, addr)
	}
	if typ := strings.TrimSpace(q.ActionType); typ != "" {
		sb.WriteString(" AND action_type=?")
		args = append(args, typ)
	}
	if status := strings.TrimSpace(q.Status); status != "" {
		sb.WriteString(" AND status=?")
		args = append(args, status)
	}
	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuditRecord(scanner rowScanner) (ActionAuditRecord, error) {
	var (
		rec    ActionAuditRecord
		txHash sql.NullString
		params sql.NullString
		errStr sql.NullString
		note   sql.NullString
	)
	if err := scanner.Scan(&rec.ID, &rec.Timestamp, &rec.ActionID, &rec.DAOAddress,
		&rec.ActionType, &rec.Status, &txHash, &rec.GasUsed, &params, &errStr,
		&note, &rec.CreatedAt); err != nil {
		return rec, err
	}
	rec.TransactionHash = txHash.String
	rec.ParamsJSON = params.String
	rec.Error = errStr.String
	rec.Note = note.String
	return rec, nil
}

// List returns the newest matching records.
func (s *Store) List(ctx context.Context, q AuditQuery) ([]ActionAuditRecord, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("audit log store not initialized")
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	filterSQL, args := buildAuditFilter(q)
	var sb strings.Builder
	sb.WriteString(`SELECT id, ts, action_id, dao_address, action_type, status, tx_hash,
		gas_used, params_json, error, note, created_at
		FROM action_audit_log`)
	sb.WriteString(filterSQL)
	sb.WriteString(" ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)
	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ActionAuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// Count reports how many records match the filter.
func (s *Store) Count(ctx context.Context, q AuditQuery) (int, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return 0, fmt.Errorf("audit log store not initialized")
	}
	filterSQL, args := buildAuditFilter(q)
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_audit_log`+filterSQL, args...).
		Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Recorder adapts the store to the action dispatcher's audit hook.
type Recorder struct {
	store *Store
}

// NewRecorder wraps store; a nil store yields a nil recorder, which the
// dispatcher treats as no auditing.
func NewRecorder(store *Store) *Recorder {
	if store == nil {
		return nil
	}
	return &Recorder{store: store}
}

// RecordAction writes one dispatch attempt to the trail.
func (r *Recorder) RecordAction(ctx context.Context, req types.ActionRequest, res types.ActionResult) error {
	if r == nil || r.store == nil {
		return nil
	}
	params := ""
	if len(req.Parameters) > 0 {
		if b, err := json.Marshal(req.Parameters); err == nil {
			params = string(b)
		}
	}
	_, err := r.store.Insert(ctx, ActionAuditRecord{
		ActionID:        res.ActionID,
		DAOAddress:      res.DAOAddress,
		ActionType:      string(res.ActionType),
		Status:          res.Status,
		TransactionHash: res.TransactionHash,
		GasUsed:         res.GasUsed,
		ParamsJSON:      params,
		Error:           res.ErrorMessage,
		Timestamp:       res.ExecutedAt.UnixMilli(),
	})
	return err
}
