package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/google/uuid"
)

// SQLiteStore implements Store using SQLite with WAL enabled. Suitable
// for single-instance deployments where the trail must survive
// restarts.
type SQLiteStore struct {
	db *sql.DB

	appendStmt *sql.Stmt
	purgeStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long writes wait on a locked database.
	// Default: 5s.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_records (
    id         TEXT PRIMARY KEY,
    ts         INTEGER NOT NULL,
    request_id TEXT NOT NULL DEFAULT '',
    user_id    TEXT NOT NULL DEFAULT '',
    action     TEXT NOT NULL,
    resource   TEXT NOT NULL DEFAULT '',
    result     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_records(ts);
CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_records(user_id, ts);
`

// defaultQueryLimit caps Query results when the filter sets no limit.
const defaultQueryLimit = 100

// NewSQLiteStore opens (creating if needed) the audit database at
// cfg.Path.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit database path is required")
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec(auditSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	appendStmt, err := db.Prepare(`
		INSERT INTO audit_records (id, ts, request_id, user_id, action, resource, result, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare append statement: %w", err)
	}

	purgeStmt, err := db.Prepare(`DELETE FROM audit_records WHERE ts < ?`)
	if err != nil {
		_ = appendStmt.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare purge statement: %w", err)
	}

	return &SQLiteStore{
		db:         db,
		appendStmt: appendStmt,
		purgeStmt:  purgeStmt,
	}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, record *Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	detail := "{}"
	if len(record.Detail) > 0 {
		raw, err := json.Marshal(record.Detail)
		if err != nil {
			return fmt.Errorf("failed to encode record detail: %w", err)
		}
		detail = string(raw)
	}

	_, err := s.appendStmt.ExecContext(ctx,
		record.ID,
		record.Timestamp.UnixMicro(),
		record.RequestID,
		record.UserID,
		string(record.Action),
		record.Resource,
		string(record.Result),
		detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Query implements Store.
func (s *SQLiteStore) Query(ctx context.Context, filter QueryFilter) ([]*Record, error) {
	var (
		conds []string
		args  []any
	)

	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, string(filter.Action))
	}
	if !filter.Since.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, filter.Since.UnixMicro())
	}
	if !filter.Until.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, filter.Until.UnixMicro())
	}

	query := "SELECT id, ts, request_id, user_id, action, resource, result, detail FROM audit_records"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY ts DESC LIMIT ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			r         Record
			ts        int64
			action    string
			result    string
			detailRaw string
		)
		if err := rows.Scan(&r.ID, &ts, &r.RequestID, &r.UserID, &action, &r.Resource, &result, &detailRaw); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		r.Timestamp = time.UnixMicro(ts)
		r.Action = Action(action)
		r.Result = Result(result)
		if detailRaw != "" && detailRaw != "{}" {
			if err := json.Unmarshal([]byte(detailRaw), &r.Detail); err != nil {
				return nil, fmt.Errorf("failed to decode record detail: %w", err)
			}
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Purge implements Store.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.purgeStmt.ExecContext(ctx, olderThan.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	_ = s.appendStmt.Close()
	_ = s.purgeStmt.Close()
	return s.db.Close()
}
