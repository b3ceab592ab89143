package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"automata-hq/triton/pkg/audit"
)

const executionSchema = `
CREATE TABLE IF NOT EXISTS executions (
	id TEXT PRIMARY KEY,
	rule_id TEXT NOT NULL,
	trigger_json TEXT NOT NULL,
	status TEXT NOT NULL,
	result_summary TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	executed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_rule ON executions(rule_id, executed_at);
CREATE INDEX IF NOT EXISTS idx_executions_executed_at ON executions(executed_at);
`

// SQLiteConfig contains configuration for SQLite execution record storage.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns limits open connections. Default: 5
	MaxOpenConns int

	// BusyTimeout is how long a locked database is retried. Default: 5s
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         path,
		MaxOpenConns: 5,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage on SQLite via the CGO-free
// modernc.org/sqlite driver, so the audit log works in static builds.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens (creating if needed) the execution record database.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil || config.Path == "" {
		return nil, fmt.Errorf("sqlite audit storage requires a path")
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 5
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		config.Path, config.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	if _, err := db.Exec(executionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Append writes one record.
func (s *SQLiteStorage) Append(ctx context.Context, record *audit.ExecutionRecord) error {
	trigger, err := json.Marshal(record.Trigger)
	if err != nil {
		return fmt.Errorf("failed to encode trigger snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO executions (id, rule_id, trigger_json, status, result_summary, error_message, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.RuleID, string(trigger), string(record.Status),
		record.ResultSummary, record.ErrorMessage, record.DurationMs, record.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append execution record: %w", err)
	}
	return nil
}

// List returns records matching the query, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *audit.Query) ([]*audit.ExecutionRecord, error) {
	var (
		where []string
		args  []any
	)
	if query != nil {
		if query.RuleID != "" {
			where = append(where, "rule_id = ?")
			args = append(args, query.RuleID)
		}
		if query.Status != "" {
			where = append(where, "status = ?")
			args = append(args, string(query.Status))
		}
		if !query.Since.IsZero() {
			where = append(where, "executed_at >= ?")
			args = append(args, query.Since)
		}
		if !query.Until.IsZero() {
			where = append(where, "executed_at <= ?")
			args = append(args, query.Until)
		}
	}

	q := "SELECT id, rule_id, trigger_json, status, result_summary, error_message, duration_ms, executed_at FROM executions"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY executed_at DESC, id DESC"
	if query != nil && query.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}
	defer rows.Close()

	var out []*audit.ExecutionRecord
	for rows.Next() {
		var (
			record  audit.ExecutionRecord
			trigger string
			status  string
		)
		if err := rows.Scan(&record.ID, &record.RuleID, &trigger, &status,
			&record.ResultSummary, &record.ErrorMessage, &record.DurationMs, &record.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}
		record.Status = audit.Status(status)
		if err := json.Unmarshal([]byte(trigger), &record.Trigger); err != nil {
			return nil, fmt.Errorf("failed to decode trigger snapshot: %w", err)
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}

// Count returns the total number of stored records.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count, nil
}

// DeleteBefore removes records executed before the cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM executions WHERE executed_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired execution records: %w", err)
	}
	return result.RowsAffected()
}

// DeleteOldest removes the n oldest records.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM executions WHERE id IN (
			SELECT id FROM executions ORDER BY executed_at ASC, id ASC LIMIT ?
		)`, n)
	if err != nil {
		return 0, fmt.Errorf("failed to delete oldest execution records: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
