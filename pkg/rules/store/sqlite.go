package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"automata-hq/triton/pkg/rules"
)

// rulesSchema is the SQLite schema for rules and instance ownership.
const rulesSchema = `
CREATE TABLE IF NOT EXISTS rules (
    id                    TEXT PRIMARY KEY,
    name                  TEXT NOT NULL,
    is_active             INTEGER NOT NULL DEFAULT 1,
    priority              INTEGER NOT NULL DEFAULT 0,
    trigger_type          TEXT NOT NULL,
    scope_instance_id     TEXT NOT NULL DEFAULT '',
    performer_filter      TEXT NOT NULL,
    allowed_performer_ids TEXT NOT NULL DEFAULT '[]',
    conditions            TEXT NOT NULL DEFAULT '{}',
    action_type           TEXT NOT NULL,
    action_config         TEXT NOT NULL DEFAULT '{}',
    allow_update_existing INTEGER NOT NULL DEFAULT 0,
    created_by            TEXT NOT NULL DEFAULT '',
    created_at            TIMESTAMP NOT NULL,
    updated_at            TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_trigger ON rules(trigger_type, is_active);

CREATE TABLE IF NOT EXISTS instances (
    instance_id TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL
);
`

// SQLiteConfig contains configuration for the SQLite rule store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/rules.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite rule store and initializes the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "open", Cause: err}
	}

	s := &SQLiteStore{
		db:     db,
		logger: slog.Default().With("component", "rules.store.sqlite"),
	}

	if config.WALMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			db.Close()
			return nil, &StoreError{Backend: "sqlite", Operation: "enable_wal", Cause: err}
		}
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, &StoreError{Backend: "sqlite", Operation: "set_busy_timeout", Cause: err}
	}
	if _, err := db.Exec(rulesSchema); err != nil {
		db.Close()
		return nil, &StoreError{Backend: "sqlite", Operation: "create_schema", Cause: err}
	}

	s.logger.Info("SQLite rule store initialized", "path", config.Path)
	return s, nil
}

// ListActiveRules returns matching active rules in evaluation order.
func (s *SQLiteStore) ListActiveRules(ctx context.Context, triggerType rules.TriggerType, instanceID string) ([]*rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, is_active, priority, trigger_type, scope_instance_id,
			performer_filter, allowed_performer_ids, conditions, action_type,
			action_config, allow_update_existing, created_by, created_at, updated_at
		FROM rules
		WHERE is_active = 1 AND trigger_type = ?
			AND (scope_instance_id = '' OR scope_instance_id = ?)`,
		string(triggerType), instanceID,
	)
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "list_active_rules", Cause: err}
	}
	defer rows.Close()

	var out []*rules.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "list_active_rules", Cause: err}
	}

	rules.SortByPriority(out)
	return out, nil
}

// GetRule returns a rule by ID.
func (s *SQLiteStore) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, is_active, priority, trigger_type, scope_instance_id,
			performer_filter, allowed_performer_ids, conditions, action_type,
			action_config, allow_update_existing, created_by, created_at, updated_at
		FROM rules WHERE id = ?`, id)
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "get_rule", Cause: err}
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, &StoreError{Backend: "sqlite", Operation: "get_rule", Cause: err}
		}
		return nil, ErrRuleNotFound
	}
	return scanRule(rows)
}

// SaveRule validates and inserts or replaces a rule.
func (s *SQLiteStore) SaveRule(ctx context.Context, rule *rules.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	return s.saveRuleTx(ctx, s.db, rule)
}

// execer abstracts *sql.DB and *sql.Tx for rule writes.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) saveRuleTx(ctx context.Context, ex execer, rule *rules.Rule) error {
	performers, err := json.Marshal(rule.AllowedPerformerIDs)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "marshal_performers", Cause: err}
	}
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "marshal_conditions", Cause: err}
	}
	config, err := json.Marshal(rule.ActionConfig)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "marshal_action_config", Cause: err}
	}

	_, err = ex.ExecContext(ctx, `
		INSERT OR REPLACE INTO rules (id, name, is_active, priority, trigger_type,
			scope_instance_id, performer_filter, allowed_performer_ids, conditions,
			action_type, action_config, allow_update_existing, created_by,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, rule.IsActive, rule.Priority, string(rule.TriggerType),
		rule.ScopeInstanceID, string(rule.PerformerFilter), string(performers), string(conditions),
		string(rule.ActionType), string(config), rule.AllowUpdateExisting, rule.CreatedBy,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "save_rule", Cause: err}
	}
	return nil
}

// DeleteRule removes a rule by ID.
func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "delete_rule", Cause: err}
	}
	return nil
}

// ReplaceAll atomically swaps the full rule set inside one transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, list []*rules.Rule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "replace_all", Cause: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rules`); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "replace_all", Cause: err}
	}
	for _, rule := range list {
		if err := s.saveRuleTx(ctx, tx, rule); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return &StoreError{Backend: "sqlite", Operation: "replace_all", Cause: err}
	}
	return nil
}

// GetInstanceOwner resolves the owner actor of an instance.
func (s *SQLiteStore) GetInstanceOwner(ctx context.Context, instanceID string) (string, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id FROM instances WHERE instance_id = ?`, instanceID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrOwnerNotFound
	}
	if err != nil {
		return "", &StoreError{Backend: "sqlite", Operation: "get_instance_owner", Cause: err}
	}
	return owner, nil
}

// SetInstanceOwner records the owner actor of an instance.
func (s *SQLiteStore) SetInstanceOwner(ctx context.Context, instanceID, ownerID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO instances (instance_id, owner_id) VALUES (?, ?)`,
		instanceID, ownerID)
	if err != nil {
		return &StoreError{Backend: "sqlite", Operation: "set_instance_owner", Cause: err}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanRule decodes one rule row.
func scanRule(rows *sql.Rows) (*rules.Rule, error) {
	var r rules.Rule
	var triggerType, performerFilter, actionType string
	var performers, conditions, config string

	err := rows.Scan(&r.ID, &r.Name, &r.IsActive, &r.Priority, &triggerType,
		&r.ScopeInstanceID, &performerFilter, &performers, &conditions,
		&actionType, &config, &r.AllowUpdateExisting, &r.CreatedBy,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "scan_rule", Cause: err}
	}

	r.TriggerType = rules.TriggerType(triggerType)
	r.PerformerFilter = rules.PerformerFilter(performerFilter)
	r.ActionType = rules.ActionType(actionType)

	if err := json.Unmarshal([]byte(performers), &r.AllowedPerformerIDs); err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "unmarshal_performers", Cause: err}
	}
	if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "unmarshal_conditions", Cause: err}
	}
	if err := json.Unmarshal([]byte(config), &r.ActionConfig); err != nil {
		return nil, &StoreError{Backend: "sqlite", Operation: "unmarshal_action_config", Cause: err}
	}

	return &r, nil
}
