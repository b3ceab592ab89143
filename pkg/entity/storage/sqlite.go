package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"automata-hq/triton/pkg/entity"
)

// SQLiteConfig contains configuration for the SQLite entity store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

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
		Path:         "data/entities.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements entity.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite entity store and initializes the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "entity.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, entity.NewStoreError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite entity store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up pragmas and the schema.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return entity.NewStoreError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return entity.NewStoreError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return entity.NewStoreError("sqlite", "create_schema", err)
	}

	return nil
}

// CreateTask persists a new task.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *entity.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return entity.NewStoreError("sqlite", "marshal_tags", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, priority, due_date, tags,
			instance_id, chat_id, message_id, actor_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, string(task.Priority),
		nullableTime(task.DueDate), string(tags),
		task.Source.InstanceID, task.Source.ChatID, task.Source.MessageID, task.Source.ActorID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "create_task", err)
	}
	return nil
}

// GetTask returns the task with the given ID, or entity.ErrNotFound.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, priority, due_date, tags,
			instance_id, chat_id, message_id, actor_id, created_at, updated_at
		FROM tasks WHERE id = ?`, id)

	var task entity.Task
	var priority, tags string
	var dueDate sql.NullTime

	err := row.Scan(&task.ID, &task.Title, &task.Description, &priority, &dueDate, &tags,
		&task.Source.InstanceID, &task.Source.ChatID, &task.Source.MessageID, &task.Source.ActorID,
		&task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, entity.NewStoreError("sqlite", "get_task", err)
	}

	task.Priority = entity.TaskPriority(priority)
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if err := json.Unmarshal([]byte(tags), &task.Tags); err != nil {
		return nil, entity.NewStoreError("sqlite", "unmarshal_tags", err)
	}

	return &task, nil
}

// UpdateTask replaces the stored task with the given state.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *entity.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return entity.NewStoreError("sqlite", "marshal_tags", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, priority = ?, due_date = ?,
			tags = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, string(task.Priority),
		nullableTime(task.DueDate), string(tags), task.UpdatedAt, task.ID,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "update_task", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return entity.NewStoreError("sqlite", "update_task", err)
	}
	if affected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// CreateCalendarEvent persists a new calendar event.
func (s *SQLiteStore) CreateCalendarEvent(ctx context.Context, event *entity.CalendarEvent) error {
	attendees, err := json.Marshal(event.Attendees)
	if err != nil {
		return entity.NewStoreError("sqlite", "marshal_attendees", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (id, title, description, location, start_time, end_time,
			attendees, needs_meeting_link, instance_id, chat_id, message_id, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, event.Description, event.Location,
		event.StartTime, event.EndTime, string(attendees), event.NeedsMeetingLink,
		event.Source.InstanceID, event.Source.ChatID, event.Source.MessageID, event.Source.ActorID,
		event.CreatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "create_calendar_event", err)
	}
	return nil
}

// CreateBill persists a new bill.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *entity.Bill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (id, vendor, amount, currency, category, description, due_date,
			instance_id, chat_id, message_id, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Vendor, bill.Amount, bill.Currency, bill.Category, bill.Description,
		nullableTime(bill.DueDate),
		bill.Source.InstanceID, bill.Source.ChatID, bill.Source.MessageID, bill.Source.ActorID,
		bill.CreatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "create_bill", err)
	}
	return nil
}

// CreateNote persists a new note.
func (s *SQLiteStore) CreateNote(ctx context.Context, note *entity.Note) error {
	tags, err := json.Marshal(note.Tags)
	if err != nil {
		return entity.NewStoreError("sqlite", "marshal_tags", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, content, tags,
			instance_id, chat_id, message_id, actor_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, string(tags),
		note.Source.InstanceID, note.Source.ChatID, note.Source.MessageID, note.Source.ActorID,
		note.CreatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "create_note", err)
	}
	return nil
}

// AddLabel attaches a label to a chat or message.
func (s *SQLiteStore) AddLabel(ctx context.Context, label *entity.Label) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labels (id, instance_id, chat_id, message_id, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		label.ID, label.InstanceID, label.ChatID, label.MessageID, label.Name, label.CreatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "add_label", err)
	}
	return nil
}

// UpsertDerivedLink atomically inserts the trigger link if absent. The
// conditional insert targets the partial unique index, so two concurrent
// writers for the same (message, rule) pair serialize inside SQLite and
// exactly one insert wins.
func (s *SQLiteStore) UpsertDerivedLink(ctx context.Context, link *entity.DerivedLink) (*entity.DerivedLink, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO derived_links (id, derived_entity_id, entity_type, rule_id,
			triggering_message_id, instance_id, link_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'trigger', ?)
		ON CONFLICT (triggering_message_id, rule_id) WHERE link_type = 'trigger'
		DO NOTHING`,
		link.ID, link.DerivedEntityID, string(link.EntityType), link.RuleID,
		link.TriggeringMessageID, link.InstanceID, link.CreatedAt,
	)
	if err != nil {
		return nil, false, entity.NewStoreError("sqlite", "upsert_link", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, entity.NewStoreError("sqlite", "upsert_link", err)
	}

	if affected > 0 {
		inserted := *link
		inserted.LinkType = entity.LinkTrigger
		return &inserted, true, nil
	}

	existing, err := s.FindTriggerLink(ctx, link.TriggeringMessageID, link.RuleID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// FindTriggerLink returns the trigger link for the message and rule.
func (s *SQLiteStore) FindTriggerLink(ctx context.Context, triggeringMessageID, ruleID string) (*entity.DerivedLink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, derived_entity_id, entity_type, rule_id, triggering_message_id,
			instance_id, link_type, created_at
		FROM derived_links
		WHERE triggering_message_id = ? AND rule_id = ? AND link_type = 'trigger'`,
		triggeringMessageID, ruleID)

	var link entity.DerivedLink
	var entityType, linkType string
	err := row.Scan(&link.ID, &link.DerivedEntityID, &entityType, &link.RuleID,
		&link.TriggeringMessageID, &link.InstanceID, &linkType, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, entity.NewStoreError("sqlite", "find_trigger_link", err)
	}

	link.EntityType = entity.EntityType(entityType)
	link.LinkType = entity.LinkType(linkType)
	return &link, nil
}

// RecordUpdateLink appends an update-type link.
func (s *SQLiteStore) RecordUpdateLink(ctx context.Context, link *entity.DerivedLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO derived_links (id, derived_entity_id, entity_type, rule_id,
			triggering_message_id, instance_id, link_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 'update', ?)`,
		link.ID, link.DerivedEntityID, string(link.EntityType), link.RuleID,
		link.TriggeringMessageID, link.InstanceID, link.CreatedAt,
	)
	if err != nil {
		return entity.NewStoreError("sqlite", "record_update_link", err)
	}
	return nil
}

// DeleteDerivedLink removes a link by ID.
func (s *SQLiteStore) DeleteDerivedLink(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM derived_links WHERE id = ?`, id)
	if err != nil {
		return entity.NewStoreError("sqlite", "delete_link", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableTime converts an optional time to a driver-friendly value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
