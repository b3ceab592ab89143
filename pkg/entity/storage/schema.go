package storage

// Schema is the SQLite schema for derived records and links.
//
// The partial unique index on derived_links is the engine's idempotency
// primitive: it guarantees at most one trigger-type link per
// (triggering_message_id, rule_id) regardless of concurrent writers.
const Schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    priority    TEXT NOT NULL DEFAULT 'medium',
    due_date    TIMESTAMP,
    tags        TEXT NOT NULL DEFAULT '[]',
    instance_id TEXT NOT NULL DEFAULT '',
    chat_id     TEXT NOT NULL DEFAULT '',
    message_id  TEXT NOT NULL DEFAULT '',
    actor_id    TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS calendar_events (
    id                 TEXT PRIMARY KEY,
    title              TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    location           TEXT NOT NULL DEFAULT '',
    start_time         TIMESTAMP NOT NULL,
    end_time           TIMESTAMP NOT NULL,
    attendees          TEXT NOT NULL DEFAULT '[]',
    needs_meeting_link INTEGER NOT NULL DEFAULT 0,
    instance_id        TEXT NOT NULL DEFAULT '',
    chat_id            TEXT NOT NULL DEFAULT '',
    message_id         TEXT NOT NULL DEFAULT '',
    actor_id           TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id          TEXT PRIMARY KEY,
    vendor      TEXT NOT NULL DEFAULT '',
    amount      REAL NOT NULL DEFAULT 0,
    currency    TEXT NOT NULL DEFAULT '',
    category    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    due_date    TIMESTAMP,
    instance_id TEXT NOT NULL DEFAULT '',
    chat_id     TEXT NOT NULL DEFAULT '',
    message_id  TEXT NOT NULL DEFAULT '',
    actor_id    TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL DEFAULT '',
    tags        TEXT NOT NULL DEFAULT '[]',
    instance_id TEXT NOT NULL DEFAULT '',
    chat_id     TEXT NOT NULL DEFAULT '',
    message_id  TEXT NOT NULL DEFAULT '',
    actor_id    TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS labels (
    id          TEXT PRIMARY KEY,
    instance_id TEXT NOT NULL DEFAULT '',
    chat_id     TEXT NOT NULL DEFAULT '',
    message_id  TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS derived_links (
    id                    TEXT PRIMARY KEY,
    derived_entity_id     TEXT NOT NULL,
    entity_type           TEXT NOT NULL,
    rule_id               TEXT NOT NULL,
    triggering_message_id TEXT NOT NULL,
    instance_id           TEXT NOT NULL DEFAULT '',
    link_type             TEXT NOT NULL,
    created_at            TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_links_trigger
    ON derived_links(triggering_message_id, rule_id)
    WHERE link_type = 'trigger';

CREATE INDEX IF NOT EXISTS idx_links_rule ON derived_links(rule_id);
CREATE INDEX IF NOT EXISTS idx_tasks_message ON tasks(message_id);
`
