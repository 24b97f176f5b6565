package storage

// schema is applied on every Open; all statements are idempotent.
//
// Timestamps are stored as fixed-width UTC text (see timeText) so that the
// lexicographic order SQLite applies to TEXT columns matches chronological
// order, which the scheduling queue ordering relies on.
const schema = `
CREATE TABLE IF NOT EXISTS cards (
    card_id      TEXT PRIMARY KEY,
    front        TEXT NOT NULL,
    answer       TEXT NOT NULL,
    short_answer TEXT NOT NULL DEFAULT '[]',
    tags         TEXT NOT NULL DEFAULT '[]',
    position     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS ix_cards_position ON cards (position, card_id);

CREATE TABLE IF NOT EXISTS card_scheduling_info (
    user_id        TEXT NOT NULL,
    card_id        TEXT NOT NULL,
    state          INTEGER NOT NULL DEFAULT 0,
    stability      REAL NOT NULL DEFAULT 0,
    difficulty     REAL NOT NULL DEFAULT 0,
    elapsed_days   INTEGER NOT NULL DEFAULT 0,
    scheduled_days INTEGER NOT NULL DEFAULT 0,
    reps           INTEGER NOT NULL DEFAULT 0,
    lapses         INTEGER NOT NULL DEFAULT 0,
    due            TEXT NOT NULL,
    last_review    TEXT,
    learning_step  INTEGER,
    PRIMARY KEY (user_id, card_id)
);

CREATE INDEX IF NOT EXISTS ix_scheduling_user_due
    ON card_scheduling_info (user_id, due);

CREATE TABLE IF NOT EXISTS review_logs (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id            TEXT NOT NULL,
    card_id            TEXT NOT NULL,
    rating             INTEGER NOT NULL,
    reviewed_at        TEXT NOT NULL,
    review_duration_ms INTEGER
);

CREATE INDEX IF NOT EXISTS ix_review_logs_user_reviewed
    ON review_logs (user_id, reviewed_at);

CREATE TABLE IF NOT EXISTS users (
    id                    TEXT PRIMARY KEY,
    auth_provider         TEXT NOT NULL,
    auth_provider_user_id TEXT NOT NULL,
    email                 TEXT,
    created_at            TEXT NOT NULL,
    updated_at            TEXT NOT NULL,
    UNIQUE (auth_provider, auth_provider_user_id)
);
`
