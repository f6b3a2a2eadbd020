package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema mirrors the SQLite schema. seq columns keep insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    service_charge DOUBLE PRECISION NOT NULL DEFAULT 10,
    status TEXT NOT NULL DEFAULT 'active',
    table_number TEXT NOT NULL DEFAULT '',
    invite_code TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    paid BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    seq BIGSERIAL,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_members (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
    seq BIGSERIAL,
    PRIMARY KEY (item_id, participant_id)
);

CREATE TABLE IF NOT EXISTS app_settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_owner_id ON sessions(owner_id);
CREATE INDEX IF NOT EXISTS idx_participants_session_id ON participants(session_id);
CREATE INDEX IF NOT EXISTS idx_items_session_id ON items(session_id);
CREATE INDEX IF NOT EXISTS idx_item_members_participant_id ON item_members(participant_id);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
