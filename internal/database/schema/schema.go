package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaSQL contains the merchant database schema initialization script.
// Statements are idempotent so the script is safe to re-run at startup.
const SchemaSQL = `
-- Players
-- Owned by the broader economy system; the merchant only reads balance and
-- performs a conditional debit inside the purchase transaction.
CREATE TABLE IF NOT EXISTS players (
    player_id VARCHAR(64) PRIMARY KEY,
    balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Merchant catalog
CREATE TABLE IF NOT EXISTS merchant_items (
    item_id SERIAL PRIMARY KEY,
    label VARCHAR(100) NOT NULL,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    weight INTEGER NOT NULL DEFAULT 1,
    price BIGINT NOT NULL CHECK (price >= 0),
    ball_id INTEGER NOT NULL,
    special VARCHAR(50)
);

-- Singleton merchant configuration row
CREATE TABLE IF NOT EXISTS merchant_settings (
    settings_id SMALLINT PRIMARY KEY DEFAULT 1 CHECK (settings_id = 1),
    enabled BOOLEAN NOT NULL DEFAULT FALSE,
    items_per_rotation INTEGER NOT NULL DEFAULT 5,
    rotation_minutes INTEGER NOT NULL DEFAULT 60,
    purchase_cooldown_seconds INTEGER NOT NULL DEFAULT 300,
    last_rotation_at TIMESTAMPTZ
);

INSERT INTO merchant_settings (settings_id) VALUES (1) ON CONFLICT DO NOTHING;

-- Rotations are append-only; a new rotation supersedes the previous one
CREATE TABLE IF NOT EXISTS merchant_rotations (
    rotation_id UUID PRIMARY KEY,
    starts_at TIMESTAMPTZ NOT NULL,
    ends_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_merchant_rotations_active
    ON merchant_rotations (ends_at DESC, starts_at DESC);

CREATE TABLE IF NOT EXISTS merchant_rotation_items (
    entry_id BIGSERIAL PRIMARY KEY,
    rotation_id UUID NOT NULL REFERENCES merchant_rotations(rotation_id) ON DELETE CASCADE,
    item_id INTEGER NOT NULL REFERENCES merchant_items(item_id),
    price_snapshot BIGINT NOT NULL,
    UNIQUE (rotation_id, item_id)
);

-- Granted collectibles
CREATE TABLE IF NOT EXISTS ball_instances (
    instance_id UUID PRIMARY KEY,
    player_id VARCHAR(64) NOT NULL REFERENCES players(player_id),
    ball_id INTEGER NOT NULL,
    special VARCHAR(50),
    server_id VARCHAR(64),
    tradeable BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Append-only purchase ledger; latest entry per player drives the cooldown
CREATE TABLE IF NOT EXISTS merchant_purchases (
    purchase_id UUID PRIMARY KEY,
    player_id VARCHAR(64) NOT NULL REFERENCES players(player_id),
    entry_id BIGINT NOT NULL REFERENCES merchant_rotation_items(entry_id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_merchant_purchases_player_created
    ON merchant_purchases (player_id, created_at DESC);
`

// Apply runs the schema script against the pool.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	slog.Default().Info("Database schema applied")
	return nil
}
