package repopg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-mail-server/internal/errors"
)

// migrations are applied in order and must stay idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS mail_account (
		id                        UUID PRIMARY KEY,
		user_id                   TEXT NOT NULL,
		provider                  TEXT NOT NULL,
		provider_account_id       TEXT NOT NULL,
		address                   TEXT NOT NULL,
		access_token              TEXT NOT NULL,
		refresh_token             TEXT,
		access_token_expires_at   TIMESTAMPTZ,
		refresh_token_expires_at  TIMESTAMPTZ,
		last_synced_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT mail_account_provider_identity_key UNIQUE (provider, provider_account_id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS mail_account_address_key ON mail_account (LOWER(address))`,
	`CREATE INDEX IF NOT EXISTS mail_account_user_provider_idx ON mail_account (user_id, provider, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS email_address (
		id          UUID PRIMARY KEY,
		name        TEXT,
		address     TEXT NOT NULL,
		account_id  UUID NOT NULL REFERENCES mail_account(id) ON DELETE CASCADE,
		CONSTRAINT email_address_account_key UNIQUE (account_id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS email_address_address_key ON email_address (LOWER(address))`,
	`CREATE TABLE IF NOT EXISTS mail_label (
		id                 UUID PRIMARY KEY,
		account_id         UUID NOT NULL REFERENCES mail_account(id) ON DELETE CASCADE,
		provider           TEXT NOT NULL,
		provider_label_id  TEXT NOT NULL,
		name               TEXT NOT NULL,
		type               TEXT NOT NULL DEFAULT '',
		messages_total     BIGINT NOT NULL DEFAULT 0,
		messages_unread    BIGINT NOT NULL DEFAULT 0,
		CONSTRAINT mail_label_account_label_key UNIQUE (account_id, provider_label_id)
	)`,
}

// Migrate creates the tables and indexes used by the repositories.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errors.Wrapf(err, "[repopg Migrate] statement %d", i)
		}
	}
	log.Info().Int("statements", len(migrations)).Msg("database migrated")
	return nil
}
