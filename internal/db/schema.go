package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied in order on every start; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL DEFAULT '',
		last_name     TEXT NOT NULL DEFAULT '',
		full_name     TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('admin', 'customer')),
		phone         TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT '',
		postal_code   TEXT NOT NULL DEFAULT '',
		country       TEXT NOT NULL DEFAULT 'Deutschland',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_uniq ON users (lower(email))`,

	`CREATE TABLE IF NOT EXISTS listings (
		id                        BIGSERIAL PRIMARY KEY,
		user_id                   BIGINT NOT NULL REFERENCES users(id),
		title                     TEXT NOT NULL,
		description               TEXT NOT NULL DEFAULT '',
		category                  TEXT NOT NULL DEFAULT 'sale',
		condition                 TEXT NOT NULL DEFAULT 'used'
		                          CHECK (condition IN ('used', 'new', 'oldtimer', 'preowned')),
		price                     DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		make                      TEXT NOT NULL DEFAULT '',
		model                     TEXT NOT NULL DEFAULT '',
		year                      INTEGER,
		first_registration        TEXT NOT NULL DEFAULT '',
		mileage                   INTEGER,
		power_ps                  INTEGER,
		power_kw                  INTEGER,
		displacement              INTEGER,
		cylinders                 INTEGER,
		fuel_type                 TEXT NOT NULL DEFAULT '',
		transmission              TEXT NOT NULL DEFAULT '',
		gears                     INTEGER,
		drive_type                TEXT NOT NULL DEFAULT '',
		fuel_consumption_city     DOUBLE PRECISION,
		fuel_consumption_highway  DOUBLE PRECISION,
		fuel_consumption_combined DOUBLE PRECISION,
		co2_emissions             INTEGER,
		emission_class            TEXT NOT NULL DEFAULT '',
		emission_sticker          TEXT NOT NULL DEFAULT '',
		color                     TEXT NOT NULL DEFAULT '',
		color_manufacturer        TEXT NOT NULL DEFAULT '',
		interior_color            TEXT NOT NULL DEFAULT '',
		interior_type             TEXT NOT NULL DEFAULT '',
		doors                     INTEGER,
		seats                     INTEGER,
		previous_owners           INTEGER,
		full_service_history      BOOLEAN NOT NULL DEFAULT false,
		non_smoking_vehicle       BOOLEAN NOT NULL DEFAULT false,
		features                  TEXT[] NOT NULL DEFAULT '{}',
		safety_features           TEXT[] NOT NULL DEFAULT '{}',
		comfort_features          TEXT[] NOT NULL DEFAULT '{}',
		entertainment_features    TEXT[] NOT NULL DEFAULT '{}',
		extras_features           TEXT[] NOT NULL DEFAULT '{}',
		parking_assistance        TEXT[] NOT NULL DEFAULT '{}',
		availability              TEXT NOT NULL DEFAULT '',
		vehicle_type              TEXT NOT NULL DEFAULT '',
		body_type                 TEXT NOT NULL DEFAULT '',
		climatisation             TEXT NOT NULL DEFAULT '',
		sold                      BOOLEAN NOT NULL DEFAULT false,
		images                    TEXT[] NOT NULL DEFAULT '{}',
		created_at                TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS listings_created_idx ON listings (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS listings_user_idx ON listings (user_id)`,

	`CREATE TABLE IF NOT EXISTS contacts (
		id           BIGSERIAL PRIMARY KEY,
		from_user_id BIGINT NOT NULL REFERENCES users(id),
		to_user_id   BIGINT NOT NULL REFERENCES users(id),
		listing_id   BIGINT REFERENCES listings(id) ON DELETE SET NULL,
		message      TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the tables and indexes that do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
