package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/automartines/autoonline/internal/config"
	"github.com/automartines/autoonline/internal/domain/user"
	"github.com/automartines/autoonline/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap admin when no row with its email
// exists. An existing row only gets empty name fields filled in; its
// password and role are left alone.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, log *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	var id int64
	var first, last string

	err := pool.QueryRow(ctx,
		`SELECT id, first_name, last_name FROM users WHERE lower(email) = $1`, email,
	).Scan(&id, &first, &last)

	if err == nil {
		if first != "" && last != "" {
			return nil
		}
		if first == "" {
			first = cfg.AdminFirstName
		}
		if last == "" {
			last = cfg.AdminLastName
		}
		_, err = pool.Exec(ctx,
			`UPDATE users SET first_name = $2, last_name = $3, full_name = $4, updated_at = NOW() WHERE id = $1`,
			id, first, last, user.JoinName(first, last),
		)
		if err == nil {
			log.Info("admin names filled in", "email", email)
		}
		return err
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, full_name, role, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
		email, hash, cfg.AdminFirstName, cfg.AdminLastName,
		user.JoinName(cfg.AdminFirstName, cfg.AdminLastName), user.RoleAdmin, user.DefaultCountry,
	)

	if err == nil {
		log.Info("admin account created", "email", email)
	}
	return err
}
