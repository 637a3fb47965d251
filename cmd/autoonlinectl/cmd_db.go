package main

import (
	"context"
	"log/slog"

	"github.com/automartines/autoonline/internal/config"
	"github.com/automartines/autoonline/internal/db"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// bootDB loads config and opens the pool.
func bootDB(ctx context.Context) (config.Config, *slog.Logger, *pgxpool.Pool, error) {
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, pool, nil
}

// autoonlinectl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the tables and indexes if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, pool, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := db.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Info("schema up to date")
		return nil
	},
}

// autoonlinectl seed-admin
var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the bootstrap admin account if it is missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, pool, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		return db.EnsureAdminUser(cmd.Context(), pool, cfg, log)
	},
}
