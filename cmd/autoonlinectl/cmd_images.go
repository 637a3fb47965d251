package main

import (
	"fmt"

	"github.com/automartines/autoonline/internal/listings"
	"github.com/automartines/autoonline/internal/repo/postgres"
	"github.com/automartines/autoonline/internal/storage/images"
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Listing image maintenance",
}

var pruneDryRun bool

// autoonlinectl images prune [--dry-run]
var imagesPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stored images no listing references",
	Long: "Removes image files left behind when a listing insert or update failed " +
		"after its uploads were stored. Uploads of a request that is still running " +
		"look orphaned too, so run it while no listing writes are happening.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, log, pool, err := bootDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store, err := images.Open(ctx, cfg, log)
		if err != nil {
			return err
		}

		svc := listings.NewService(postgres.NewListingsRepo(pool, nil), store, images.Policy{}, log, nil)
		referenced, err := svc.ReferencedImages(ctx)
		if err != nil {
			return fmt.Errorf("collect referenced images: %w", err)
		}

		orphans, err := images.Prune(ctx, store, referenced, pruneDryRun)
		for _, ref := range orphans {
			fmt.Fprintln(cmd.OutOrStdout(), ref)
		}
		if err != nil {
			return err
		}

		verb := "removed"
		if pruneDryRun {
			verb = "would remove"
		}
		log.Info("image prune finished", "driver", store.Driver(), "action", verb, "count", len(orphans))
		return nil
	},
}

func init() {
	imagesPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "only print orphaned refs")
}
