package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "autoonlinectl",
	Short:         "Maintenance commands for the Auto Online API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedAdminCmd)

	imagesCmd.AddCommand(imagesPruneCmd)
	rootCmd.AddCommand(imagesCmd)
}
