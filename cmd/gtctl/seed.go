package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/archivestore"
	"github.com/untoldecay/goldenthread/internal/config"
	"github.com/untoldecay/goldenthread/internal/seed"
)

var (
	seedPrimaryCount     int64
	seedSecondaryThreads int64
)

// seed is exempt from the root command's normal archive-opening
// PersistentPreRunE (it needs to work against a brand new archive path
// before any real import has happened), so it resolves and opens its own
// archive handle rather than relying on the shared global.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the archive with small deterministic demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return err
		}
		path := archivePath
		if path == "" {
			path = config.GetString("archive-path")
		}
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve default archive path: %w", err)
			}
			path = home + "/.goldenthread/archive.sqlite"
		}

		a, err := archivestore.Open(path)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := seed.Demo(context.Background(), a.DB, seedPrimaryCount, seedSecondaryThreads); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("seeded %s with %d primary messages and %d secondary threads\n", path, seedPrimaryCount, seedSecondaryThreads)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Int64Var(&seedPrimaryCount, "primary-count", 30, "number of messages in the primary demo thread")
	seedCmd.Flags().Int64Var(&seedSecondaryThreads, "secondary-threads", 3, "number of additional one-message demo threads")
	rootCmd.AddCommand(seedCmd)
}
