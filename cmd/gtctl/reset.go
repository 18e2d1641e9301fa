package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/archiveerr"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase every imported message, thread, and tag from the archive",
	Long: `reset deletes all archive content (threads, messages, attachments,
reactions, tags, and import history) but keeps the archive file and its
encryption key, so a fresh import can start from an empty archive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return archiveerr.InvalidArgument("reset is destructive; pass --yes to confirm")
		}
		ctx := context.Background()
		tx, err := archive.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, table := range []string{
			"message_tags", "tags", "reactions", "attachments",
			"message_fts", "messages", "thread_members", "threads",
			"recipients", "imports",
		} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return archiveerr.Wrap(archiveerr.KindSqlite, "clear "+table, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("archive reset")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the destructive reset")
	rootCmd.AddCommand(resetCmd)
}
