package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the archive's aggregate counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := query.GetArchiveStats(context.Background(), archive.DB)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(s)
			return nil
		}
		fmt.Printf("threads:     %d\n", s.Threads)
		fmt.Printf("messages:    %d\n", s.Messages)
		fmt.Printf("recipients:  %d\n", s.Recipients)
		fmt.Printf("attachments: %d\n", s.Attachments)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
