package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var (
	searchThreadID string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search <fts-query>",
	Short: "Full-text search over message bodies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var threadID *string
		if searchThreadID != "" {
			threadID = &searchThreadID
		}
		hits, err := query.SearchMessages(context.Background(), archive.DB, args[0], threadID, searchLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(hits)
			return nil
		}
		for _, h := range hits {
			body := ""
			if h.Message.Body != nil {
				body = *h.Message.Body
			}
			fmt.Printf("%s\t%.4f\t%s\n", h.Message.ID, h.Rank, body)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchThreadID, "thread", "", "restrict the search to one thread")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "maximum hits to return")
	rootCmd.AddCommand(searchCmd)
}
