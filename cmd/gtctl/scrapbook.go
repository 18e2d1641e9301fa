package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var scrapbookLimit int

var scrapbookCmd = &cobra.Command{
	Use:   "scrapbook <tag-id>",
	Short: "List messages tagged with a tag, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := query.ListScrapbookMessages(context.Background(), archive.DB, args[0], nil, nil, scrapbookLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(entries)
			return nil
		}
		for _, e := range entries {
			name := "(unnamed)"
			if e.ThreadName != nil {
				name = *e.ThreadName
			}
			body := ""
			if e.Message.Body != nil {
				body = *e.Message.Body
			}
			marker := ""
			if e.IsDiscontinuous {
				marker = " ..."
			}
			fmt.Printf("%s\t%-20s\t%s%s\n", e.Message.ID, name, body, marker)
		}
		return nil
	},
}

func init() {
	scrapbookCmd.Flags().IntVar(&scrapbookLimit, "limit", 50, "maximum entries to return")
	rootCmd.AddCommand(scrapbookCmd)
}
