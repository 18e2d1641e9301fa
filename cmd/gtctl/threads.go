package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var threadsLimit int
var threadsOffset int

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List archived threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		threads, err := query.ListThreads(context.Background(), archive.DB, threadsLimit, threadsOffset)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(threads)
			return nil
		}
		for _, t := range threads {
			name := "(unnamed)"
			if t.Name != nil {
				name = *t.Name
			}
			fmt.Printf("%s\t%-30s\t%d messages\n", t.ID, name, t.MessageCount)
		}
		return nil
	},
}

func init() {
	threadsCmd.Flags().IntVar(&threadsLimit, "limit", 50, "maximum threads to return")
	threadsCmd.Flags().IntVar(&threadsOffset, "offset", 0, "number of threads to skip")
	rootCmd.AddCommand(threadsCmd)
}
