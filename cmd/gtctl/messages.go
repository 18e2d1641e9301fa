package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var messagesLimit int

var messagesCmd = &cobra.Command{
	Use:   "messages <thread-id>",
	Short: "List a thread's messages, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := query.ListMessages(context.Background(), archive.DB, args[0], nil, nil, messagesLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(msgs)
			return nil
		}
		for _, m := range msgs {
			body := ""
			if m.Body != nil {
				body = *m.Body
			}
			fmt.Printf("%s\t%d\t%s\n", m.ID, m.SortTs, body)
		}
		return nil
	},
}

func init() {
	messagesCmd.Flags().IntVar(&messagesLimit, "limit", 50, "maximum messages to return")
	rootCmd.AddCommand(messagesCmd)
}
