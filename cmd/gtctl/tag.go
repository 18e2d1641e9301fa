package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/query"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and tag assignments",
}

var tagColor string

var tagCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := query.CreateTag(context.Background(), archive.DB, time.Now().UnixMilli(), args[0], tagColor)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(t)
			return nil
		}
		fmt.Printf("%s\t%s\t%s\n", t.ID, t.Name, t.Color)
		return nil
	},
}

var tagUpdateCmd = &cobra.Command{
	Use:   "update <id> <name>",
	Short: "Rename a tag and/or change its color",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query.UpdateTag(context.Background(), archive.DB, args[0], args[1], tagColor)
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return query.DeleteTag(context.Background(), archive.DB, args[0])
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := query.ListTags(context.Background(), archive.DB)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(tags)
			return nil
		}
		for _, t := range tags {
			fmt.Printf("%s\t%s\t%s\n", t.ID, t.Name, t.Color)
		}
		return nil
	},
}

var tagSetCmd = &cobra.Command{
	Use:   "set <message-id> <tag-id>[,<tag-id>...]",
	Short: "Replace a message's tag set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tagIDs []string
		for _, id := range strings.Split(args[1], ",") {
			if id = strings.TrimSpace(id); id != "" {
				tagIDs = append(tagIDs, id)
			}
		}
		return query.SetMessageTags(context.Background(), archive.DB, args[0], tagIDs, time.Now().UnixMilli())
	},
}

var tagShowCmd = &cobra.Command{
	Use:   "show <message-id>",
	Short: "List the tags applied to a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mt, err := query.MessageTagsFor(context.Background(), archive.DB, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(mt)
			return nil
		}
		for _, t := range mt.Tags {
			fmt.Printf("%s\t%s\n", t.ID, t.Name)
		}
		return nil
	},
}

func init() {
	tagCreateCmd.Flags().StringVar(&tagColor, "color", "#888888", "tag color (hex)")
	tagUpdateCmd.Flags().StringVar(&tagColor, "color", "#888888", "tag color (hex)")
	tagCmd.AddCommand(tagCreateCmd, tagUpdateCmd, tagDeleteCmd, tagListCmd, tagSetCmd, tagShowCmd)
	rootCmd.AddCommand(tagCmd)
}
