package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportMetadataCmd = &cobra.Command{
	Use:   "export-metadata <path>",
	Short: "Write a goldenthread.toml sidecar summarizing the archive's contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := archive.WriteMetadataSidecar(context.Background(), args[0]); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Printf("wrote %s\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportMetadataCmd)
}
