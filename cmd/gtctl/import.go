package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/decoder"
	"github.com/untoldecay/goldenthread/internal/importer"
	"github.com/untoldecay/goldenthread/internal/keystore"
)

var importDecoderBinary string

var importCmd = &cobra.Command{
	Use:   "import <backup-file> <passphrase>",
	Short: "Import a Signal backup into the archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		attachKey, err := keystore.AttachmentKey(masterKey)
		if err != nil {
			return err
		}

		result, err := importer.Import(context.Background(), archive, importer.Options{
			SourcePath:     args[0],
			Passphrase:     args[1],
			AttachmentsDir: filepath.Join(filepath.Dir(archive.Path()), "attachments"),
			Key:            [32]byte(attachKey),
			Decoder:        decoder.NewExternal(importDecoderBinary),
			Progress: func(msg string) {
				if !jsonOutput {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
			},
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(result)
		} else {
			fmt.Printf("Import %s complete: %s\n", result.ImportID, result.StatsJSON)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importDecoderBinary, "decoder-binary", "", "path to the signalbackup decoder binary (default: search PATH)")
	rootCmd.AddCommand(importCmd)
}
