// Command gtctl is the goldenthread archive engine's command-line front
// end: importing Signal backups, browsing threads and messages, searching,
// generating media previews, tagging, and scrapbook curation. Grounded on
// the teacher's cmd/bd one-file-per-verb layout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/archivestore"
	"github.com/untoldecay/goldenthread/internal/config"
	"github.com/untoldecay/goldenthread/internal/keystore"
	"github.com/untoldecay/goldenthread/internal/secretstore"
)

var (
	jsonOutput  bool
	archivePath string

	archive *archivestore.Archive
	masterKey keystore.MasterKey
)

var rootCmd = &cobra.Command{
	Use:   "gtctl",
	Short: "Manage a goldenthread message archive",
	Long: `gtctl imports Signal backups into an encrypted local archive and lets
you browse, search, tag, and export what's inside it.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "version", "seed":
			return nil
		}
		if err := config.Initialize(); err != nil {
			return err
		}
		if archivePath == "" {
			archivePath = config.GetString("archive-path")
		}
		if archivePath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve default archive path: %w", err)
			}
			archivePath = home + "/.goldenthread/archive.sqlite"
		}

		var err error
		archive, err = archivestore.Open(archivePath)
		if err != nil {
			return err
		}

		masterKey, err = keystore.LoadOrCreate(secretstore.Keychain{})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if archive != nil {
			return archive.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&archivePath, "archive", "", "path to the archive database (default ~/.goldenthread/archive.sqlite)")
}

func outputJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
