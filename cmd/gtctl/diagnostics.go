package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/untoldecay/goldenthread/internal/diagnostics"
)

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics",
	Short: "Inspect the archive's diagnostics log",
}

var diagnosticsLogCmd = &cobra.Command{
	Use:   "log <kind> <message>",
	Short: "Append a sanitized diagnostics event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := diagnostics.New(filepath.Dir(archive.Path()))
		defer l.Close()
		return l.Log(args[0], args[1])
	},
}

var diagnosticsTailLines int

var diagnosticsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print the tail of the diagnostics log",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(filepath.Dir(archive.Path()), "diagnostics.log")
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
			if len(lines) > diagnosticsTailLines {
				lines = lines[1:]
			}
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	diagnosticsTailCmd.Flags().IntVar(&diagnosticsTailLines, "lines", 50, "number of trailing lines to print")
	diagnosticsCmd.AddCommand(diagnosticsLogCmd, diagnosticsTailCmd)
	rootCmd.AddCommand(diagnosticsCmd)
}
