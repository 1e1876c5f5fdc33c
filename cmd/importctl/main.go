// Command importctl normalizes bank CSV/XLSX exports offline, or imports
// them straight into the database without going through the HTTP API.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "importctl",
		Short: "Normalize and import bank statement exports",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log row-level warnings")

	logger := func(cmd *cobra.Command) *slog.Logger {
		level := slog.LevelError
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(newNormalizeCommand(logger))
	rootCmd.AddCommand(newImportCommand(logger))

	return rootCmd
}
