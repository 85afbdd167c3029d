package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Command flags.
var flags = NewCommandFlags()

// rootCmd starts the interactive shell when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:     "paimon-cli",
	Short:   "Browse and query Apache Paimon warehouses",
	Version: Version,
	Long: `Browse and query Apache Paimon warehouses stored on a local filesystem or in S3.

Without a subcommand an interactive shell is started. The warehouse is chosen
from recent connections, entered at the prompt, or given with --warehouse.

Examples:
  # Pick a warehouse interactively
  paimon-cli

  # Open a local warehouse directly
  paimon-cli --warehouse /tmp/paimon

  # Open a MinIO warehouse
  paimon-cli -w s3://warehouse/paimon --s3-endpoint http://localhost:9000 \
    --s3-access-key minio --s3-secret-key minio123

  # Run commands from a script and print CSV
  paimon-cli execute -f queries.yaml -o csv`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if !validFormats[flags.Format] {
			return fmt.Errorf("invalid format %q: must be one of: table, csv, json", flags.Format)
		}
		return nil
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	flags.AddCommonFlags(rootCmd)
	flags.AddConnectionFlags(rootCmd)

	AddCommands()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// AddCommands adds all the commands to the root command.
func AddCommands() {
	initExecuteCommand()
	initHistoryCommands()
	initCacheCommands()

	rootCmd.AddCommand(completionCmd)
	setupCompletion(rootCmd)
}

// errReported is returned by commands that already printed their failure.
var errReported = errors.New("error already reported")
