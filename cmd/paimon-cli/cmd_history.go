package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"paimon-cli/internal/history"
)

// initHistoryCommands adds the history command and its subcommands.
func initHistoryCommands() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Recent warehouse connections",
	}

	historyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent warehouse connections",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	})
	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget all recent warehouse connections",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	})

	rootCmd.AddCommand(historyCmd)
}

// runHistoryList implements the history list command.
func runHistoryList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.history.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", a.history.Path())
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "(No saved configurations)")
		return nil
	}
	for i, entry := range entries {
		_, _ = fmt.Fprintln(out, history.FormatForDisplay(i+1, entry))
	}
	return nil
}

// runHistoryClear implements the history clear command.
func runHistoryClear(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared configuration history at %s\n", a.history.Path())
	return nil
}
