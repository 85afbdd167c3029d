package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paimon-cli/internal/history"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `Generate shell completion script for paimon-cli.

To load completions:

Bash:
  $ source <(paimon-cli completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ paimon-cli completion bash > /etc/bash_completion.d/paimon-cli
  # macOS:
  $ paimon-cli completion bash > /usr/local/etc/bash_completion.d/paimon-cli

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ paimon-cli completion zsh > "${fpath[1]}/_paimon-cli"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ paimon-cli completion fish | source

  # To load completions for each session, execute once:
  $ paimon-cli completion fish > ~/.config/fish/completions/paimon-cli.fish

PowerShell:
  PS> paimon-cli completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagParsing:    true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(out)
		case "zsh":
			err = cmd.Root().GenZshCompletion(out)
		case "fish":
			err = cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletion(out)
		}
		if err != nil {
			return fmt.Errorf("failed to generate %s completion: %w", args[0], err)
		}
		return nil
	},
}

// matchPrefix returns the candidates starting with toComplete.
func matchPrefix(candidates []string, toComplete string) []string {
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	return matches
}

// formatCompletion provides completion for output format options.
func formatCompletion(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return matchPrefix([]string{"table", "csv", "json"}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// warehouseCandidates lists the warehouses of recent connections.
func warehouseCandidates(m *history.Manager) []string {
	entries, err := m.Load()
	if err != nil {
		return nil
	}
	warehouses := make([]string, 0, len(entries))
	for _, e := range entries {
		warehouses = append(warehouses, e.Warehouse)
	}
	return warehouses
}

// warehouseCompletion offers recent warehouses and falls back to file names.
func warehouseCompletion(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := newApp(cmd, flags)
	if err != nil {
		return nil, cobra.ShellCompDirectiveDefault
	}
	matches := matchPrefix(warehouseCandidates(a.history), toComplete)
	if len(matches) == 0 {
		return nil, cobra.ShellCompDirectiveFilterDirs
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}

// setupCompletion registers flag completion on cmd and its subcommands.
func setupCompletion(cmd *cobra.Command) {
	if cmd.PersistentFlags().Lookup("format") != nil {
		if err := cmd.RegisterFlagCompletionFunc("format", formatCompletion); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting up format completion: %v\n", err)
		}
	}
	if cmd.Flags().Lookup("warehouse") != nil {
		if err := cmd.RegisterFlagCompletionFunc("warehouse", warehouseCompletion); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting up warehouse completion: %v\n", err)
		}
	}
	for _, sub := range cmd.Commands() {
		setupCompletion(sub)
	}
}
