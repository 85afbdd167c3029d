package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"paimon-cli/internal/history"
	"paimon-cli/internal/shell"
)

// initExecuteCommand adds the execute command to the root command.
func initExecuteCommand() {
	executeCmd := &cobra.Command{
		Use:   "execute",
		Short: "Run shell commands from a YAML script",
		Long: `Run shell commands from a YAML script without prompting.

The connection section may be omitted when --warehouse is given, which also
takes precedence over it. Pagination never pauses.

Script format:
  name: daily check
  connection:
    warehouse: s3://warehouse/paimon
    endpoint: http://localhost:9000
    access_key: minio
    secret_key: minio123
  format: csv
  continue_on_error: false
  commands:
    - show databases
    - count default.users
    - select default.users 10 where age>18

Examples:
  # Execute a script from a file
  paimon-cli execute -f queries.yaml

  # Execute a script from stdin
  cat queries.yaml | paimon-cli execute -f -`,
		RunE: runExecuteCmd,
	}

	executeCmd.Flags().StringP("file", "f", "", "YAML script (use '-' for stdin)")
	flags.AddConnectionFlags(executeCmd)
	if err := executeCmd.MarkFlagRequired("file"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to mark file flag as required: %v\n", err)
	}

	rootCmd.AddCommand(executeCmd)
}

// runExecuteCmd connects to the script's warehouse and runs its commands.
func runExecuteCmd(cmd *cobra.Command, _ []string) error {
	filePath, _ := cmd.Flags().GetString("file")

	var data []byte
	var err error
	if filePath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		path, err := expandPath(filePath)
		if err != nil {
			return err
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	script, err := parseScript(data)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()
	if script.Format != "" && !cmd.Flags().Changed("format") {
		a.settings.Format = script.Format
	}

	cfg, err := scriptStorage(script)
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if script.Name != "" {
		_, _ = fmt.Fprintf(errOut, "\n=== Executing Script: %s ===\n", script.Name)
		if script.Description != "" {
			_, _ = fmt.Fprintf(errOut, "Description: %s\n", script.Description)
		}
	}

	catalog, fio, err := a.connect(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	defer closeQuietly(a.logger, "storage", fio)

	rowCache := a.openCache()
	if rowCache != nil {
		defer closeQuietly(a.logger, "row count cache", rowCache)
	}

	in := shell.NewScannerReader(strings.NewReader(""))
	session := shell.NewSession(catalog, in, cmd.OutOrStdout(), errOut, a.sessionOptions(cfg, flags, rowCache, false))
	return runScript(cmd.Context(), session, script, errOut)
}

// scriptStorage picks the warehouse from the flags or the script.
func scriptStorage(script *Script) (history.StorageConfig, error) {
	if cfg, ok := flags.StorageConfig(); ok {
		return cfg, nil
	}
	if script.Connection == nil {
		return history.StorageConfig{}, fmt.Errorf("script has no connection and no --warehouse was given")
	}
	return script.Connection.StorageConfig()
}
