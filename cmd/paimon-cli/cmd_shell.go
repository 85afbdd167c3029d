package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"paimon-cli/internal/history"
	"paimon-cli/internal/shell"
)

// runShell connects to a warehouse and runs the interactive command loop.
func runShell(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	interactive := stdinIsTerminal()

	var in shell.LineReader
	if interactive {
		rl, err := shell.NewReadlineReader()
		if err != nil {
			return err
		}
		defer closeQuietly(a.logger, "terminal", rl)
		in = rl
	} else {
		in = shell.NewScannerReader(cmd.InOrStdin())
	}

	shell.PrintWelcome(out)
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n\n", a.history.Path())

	cfg, err := chooseStorage(a, in, out)
	if errors.Is(err, shell.ErrCancelled) {
		_, _ = fmt.Fprintln(out, "\nOperation cancelled")
		return nil
	}
	if err != nil {
		printErr(cmd, "%v", err)
		return errReported
	}

	_, _ = fmt.Fprintln(out, "\nConnecting to storage...")
	catalog, fio, err := a.connect(cmd.Context(), cfg)
	if err != nil {
		printErr(cmd, "Storage initialization failed: %v", err)
		printErr(cmd, "Storage initialization failed, exiting")
		return errReported
	}
	defer closeQuietly(a.logger, "storage", fio)

	_, _ = fmt.Fprintln(out, "Storage connected successfully!")
	_, _ = fmt.Fprintf(out, "Configuration: %s\n\n", cfg)
	if err := a.history.Save(cfg); err != nil {
		a.logger.Warnf("failed to save configuration history: %v", err)
	}

	rowCache := a.openCache()
	if rowCache != nil {
		defer closeQuietly(a.logger, "row count cache", rowCache)
	}

	session := shell.NewSession(catalog, in, out, cmd.ErrOrStderr(), a.sessionOptions(cfg, flags, rowCache, interactive))
	return session.Run(cmd.Context())
}

// chooseStorage returns the warehouse given on the command line, or asks
// the user to pick one.
func chooseStorage(a *app, in shell.LineReader, out io.Writer) (history.StorageConfig, error) {
	if cfg, ok := flags.StorageConfig(); ok {
		_, _ = fmt.Fprintf(out, "Using configuration: %s\n", cfg)
		return cfg, nil
	}

	saved, err := a.history.Load()
	if err != nil {
		a.logger.Warnf("failed to load configuration history: %v", err)
		saved = nil
	}
	return shell.PromptStorage(in, out, saved)
}
