package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"paimon-cli/internal/cache"
	"paimon-cli/internal/config"
	"paimon-cli/internal/formatter"
	"paimon-cli/internal/history"
	"paimon-cli/internal/logging"
	"paimon-cli/internal/paimon"
	"paimon-cli/internal/shell"
	"paimon-cli/internal/storage"
)

// app holds what every command needs: settings, logger and the
// configuration directory.
type app struct {
	dir      string
	settings config.Settings
	logger   *zap.SugaredLogger
	history  *history.Manager
}

// newApp loads settings from the configuration directory and applies flag
// overrides. Only flags set on the command line win over the settings file.
func newApp(cmd *cobra.Command, f *CommandFlags) (*app, error) {
	logger := logging.New(f.Debug)

	dir, err := configDir(f.ConfigDir)
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(filepath.Join(dir, config.SettingsFileName))
	if err != nil {
		logger.Warnf("using default settings: %v", err)
	}
	if cmd.Flags().Changed("format") {
		settings.Format = f.Format
	}
	if cmd.Flags().Changed("color") {
		settings.Color = f.UseColor
	}
	if !settings.Color {
		color.NoColor = true
	}

	return &app{
		dir:      dir,
		settings: settings,
		logger:   logger,
		history:  history.NewManager(afero.NewOsFs(), dir, logger),
	}, nil
}

func configDir(flagValue string) (string, error) {
	if flagValue != "" {
		return expandPath(flagValue)
	}
	return config.DefaultDir()
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// formatOptions turns the settings into result formatting options.
func (a *app) formatOptions() formatter.FormatOptions {
	opts := formatter.DefaultFormatOptions()
	opts.Format = a.settings.Format
	opts.Colorize = a.settings.Color && !color.NoColor
	opts.MinWidth = a.settings.MinColumnWidth
	opts.MaxWidth = a.settings.MaxColumnWidth
	return opts
}

// cachePath returns the row count cache location.
func (a *app) cachePath() (string, error) {
	if a.settings.CachePath != "" {
		return expandPath(a.settings.CachePath)
	}
	return filepath.Join(a.dir, config.CacheFileName), nil
}

// openCache opens the row count cache. The cache is optional: when it is
// disabled or cannot be opened, counts always scan.
func (a *app) openCache() *cache.Cache {
	if !a.settings.CacheRowCounts {
		return nil
	}
	path, err := a.cachePath()
	if err != nil {
		a.logger.Warnf("row count cache disabled: %v", err)
		return nil
	}
	c, err := cache.OpenWithDependencies(cache.DefaultConfig().WithCachePath(path), a.logger, afero.NewOsFs())
	if err != nil {
		a.logger.Warnf("row count cache disabled: %v", err)
		return nil
	}
	return c
}

// connect opens the warehouse storage and checks that it can be listed.
func (a *app) connect(ctx context.Context, cfg history.StorageConfig) (*paimon.Catalog, storage.FileIO, error) {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultTimeouts().Connect)
	defer cancel()

	fio, err := storage.Open(ctx, cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}
	catalog := paimon.NewCatalog(fio, a.logger)
	if _, err := catalog.ListDatabases(ctx); err != nil {
		_ = fio.Close()
		return nil, nil, err
	}
	return catalog, fio, nil
}

// sessionOptions builds the shell options for a connected warehouse.
func (a *app) sessionOptions(cfg history.StorageConfig, f *CommandFlags, c *cache.Cache, interactive bool) shell.Options {
	return shell.Options{
		Warehouse:    cfg.Warehouse,
		Settings:     a.settings,
		Format:       a.formatOptions(),
		Cache:        c,
		Interactive:  interactive,
		QueryTimeout: f.QueryTimeout,
		Logger:       a.logger,
	}
}

// stdinIsTerminal reports whether commands are typed by a user.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// closeQuietly closes c, logging failures.
func closeQuietly(logger *zap.SugaredLogger, what string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		logger.Warnf("failed to close %s: %v", what, err)
	}
}

// printErr writes a line to stderr.
func printErr(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
