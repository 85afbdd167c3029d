package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"paimon-cli/internal/config"
	"paimon-cli/internal/history"
)

// CommandFlags holds all the flags for the CLI commands.
type CommandFlags struct {
	// Common flags
	Debug     bool
	UseColor  bool
	Format    string
	ConfigDir string

	// Connection flags
	Warehouse   string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string
	S3Region    string

	QueryTimeout time.Duration
}

// NewCommandFlags creates a new CommandFlags instance with default values.
func NewCommandFlags() *CommandFlags {
	settings := config.DefaultSettings()

	flags := &CommandFlags{
		UseColor:     settings.Color,
		Format:       settings.Format,
		QueryTimeout: config.DefaultTimeouts().Query,
	}

	if env := os.Getenv(EnvWarehouse); env != "" {
		flags.Warehouse = env
	}

	return flags
}

// AddCommonFlags adds the flags shared by every command.
func (f *CommandFlags) AddCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.ConfigDir, "config-dir", f.ConfigDir, "Directory holding settings, history and cache (default ~/.paimon-cli)")
	cmd.PersistentFlags().BoolVar(&f.Debug, "debug", f.Debug, "Enable debug output")
	cmd.PersistentFlags().StringVarP(&f.Format, "format", "o", f.Format, "Output format for query results (table, csv, json)")
	cmd.PersistentFlags().BoolVar(&f.UseColor, "color", f.UseColor, "Colorize table headers and NULL values")
}

// AddConnectionFlags adds the flags that select a warehouse without prompting.
func (f *CommandFlags) AddConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Warehouse, "warehouse", "w", f.Warehouse, "Warehouse path, local or s3://bucket/path (env "+EnvWarehouse+")")
	cmd.Flags().StringVar(&f.S3AccessKey, "s3-access-key", "", "S3 access key")
	cmd.Flags().StringVar(&f.S3SecretKey, "s3-secret-key", "", "S3 secret key")
	cmd.Flags().StringVar(&f.S3Endpoint, "s3-endpoint", "", "S3 endpoint, e.g. http://localhost:9000")
	cmd.Flags().StringVar(&f.S3Region, "s3-region", "", "S3 region")
	cmd.Flags().DurationVarP(&f.QueryTimeout, "timeout", "t", f.QueryTimeout, "Timeout for a single command (e.g., 30s, 5m, 1h)")
}

// StorageConfig returns the connection described by the flags, or false
// when no warehouse was given.
func (f *CommandFlags) StorageConfig() (history.StorageConfig, bool) {
	warehouse := strings.TrimSpace(f.Warehouse)
	if warehouse == "" {
		return history.StorageConfig{}, false
	}
	if isS3Path(warehouse) {
		return history.NewS3(warehouse, f.S3AccessKey, f.S3SecretKey, f.S3Endpoint, f.S3Region), true
	}
	return history.NewLocal(warehouse), true
}

func isS3Path(p string) bool {
	return strings.HasPrefix(p, "s3://") || strings.HasPrefix(p, "s3a://")
}
