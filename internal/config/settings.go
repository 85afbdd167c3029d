package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File names inside the configuration directory.
const (
	DirName          = ".paimon-cli"
	HistoryFileName  = "config-history.txt"
	SettingsFileName = "settings.yaml"
	CacheFileName    = "cache.db"
)

// Settings holds user tunable behaviour, read from settings.yaml.
type Settings struct {
	// DefaultLimit is the number of rows a select shows when no limit is given
	DefaultLimit int `yaml:"default_limit"`

	// PageSize is the number of rows shown per page in "all" mode
	PageSize int `yaml:"page_size"`

	// MinColumnWidth and MaxColumnWidth bound table column widths
	MinColumnWidth int `yaml:"min_column_width"`
	MaxColumnWidth int `yaml:"max_column_width"`

	// SampleRows caps the rows sampled to size table columns
	SampleRows int `yaml:"sample_rows"`

	// BatchSize is the number of rows requested per read batch
	BatchSize int `yaml:"batch_size"`

	// Format is the output format for query results (table, csv, json)
	Format string `yaml:"format"`

	// Color enables colored table output
	Color bool `yaml:"color"`

	// CacheRowCounts stores count results keyed by snapshot
	CacheRowCounts bool `yaml:"cache_row_counts"`

	// CachePath overrides the row count cache location
	CachePath string `yaml:"cache_path,omitempty"`
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		DefaultLimit:   10,
		PageSize:       5,
		MinColumnWidth: 10,
		MaxColumnWidth: 50,
		SampleRows:     100,
		BatchSize:      1024,
		Format:         "table",
		Color:          true,
		CacheRowCounts: true,
	}
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if s.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", s.DefaultLimit)
	}
	if s.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", s.PageSize)
	}
	if s.MinColumnWidth < 4 || s.MaxColumnWidth < s.MinColumnWidth {
		return fmt.Errorf("invalid column width bounds %d..%d", s.MinColumnWidth, s.MaxColumnWidth)
	}
	if s.SampleRows < 1 {
		return fmt.Errorf("sample_rows must be positive, got %d", s.SampleRows)
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive, got %d", s.BatchSize)
	}
	switch s.Format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("invalid format %q: must be one of: table, csv, json", s.Format)
	}
	return nil
}

// LoadSettings reads settings from path. Keys missing from the file keep their
// default values, and a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid settings file %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings writes settings to path, creating the parent directory if needed.
func SaveSettings(path string, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPermissions); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// DefaultDir returns ~/.paimon-cli.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}
