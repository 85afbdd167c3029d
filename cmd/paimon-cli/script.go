package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"paimon-cli/internal/history"
	"paimon-cli/internal/shell"
)

// ConnectionConfig is the warehouse section of a script.
type ConnectionConfig struct {
	Type      string `yaml:"type,omitempty"`
	Warehouse string `yaml:"warehouse"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
}

// Script is a list of shell commands run against one warehouse.
type Script struct {
	Name            string            `yaml:"name,omitempty"`
	Description     string            `yaml:"description,omitempty"`
	Connection      *ConnectionConfig `yaml:"connection,omitempty"`
	Format          string            `yaml:"format,omitempty"`
	ContinueOnError bool              `yaml:"continue_on_error,omitempty"`
	Commands        []string          `yaml:"commands"`
}

// StorageConfig converts the connection section. The type defaults to s3
// for s3:// and s3a:// paths and local otherwise.
func (c ConnectionConfig) StorageConfig() (history.StorageConfig, error) {
	warehouse := strings.TrimSpace(c.Warehouse)
	if warehouse == "" {
		return history.StorageConfig{}, fmt.Errorf("warehouse is required in connection")
	}

	kind := strings.ToLower(strings.TrimSpace(c.Type))
	if kind == "" {
		kind = "local"
		if isS3Path(warehouse) {
			kind = "s3"
		}
	}

	switch kind {
	case "local":
		return history.NewLocal(warehouse), nil
	case "s3":
		return history.NewS3(warehouse, c.AccessKey, c.SecretKey, c.Endpoint, c.Region), nil
	default:
		return history.StorageConfig{}, fmt.Errorf("invalid connection type %q: must be local or s3", c.Type)
	}
}

// parseScript decodes and validates a YAML script.
func parseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	var commands []string
	for _, c := range script.Commands {
		if c = strings.TrimSpace(c); c != "" {
			commands = append(commands, c)
		}
	}
	if len(commands) == 0 {
		return nil, fmt.Errorf("script has no commands")
	}
	script.Commands = commands

	if script.Format != "" && !validFormats[script.Format] {
		return nil, fmt.Errorf("invalid format %q: must be one of: table, csv, json", script.Format)
	}
	return &script, nil
}

// runScript executes every command of the script in order. Command errors
// are printed to errOut; unless ContinueOnError is set the first one stops
// the script. An exit or quit command ends the script early.
func runScript(ctx context.Context, session *shell.Session, script *Script, errOut io.Writer) error {
	failed := 0
	for i, line := range script.Commands {
		err := session.Execute(ctx, line)
		if errors.Is(err, shell.ErrExit) {
			return nil
		}
		if err == nil {
			continue
		}
		_, _ = fmt.Fprintln(errOut, err)
		if !script.ContinueOnError {
			return fmt.Errorf("command %d (%s) failed", i+1, line)
		}
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(script.Commands))
	}
	return nil
}
