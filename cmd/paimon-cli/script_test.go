package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"paimon-cli/internal/formatter"
	"paimon-cli/internal/history"
	"paimon-cli/internal/paimon"
	"paimon-cli/internal/paimon/paimontest"
	"paimon-cli/internal/shell"
)

func TestParseScript(t *testing.T) {
	data := []byte(`
name: nightly
description: row counts
connection:
  warehouse: s3://bucket/wh
  endpoint: http://localhost:9000
  access_key: ak
format: csv
continue_on_error: true
commands:
  - show databases
  - "  "
  - select db.users 3 where age > 30
`)

	script, err := parseScript(data)
	if err != nil {
		t.Fatalf("parseScript failed: %v", err)
	}
	if script.Name != "nightly" || script.Format != "csv" || !script.ContinueOnError {
		t.Errorf("unexpected script header: %+v", script)
	}
	want := []string{"show databases", "select db.users 3 where age > 30"}
	if strings.Join(script.Commands, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", script.Commands, want)
	}

	cfg, err := script.Connection.StorageConfig()
	if err != nil {
		t.Fatalf("StorageConfig failed: %v", err)
	}
	if cfg.Type != history.StorageS3 || cfg.Warehouse != "s3a://bucket/wh" {
		t.Errorf("unexpected storage config: %s", cfg)
	}
	if cfg.Option(history.OptionEndpoint) != "http://localhost:9000" || cfg.Option(history.OptionAccessKey) != "ak" {
		t.Errorf("unexpected options: %v", cfg.Options)
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"invalid yaml", "commands: [", "failed to parse script"},
		{"no commands", "name: empty\n", "script has no commands"},
		{"blank commands", "commands:\n  - ''\n", "script has no commands"},
		{"bad format", "format: xml\ncommands: [help]\n", `invalid format "xml"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScript([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConnectionStorageConfig(t *testing.T) {
	tests := []struct {
		name     string
		conn     ConnectionConfig
		wantType history.StorageType
		wantErr  bool
	}{
		{"local path", ConnectionConfig{Warehouse: "/tmp/paimon"}, history.StorageLocal, false},
		{"s3a path", ConnectionConfig{Warehouse: "s3a://b/wh"}, history.StorageS3, false},
		{"explicit type", ConnectionConfig{Type: "S3", Warehouse: "bucket/wh"}, history.StorageS3, false},
		{"missing warehouse", ConnectionConfig{Type: "local"}, "", true},
		{"unknown type", ConnectionConfig{Type: "hdfs", Warehouse: "/x"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.conn.StorageConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Type != tt.wantType {
				t.Errorf("type = %s, want %s", cfg.Type, tt.wantType)
			}
		})
	}
}

func newScriptSession(t *testing.T, out, errOut *bytes.Buffer) *shell.Session {
	t.Helper()
	w := paimontest.New(t)
	w.UsersTable()
	return shell.NewSession(paimon.NewCatalog(w.FileIO(), nil), shell.NewScannerReader(strings.NewReader("")), out, errOut, shell.Options{
		Format: formatter.FormatOptions{Format: formatter.FormatCSV},
	})
}

func TestRunScript(t *testing.T) {
	var out, errOut bytes.Buffer
	session := newScriptSession(t, &out, &errOut)

	script := &Script{Commands: []string{"count db.users", "select db.users 1 where name = Alice"}}
	if err := runScript(context.Background(), session, script, &errOut); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}
	if !strings.Contains(out.String(), "Total rows in table db.users: 5") {
		t.Errorf("missing count output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1,Alice,25,90.5,true,2024-01-01\n") {
		t.Errorf("missing selected row:\n%s", out.String())
	}
}

func TestRunScriptStopsOnError(t *testing.T) {
	var out, errOut bytes.Buffer
	session := newScriptSession(t, &out, &errOut)

	script := &Script{Commands: []string{"desc db.missing", "show databases"}}
	err := runScript(context.Background(), session, script, &errOut)
	if err == nil || !strings.Contains(err.Error(), "command 1 (desc db.missing) failed") {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(errOut.String(), "Table does not exist: db.missing") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if strings.Contains(out.String(), "Database List:") {
		t.Errorf("commands after a failure must not run:\n%s", out.String())
	}
}

func TestRunScriptContinueOnError(t *testing.T) {
	var out, errOut bytes.Buffer
	session := newScriptSession(t, &out, &errOut)

	script := &Script{
		ContinueOnError: true,
		Commands:        []string{"desc db.missing", "show databases", "bogus"},
	}
	err := runScript(context.Background(), session, script, &errOut)
	if err == nil || err.Error() != "2 of 3 commands failed" {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(out.String(), "Database List:") {
		t.Errorf("show databases should still run:\n%s", out.String())
	}
}

func TestRunScriptExit(t *testing.T) {
	var out, errOut bytes.Buffer
	session := newScriptSession(t, &out, &errOut)

	script := &Script{Commands: []string{"exit", "desc db.missing"}}
	if err := runScript(context.Background(), session, script, &errOut); err != nil {
		t.Fatalf("runScript failed: %v", err)
	}
	if errOut.Len() != 0 {
		t.Errorf("nothing should run after exit, stderr = %q", errOut.String())
	}
}
