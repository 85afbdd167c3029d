package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"paimon-cli/internal/history"
)

func TestFlagsStorageConfig(t *testing.T) {
	f := &CommandFlags{}
	if _, ok := f.StorageConfig(); ok {
		t.Fatal("no warehouse should mean no configuration")
	}

	f.Warehouse = " /data/wh "
	cfg, ok := f.StorageConfig()
	if !ok || cfg.Type != history.StorageLocal || cfg.Warehouse != "/data/wh" {
		t.Errorf("unexpected local configuration: %s", cfg)
	}

	f = &CommandFlags{Warehouse: "s3://bucket/wh", S3Endpoint: "http://minio:9000", S3Region: "us-east-1"}
	cfg, ok = f.StorageConfig()
	if !ok || cfg.Type != history.StorageS3 || cfg.Warehouse != "s3a://bucket/wh" {
		t.Errorf("unexpected s3 configuration: %s", cfg)
	}
	if cfg.Option(history.OptionRegion) != "us-east-1" {
		t.Errorf("region not carried over: %v", cfg.Options)
	}
}

func TestNewCommandFlagsReadsEnvironment(t *testing.T) {
	t.Setenv(EnvWarehouse, "/env/wh")
	f := NewCommandFlags()
	if f.Warehouse != "/env/wh" {
		t.Errorf("warehouse = %q, want /env/wh", f.Warehouse)
	}
	if f.Format != "table" || !f.UseColor {
		t.Errorf("unexpected defaults: %+v", f)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := expandPath("~/.paimon-cli/cache.db")
	if err != nil {
		t.Fatalf("expandPath failed: %v", err)
	}
	if want := filepath.Join(home, ".paimon-cli/cache.db"); got != want {
		t.Errorf("expandPath = %q, want %q", got, want)
	}

	if got, _ := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed to %q", got)
	}
}

func TestMatchPrefix(t *testing.T) {
	got := matchPrefix([]string{"table", "csv", "json"}, "c")
	if len(got) != 1 || got[0] != "csv" {
		t.Errorf("matchPrefix = %v", got)
	}
	if got := matchPrefix([]string{"table"}, "x"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestWarehouseCandidates(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := history.NewManager(fs, "/cfg", nil)
	if got := warehouseCandidates(m); len(got) != 0 {
		t.Fatalf("empty history should have no candidates, got %v", got)
	}

	if err := m.Save(history.NewLocal("/data/a")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Save(history.NewS3("s3://b/wh", "", "", "", "")); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := warehouseCandidates(m)
	if len(got) != 2 || got[0] != "s3a://b/wh" || got[1] != "/data/a" {
		t.Errorf("candidates = %v, want newest first", got)
	}
}
