package history

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"paimon-cli/internal/config"
)

func newTestManager(t *testing.T) (*Manager, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return NewManager(fsys, "/home/user/.paimon-cli", nil), fsys
}

func TestLoadMissingFile(t *testing.T) {
	m, _ := newTestManager(t)
	configs, err := m.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("expected empty history, got %d entries", len(configs))
	}
}

func TestSaveAndLoad(t *testing.T) {
	m, fsys := newTestManager(t)

	s3 := NewS3("s3://bucket/warehouse", "AKIA", "secret", "http://minio:9000", "eu-west-1")
	if err := m.Save(s3); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	configs, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(configs))
	}
	got := configs[0]
	if got.Type != StorageS3 || got.Warehouse != "s3a://bucket/warehouse" {
		t.Errorf("unexpected config: %+v", got)
	}
	if got.Option(OptionSecretKey) != "secret" || got.Option(OptionRegion) != "eu-west-1" {
		t.Errorf("options not restored: %v", got.Options)
	}
	if got.Option(OptionPathStyleAccess) != "true" {
		t.Errorf("expected path style access option, got %v", got.Options)
	}

	info, err := fsys.Stat(m.path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != config.SecretFilePermissions {
		t.Errorf("expected mode %o, got %o", config.SecretFilePermissions, info.Mode().Perm())
	}
}

func TestSaveKeepsNewestThree(t *testing.T) {
	m, _ := newTestManager(t)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		if err := m.Save(NewLocal(p)); err != nil {
			t.Fatalf("save %s failed: %v", p, err)
		}
	}

	configs, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	want := []string{"/d", "/c", "/b"}
	if len(configs) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(configs))
	}
	for i, w := range want {
		if configs[i].Warehouse != w {
			t.Errorf("entry %d: got %s, want %s", i, configs[i].Warehouse, w)
		}
	}
}

func TestSaveMovesDuplicateToFront(t *testing.T) {
	m, _ := newTestManager(t)
	for _, p := range []string{"/a", "/b", "/a"} {
		if err := m.Save(NewLocal(p)); err != nil {
			t.Fatalf("save %s failed: %v", p, err)
		}
	}

	configs, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(configs))
	}
	if configs[0].Warehouse != "/a" || configs[1].Warehouse != "/b" {
		t.Errorf("unexpected order: %s, %s", configs[0].Warehouse, configs[1].Warehouse)
	}
}

func TestLoadSkipsInvalidBlocks(t *testing.T) {
	m, fsys := newTestManager(t)
	content := strings.Join([]string{
		"# Paimon CLI Configuration History",
		"",
		"type=HDFS",
		"warehouse=/ignored",
		"---",
		"type=LOCAL",
		"---",
		"type=LOCAL",
		"warehouse=/kept",
		"something else",
		"---",
		"warehouse=s3a://b/w",
		"type=S3",
		"option.fs.s3a.endpoint=http://localhost:9000",
		"option.broken",
	}, "\n")
	if err := afero.WriteFile(fsys, m.path, []byte(content), config.SecretFilePermissions); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	configs, err := m.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 valid entries, got %d: %+v", len(configs), configs)
	}
	if configs[0].Warehouse != "/kept" {
		t.Errorf("unexpected first entry: %+v", configs[0])
	}
	if configs[1].Type != StorageS3 || configs[1].Option(OptionEndpoint) != "http://localhost:9000" {
		t.Errorf("unexpected second entry: %+v", configs[1])
	}
}

func TestEncodeIsSorted(t *testing.T) {
	cfg := StorageConfig{
		Type:      StorageS3,
		Warehouse: "s3a://b/w",
		Options:   map[string]string{"z": "1", "a": "2"},
	}
	out := string(Encode([]StorageConfig{NewLocal("/tmp/wh"), cfg}))

	if !strings.HasPrefix(out, "# Paimon CLI Configuration History\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "# This file stores the last 3 configurations\n") {
		t.Errorf("missing capacity line: %q", out)
	}
	if !strings.Contains(out, "warehouse=/tmp/wh\n---\ntype=S3\n") {
		t.Errorf("missing separator between blocks: %q", out)
	}
	if strings.Index(out, "option.a=2") > strings.Index(out, "option.z=1") {
		t.Errorf("options not sorted: %q", out)
	}
}

func TestClear(t *testing.T) {
	m, fsys := newTestManager(t)
	if err := m.Clear(); err != nil {
		t.Fatalf("clearing a missing file should succeed: %v", err)
	}
	if err := m.Save(NewLocal("/tmp")); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if ok, _ := afero.Exists(fsys, m.path); ok {
		t.Error("history file should be removed")
	}
}
