package shell

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"paimon-cli/internal/history"
)

func prompt(t *testing.T, input string, saved []history.StorageConfig) (history.StorageConfig, string, error) {
	t.Helper()
	var out bytes.Buffer
	cfg, err := PromptStorage(NewScannerReader(strings.NewReader(input)), &out, saved)
	return cfg, out.String(), err
}

func TestPromptLocal(t *testing.T) {
	cfg, out, err := prompt(t, "1\n  /tmp/paimon  \n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != history.StorageLocal || cfg.Warehouse != "/tmp/paimon" {
		t.Errorf("got %s", cfg)
	}
	want := "\nPlease select storage type:\n  1. Local (Local File System)\n  2. S3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPromptS3(t *testing.T) {
	cfg, _, err := prompt(t, "2\ns3://bucket/wh\nAK\n\nhttp://minio:9000\n\n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != history.StorageS3 || cfg.Warehouse != "s3a://bucket/wh" {
		t.Errorf("got %s", cfg)
	}
	if cfg.Option(history.OptionAccessKey) != "AK" || cfg.Option(history.OptionEndpoint) != "http://minio:9000" {
		t.Errorf("options = %v", cfg.Options)
	}
	if _, ok := cfg.Options[history.OptionSecretKey]; ok {
		t.Errorf("empty secret key should be omitted: %v", cfg.Options)
	}
}

func TestPromptHistory(t *testing.T) {
	saved := []history.StorageConfig{
		history.NewLocal("/data/a"),
		history.NewS3("s3://b/wh", "", "", "http://minio:9000", ""),
	}

	cfg, out, err := prompt(t, "2\n", saved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.SameAs(saved[1]) {
		t.Errorf("got %s, want %s", cfg, saved[1])
	}
	want := "Recent configurations:\n" +
		"  1. Local: /data/a\n" +
		"  2. S3: s3a://b/wh (endpoint: http://minio:9000)\n" +
		"  3. Enter new configuration\n" +
		"Using configuration: " + saved[1].String() + "\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	cfg, _, err = prompt(t, "3\n1\n/data/new\n", saved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Warehouse != "/data/new" {
		t.Errorf("got %s", cfg)
	}
}

func TestPromptInvalid(t *testing.T) {
	saved := []history.StorageConfig{history.NewLocal("/data/a")}

	tests := []struct {
		name  string
		input string
		saved []history.StorageConfig
		want  string
	}{
		{"history out of range", "5\n", saved, "Invalid option"},
		{"history not a number", "x\n", saved, "Invalid option"},
		{"storage type", "3\n", nil, "Invalid option"},
		{"empty local path", "1\n\n", nil, "Warehouse path cannot be empty"},
		{"empty s3 path", "2\n\n\n\n\n\n", nil, "Warehouse path cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := prompt(t, tt.input, tt.saved)
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestPromptCancelled(t *testing.T) {
	for _, input := range []string{"", "2\ns3://b/wh\n"} {
		_, _, err := prompt(t, input, nil)
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("input %q: error = %v, want ErrCancelled", input, err)
		}
	}
}

func TestPrintWelcome(t *testing.T) {
	var out bytes.Buffer
	PrintWelcome(&out)
	want := "========================================\n    Welcome to Paimon CLI\n========================================\n\n"
	if out.String() != want {
		t.Errorf("banner = %q", out.String())
	}
}
