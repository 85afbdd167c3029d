package history

import "testing"

func TestNewS3(t *testing.T) {
	cfg := NewS3("s3://bucket/wh", "", "", "", "")
	if cfg.Warehouse != "s3a://bucket/wh" {
		t.Errorf("expected s3a scheme, got %s", cfg.Warehouse)
	}
	if _, ok := cfg.Options[OptionAccessKey]; ok {
		t.Error("empty access key should be omitted")
	}
	if cfg.Option(OptionImpl) == "" || cfg.Option(OptionPathStyleAccess) != "true" {
		t.Errorf("expected fixed S3 options, got %v", cfg.Options)
	}

	kept := NewS3("s3a://bucket/wh", "ak", "sk", "http://e", "r")
	if kept.Warehouse != "s3a://bucket/wh" {
		t.Errorf("s3a path should be unchanged, got %s", kept.Warehouse)
	}
	if len(kept.Options) != 6 {
		t.Errorf("expected 6 options, got %d", len(kept.Options))
	}
}

func TestParseStorageType(t *testing.T) {
	tests := []struct {
		in      string
		want    StorageType
		wantErr bool
	}{
		{"LOCAL", StorageLocal, false},
		{" S3 ", StorageS3, false},
		{"local", "", true},
		{"HDFS", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStorageType(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStorageType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStorageType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStorageConfigString(t *testing.T) {
	cfg := NewS3("s3://b/w", "ak", "topsecret", "", "")
	s := cfg.String()
	want := "StorageConfig{type=S3, warehouse='s3a://b/w', options=4 entries}"
	if s != want {
		t.Errorf("got %q, want %q", s, want)
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		name string
		cfg  StorageConfig
		want string
	}{
		{"local", NewLocal("/tmp/paimon"), "  1. Local: /tmp/paimon"},
		{"s3 with endpoint", NewS3("s3://b/w", "", "", "http://minio:9000", ""), "  1. S3: s3a://b/w (endpoint: http://minio:9000)"},
		{"s3 without endpoint", NewS3("s3://b/w", "", "", "", ""), "  1. S3: s3a://b/w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatForDisplay(1, tt.cfg); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSameAs(t *testing.T) {
	a := NewS3("s3://b/w", "ak1", "sk", "http://e", "")
	b := NewS3("s3://b/w", "ak1", "other", "http://e", "")
	c := NewS3("s3://b/w", "ak2", "sk", "http://e", "")
	if !a.SameAs(b) {
		t.Error("secret key should not affect identity")
	}
	if a.SameAs(c) {
		t.Error("different access keys should be distinct")
	}
	if NewLocal("/a").SameAs(NewLocal("/b")) {
		t.Error("different paths should be distinct")
	}
}
