package cache

import (
	"strings"
	"testing"
)

func TestFormatEntries(t *testing.T) {
	entries := []RowCount{
		{Warehouse: "/a", Table: "db.t1", SnapshotID: 3, Rows: 10, CountedAt: 0},
		{Warehouse: "/a", Table: "db.t2", SnapshotID: 1, Rows: 0, CountedAt: 60},
		{Warehouse: "/b", Table: "x.y", SnapshotID: 9, Rows: 5, CountedAt: 86400},
	}
	got := FormatEntries(entries)
	want := "\n/a:\n" +
		"  db.t1 (rows: 10, snapshot: 3, counted: 1970-01-01 00:00:00 UTC)\n" +
		"  db.t2 (rows: 0, snapshot: 1, counted: 1970-01-01 00:01:00 UTC)\n" +
		"\n/b:\n" +
		"  x.y (rows: 5, snapshot: 9, counted: 1970-01-02 00:00:00 UTC)\n"
	if got != want {
		t.Errorf("FormatEntries() =\n%s\nwant\n%s", got, want)
	}
}

func TestSummary(t *testing.T) {
	cache := openTestCache(t)

	out, err := cache.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !strings.Contains(out, "(empty)") {
		t.Errorf("Expected empty marker, got %q", out)
	}

	if err := cache.Upsert(RowCount{Warehouse: "/wh", Table: "db.t", SnapshotID: 2, Rows: 8}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	out, err = cache.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !strings.HasPrefix(out, "Row count cache: "+cache.Path()) {
		t.Errorf("Unexpected header: %q", out)
	}
	if !strings.Contains(out, "  db.t (rows: 8, snapshot: 2") {
		t.Errorf("Expected entry line, got %q", out)
	}
}
