package cache

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.etcd.io/bbolt"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "test_cache.db"))
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := cache.Close(); closeErr != nil {
			t.Logf("Warning: failed to close cache: %v", closeErr)
		}
	})
	return cache
}

func TestOpen(t *testing.T) {
	tmpDir := t.TempDir()
	cachePath := filepath.Join(tmpDir, "nested", "test_cache.db")
	config := DefaultConfig().WithCachePath(cachePath)

	cache, err := OpenWithConfig(config)
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	if cache.db == nil {
		t.Fatal("Cache database is nil")
	}
	if cache.Path() != cachePath {
		t.Errorf("Path() = %q, want %q", cache.Path(), cachePath)
	}
	if err := cache.Upsert(RowCount{Warehouse: "/wh", Table: "db.t", SnapshotID: 1, Rows: 3}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Logf("Warning: failed to close cache: %v", err)
	}

	// Entries survive reopening
	cache2, err := OpenWithConfig(config)
	if err != nil {
		t.Fatalf("Failed to reopen cache: %v", err)
	}
	defer func() {
		if closeErr := cache2.Close(); closeErr != nil {
			t.Logf("Warning: failed to close cache2: %v", closeErr)
		}
	}()
	entry, err := cache2.Get("/wh", "db.t")
	if err != nil {
		t.Fatalf("Failed to get entry after reopen: %v", err)
	}
	if entry.Rows != 3 {
		t.Errorf("Expected 3 rows, got %d", entry.Rows)
	}
}

func TestOpenWithInvalidConfig(t *testing.T) {
	if _, err := OpenWithDependencies(nil, nil, nil); err == nil {
		t.Fatal("Expected error for nil config")
	}
	_, err := OpenWithConfig(DefaultConfig().WithCachePath(""))
	var cacheErr *Error
	if !errors.As(err, &cacheErr) || cacheErr.Type != ErrorTypeConfiguration {
		t.Fatalf("Expected configuration error, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	cache := openTestCache(t)

	_, err := cache.Get("/wh", "db.missing")
	if !IsNotFound(err) {
		t.Fatalf("Expected not found error, got %v", err)
	}
	if got, want := err.Error(), "row count cache: get /wh#db.missing: entry not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLookup(t *testing.T) {
	cache := openTestCache(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Upsert(RowCount{Warehouse: "/wh", Table: "db.t", SnapshotID: 4, Rows: 100}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	rows, ok, err := cache.Lookup("/wh", "db.t", 4)
	if err != nil || !ok || rows != 100 {
		t.Fatalf("Lookup(same snapshot) = %d, %v, %v", rows, ok, err)
	}

	_, ok, err = cache.Lookup("/wh", "db.t", 5)
	if err != nil || ok {
		t.Errorf("Lookup(newer snapshot) should miss, got ok=%v err=%v", ok, err)
	}

	_, ok, err = cache.Lookup("/other", "db.t", 4)
	if err != nil || ok {
		t.Errorf("Lookup(other warehouse) should miss, got ok=%v err=%v", ok, err)
	}

	cache.config.WithMaxAge(time.Hour)
	now = now.Add(2 * time.Hour)
	_, ok, err = cache.Lookup("/wh", "db.t", 4)
	if err != nil || ok {
		t.Errorf("Lookup(expired) should miss, got ok=%v err=%v", ok, err)
	}
}

func TestListDeleteClean(t *testing.T) {
	cache := openTestCache(t)

	entries := []RowCount{
		{Warehouse: "s3a://b/wh", Table: "db.z", SnapshotID: 1, Rows: 1},
		{Warehouse: "/local", Table: "db.b", SnapshotID: 2, Rows: 2},
		{Warehouse: "/local", Table: "db.a", SnapshotID: 3, Rows: 3},
	}
	for _, e := range entries {
		if err := cache.Upsert(e); err != nil {
			t.Fatalf("Failed to upsert %s: %v", e.Table, err)
		}
	}

	list, err := cache.List()
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	var got []string
	for _, e := range list {
		got = append(got, e.Key())
	}
	want := "/local#db.a,/local#db.b,s3a://b/wh#db.z"
	if strings.Join(got, ",") != want {
		t.Errorf("List() = %v, want %s", got, want)
	}

	if err := cache.Delete("/local", "db.a"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := cache.Get("/local", "db.a"); !IsNotFound(err) {
		t.Errorf("Expected deleted entry to be gone, got %v", err)
	}

	removed, err := cache.Clean("/local")
	if err != nil {
		t.Fatalf("Failed to clean: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clean(/local) removed %d, want 1", removed)
	}

	removed, err = cache.Clean("")
	if err != nil {
		t.Fatalf("Failed to clean: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clean(all) removed %d, want 1", removed)
	}
	list, _ = cache.List()
	if len(list) != 0 {
		t.Errorf("Expected empty cache, got %d entries", len(list))
	}
}

type fakeTable struct {
	name     string
	snapshot int64
	rows     int64
	counts   int
	err      error
}

func (f *fakeTable) FullName() string { return f.name }

func (f *fakeTable) SnapshotID(context.Context) (int64, error) { return f.snapshot, nil }

func (f *fakeTable) CountRows(context.Context) (int64, error) {
	f.counts++
	return f.rows, f.err
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	cache := openTestCache(t)
	table := &fakeTable{name: "db.t", snapshot: 1, rows: 42}

	rows, cached, err := cache.Count(ctx, "/wh", table)
	if err != nil || rows != 42 || cached {
		t.Fatalf("first Count = %d, %v, %v", rows, cached, err)
	}

	rows, cached, err = cache.Count(ctx, "/wh", table)
	if err != nil || rows != 42 || !cached {
		t.Fatalf("second Count = %d, %v, %v", rows, cached, err)
	}
	if table.counts != 1 {
		t.Errorf("Expected one scan, got %d", table.counts)
	}

	table.snapshot = 2
	table.rows = 50
	rows, cached, err = cache.Count(ctx, "/wh", table)
	if err != nil || rows != 50 || cached {
		t.Fatalf("Count after new snapshot = %d, %v, %v", rows, cached, err)
	}

	table.snapshot = 3
	table.err = errors.New("boom")
	if _, _, err := cache.Count(ctx, "/wh", table); err == nil {
		t.Error("Expected count error to propagate")
	}
	entry, err := cache.Get("/wh", "db.t")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if entry.SnapshotID != 2 {
		t.Errorf("Failed count should not replace the entry, got snapshot %d", entry.SnapshotID)
	}
}

func TestCountWithoutCache(t *testing.T) {
	var cache *Cache
	table := &fakeTable{name: "db.t", rows: 7}

	rows, cached, err := cache.Count(context.Background(), "/wh", table)
	if err != nil || rows != 7 || cached {
		t.Fatalf("Count = %d, %v, %v", rows, cached, err)
	}
}

func TestErrorString(t *testing.T) {
	err := NewDatabaseError("create_bucket", "row_counts", errors.New("disk full"))
	want := "row count cache: create_bucket row_counts: database failure: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	notFound := NewNotFoundError("get", "/wh#db.t")
	if want := "row count cache: get /wh#db.t: entry not found"; notFound.Error() != want {
		t.Errorf("Error() = %q, want %q", notFound.Error(), want)
	}

	cfgErr := NewConfigurationError("cache path cannot be empty", nil)
	if want := "row count cache: cache path cannot be empty"; cfgErr.Error() != want {
		t.Errorf("Error() = %q, want %q", cfgErr.Error(), want)
	}
	if !IsDatabaseError(err) {
		t.Error("Expected IsDatabaseError to be true")
	}
	if !errors.Is(err, err.Err) {
		t.Error("Expected error to unwrap to its cause")
	}
}

func TestGetInvalidData(t *testing.T) {
	cache := openTestCache(t)

	err := cache.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketRowCounts)).Put([]byte(Key("/wh", "db.t")), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}

	_, err = cache.Get("/wh", "db.t")
	if !IsInvalidData(err) {
		t.Fatalf("Expected invalid data error, got %v", err)
	}

	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected undecodable entries to be skipped, got %v", entries)
	}
}
