package paimon

import (
	"context"
	"strconv"

	"paimon-cli/internal/logging"
	"paimon-cli/internal/schema"
	"paimon-cli/internal/storage"
)

// Option keys read from the table options.
const (
	OptionFileFormat  = "file.format"
	OptionBucket      = "bucket"
	OptionMergeEngine = "merge-engine"
)

// Table is an opened Paimon table.
type Table struct {
	fio      storage.FileIO
	logger   logging.Logger
	database string
	name     string
	path     string
	schema   *TableSchema
}

// Database returns the database the table belongs to.
func (t *Table) Database() string { return t.database }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// FullName returns "<database>.<table>".
func (t *Table) FullName() string { return t.database + "." + t.name }

// Schema returns the latest table schema.
func (t *Table) Schema() *TableSchema { return t.schema }

// RowType returns the logical row type of the table.
func (t *Table) RowType() schema.RowType { return t.schema.RowType() }

// PrimaryKeys returns the primary key columns, which may be empty.
func (t *Table) PrimaryKeys() []string { return t.schema.PrimaryKeys }

// PartitionKeys returns the partition columns, which may be empty.
func (t *Table) PartitionKeys() []string { return t.schema.PartitionKeys }

// Comment returns the table comment.
func (t *Table) Comment() string { return t.schema.Comment }

// Options returns the table options.
func (t *Table) Options() map[string]string {
	if t.schema.Options == nil {
		return map[string]string{}
	}
	return t.schema.Options
}

// Buckets returns the configured bucket count, or -1 for dynamic bucketing.
func (t *Table) Buckets() int {
	n, err := strconv.Atoi(t.Options()[OptionBucket])
	if err != nil {
		return -1
	}
	return n
}

// HasPrimaryKey reports whether rows must be merged by key when read.
func (t *Table) HasPrimaryKey() bool {
	return len(t.schema.PrimaryKeys) > 0
}

// LatestSnapshot returns the newest snapshot, or nil for a table that has
// never been written.
func (t *Table) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	return latestSnapshot(ctx, t.fio, t.path)
}

// SnapshotID returns the id of the latest snapshot, or 0 when there is none.
func (t *Table) SnapshotID(ctx context.Context) (int64, error) {
	snap, err := t.LatestSnapshot(ctx)
	if err != nil || snap == nil {
		return 0, err
	}
	return snap.ID, nil
}
