package paimon

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strconv"
	"strings"

	"paimon-cli/internal/schema"
	"paimon-cli/internal/storage"
)

const (
	schemaDir      = "schema"
	snapshotDir    = "snapshot"
	manifestDir    = "manifest"
	schemaPrefix   = "schema-"
	snapshotPrefix = "snapshot-"
	latestHint     = "LATEST"
)

// TableSchema is a version of a table's schema as stored in schema/schema-<id>.
type TableSchema struct {
	Version        int               `json:"version"`
	ID             int64             `json:"id"`
	Fields         []schema.Field    `json:"fields"`
	HighestFieldID int               `json:"highestFieldId"`
	PartitionKeys  []string          `json:"partitionKeys"`
	PrimaryKeys    []string          `json:"primaryKeys"`
	Options        map[string]string `json:"options"`
	Comment        string            `json:"comment"`
	TimeMillis     int64             `json:"timeMillis"`
}

// RowType returns the logical row type of the schema.
func (s *TableSchema) RowType() schema.RowType {
	return schema.NewRowType(s.Fields...)
}

// Snapshot is a committed table version as stored in snapshot/snapshot-<id>.
type Snapshot struct {
	Version               int    `json:"version"`
	ID                    int64  `json:"id"`
	SchemaID              int64  `json:"schemaId"`
	BaseManifestList      string `json:"baseManifestList"`
	DeltaManifestList     string `json:"deltaManifestList"`
	ChangelogManifestList string `json:"changelogManifestList"`
	CommitUser            string `json:"commitUser"`
	CommitIdentifier      int64  `json:"commitIdentifier"`
	CommitKind            string `json:"commitKind"`
	TimeMillis            int64  `json:"timeMillis"`
	TotalRecordCount      *int64 `json:"totalRecordCount"`
	DeltaRecordCount      *int64 `json:"deltaRecordCount"`
}

// versionedFiles returns the numeric suffixes of files named <prefix><n> in dir,
// in ascending order. A missing dir yields no ids.
func versionedFiles(ctx context.Context, fio storage.FileIO, dir, prefix string) ([]int64, error) {
	entries, err := fio.ListDir(ctx, dir)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, newIOError(dir, err)
	}

	var ids []int64
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		name := path.Base(e.Path)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(name, prefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// latestSchema loads the schema with the highest id below tablePath. It
// returns nil when the table has no schema directory.
func latestSchema(ctx context.Context, fio storage.FileIO, tablePath string) (*TableSchema, error) {
	dir := path.Join(tablePath, schemaDir)
	ids, err := versionedFiles(ctx, fio, dir, schemaPrefix)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return readSchema(ctx, fio, tablePath, ids[len(ids)-1])
}

func readSchema(ctx context.Context, fio storage.FileIO, tablePath string, id int64) (*TableSchema, error) {
	p := path.Join(tablePath, schemaDir, schemaPrefix+strconv.FormatInt(id, 10))
	data, err := fio.ReadFile(ctx, p)
	if err != nil {
		return nil, newIOError(p, err)
	}

	var ts TableSchema
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, newCorruptError(p, "invalid schema file", err)
	}
	return &ts, nil
}

// latestSnapshot resolves the newest snapshot of a table. The LATEST hint is
// trusted when it points at an existing snapshot, otherwise the snapshot
// directory is listed. It returns nil for a table without snapshots.
func latestSnapshot(ctx context.Context, fio storage.FileIO, tablePath string) (*Snapshot, error) {
	dir := path.Join(tablePath, snapshotDir)

	if data, err := fio.ReadFile(ctx, path.Join(dir, latestHint)); err == nil {
		if id, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); perr == nil {
			snap, serr := readSnapshot(ctx, fio, tablePath, id)
			if serr == nil {
				return snap, nil
			}
			if !storage.IsNotFound(serr) {
				return nil, serr
			}
		}
	} else if !storage.IsNotFound(err) {
		return nil, newIOError(dir, err)
	}

	ids, err := versionedFiles(ctx, fio, dir, snapshotPrefix)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return readSnapshot(ctx, fio, tablePath, ids[len(ids)-1])
}

func readSnapshot(ctx context.Context, fio storage.FileIO, tablePath string, id int64) (*Snapshot, error) {
	p := path.Join(tablePath, snapshotDir, snapshotPrefix+strconv.FormatInt(id, 10))
	data, err := fio.ReadFile(ctx, p)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, err
		}
		return nil, newIOError(p, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, newCorruptError(p, "invalid snapshot file", err)
	}
	return &snap, nil
}
