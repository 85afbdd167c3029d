package paimon

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Manifest entry kinds.
const (
	fileKindAdd    = 0
	fileKindDelete = 1
)

// manifestFileMeta is a record of a manifest list.
type manifestFileMeta struct {
	FileName        string `avro:"_FILE_NAME"`
	FileSize        int64  `avro:"_FILE_SIZE"`
	NumAddedFiles   int64  `avro:"_NUM_ADDED_FILES"`
	NumDeletedFiles int64  `avro:"_NUM_DELETED_FILES"`
	SchemaID        int64  `avro:"_SCHEMA_ID"`
}

// manifestEntry is a record of a manifest file.
type manifestEntry struct {
	Kind      int32        `avro:"_KIND"`
	Partition []byte       `avro:"_PARTITION"`
	Bucket    int32        `avro:"_BUCKET"`
	File      dataFileMeta `avro:"_FILE"`
}

// dataFileMeta describes one data file.
type dataFileMeta struct {
	FileName          string  `avro:"_FILE_NAME"`
	FileSize          int64   `avro:"_FILE_SIZE"`
	RowCount          int64   `avro:"_ROW_COUNT"`
	MinSequenceNumber int64   `avro:"_MIN_SEQUENCE_NUMBER"`
	MaxSequenceNumber int64   `avro:"_MAX_SEQUENCE_NUMBER"`
	SchemaID          int64   `avro:"_SCHEMA_ID"`
	Level             int32   `avro:"_LEVEL"`
	ExternalPath      *string `avro:"_EXTERNAL_PATH"`
}

func (e manifestEntry) identifier() string {
	return string(e.Partition) + "\x00" + strconv.Itoa(int(e.Bucket)) + "\x00" + e.File.FileName
}

// dataFile is a live data file resolved to its warehouse path.
type dataFile struct {
	path   string
	bucket int32
	meta   dataFileMeta
}

// split is the unit of reading: a single file of an append table, or all
// files of one partition bucket of a primary-key table.
type split struct {
	dir   string
	files []dataFile
	merge bool
}

func (t *Table) readManifestList(ctx context.Context, name string) ([]manifestFileMeta, error) {
	p := path.Join(t.path, manifestDir, name)
	data, err := t.fio.ReadFile(ctx, p)
	if err != nil {
		return nil, newIOError(p, err)
	}
	return decodeAvroFile[manifestFileMeta](p, data)
}

func (t *Table) readManifest(ctx context.Context, name string) ([]manifestEntry, error) {
	p := path.Join(t.path, manifestDir, name)
	data, err := t.fio.ReadFile(ctx, p)
	if err != nil {
		return nil, newIOError(p, err)
	}
	return decodeAvroFile[manifestEntry](p, data)
}

// liveFiles replays the manifests of snap and returns the files that were
// added and not deleted afterwards, in commit order.
func (t *Table) liveFiles(ctx context.Context, snap *Snapshot) ([]manifestEntry, error) {
	var metas []manifestFileMeta
	for _, list := range []string{snap.BaseManifestList, snap.DeltaManifestList} {
		if list == "" {
			continue
		}
		m, err := t.readManifestList(ctx, list)
		if err != nil {
			return nil, err
		}
		metas = append(metas, m...)
	}

	var order []string
	live := map[string]manifestEntry{}
	for _, meta := range metas {
		entries, err := t.readManifest(ctx, meta.FileName)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			id := e.identifier()
			switch e.Kind {
			case fileKindAdd:
				if _, ok := live[id]; !ok {
					order = append(order, id)
				}
				live[id] = e
			case fileKindDelete:
				delete(live, id)
			default:
				return nil, newCorruptError(meta.FileName, "unknown manifest entry kind "+strconv.Itoa(int(e.Kind)), nil)
			}
		}
	}

	result := make([]manifestEntry, 0, len(live))
	for _, id := range order {
		if e, ok := live[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

// plan lists the splits of the latest snapshot. A table without a snapshot
// has no splits.
func (t *Table) plan(ctx context.Context) ([]split, error) {
	snap, err := t.LatestSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, nil
	}

	entries, err := t.liveFiles(ctx, snap)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if t.Options()["deletion-vectors.enabled"] == "true" {
		t.logger.Warnf("table %s uses deletion vectors, deleted rows may be shown", t.FullName())
	}

	locations, err := t.fileLocations(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]dataFile, 0, len(entries))
	for _, e := range entries {
		p, ok := locations[e.File.FileName]
		if !ok {
			if e.File.ExternalPath != nil && *e.File.ExternalPath != "" {
				return nil, newUnsupportedError(*e.File.ExternalPath, "data files outside the warehouse are not supported")
			}
			return nil, newCorruptError(e.File.FileName, "data file not found", nil)
		}
		files = append(files, dataFile{path: p, bucket: e.Bucket, meta: e.File})
	}

	sort.SliceStable(files, func(i, j int) bool {
		di, dj := path.Dir(files[i].path), path.Dir(files[j].path)
		if di != dj {
			return di < dj
		}
		if files[i].meta.MinSequenceNumber != files[j].meta.MinSequenceNumber {
			return files[i].meta.MinSequenceNumber < files[j].meta.MinSequenceNumber
		}
		return files[i].meta.FileName < files[j].meta.FileName
	})

	if !t.HasPrimaryKey() {
		splits := make([]split, 0, len(files))
		for _, f := range files {
			splits = append(splits, split{dir: path.Dir(f.path), files: []dataFile{f}})
		}
		return splits, nil
	}

	var splits []split
	for _, f := range files {
		dir := path.Dir(f.path)
		if n := len(splits); n > 0 && splits[n-1].dir == dir {
			splits[n-1].files = append(splits[n-1].files, f)
			continue
		}
		splits = append(splits, split{dir: dir, files: []dataFile{f}, merge: true})
	}
	return splits, nil
}

// fileLocations maps data file names to their path below the table
// directory. Partition directories are not derived from the manifest
// partition bytes, the table directory is listed instead.
func (t *Table) fileLocations(ctx context.Context) (map[string]string, error) {
	statuses, err := t.fio.ListFiles(ctx, t.path)
	if err != nil {
		return nil, newIOError(t.path, err)
	}

	skip := map[string]bool{schemaDir: true, snapshotDir: true, manifestDir: true, "index": true, "changelog": true}
	locations := make(map[string]string, len(statuses))
	for _, st := range statuses {
		rel := strings.TrimPrefix(st.Path, t.path+"/")
		top, _, _ := strings.Cut(rel, "/")
		if skip[top] {
			continue
		}
		name := path.Base(st.Path)
		if _, dup := locations[name]; !dup {
			locations[name] = st.Path
		}
	}
	return locations, nil
}
