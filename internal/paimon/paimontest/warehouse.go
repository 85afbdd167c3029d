// Package paimontest builds small Paimon warehouses in memory for tests.
package paimontest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/hamba/avro/v2/ocf"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"paimon-cli/internal/storage"
)

// Root is the warehouse directory inside the in-memory filesystem.
const Root = "/wh"

// Manifest entry kinds.
const (
	KindAdd    int32 = 0
	KindDelete int32 = 1
)

// Warehouse writes Paimon table layouts to an in-memory filesystem.
type Warehouse struct {
	t   testing.TB
	mem afero.Fs
}

// New returns an empty warehouse.
func New(t testing.TB) *Warehouse {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(Root, 0o755))
	return &Warehouse{t: t, mem: mem}
}

// Fs returns the filesystem holding the warehouse under Root.
func (w *Warehouse) Fs() afero.Fs {
	return w.mem
}

// FileIO returns a reader rooted at the warehouse.
func (w *Warehouse) FileIO() storage.FileIO {
	return storage.NewLocalFromFs(afero.NewBasePathFs(w.mem, Root))
}

// Write stores data at rel, relative to the warehouse root.
func (w *Warehouse) Write(rel string, data []byte) {
	w.t.Helper()
	require.NoError(w.t, afero.WriteFile(w.mem, path.Join(Root, rel), data, 0o644))
}

// Mkdir creates a directory relative to the warehouse root.
func (w *Warehouse) Mkdir(rel string) {
	w.t.Helper()
	require.NoError(w.t, w.mem.MkdirAll(path.Join(Root, rel), 0o755))
}

// SchemaJSON renders a schema file. fields alternate name and type.
func SchemaJSON(id int, primaryKeys []string, options map[string]string, fields ...string) string {
	type fieldJSON struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	var fs []fieldJSON
	for i := 0; i+1 < len(fields); i += 2 {
		fs = append(fs, fieldJSON{ID: i / 2, Name: fields[i], Type: fields[i+1]})
	}
	if primaryKeys == nil {
		primaryKeys = []string{}
	}
	if options == nil {
		options = map[string]string{}
	}
	data, err := json.Marshal(map[string]any{
		"version":        3,
		"id":             id,
		"fields":         fs,
		"highestFieldId": len(fs) - 1,
		"partitionKeys":  []string{},
		"primaryKeys":    primaryKeys,
		"options":        options,
		"comment":        "test table",
		"timeMillis":     1700000000000,
	})
	if err != nil {
		panic(err)
	}
	return string(data)
}

// Schema writes schema-<id> for table ("<db>.db/<name>").
func (w *Warehouse) Schema(table string, id int, primaryKeys []string, options map[string]string, fields ...string) {
	w.Write(path.Join(table, "schema", "schema-"+strconv.Itoa(id)), []byte(SchemaJSON(id, primaryKeys, options, fields...)))
}

// Snapshot writes snapshot-<id> and points LATEST at it.
func (w *Warehouse) Snapshot(table string, id int64, baseList, deltaList string) {
	content := fmt.Sprintf(`{"version":3,"id":%d,"schemaId":0,"baseManifestList":%q,"deltaManifestList":%q,"changelogManifestList":null,"commitUser":"test","commitIdentifier":%d,"commitKind":"APPEND","timeMillis":1700000000000,"totalRecordCount":0}`,
		id, baseList, deltaList, id)
	w.Write(path.Join(table, "snapshot", "snapshot-"+strconv.FormatInt(id, 10)), []byte(content))
	w.Write(path.Join(table, "snapshot", "LATEST"), []byte(strconv.FormatInt(id, 10)))
}

const manifestListSchema = `{
  "type": "record", "name": "ManifestFileMeta",
  "fields": [
    {"name": "_VERSION", "type": "int"},
    {"name": "_FILE_NAME", "type": "string"},
    {"name": "_FILE_SIZE", "type": "long"},
    {"name": "_NUM_ADDED_FILES", "type": "long"},
    {"name": "_NUM_DELETED_FILES", "type": "long"},
    {"name": "_SCHEMA_ID", "type": "long"}
  ]
}`

const manifestEntrySchema = `{
  "type": "record", "name": "ManifestEntry",
  "fields": [
    {"name": "_VERSION", "type": "int"},
    {"name": "_KIND", "type": "int"},
    {"name": "_PARTITION", "type": "bytes"},
    {"name": "_BUCKET", "type": "int"},
    {"name": "_TOTAL_BUCKETS", "type": "int"},
    {"name": "_FILE", "type": {
      "type": "record", "name": "DataFileMeta",
      "fields": [
        {"name": "_FILE_NAME", "type": "string"},
        {"name": "_FILE_SIZE", "type": "long"},
        {"name": "_ROW_COUNT", "type": "long"},
        {"name": "_MIN_KEY", "type": "bytes"},
        {"name": "_MIN_SEQUENCE_NUMBER", "type": "long"},
        {"name": "_MAX_SEQUENCE_NUMBER", "type": "long"},
        {"name": "_SCHEMA_ID", "type": "long"},
        {"name": "_LEVEL", "type": "int"},
        {"name": "_EXTERNAL_PATH", "type": ["null", "string"], "default": null}
      ]
    }}
  ]
}`

// AvroFile writes records as an Avro object container file.
func (w *Warehouse) AvroFile(rel, schema string, records ...map[string]any) {
	w.t.Helper()
	var buf bytes.Buffer
	enc, err := ocf.NewEncoder(schema, &buf)
	require.NoError(w.t, err)
	for _, r := range records {
		require.NoError(w.t, enc.Encode(r))
	}
	require.NoError(w.t, enc.Close())
	w.Write(rel, buf.Bytes())
}

// ManifestList writes a manifest list naming manifests.
func (w *Warehouse) ManifestList(table, name string, manifests ...string) {
	records := make([]map[string]any, 0, len(manifests))
	for _, m := range manifests {
		records = append(records, map[string]any{
			"_VERSION":           int32(2),
			"_FILE_NAME":         m,
			"_FILE_SIZE":         int64(100),
			"_NUM_ADDED_FILES":   int64(1),
			"_NUM_DELETED_FILES": int64(0),
			"_SCHEMA_ID":         int64(0),
		})
	}
	w.AvroFile(path.Join(table, "manifest", name), manifestListSchema, records...)
}

// FileEntry is a manifest entry.
type FileEntry struct {
	Kind   int32
	Bucket int32
	Name   string
	Rows   int64
	MinSeq int64
	MaxSeq int64
}

// Add returns an entry adding a data file whose sequence numbers start at minSeq.
func Add(bucket int32, name string, rows, minSeq int64) FileEntry {
	return FileEntry{Kind: KindAdd, Bucket: bucket, Name: name, Rows: rows, MinSeq: minSeq, MaxSeq: minSeq + rows - 1}
}

// Delete returns an entry removing a data file.
func Delete(bucket int32, name string) FileEntry {
	return FileEntry{Kind: KindDelete, Bucket: bucket, Name: name}
}

// Manifest writes a manifest file with entries.
func (w *Warehouse) Manifest(table, name string, entries ...FileEntry) {
	records := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		records = append(records, map[string]any{
			"_VERSION":       int32(2),
			"_KIND":          e.Kind,
			"_PARTITION":     []byte{0, 0, 0, 0},
			"_BUCKET":        e.Bucket,
			"_TOTAL_BUCKETS": int32(1),
			"_FILE": map[string]any{
				"_FILE_NAME":           e.Name,
				"_FILE_SIZE":           int64(1024),
				"_ROW_COUNT":           e.Rows,
				"_MIN_KEY":             []byte{},
				"_MIN_SEQUENCE_NUMBER": e.MinSeq,
				"_MAX_SEQUENCE_NUMBER": e.MaxSeq,
				"_SCHEMA_ID":           int64(0),
				"_LEVEL":               int32(0),
				"_EXTERNAL_PATH":       nil,
			},
		})
	}
	w.AvroFile(path.Join(table, "manifest", name), manifestEntrySchema, records...)
}

// Column is a Parquet column. nil values are written as nulls.
type Column struct {
	Name   string
	Type   arrow.DataType
	Values []any
}

// ParquetFile writes cols as a single row group Parquet file.
func (w *Warehouse) ParquetFile(rel string, cols ...Column) {
	w.t.Helper()
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type, Nullable: true}
	}
	sch := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), sch)
	defer b.Release()
	for i, c := range cols {
		for _, v := range c.Values {
			if v == nil {
				b.Field(i).AppendNull()
				continue
			}
			switch fb := b.Field(i).(type) {
			case *array.Int8Builder:
				fb.Append(v.(int8))
			case *array.Int32Builder:
				fb.Append(v.(int32))
			case *array.Int64Builder:
				fb.Append(v.(int64))
			case *array.Float64Builder:
				fb.Append(v.(float64))
			case *array.StringBuilder:
				fb.Append(v.(string))
			case *array.BooleanBuilder:
				fb.Append(v.(bool))
			case *array.Date32Builder:
				fb.Append(arrow.Date32(v.(int32)))
			default:
				w.t.Fatalf("unsupported test column type %s", c.Type)
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(sch, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(w.t, pqarrow.WriteTable(tbl, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	w.Write(rel, buf.Bytes())
}

// Vals collects column values.
func Vals(vs ...any) []any { return vs }

// UsersTable writes an append-only table db.users with two data files and
// five rows. Row 3 has NULL name, age and joined.
func (w *Warehouse) UsersTable() {
	table := "db.db/users"
	w.Schema(table, 0, nil, map[string]string{"bucket": "-1"},
		"id", "INT NOT NULL", "name", "STRING", "age", "INT", "score", "DOUBLE", "active", "BOOLEAN", "joined", "DATE")
	w.ParquetFile(table+"/bucket-0/data-a.parquet",
		Column{"id", arrow.PrimitiveTypes.Int32, Vals(int32(1), int32(2), int32(3))},
		Column{"name", arrow.BinaryTypes.String, Vals("Alice", "Bob", nil)},
		Column{"age", arrow.PrimitiveTypes.Int32, Vals(int32(25), int32(35), nil)},
		Column{"score", arrow.PrimitiveTypes.Float64, Vals(90.5, 71.0, 88.0)},
		Column{"active", arrow.FixedWidthTypes.Boolean, Vals(true, false, true)},
		Column{"joined", arrow.FixedWidthTypes.Date32, Vals(int32(19723), int32(19724), nil)},
	)
	w.ParquetFile(table+"/bucket-0/data-b.parquet",
		Column{"id", arrow.PrimitiveTypes.Int32, Vals(int32(4), int32(5))},
		Column{"name", arrow.BinaryTypes.String, Vals("Carol", "Dave")},
		Column{"age", arrow.PrimitiveTypes.Int32, Vals(int32(41), int32(30))},
		Column{"score", arrow.PrimitiveTypes.Float64, Vals(60.0, 99.9)},
		Column{"active", arrow.FixedWidthTypes.Boolean, Vals(true, true)},
		Column{"joined", arrow.FixedWidthTypes.Date32, Vals(int32(19800), int32(19801))},
	)
	w.Manifest(table, "manifest-1", Add(0, "data-a.parquet", 3, 0), Add(0, "data-b.parquet", 2, 3))
	w.ManifestList(table, "manifest-list-1-base")
	w.ManifestList(table, "manifest-list-1-delta", "manifest-1")
	w.Snapshot(table, 1, "manifest-list-1-base", "manifest-list-1-delta")
}
