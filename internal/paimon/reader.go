package paimon

import (
	"context"
	"math/big"
	"path"
	"strings"
	"time"

	"paimon-cli/internal/schema"
	"paimon-cli/internal/storage"
)

// System columns written by primary-key tables.
const (
	keyFieldPrefix    = "_KEY_"
	sequenceNumberCol = "_SEQUENCE_NUMBER"
	valueKindCol      = "_VALUE_KIND"
)

// Row kinds stored in the _VALUE_KIND column.
const (
	rowKindInsert       = 0
	rowKindUpdateBefore = 1
	rowKindUpdateAfter  = 2
	rowKindDelete       = 3
)

// fileRows holds the decoded content of one data file in file column order.
type fileRows struct {
	columns []string
	rows    [][]any
}

// columnIndex finds a column by exact name, then case-insensitively.
func (f *fileRows) columnIndex(name string) int {
	for i, c := range f.columns {
		if c == name {
			return i
		}
	}
	for i, c := range f.columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// readDataFile decodes a data file according to its extension.
func readDataFile(ctx context.Context, fio storage.FileIO, p string, batchSize int) (*fileRows, error) {
	format := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	switch format {
	case "parquet", "avro":
	case "orc":
		return nil, newUnsupportedError(p, "ORC data files are not supported")
	default:
		return nil, newUnsupportedError(p, "unknown data file format")
	}

	data, err := fio.ReadFile(ctx, p)
	if err != nil {
		return nil, newIOError(p, err)
	}

	if format == "parquet" {
		return readParquet(ctx, p, data, batchSize)
	}
	return readAvro(p, data)
}

// normalizeValue converts a decoded file value to the Row representation of
// its logical column type.
func normalizeValue(v any, dt schema.DataType) any {
	switch x := v.(type) {
	case nil:
		return nil
	case map[string]any:
		// Avro unions decoded without a registered type
		if len(x) == 1 {
			for _, inner := range x {
				return normalizeValue(inner, dt)
			}
		}
		return x
	case bool, string, Decimal, Date:
		return x
	case time.Time:
		if dt.Root == schema.TypeDate {
			return DateOf(x)
		}
		return x.UTC()
	case int8:
		return normalizeInt(int64(x), dt)
	case int16:
		return normalizeInt(int64(x), dt)
	case int32:
		return normalizeInt(int64(x), dt)
	case int:
		return normalizeInt(int64(x), dt)
	case int64:
		return normalizeInt(x, dt)
	case uint8:
		return normalizeInt(int64(x), dt)
	case uint16:
		return normalizeInt(int64(x), dt)
	case uint32:
		return normalizeInt(int64(x), dt)
	case float32:
		if dt.Root == schema.TypeDouble {
			return float64(x)
		}
		return x
	case float64:
		if dt.Root == schema.TypeFloat {
			return float32(x)
		}
		return x
	case *big.Rat:
		return decimalFromRat(x, int32(dt.Scale))
	case []byte:
		switch {
		case dt.Root == schema.TypeDecimal:
			return decimalFromBytes(x, int32(dt.Scale))
		case dt.Root.IsString():
			return string(x)
		default:
			return append([]byte(nil), x...)
		}
	default:
		return x
	}
}

func normalizeInt(n int64, dt schema.DataType) any {
	switch dt.Root {
	case schema.TypeDate:
		return Date(n)
	case schema.TypeTimestamp, schema.TypeTimestampLTZ:
		if dt.Precision <= 3 {
			return time.UnixMilli(n).UTC()
		}
		return time.UnixMicro(n).UTC()
	case schema.TypeFloat:
		return float32(n)
	case schema.TypeDouble:
		return float64(n)
	case schema.TypeDecimal:
		return Decimal{Unscaled: big.NewInt(n), Scale: int32(dt.Scale)}
	case schema.TypeBoolean:
		return n != 0
	default:
		return n
	}
}

// projectRows maps decoded file rows onto the table row type. Columns absent
// from the file, such as ones added by a later schema, read as NULL.
func projectRows(fr *fileRows, rowType schema.RowType) []Row {
	mapping := make([]int, rowType.Len())
	for i, f := range rowType.Fields {
		mapping[i] = fr.columnIndex(f.Name)
	}

	rows := make([]Row, 0, len(fr.rows))
	for _, src := range fr.rows {
		row := make(Row, len(mapping))
		for i, col := range mapping {
			if col >= 0 && col < len(src) {
				row[i] = normalizeValue(src[col], rowType.Fields[i].Type)
			}
		}
		rows = append(rows, row)
	}
	return rows
}
