package paimon

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

const defaultBatchSize = 1024

// readParquet decodes every record batch of a Parquet file.
func readParquet(ctx context.Context, name string, data []byte, batchSize int) (*fileRows, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, newCorruptError(name, "invalid parquet file", err)
	}
	defer func() { _ = pf.Close() }()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: int64(batchSize)}, memory.DefaultAllocator)
	if err != nil {
		return nil, newCorruptError(name, "invalid parquet file", err)
	}

	rr, err := fr.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, newCorruptError(name, "failed to read parquet file", err)
	}
	defer rr.Release()

	out := &fileRows{}
	for _, f := range rr.Schema().Fields() {
		out.columns = append(out.columns, f.Name)
	}

	for rr.Next() {
		rec := rr.Record()
		numRows := int(rec.NumRows())
		numCols := int(rec.NumCols())
		for r := 0; r < numRows; r++ {
			row := make([]any, numCols)
			for c := 0; c < numCols; c++ {
				row[c] = arrowValue(rec.Column(c), r)
			}
			out.rows = append(out.rows, row)
		}
	}
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, newCorruptError(name, "failed to read parquet file", err)
	}
	return out, nil
}

// arrowValue extracts row i of an Arrow column as a plain Go value.
func arrowValue(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}

	switch a := col.(type) {
	case *array.Boolean:
		return a.Value(i)
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Float32:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return append([]byte(nil), a.Value(i)...)
	case *array.FixedSizeBinary:
		return append([]byte(nil), a.Value(i)...)
	case *array.Date32:
		return Date(a.Value(i))
	case *array.Date64:
		return DateOf(a.Value(i).ToTime())
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Decimal128:
		scale := a.DataType().(*arrow.Decimal128Type).Scale
		return Decimal{Unscaled: a.Value(i).BigInt(), Scale: scale}
	default:
		return col.ValueStr(i)
	}
}
