package formatter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"math"

	"paimon-cli/internal/paimon"
)

// JSONWriter writes one JSON object per row, keys in column order.
type JSONWriter struct {
	w       *bufio.Writer
	columns [][]byte
}

func newJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

// WriteHeader records the object keys. Nothing is written.
func (j *JSONWriter) WriteHeader(columns []string) error {
	j.columns = make([][]byte, len(columns))
	for i, c := range columns {
		key, err := json.Marshal(c)
		if err != nil {
			return err
		}
		j.columns[i] = key
	}
	return nil
}

// WriteRow writes the row as a single line object.
func (j *JSONWriter) WriteRow(row paimon.Row) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range row {
		if i >= len(j.columns) {
			break
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := json.Marshal(jsonValue(v))
		if err != nil {
			return err
		}
		buf.Write(j.columns[i])
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}\n")
	_, err := j.w.Write(buf.Bytes())
	return err
}

// Flush writes buffered rows to the underlying writer.
func (j *JSONWriter) Flush() error {
	return j.w.Flush()
}

// Close flushes buffered output.
func (j *JSONWriter) Close() error {
	return j.Flush()
}

// jsonValue maps a row value onto its JSON representation. Decimals stay
// exact numbers; dates, timestamps and bytes use their display form.
func jsonValue(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, string:
		return x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return paimon.FormatValue(x)
		}
		return x
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return paimon.FormatValue(x)
		}
		return x
	case paimon.Decimal:
		return json.Number(x.String())
	default:
		return paimon.FormatValue(v)
	}
}
