package formatter

import (
	"encoding/csv"
	"io"

	"paimon-cli/internal/paimon"
)

// CSVWriter writes rows as CSV. NULL values are written as empty fields.
type CSVWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer, delimiter rune) *CSVWriter {
	writer := csv.NewWriter(w)

	// Set delimiter if specified (default is comma)
	if delimiter != 0 {
		writer.Comma = delimiter
	}
	return &CSVWriter{w: writer}
}

// WriteHeader writes the column names as the first record.
func (c *CSVWriter) WriteHeader(columns []string) error {
	return c.w.Write(columns)
}

// WriteRow writes one record.
func (c *CSVWriter) WriteRow(row paimon.Row) error {
	values := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			values[i] = paimon.FormatValue(v)
		}
	}
	return c.w.Write(values)
}

// Flush writes buffered records to the underlying writer.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close flushes buffered records.
func (c *CSVWriter) Close() error {
	return c.Flush()
}
