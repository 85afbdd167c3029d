// Package formatter renders query rows as an aligned text table, CSV or
// JSON lines.
package formatter

import (
	"bytes"
	"fmt"
	"io"

	"paimon-cli/internal/paimon"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// RowWriter streams rows to an output. WriteHeader is called once before
// any row and Close flushes buffered output.
type RowWriter interface {
	WriteHeader(columns []string) error
	WriteRow(row paimon.Row) error
	Flush() error
	Close() error
}

// FormatOptions contains options for formatting output.
type FormatOptions struct {
	// Format specifies the output format (table, csv, json)
	Format string

	// Colorize enables colored headers and NULLs (only applies to table format)
	Colorize bool

	// Widths fixes the table column widths. Missing entries fall back to the
	// header width bounded below by MinWidth.
	Widths []int

	// MinWidth and MaxWidth bound computed column widths
	MinWidth int
	MaxWidth int

	// Delimiter overrides the CSV field separator
	Delimiter rune
}

// DefaultFormatOptions returns table output with the standard width bounds.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Format:   FormatTable,
		MinWidth: DefaultMinWidth,
		MaxWidth: DefaultMaxWidth,
	}
}

// ValidateFormat checks that format names a supported output format.
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatCSV, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// NewRowWriter returns a writer for the format named in options.
func NewRowWriter(w io.Writer, options FormatOptions) (RowWriter, error) {
	switch options.Format {
	case FormatTable, "":
		return newTableWriter(w, options), nil
	case FormatCSV:
		return newCSVWriter(w, options.Delimiter), nil
	case FormatJSON:
		return newJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", options.Format)
	}
}

// Format renders a complete result set. For table output the column widths
// are computed from the rows unless options.Widths is set.
func Format(rows []paimon.Row, columns []string, options FormatOptions) (string, error) {
	if options.Format == FormatTable && options.Widths == nil {
		cw := NewColumnWidths(columns, options.MinWidth, options.MaxWidth)
		for _, row := range rows {
			cw.Observe(row)
		}
		options.Widths = cw.Widths()
	}

	var buf bytes.Buffer
	rw, err := NewRowWriter(&buf, options)
	if err != nil {
		return "", fmt.Errorf("failed to get formatter: %w", err)
	}
	if err := rw.WriteHeader(columns); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := rw.WriteRow(row); err != nil {
			return "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := rw.Close(); err != nil {
		return "", fmt.Errorf("failed to flush output: %w", err)
	}
	return buf.String(), nil
}
