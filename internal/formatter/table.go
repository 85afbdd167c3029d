package formatter

import (
	"bufio"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"paimon-cli/internal/paimon"
)

const (
	cellSeparator      = " | "
	separatorJunction  = "-+-"
	truncationEllipsis = "..."
)

// TableWriter writes rows as fixed width text columns.
type TableWriter struct {
	w        *bufio.Writer
	widths   []int
	minWidth int
	colorize bool
	header   *color.Color
	null     *color.Color
}

func newTableWriter(w io.Writer, options FormatOptions) *TableWriter {
	minWidth := options.MinWidth
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	return &TableWriter{
		w:        bufio.NewWriter(w),
		widths:   options.Widths,
		minWidth: minWidth,
		colorize: options.Colorize,
		header:   color.New(color.FgCyan, color.Bold),
		null:     color.New(color.Faint),
	}
}

// WriteHeader writes the column names followed by a separator line.
func (t *TableWriter) WriteHeader(columns []string) error {
	for i := len(t.widths); i < len(columns); i++ {
		t.widths = append(t.widths, max(DisplayWidth(columns[i]), t.minWidth))
	}

	var line, sep strings.Builder
	for i, name := range columns {
		if i > 0 {
			line.WriteString(cellSeparator)
			sep.WriteString(separatorJunction)
		}
		cell := pad(name, t.widths[i])
		if t.colorize {
			cell = t.header.Sprint(cell)
		}
		line.WriteString(cell)
		sep.WriteString(strings.Repeat("-", t.widths[i]))
	}
	if _, err := t.w.WriteString(line.String() + "\n" + sep.String() + "\n"); err != nil {
		return err
	}
	return nil
}

// WriteRow writes one row, truncating values wider than their column.
func (t *TableWriter) WriteRow(row paimon.Row) error {
	var line strings.Builder
	for i, v := range row {
		if i >= len(t.widths) {
			break
		}
		if i > 0 {
			line.WriteString(cellSeparator)
		}
		cell := pad(paimon.FormatValue(v), t.widths[i])
		if t.colorize && v == nil {
			cell = t.null.Sprint(cell)
		}
		line.WriteString(cell)
	}
	line.WriteString("\n")
	_, err := t.w.WriteString(line.String())
	return err
}

// Flush writes buffered rows to the underlying writer.
func (t *TableWriter) Flush() error {
	return t.w.Flush()
}

// Close flushes buffered output.
func (t *TableWriter) Close() error {
	return t.Flush()
}

// pad truncates s to width cells, marking the cut with an ellipsis, and
// pads it with spaces on the right.
func pad(s string, width int) string {
	if DisplayWidth(s) > width {
		s = runewidth.Truncate(s, width, truncationEllipsis)
	}
	return runewidth.FillRight(s, width)
}
