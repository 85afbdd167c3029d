package formatter

import (
	"github.com/mattn/go-runewidth"

	"paimon-cli/internal/paimon"
)

// Default column width bounds for table output.
const (
	DefaultMinWidth = 10
	DefaultMaxWidth = 50
)

// ColumnWidths accumulates table column widths from sampled rows. A column
// starts at its header width, at least min, and grows with the data up to max.
type ColumnWidths struct {
	min    int
	max    int
	widths []int
}

// NewColumnWidths initializes widths from the column headers. Non-positive
// bounds use the defaults.
func NewColumnWidths(headers []string, minWidth, maxWidth int) *ColumnWidths {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	cw := &ColumnWidths{min: minWidth, max: maxWidth, widths: make([]int, len(headers))}
	for i, h := range headers {
		cw.widths[i] = max(DisplayWidth(h), minWidth)
	}
	return cw
}

// Observe widens columns to fit the values of row.
func (cw *ColumnWidths) Observe(row paimon.Row) {
	for i, v := range row {
		if i >= len(cw.widths) {
			break
		}
		w := min(DisplayWidth(paimon.FormatValue(v)), cw.max)
		if w > cw.widths[i] {
			cw.widths[i] = w
		}
	}
}

// Widths returns a copy of the current widths.
func (cw *ColumnWidths) Widths() []int {
	return append([]int(nil), cw.widths...)
}

// DisplayWidth returns the number of terminal cells s occupies.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(s)
}
