package cache

import (
	"bytes"
	"fmt"
	"time"
)

// Summary renders the cache contents grouped by warehouse.
func (c *Cache) Summary() (string, error) {
	entries, err := c.List()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Row count cache: %s\n", c.Path()))
	if len(entries) == 0 {
		buf.WriteString("  (empty)\n")
		return buf.String(), nil
	}
	buf.WriteString(FormatEntries(entries))
	return buf.String(), nil
}

// FormatEntries formats entries, which must be sorted by warehouse, for display.
func FormatEntries(entries []RowCount) string {
	var buf bytes.Buffer
	current := ""
	for i, e := range entries {
		if i == 0 || e.Warehouse != current {
			current = e.Warehouse
			buf.WriteString(fmt.Sprintf("\n%s:\n", current))
		}
		buf.WriteString(fmt.Sprintf("  %s %s\n", e.Table, formatRowCount(e)))
	}
	return buf.String()
}

// formatRowCount formats the details of one entry.
func formatRowCount(e RowCount) string {
	counted := time.Unix(e.CountedAt, 0).UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("(rows: %d, snapshot: %d, counted: %s UTC)", e.Rows, e.SnapshotID, counted)
}
