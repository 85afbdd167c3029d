package paimon

import (
	"sort"
	"strings"

	"paimon-cli/internal/schema"
)

// Merge engines of primary-key tables.
const (
	mergeEngineDeduplicate = "deduplicate"
	mergeEngineFirstRow    = "first-row"
)

// keyedRow is a row of a primary-key data file with its merge metadata.
type keyedRow struct {
	key  []any
	seq  int64
	kind int64
	row  Row
}

// keyedRows decodes the system columns of a primary-key data file. Key values
// come from the _KEY_ columns, or from the value columns when a file has none.
func keyedRows(fr *fileRows, rowType schema.RowType, primaryKeys []string) ([]keyedRow, error) {
	seqCol := fr.columnIndex(sequenceNumberCol)
	kindCol := fr.columnIndex(valueKindCol)

	keyCols := make([]int, len(primaryKeys))
	keyTypes := make([]schema.DataType, len(primaryKeys))
	for i, pk := range primaryKeys {
		idx := rowType.FieldIndex(pk)
		if idx < 0 {
			return nil, newCorruptError(pk, "primary key is not a table column", nil)
		}
		keyTypes[i] = rowType.Fields[idx].Type
		keyCols[i] = fr.columnIndex(keyFieldPrefix + pk)
		if keyCols[i] < 0 {
			keyCols[i] = fr.columnIndex(pk)
		}
	}

	rows := projectRows(fr, rowType)
	out := make([]keyedRow, len(rows))
	for r, row := range rows {
		src := fr.rows[r]
		kr := keyedRow{row: row, key: make([]any, len(keyCols))}
		for i, col := range keyCols {
			if col >= 0 {
				kr.key[i] = normalizeValue(src[col], keyTypes[i])
			}
		}
		if seqCol >= 0 {
			kr.seq, _ = normalizeValue(src[seqCol], schema.DataType{Root: schema.TypeBigInt}).(int64)
		}
		if kindCol >= 0 {
			kr.kind, _ = normalizeValue(src[kindCol], schema.DataType{Root: schema.TypeTinyInt}).(int64)
		}
		out[r] = kr
	}
	return out, nil
}

// mergeByKey keeps one version per key and returns the surviving rows in key
// order. With deduplicate the highest sequence number wins, later records
// winning ties; with first-row the lowest does. Retractions remove the key.
func mergeByKey(records []keyedRow, engine string) []Row {
	latest := map[string]keyedRow{}
	for _, rec := range records {
		id := keyString(rec.key)
		prev, seen := latest[id]
		switch {
		case !seen:
			latest[id] = rec
		case engine == mergeEngineFirstRow:
			if rec.seq < prev.seq {
				latest[id] = rec
			}
		case rec.seq >= prev.seq:
			latest[id] = rec
		}
	}

	survivors := make([]keyedRow, 0, len(latest))
	for _, rec := range latest {
		if rec.kind == rowKindUpdateBefore || rec.kind == rowKindDelete {
			continue
		}
		survivors = append(survivors, rec)
	}
	sort.Slice(survivors, func(i, j int) bool {
		return compareKeys(survivors[i].key, survivors[j].key) < 0
	})

	rows := make([]Row, len(survivors))
	for i, rec := range survivors {
		rows[i] = rec.row
	}
	return rows
}

func keyString(key []any) string {
	parts := make([]string, len(key))
	for i, v := range key {
		parts[i] = FormatValue(v)
	}
	return strings.Join(parts, "\x1f")
}

// compareKeys orders keys column by column. NULLs sort first.
func compareKeys(a, b []any) int {
	for i := range a {
		if i >= len(b) {
			return 1
		}
		switch {
		case a[i] == nil && b[i] == nil:
			continue
		case a[i] == nil:
			return -1
		case b[i] == nil:
			return 1
		}
		if c, ok := compareValues(a[i], b[i]); ok && c != 0 {
			return c
		}
	}
	if len(a) < len(b) {
		return -1
	}
	return 0
}
