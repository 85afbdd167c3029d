package runner

import (
	"context"

	"paimon-cli/internal/paimon"
)

// tableSource adapts a Paimon table to Source.
type tableSource struct {
	table *paimon.Table
}

// NewTableSource returns a Source reading the latest snapshot of table.
func NewTableSource(table *paimon.Table) Source {
	return &tableSource{table: table}
}

func (s *tableSource) Columns() []string {
	return s.table.RowType().FieldNames()
}

func (s *tableSource) Open(ctx context.Context, opts paimon.ScanOptions) (Iterator, error) {
	it, err := s.table.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return it, nil
}
