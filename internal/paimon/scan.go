package paimon

import (
	"context"
	"io"

	"paimon-cli/internal/filter"
)

// Batch is a group of rows returned by one call to RecordIterator.Next.
type Batch []Row

// ScanOptions configures a table scan.
type ScanOptions struct {
	// Predicates must all hold for a row to be returned.
	Predicates []filter.Predicate
	// Limit stops the scan after this many matching rows. Zero or less
	// reads every row.
	Limit int
	// BatchSize is the maximum number of rows per batch.
	BatchSize int
}

// RecordIterator reads the rows of a scan one split at a time.
type RecordIterator struct {
	table     *Table
	splits    []split
	next      int
	filter    rowFilter
	engine    string
	limit     int
	batchSize int
	emitted   int
	pending   []Row
	closed    bool
}

// Scan plans a read of the latest snapshot. Nothing is read from data files
// until Next is called.
func (t *Table) Scan(ctx context.Context, opts ScanOptions) (*RecordIterator, error) {
	rf, err := compileFilter(opts.Predicates, t.RowType())
	if err != nil {
		return nil, err
	}

	engine := t.Options()[OptionMergeEngine]
	if engine == "" {
		engine = mergeEngineDeduplicate
	}
	if t.HasPrimaryKey() && engine != mergeEngineDeduplicate && engine != mergeEngineFirstRow {
		return nil, newUnsupportedError(t.FullName(), "merge engine "+engine+" is not supported")
	}

	splits, err := t.plan(ctx)
	if err != nil {
		return nil, err
	}
	t.logger.Debugf("planned %d split(s) for %s", len(splits), t.FullName())

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &RecordIterator{
		table:     t,
		splits:    splits,
		filter:    rf,
		engine:    engine,
		limit:     opts.Limit,
		batchSize: batchSize,
	}, nil
}

// Next returns the next batch of matching rows, or io.EOF when the scan is
// exhausted or the limit has been reached.
func (it *RecordIterator) Next(ctx context.Context) (Batch, error) {
	for {
		if it.closed || (it.limit > 0 && it.emitted >= it.limit) {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(it.pending) > 0 {
			n := min(len(it.pending), it.batchSize)
			if it.limit > 0 {
				n = min(n, it.limit-it.emitted)
			}
			batch := Batch(it.pending[:n])
			it.pending = it.pending[n:]
			it.emitted += n
			return batch, nil
		}

		if it.next >= len(it.splits) {
			return nil, io.EOF
		}
		rows, err := it.readSplit(ctx, it.splits[it.next])
		if err != nil {
			return nil, err
		}
		it.next++

		for _, row := range rows {
			if it.filter.Matches(row) {
				it.pending = append(it.pending, row)
			}
		}
	}
}

// Close stops the scan. Further calls to Next return io.EOF.
func (it *RecordIterator) Close() error {
	it.closed = true
	it.pending = nil
	return nil
}

func (it *RecordIterator) readSplit(ctx context.Context, s split) ([]Row, error) {
	t := it.table
	rowType := t.RowType()

	if !s.merge {
		var rows []Row
		for _, f := range s.files {
			fr, err := readDataFile(ctx, t.fio, f.path, it.batchSize)
			if err != nil {
				return nil, err
			}
			rows = append(rows, projectRows(fr, rowType)...)
		}
		return rows, nil
	}

	var records []keyedRow
	for _, f := range s.files {
		fr, err := readDataFile(ctx, t.fio, f.path, it.batchSize)
		if err != nil {
			return nil, err
		}
		kr, err := keyedRows(fr, rowType, t.PrimaryKeys())
		if err != nil {
			return nil, err
		}
		records = append(records, kr...)
	}
	t.logger.Debugf("merging %d record(s) from %d file(s) in %s", len(records), len(s.files), s.dir)
	return mergeByKey(records, it.engine), nil
}

// CountRows returns the number of rows visible in the latest snapshot.
func (t *Table) CountRows(ctx context.Context) (int64, error) {
	it, err := t.Scan(ctx, ScanOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = it.Close() }()

	var count int64
	for {
		batch, err := it.Next(ctx)
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return 0, err
		}
		count += int64(len(batch))
	}
}
