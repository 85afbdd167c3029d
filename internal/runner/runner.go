// Package runner executes select queries against a table and streams the
// matching rows to a formatter. It handles row limits, interactive paging
// and the sampling pass that sizes table columns.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"paimon-cli/internal/filter"
	"paimon-cli/internal/formatter"
	"paimon-cli/internal/logging"
	"paimon-cli/internal/paimon"
)

// Defaults used when a Query leaves a field unset.
const (
	DefaultPageSize   = 5
	DefaultSampleRows = 100
)

// Iterator yields batches until io.EOF. *paimon.RecordIterator satisfies it.
type Iterator interface {
	Next(ctx context.Context) (paimon.Batch, error)
	Close() error
}

// Source is a scannable table.
// This interface allows for easier testing with mock implementations.
type Source interface {
	Columns() []string
	Open(ctx context.Context, opts paimon.ScanOptions) (Iterator, error)
}

// Pager decides whether paginated output continues after a full page.
type Pager interface {
	Continue(ctx context.Context, shown int) (bool, error)
}

// PagerFunc adapts a function to the Pager interface.
type PagerFunc func(ctx context.Context, shown int) (bool, error)

// Continue calls f.
func (f PagerFunc) Continue(ctx context.Context, shown int) (bool, error) {
	return f(ctx, shown)
}

// NoPause never stops paginated output.
var NoPause Pager = PagerFunc(func(context.Context, int) (bool, error) { return true, nil })

// Query describes one select.
type Query struct {
	// Predicates must all hold for a row to be shown
	Predicates []filter.Predicate

	// Limit caps the rows shown. Ignored when Paginate is set.
	Limit int

	// Paginate shows every row, pausing after each PageSize rows
	Paginate bool
	PageSize int

	// BatchSize is passed to the scan
	BatchSize int
}

// Statistics summarizes a finished query.
type Statistics struct {
	RowsDisplayed int
	BatchesRead   int
	Elapsed       time.Duration

	// Stopped is set when the pager ended the output early
	Stopped bool
}

// Runner handles the execution of select queries.
type Runner struct {
	// Source is the table being queried
	Source Source

	// Pager is asked to continue after each page; nil never pauses
	Pager Pager

	// Writer receives the formatted rows
	Writer io.Writer

	// Options configures the output format
	Options formatter.FormatOptions

	// SampleRows caps the rows read to size table columns (defaults to 100)
	SampleRows int

	Logger logging.Logger
}

// New creates a new Runner writing table output to w.
func New(source Source, w io.Writer) *Runner {
	return &Runner{
		Source:     source,
		Writer:     w,
		Options:    formatter.DefaultFormatOptions(),
		SampleRows: DefaultSampleRows,
		Logger:     logging.Nop(),
	}
}

// Run executes q and writes the header and every displayed row.
func (r *Runner) Run(ctx context.Context, q Query) (Statistics, error) {
	startTime := time.Now()
	var stats Statistics

	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	pager := r.Pager
	if pager == nil {
		pager = NoPause
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	columns := r.Source.Columns()
	options := r.Options
	if (options.Format == formatter.FormatTable || options.Format == "") && options.Widths == nil {
		options.Widths = r.sampleWidths(ctx, columns, q, logger)
	}

	rw, err := formatter.NewRowWriter(r.Writer, options)
	if err != nil {
		return stats, err
	}

	scan := paimon.ScanOptions{Predicates: q.Predicates, BatchSize: q.BatchSize}
	if !q.Paginate {
		scan.Limit = q.Limit
	}
	it, err := r.Source.Open(ctx, scan)
	if err != nil {
		return stats, fmt.Errorf("failed to start scan: %w", err)
	}
	defer func() {
		if closeErr := it.Close(); closeErr != nil {
			logger.Warnf("failed to close scan: %v", closeErr)
		}
	}()

	if err := rw.WriteHeader(columns); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	err = r.stream(ctx, it, rw, q.Paginate, pageSize, pager, &stats)
	if closeErr := rw.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to flush output: %w", closeErr)
	}
	stats.Elapsed = time.Since(startTime)
	logger.Debugf("query displayed %d row(s) from %d batch(es) in %s", stats.RowsDisplayed, stats.BatchesRead, stats.Elapsed)
	return stats, err
}

func (r *Runner) stream(ctx context.Context, it Iterator, rw formatter.RowWriter, paginate bool, pageSize int, pager Pager, stats *Statistics) error {
	for {
		// Check if context is done
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("query cancelled: %w", err)
		}

		batch, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}
		stats.BatchesRead++

		for _, row := range batch {
			if paginate && stats.RowsDisplayed > 0 && stats.RowsDisplayed%pageSize == 0 {
				if err := rw.Flush(); err != nil {
					return fmt.Errorf("failed to flush output: %w", err)
				}
				more, err := pager.Continue(ctx, stats.RowsDisplayed)
				if err != nil {
					return err
				}
				if !more {
					stats.Stopped = true
					return nil
				}
			}
			if err := rw.WriteRow(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			stats.RowsDisplayed++
		}
	}
}

// sampleWidths reads up to SampleRows matching rows (fewer when a smaller
// limit is set) to size the table columns. Sampling failures fall back to
// header widths.
func (r *Runner) sampleWidths(ctx context.Context, columns []string, q Query, logger logging.Logger) []int {
	cw := formatter.NewColumnWidths(columns, r.Options.MinWidth, r.Options.MaxWidth)

	maxSample := r.SampleRows
	if maxSample <= 0 {
		maxSample = DefaultSampleRows
	}
	if !q.Paginate && q.Limit > 0 {
		maxSample = min(q.Limit, maxSample)
	}

	it, err := r.Source.Open(ctx, paimon.ScanOptions{Predicates: q.Predicates, Limit: maxSample, BatchSize: q.BatchSize})
	if err != nil {
		logger.Debugf("column sampling failed: %v", err)
		return cw.Widths()
	}
	defer func() { _ = it.Close() }()

	for {
		batch, err := it.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Debugf("column sampling stopped: %v", err)
			}
			return cw.Widths()
		}
		for _, row := range batch {
			cw.Observe(row)
		}
	}
}
