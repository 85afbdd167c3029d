package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"paimon-cli/internal/formatter"
	"paimon-cli/internal/paimon"
)

// mockSource serves fixed rows in batches of batchSize, honoring the limit.
type mockSource struct {
	columns   []string
	rows      []paimon.Row
	batchSize int
	openErr   error
	readErr   error
	opened    []paimon.ScanOptions
}

func (m *mockSource) Columns() []string { return m.columns }

func (m *mockSource) Open(_ context.Context, opts paimon.ScanOptions) (Iterator, error) {
	m.opened = append(m.opened, opts)
	if m.openErr != nil {
		return nil, m.openErr
	}
	rows := m.rows
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return &mockIterator{rows: rows, batchSize: m.batchSize, err: m.readErr}, nil
}

type mockIterator struct {
	rows      []paimon.Row
	batchSize int
	err       error
	closed    bool
}

func (m *mockIterator) Next(context.Context) (paimon.Batch, error) {
	if len(m.rows) == 0 {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	n := min(m.batchSize, len(m.rows))
	batch := paimon.Batch(m.rows[:n])
	m.rows = m.rows[n:]
	return batch, nil
}

func (m *mockIterator) Close() error {
	m.closed = true
	return nil
}

func numberedRows(n int) []paimon.Row {
	rows := make([]paimon.Row, n)
	for i := range rows {
		rows[i] = paimon.Row{int64(i + 1), strings.Repeat("v", i+1)}
	}
	return rows
}

func newTestRunner(src Source, out io.Writer) *Runner {
	r := New(src, out)
	r.Options.Colorize = false
	return r
}

func TestRunnerRun(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		batchSize int
		query     Query
		wantRows  int
		wantBatch int
	}{
		{
			name:      "limit smaller than table",
			rows:      20,
			batchSize: 4,
			query:     Query{Limit: 10},
			wantRows:  10,
			wantBatch: 3,
		},
		{
			name:      "limit larger than table",
			rows:      3,
			batchSize: 10,
			query:     Query{Limit: 10},
			wantRows:  3,
			wantBatch: 1,
		},
		{
			name:      "no limit",
			rows:      7,
			batchSize: 2,
			query:     Query{},
			wantRows:  7,
			wantBatch: 4,
		},
		{
			name:      "empty table",
			rows:      0,
			batchSize: 2,
			query:     Query{Limit: 10},
			wantRows:  0,
			wantBatch: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{columns: []string{"id", "value"}, rows: numberedRows(tt.rows), batchSize: tt.batchSize}
			var out bytes.Buffer

			stats, err := newTestRunner(src, &out).Run(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if stats.RowsDisplayed != tt.wantRows {
				t.Errorf("RowsDisplayed = %d, want %d", stats.RowsDisplayed, tt.wantRows)
			}
			if stats.BatchesRead != tt.wantBatch {
				t.Errorf("BatchesRead = %d, want %d", stats.BatchesRead, tt.wantBatch)
			}
			lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			if len(lines) != tt.wantRows+2 {
				t.Errorf("got %d output lines, want %d:\n%s", len(lines), tt.wantRows+2, out.String())
			}
		})
	}
}

func TestRunnerSamplesColumnWidths(t *testing.T) {
	rows := []paimon.Row{
		{int64(1), "short"},
		{int64(2), "a considerably longer value"},
		{int64(3), strings.Repeat("z", 80)},
	}
	src := &mockSource{columns: []string{"id", "value"}, rows: rows, batchSize: 10}
	var out bytes.Buffer

	if _, err := newTestRunner(src, &out).Run(context.Background(), Query{Limit: 2}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(src.opened) != 2 {
		t.Fatalf("expected a sampling scan and a read scan, got %d scans", len(src.opened))
	}
	if src.opened[0].Limit != 2 {
		t.Errorf("sample limit = %d, want 2", src.opened[0].Limit)
	}
	header := strings.SplitN(out.String(), "\n", 2)[0]
	want := "id         | " + "value" + strings.Repeat(" ", 22)
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}

	// Paginated queries sample at most SampleRows and cap widths at 50
	src.opened = nil
	out.Reset()
	r := newTestRunner(src, &out)
	r.SampleRows = 50
	if _, err := r.Run(context.Background(), Query{Paginate: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if src.opened[0].Limit != 50 || src.opened[1].Limit != 0 {
		t.Errorf("scan limits = %d, %d, want 50, 0", src.opened[0].Limit, src.opened[1].Limit)
	}
	if !strings.Contains(out.String(), strings.Repeat("z", 47)+"...") {
		t.Errorf("expected truncated value in output:\n%s", out.String())
	}
}

func TestRunnerPagination(t *testing.T) {
	src := &mockSource{columns: []string{"id", "value"}, rows: numberedRows(12), batchSize: 3}
	var out bytes.Buffer

	var prompts []int
	r := newTestRunner(src, &out)
	r.Pager = PagerFunc(func(_ context.Context, shown int) (bool, error) {
		prompts = append(prompts, shown)
		return true, nil
	})

	stats, err := r.Run(context.Background(), Query{Paginate: true, Limit: 3})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.RowsDisplayed != 12 {
		t.Errorf("RowsDisplayed = %d, want 12 (limit is ignored when paginating)", stats.RowsDisplayed)
	}
	if len(prompts) != 2 || prompts[0] != 5 || prompts[1] != 10 {
		t.Errorf("prompts = %v, want [5 10]", prompts)
	}
}

func TestRunnerPaginationNoPromptAtExactEnd(t *testing.T) {
	src := &mockSource{columns: []string{"id", "value"}, rows: numberedRows(10), batchSize: 5}
	prompts := 0
	r := newTestRunner(src, io.Discard)
	r.Pager = PagerFunc(func(context.Context, int) (bool, error) {
		prompts++
		return true, nil
	})

	if _, err := r.Run(context.Background(), Query{Paginate: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prompts != 1 {
		t.Errorf("prompts = %d, want 1", prompts)
	}
}

func TestRunnerPaginationStop(t *testing.T) {
	src := &mockSource{columns: []string{"id", "value"}, rows: numberedRows(12), batchSize: 4}
	var out bytes.Buffer
	r := newTestRunner(src, &out)
	r.Pager = PagerFunc(func(context.Context, int) (bool, error) { return false, nil })

	stats, err := r.Run(context.Background(), Query{Paginate: true, PageSize: 4})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.RowsDisplayed != 4 || !stats.Stopped {
		t.Errorf("stats = %+v, want 4 rows and stopped", stats)
	}
	if strings.Contains(out.String(), "5          |") {
		t.Errorf("row after the stop should not be written:\n%s", out.String())
	}
}

func TestRunnerErrors(t *testing.T) {
	boom := errors.New("boom")

	src := &mockSource{columns: []string{"id"}, openErr: boom, batchSize: 1}
	_, err := newTestRunner(src, io.Discard).Run(context.Background(), Query{Limit: 1})
	if !errors.Is(err, boom) {
		t.Errorf("open error = %v, want wrapped boom", err)
	}

	src = &mockSource{columns: []string{"id"}, rows: numberedRows(2), readErr: boom, batchSize: 1}
	stats, err := newTestRunner(src, io.Discard).Run(context.Background(), Query{})
	if !errors.Is(err, boom) {
		t.Errorf("read error = %v, want wrapped boom", err)
	}
	if stats.RowsDisplayed != 2 {
		t.Errorf("rows before the error should be counted, got %d", stats.RowsDisplayed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src = &mockSource{columns: []string{"id"}, rows: numberedRows(2), batchSize: 1}
	_, err = newTestRunner(src, io.Discard).Run(ctx, Query{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run error = %v, want context.Canceled", err)
	}

	r := newTestRunner(&mockSource{columns: []string{"id"}, batchSize: 1}, io.Discard)
	r.Options.Format = "xml"
	if _, err := r.Run(context.Background(), Query{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestRunnerCSVSkipsSampling(t *testing.T) {
	src := &mockSource{columns: []string{"id", "value"}, rows: numberedRows(2), batchSize: 5}
	var out bytes.Buffer
	r := newTestRunner(src, &out)
	r.Options = formatter.FormatOptions{Format: formatter.FormatCSV}

	if _, err := r.Run(context.Background(), Query{Limit: 5}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(src.opened) != 1 {
		t.Errorf("csv output should not sample, got %d scans", len(src.opened))
	}
	if out.String() != "id,value\n1,v\n2,vv\n" {
		t.Errorf("csv output = %q", out.String())
	}
}
