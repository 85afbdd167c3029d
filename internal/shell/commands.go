package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"paimon-cli/internal/filter"
	"paimon-cli/internal/paimon"
	"paimon-cli/internal/runner"
)

const titleRule = "===================="

func (s *Session) cmdHelp(context.Context, []string) error {
	s.printHelp()
	return nil
}

func (s *Session) cmdShow(ctx context.Context, parts []string) error {
	if len(parts) < 2 {
		return userErrorf("Usage: show databases or show tables <database>")
	}

	switch sub := strings.ToLower(parts[1]); sub {
	case "databases":
		return s.showDatabases(ctx)
	case "tables":
		if len(parts) < 3 {
			return userErrorf("Usage: show tables <database>")
		}
		return s.showTables(ctx, parts[2])
	default:
		return userErrorf("Unknown show subcommand: %s", sub)
	}
}

func (s *Session) showDatabases(ctx context.Context) error {
	databases, err := s.catalog.ListDatabases(ctx)
	if err != nil {
		return failure("get database list", err)
	}

	w := s.out
	_, _ = fmt.Fprintln(w, "\nDatabase List:")
	_, _ = fmt.Fprintln(w, titleRule)
	if len(databases) == 0 {
		_, _ = fmt.Fprintln(w, "(No databases)")
	}
	for _, db := range databases {
		_, _ = fmt.Fprintf(w, "  - %s\n", db)
	}
	_, _ = fmt.Fprintf(w, "Total: %d database(s)\n\n", len(databases))
	return nil
}

func (s *Session) showTables(ctx context.Context, database string) error {
	tables, err := s.catalog.ListTables(ctx, database)
	if err != nil {
		return failure("get table list", err)
	}

	w := s.out
	_, _ = fmt.Fprintf(w, "\nTable List in Database '%s':\n", database)
	_, _ = fmt.Fprintln(w, titleRule)
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(w, "(No tables)")
	}
	for _, t := range tables {
		_, _ = fmt.Fprintf(w, "  - %s\n", t)
	}
	_, _ = fmt.Fprintf(w, "Total: %d table(s)\n\n", len(tables))
	return nil
}

func (s *Session) cmdDescribe(ctx context.Context, parts []string) error {
	if len(parts) < 2 {
		return userErrorf("Usage: desc <database>.<table>")
	}
	table, err := s.openTable(ctx, parts[1], "get table structure")
	if err != nil {
		return err
	}

	w := s.out
	_, _ = fmt.Fprintf(w, "\nTable: %s\n", table.FullName())
	_, _ = fmt.Fprintln(w, titleRule)
	_, _ = fmt.Fprintln(w, "Field Information:")
	_, _ = fmt.Fprintf(w, "%-30s %-30s %-10s\n", "Field Name", "Type", "Nullable")
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, f := range table.RowType().Fields {
		nullable := "NO"
		if f.Type.Nullable {
			nullable = "YES"
		}
		_, _ = fmt.Fprintf(w, "%-30s %-30s %-10s\n", f.Name, f.Type.String(), nullable)
	}

	if pks := table.PrimaryKeys(); len(pks) > 0 {
		_, _ = fmt.Fprintf(w, "\nPrimary Keys: %s\n", strings.Join(pks, ", "))
	}
	if keys := table.PartitionKeys(); len(keys) > 0 {
		_, _ = fmt.Fprintf(w, "Partition Keys: %s\n", strings.Join(keys, ", "))
	}
	if comment := table.Comment(); comment != "" {
		_, _ = fmt.Fprintf(w, "Comment: %s\n", comment)
	}
	_, _ = fmt.Fprintln(w)
	return nil
}

func (s *Session) cmdCount(ctx context.Context, parts []string) error {
	if len(parts) < 2 {
		return userErrorf("Usage: count <database>.<table>")
	}
	table, err := s.openTable(ctx, parts[1], "count rows")
	if err != nil {
		return err
	}

	rows, cached, err := s.opts.Cache.Count(ctx, s.opts.Warehouse, table)
	if err != nil {
		return failure("count rows", err)
	}
	if cached {
		s.opts.Logger.Debugf("row count of %s served from cache", table.FullName())
	}
	_, _ = fmt.Fprintf(s.out, "\nTotal rows in table %s: %d\n\n", table.FullName(), rows)
	return nil
}

// SelectCommand is a parsed select command line.
type SelectCommand struct {
	Database string
	Table    string
	Limit    int
	Paginate bool
	Filter   string
}

// ParseSelect parses the words of a select command, the first being the
// verb itself. defaultLimit applies when no limit is given.
func ParseSelect(parts []string, defaultLimit int) (SelectCommand, error) {
	if len(parts) < 2 {
		return SelectCommand{}, userErrorf("%s", selectUsage)
	}
	db, table, ok := splitTableName(parts[1])
	if !ok {
		return SelectCommand{}, userErrorf("Invalid table name format, should be: <database>.<table>")
	}

	cmd := SelectCommand{Database: db, Table: table, Limit: defaultLimit}
	i := 2
	if i < len(parts) && !strings.EqualFold(parts[i], "where") {
		if strings.EqualFold(parts[i], "all") {
			cmd.Paginate = true
			cmd.Limit = 0
		} else {
			n, err := strconv.Atoi(parts[i])
			if err != nil || n <= 0 {
				return SelectCommand{}, userErrorf("Invalid limit: %s, expected a positive number or 'all'", parts[i])
			}
			cmd.Limit = n
		}
		i++
	}

	if i < len(parts) {
		if !strings.EqualFold(parts[i], "where") {
			return SelectCommand{}, userErrorf("Unexpected argument: %s\n%s", parts[i], selectUsage)
		}
		cmd.Filter = strings.Join(parts[i+1:], " ")
	}
	return cmd, nil
}

func (s *Session) cmdSelect(ctx context.Context, parts []string) error {
	cmd, err := ParseSelect(parts, s.opts.Settings.DefaultLimit)
	if err != nil {
		return err
	}
	table, err := s.openTable(ctx, parts[1], "query data")
	if err != nil {
		return err
	}

	info := s.info()
	predicates, diagnostics := filter.Translate(cmd.Filter, table.RowType())
	for _, d := range diagnostics {
		_, _ = fmt.Fprintln(s.errOut, d.Message)
	}
	if len(predicates) > 0 {
		_, _ = fmt.Fprintf(info, "\nApplied filter: %s\n", appliedFilter(cmd.Filter, predicates, diagnostics))
	} else if len(diagnostics) > 0 {
		_, _ = fmt.Fprintln(s.errOut, "Filter will be ignored. Continuing without filter...")
	}

	_, _ = fmt.Fprintf(info, "\nTable: %s\n", table.FullName())
	_, _ = fmt.Fprintln(info, titleRule)

	r := runner.New(runner.NewTableSource(table), s.out)
	r.Options = s.opts.Format
	r.SampleRows = s.opts.Settings.SampleRows
	r.Logger = s.opts.Logger
	r.Pager = s.pager()

	stats, err := r.Run(ctx, runner.Query{
		Predicates: predicates,
		Limit:      cmd.Limit,
		Paginate:   cmd.Paginate,
		PageSize:   s.opts.Settings.PageSize,
		BatchSize:  s.opts.Settings.BatchSize,
	})
	if err != nil {
		return failure("query data", err)
	}
	_, _ = fmt.Fprintf(info, "\nDisplayed %d row(s)\n\n", stats.RowsDisplayed)
	return nil
}

// appliedFilter is the filter text as typed, or only the conditions that
// survived translation when some were dropped.
func appliedFilter(text string, predicates []filter.Predicate, diagnostics []filter.Diagnostic) string {
	if len(diagnostics) == 0 {
		return text
	}
	conditions := make([]string, len(predicates))
	for i, p := range predicates {
		conditions[i] = p.String()
	}
	return strings.Join(conditions, " AND ")
}

// pager asks whether to show the next page. Anything but "it" stops.
func (s *Session) pager() runner.Pager {
	if !s.opts.Interactive {
		return runner.NoPause
	}
	return runner.PagerFunc(func(ctx context.Context, shown int) (bool, error) {
		defer pauseTimeout(ctx)()
		line, err := s.in.ReadLine(fmt.Sprintf("-- %d row(s) shown, type 'it' to continue -- ", shown))
		if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return strings.EqualFold(strings.TrimSpace(line), "it"), nil
	})
}

// openTable resolves "<database>.<table>". A missing database is reported
// as a missing table.
func (s *Session) openTable(ctx context.Context, name, action string) (*paimon.Table, error) {
	db, tbl, ok := splitTableName(name)
	if !ok {
		return nil, userErrorf("Invalid table name format, should be: <database>.<table>")
	}
	table, err := s.catalog.GetTable(ctx, db, tbl)
	if paimon.IsDatabaseNotExist(err) {
		return nil, userErrorf("Table does not exist: %s.%s", db, tbl)
	}
	if err != nil {
		return nil, failure(action, err)
	}
	return table, nil
}

func splitTableName(name string) (string, string, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
