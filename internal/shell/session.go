// Package shell implements the interactive command loop: parsing the
// show, desc, count and select commands and printing their results.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"

	"paimon-cli/internal/cache"
	"paimon-cli/internal/config"
	"paimon-cli/internal/formatter"
	"paimon-cli/internal/logging"
	"paimon-cli/internal/paimon"
)

// Prompt is shown before each command.
const Prompt = "paimon> "

// ErrExit is returned by Execute for the exit and quit commands.
var ErrExit = errors.New("exit")

// Catalog is the warehouse being browsed. *paimon.Catalog satisfies it.
type Catalog interface {
	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, database string) ([]string, error)
	GetTable(ctx context.Context, database, table string) (*paimon.Table, error)
}

// Options configures a Session.
type Options struct {
	// Warehouse identifies the connection in the row count cache
	Warehouse string

	Settings config.Settings

	// Format controls how select results are written
	Format formatter.FormatOptions

	// Cache serves repeated counts; nil always scans
	Cache *cache.Cache

	// Interactive enables the continue prompt between result pages
	Interactive bool

	// QueryTimeout bounds a single command, not counting time spent at the
	// page prompt (defaults to the query timeout)
	QueryTimeout time.Duration

	Logger logging.Logger
}

// Session holds the REPL state.
type Session struct {
	catalog  Catalog
	in       LineReader
	out      io.Writer
	errOut   io.Writer
	opts     Options
	commands map[string]func(ctx context.Context, args []string) error
}

// NewSession creates a session reading commands from in.
func NewSession(catalog Catalog, in LineReader, out, errOut io.Writer, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Settings == (config.Settings{}) {
		opts.Settings = config.DefaultSettings()
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = config.DefaultTimeouts().Query
	}
	if opts.Format.Format == "" {
		opts.Format.Format = formatter.FormatTable
	}
	s := &Session{
		catalog: catalog,
		in:      in,
		out:     out,
		errOut:  errOut,
		opts:    opts,
	}
	s.commands = map[string]func(context.Context, []string) error{
		"help":     s.cmdHelp,
		"show":     s.cmdShow,
		"desc":     s.cmdDescribe,
		"describe": s.cmdDescribe,
		"count":    s.cmdCount,
		"select":   s.cmdSelect,
	}
	return s
}

// Run prints the help text and executes commands until exit, end of input
// or an interrupt. Command errors are printed and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	s.printHelp()

	for {
		line, err := s.in.ReadLine(Prompt)
		if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
			_, _ = fmt.Fprintln(s.out, "\nGoodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		err = s.executeInterruptible(ctx, line)
		if errors.Is(err, ErrExit) {
			return nil
		}
		if err != nil {
			s.printError(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// executeInterruptible runs one command, cancelling it on Ctrl-C.
func (s *Session) executeInterruptible(ctx context.Context, line string) error {
	cmdCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return s.Execute(cmdCtx, line)
}

// Execute parses and runs a single command line.
func (s *Session) Execute(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	command := strings.ToLower(parts[0])

	if command == "exit" || command == "quit" {
		_, _ = fmt.Fprintln(s.out, "Goodbye!")
		return ErrExit
	}

	handler, ok := s.commands[command]
	if !ok {
		return userErrorf("Unknown command: %s, type 'help' for available commands", command)
	}

	cmdCtx, cancel := withQueryTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	s.opts.Logger.Debugf("executing %q", line)
	return handler(cmdCtx, parts)
}

// info returns where decorations such as titles and row totals go. With
// csv or json output they move to stderr so stdout holds only data.
func (s *Session) info() io.Writer {
	if s.opts.Format.Format == formatter.FormatTable {
		return s.out
	}
	return s.errOut
}

// printError reports a failed command, in red when colors are enabled.
func (s *Session) printError(err error) {
	if s.opts.Format.Colorize {
		_, _ = errorColor.Fprintln(s.errOut, err)
		return
	}
	_, _ = fmt.Fprintln(s.errOut, err)
}

var errorColor = color.New(color.FgRed)

// userError is a message shown to the user as is.
type userError struct {
	msg string
}

func (e *userError) Error() string {
	return e.msg
}

func userErrorf(format string, args ...any) error {
	return &userError{msg: fmt.Sprintf(format, args...)}
}

// failure reports a collaborator error. Missing databases and tables keep
// their own message; anything else is prefixed with the failed action.
func failure(action string, err error) error {
	if paimon.IsDatabaseNotExist(err) || paimon.IsTableNotExist(err) {
		return &userError{msg: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return userErrorf("Failed to %s: timed out", action)
	}
	if errors.Is(err, context.Canceled) {
		return userErrorf("Failed to %s: cancelled", action)
	}
	return userErrorf("Failed to %s: %v", action, err)
}
