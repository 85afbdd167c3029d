package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ergochat/readline"
)

// ErrInterrupted is returned by a LineReader when the user presses Ctrl-C.
// End of input (Ctrl-D) is reported as io.EOF.
var ErrInterrupted = errors.New("interrupted")

// LineReader reads one line of user input after showing prompt.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// HistoryLimit is the number of commands kept by the interactive line editor.
const HistoryLimit = 5

// ReadlineReader reads from the terminal with line editing, history and
// command completion.
type ReadlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader opens the terminal.
func NewReadlineReader() (*ReadlineReader, error) {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          Prompt,
		HistoryLimit:    HistoryLimit,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	return &ReadlineReader{rl: rl}, nil
}

// ReadLine implements LineReader.
func (r *ReadlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	return line, err
}

// Close restores the terminal.
func (r *ReadlineReader) Close() error {
	return r.rl.Close()
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("show",
			readline.PcItem("databases"),
			readline.PcItem("tables"),
		),
		readline.PcItem("desc"),
		readline.PcItem("describe"),
		readline.PcItem("count"),
		readline.PcItem("select"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// ScannerReader reads newline separated input such as a piped script.
// Prompts are not shown.
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader returns a LineReader over r.
func NewScannerReader(r io.Reader) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r)}
}

// ReadLine implements LineReader. It returns io.EOF at the end of input.
func (s *ScannerReader) ReadLine(string) (string, error) {
	if s.scanner.Scan() {
		return strings.TrimRight(s.scanner.Text(), "\r"), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
