package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"paimon-cli/internal/history"
)

// ErrCancelled is returned when the user aborts a prompt with Ctrl-C or Ctrl-D.
var ErrCancelled = errors.New("operation cancelled")

// PrintWelcome prints the startup banner.
func PrintWelcome(out io.Writer) {
	_, _ = fmt.Fprintln(out, "========================================")
	_, _ = fmt.Fprintln(out, "    Welcome to Paimon CLI")
	_, _ = fmt.Fprintln(out, "========================================")
	_, _ = fmt.Fprintln(out)
}

// PromptStorage asks which warehouse to open. Saved configurations are
// offered first, followed by an option to enter a new one.
func PromptStorage(in LineReader, out io.Writer, saved []history.StorageConfig) (history.StorageConfig, error) {
	if len(saved) == 0 {
		return promptNewStorage(in, out)
	}

	_, _ = fmt.Fprintln(out, "Recent configurations:")
	for i, cfg := range saved {
		_, _ = fmt.Fprintln(out, history.FormatForDisplay(i+1, cfg))
	}
	_, _ = fmt.Fprintf(out, "  %d. Enter new configuration\n", len(saved)+1)

	choice, err := readTrimmed(in, fmt.Sprintf("Select option (1-%d): ", len(saved)+1))
	if err != nil {
		return history.StorageConfig{}, err
	}
	n, err := strconv.Atoi(choice)
	switch {
	case err != nil:
		return history.StorageConfig{}, userErrorf("Invalid option")
	case n >= 1 && n <= len(saved):
		cfg := saved[n-1]
		_, _ = fmt.Fprintf(out, "Using configuration: %s\n", cfg)
		return cfg, nil
	case n == len(saved)+1:
		return promptNewStorage(in, out)
	default:
		return history.StorageConfig{}, userErrorf("Invalid option")
	}
}

func promptNewStorage(in LineReader, out io.Writer) (history.StorageConfig, error) {
	_, _ = fmt.Fprintln(out, "\nPlease select storage type:")
	_, _ = fmt.Fprintln(out, "  1. Local (Local File System)")
	_, _ = fmt.Fprintln(out, "  2. S3")

	choice, err := readTrimmed(in, "Enter option (1 or 2): ")
	if err != nil {
		return history.StorageConfig{}, err
	}
	switch choice {
	case "1":
		path, err := readTrimmed(in, "Enter local storage path (e.g., /tmp/paimon): ")
		if err != nil {
			return history.StorageConfig{}, err
		}
		if path == "" {
			return history.StorageConfig{}, userErrorf("Warehouse path cannot be empty")
		}
		return history.NewLocal(path), nil
	case "2":
		return promptS3(in)
	default:
		return history.StorageConfig{}, userErrorf("Invalid option")
	}
}

func promptS3(in LineReader) (history.StorageConfig, error) {
	prompts := []string{
		"Enter S3 path (e.g., s3://bucket-name/path): ",
		"Enter Access Key (optional, press Enter to skip): ",
		"Enter Secret Key (optional, press Enter to skip): ",
		"Enter Endpoint (optional, press Enter to skip): ",
		"Enter Region (optional, press Enter to skip): ",
	}
	answers := make([]string, len(prompts))
	for i, p := range prompts {
		v, err := readTrimmed(in, p)
		if err != nil {
			return history.StorageConfig{}, err
		}
		answers[i] = v
	}
	if answers[0] == "" {
		return history.StorageConfig{}, userErrorf("Warehouse path cannot be empty")
	}
	return history.NewS3(answers[0], answers[1], answers[2], answers[3], answers[4]), nil
}

func readTrimmed(in LineReader, prompt string) (string, error) {
	line, err := in.ReadLine(prompt)
	if errors.Is(err, ErrInterrupted) || errors.Is(err, io.EOF) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
