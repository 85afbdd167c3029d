package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"paimon-cli/internal/config"
	"paimon-cli/internal/logging"
)

// MaxEntries is the number of configurations kept in the history file.
const MaxEntries = 3

const (
	blockSeparator  = "---"
	prefixType      = "type="
	prefixWarehouse = "warehouse="
	prefixOption    = "option."
)

// Manager loads and saves the connection history file.
type Manager struct {
	fs     afero.Fs
	path   string
	logger logging.Logger
}

// NewManager creates a manager for the history file inside dir.
func NewManager(fsys afero.Fs, dir string, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		fs:     fsys,
		path:   filepath.Join(dir, config.HistoryFileName),
		logger: logger,
	}
}

// Path returns the absolute path of the history file.
func (m *Manager) Path() string {
	if abs, err := filepath.Abs(m.path); err == nil {
		return abs
	}
	return m.path
}

// Load returns the stored configurations, newest first. A missing file is an
// empty history. Blocks without a valid type or a warehouse are skipped.
func (m *Manager) Load() ([]StorageConfig, error) {
	data, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config history: %w", err)
	}
	return m.parse(data)
}

// block accumulates the lines of one configuration while parsing.
type block struct {
	typ       StorageType
	warehouse string
	options   map[string]string
	invalid   bool
	started   bool
}

func (m *Manager) parse(data []byte) ([]StorageConfig, error) {
	var configs []StorageConfig
	current := block{options: map[string]string{}}

	flush := func(lineNo int) {
		switch {
		case !current.started:
		case current.invalid:
		case current.typ == "" || current.warehouse == "":
			m.logger.Warnf("skipping incomplete history entry ending at line %d", lineNo)
		default:
			configs = append(configs, StorageConfig{
				Type:      current.typ,
				Warehouse: current.warehouse,
				Options:   current.options,
			})
		}
		current = block{options: map[string]string{}}
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case line == blockSeparator:
			flush(lineNo)
		case strings.HasPrefix(line, prefixType):
			current.started = true
			typ, err := ParseStorageType(strings.TrimPrefix(line, prefixType))
			if err != nil {
				m.logger.Warnf("skipping history entry at line %d: %v", lineNo, err)
				current.invalid = true
				continue
			}
			current.typ = typ
		case strings.HasPrefix(line, prefixWarehouse):
			current.started = true
			current.warehouse = strings.TrimPrefix(line, prefixWarehouse)
		case strings.HasPrefix(line, prefixOption):
			current.started = true
			key, value, ok := strings.Cut(strings.TrimPrefix(line, prefixOption), "=")
			if !ok || key == "" {
				m.logger.Warnf("ignoring malformed option at line %d", lineNo)
				continue
			}
			current.options[key] = value
		default:
			m.logger.Debugf("ignoring unknown history line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse config history: %w", err)
	}
	flush(lineNo)

	return configs, nil
}

// Save records cfg as the most recent configuration. An existing entry for
// the same warehouse is replaced and the history is capped at MaxEntries.
func (m *Manager) Save(cfg StorageConfig) error {
	existing, err := m.Load()
	if err != nil {
		// An unreadable history is replaced rather than blocking the session
		m.logger.Warnf("discarding unreadable config history: %v", err)
		existing = nil
	}

	entries := []StorageConfig{cfg}
	for _, c := range existing {
		if !c.SameAs(cfg) {
			entries = append(entries, c)
		}
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	return m.write(entries)
}

// Clear removes the history file.
func (m *Manager) Clear() error {
	if err := m.fs.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete config history: %w", err)
	}
	return nil
}

func (m *Manager) write(entries []StorageConfig) error {
	if err := m.fs.MkdirAll(filepath.Dir(m.path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(m.fs, m.path, Encode(entries), config.SecretFilePermissions); err != nil {
		return fmt.Errorf("failed to write config history: %w", err)
	}
	return nil
}

// Encode renders entries in the history file format. Options are written in
// key order so the output is stable.
func Encode(entries []StorageConfig) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Paimon CLI Configuration History\n")
	fmt.Fprintf(&buf, "# This file stores the last %d configurations\n", MaxEntries)
	buf.WriteString("# Auto-generated, do not edit manually\n")
	buf.WriteString("\n")

	for i, c := range entries {
		if i > 0 {
			buf.WriteString(blockSeparator + "\n")
		}
		buf.WriteString(prefixType + string(c.Type) + "\n")
		buf.WriteString(prefixWarehouse + c.Warehouse + "\n")

		keys := make([]string, 0, len(c.Options))
		for k := range c.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteString(prefixOption + k + "=" + c.Options[k] + "\n")
		}
	}
	return buf.Bytes()
}
