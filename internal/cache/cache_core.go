// Package cache stores table row counts in a local BoltDB file so repeated
// count commands against an unchanged snapshot return immediately.
package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.etcd.io/bbolt"

	"paimon-cli/internal/config"
	"paimon-cli/internal/logging"
)

// RowCount is one cached count result.
type RowCount struct {
	Warehouse  string `json:"warehouse"`
	Table      string `json:"table"` // db.table
	SnapshotID int64  `json:"snapshot_id"`
	Rows       int64  `json:"rows"`
	CountedAt  int64  `json:"counted_at"` // unix seconds
}

// Key returns the database key of the entry.
func (r RowCount) Key() string {
	return Key(r.Warehouse, r.Table)
}

// Key builds the database key for a table in a warehouse.
func Key(warehouse, table string) string {
	return warehouse + "#" + table
}

// Cache wraps BoltDB and provides row count lookups.
type Cache struct {
	db         *bbolt.DB
	config     *Config
	logger     logging.Logger
	fileSystem afero.Fs
	now        func() time.Time
}

const bucketRowCounts = "row_counts"

// Open opens or creates the cache at the given path. It ensures the parent
// directory and the database bucket exist.
func Open(path string) (*Cache, error) {
	return OpenWithConfig(DefaultConfig().WithCachePath(path))
}

// OpenWithConfig opens or creates the cache with the given configuration.
func OpenWithConfig(config *Config) (*Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return OpenWithDependencies(config, logging.Nop(), afero.NewOsFs())
}

// OpenWithDependencies opens or creates the cache with custom dependencies.
func OpenWithDependencies(cfg *Config, logger logging.Logger, fileSystem afero.Fs) (*Cache, error) {
	if cfg == nil {
		return nil, NewConfigurationError("config cannot be nil", nil)
	}
	if cfg.CachePath == "" {
		return nil, NewConfigurationError("cache path cannot be empty", nil)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	// Ensure parent directory exists
	dir := filepath.Dir(cfg.CachePath)
	if err := fileSystem.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, NewConfigurationError("failed to create cache directory", err)
	}

	db, err := bbolt.Open(cfg.CachePath, config.DBFilePermissions, &bbolt.Options{
		Timeout: cfg.DBTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ensure buckets exist
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketRowCounts)); err != nil {
			return NewDatabaseError("create_bucket", bucketRowCounts, err)
		}
		return nil
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warnf("failed to close database: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database buckets: %w", err)
	}

	logger.Debugf("opened row count cache at %s", cfg.CachePath)
	return &Cache{
		db:         db,
		config:     cfg,
		logger:     logger,
		fileSystem: fileSystem,
		now:        time.Now,
	}, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.config.CachePath
}

// Close closes the underlying BoltDB database.
func (c *Cache) Close() error {
	if c.db != nil {
		err := c.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}
