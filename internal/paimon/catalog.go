// Package paimon reads Apache Paimon tables directly from warehouse storage.
//
// The catalog follows the filesystem layout
//
//	<warehouse>/<database>.db/<table>/{schema,snapshot,manifest,bucket-N,...}
//
// and supports batch reads of the latest snapshot of append-only and
// primary-key tables stored as Parquet or Avro.
package paimon

import (
	"context"
	"path"
	"sort"
	"strings"

	"paimon-cli/internal/logging"
	"paimon-cli/internal/storage"
)

const databaseSuffix = ".db"

// Catalog lists and opens the databases and tables of a warehouse.
type Catalog struct {
	fio    storage.FileIO
	logger logging.Logger
}

// NewCatalog creates a catalog over fio, whose root is the warehouse.
func NewCatalog(fio storage.FileIO, logger logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Catalog{fio: fio, logger: logger}
}

// ListDatabases returns the database names in ascending order.
func (c *Catalog) ListDatabases(ctx context.Context) ([]string, error) {
	entries, err := c.fio.ListDir(ctx, "")
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, newIOError("warehouse", err)
	}

	var names []string
	for _, e := range entries {
		name := path.Base(e.Path)
		if !e.IsDir || !strings.HasSuffix(name, databaseSuffix) || name == databaseSuffix {
			continue
		}
		names = append(names, strings.TrimSuffix(name, databaseSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// DatabaseExists reports whether the database directory exists.
func (c *Catalog) DatabaseExists(ctx context.Context, db string) (bool, error) {
	if !validName(db) {
		return false, nil
	}
	ok, err := c.fio.Exists(ctx, databasePath(db))
	if err != nil {
		return false, newIOError(db, err)
	}
	return ok, nil
}

// ListTables returns the table names of db in ascending order. Directories
// without a schema are not tables.
func (c *Catalog) ListTables(ctx context.Context, db string) ([]string, error) {
	ok, err := c.DatabaseExists(ctx, db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newDatabaseNotExistError(db)
	}

	entries, err := c.fio.ListDir(ctx, databasePath(db))
	if err != nil {
		return nil, newIOError(db, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		ids, err := versionedFiles(ctx, c.fio, path.Join(e.Path, schemaDir), schemaPrefix)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			c.logger.Debugf("skipping %s: no schema files", e.Path)
			continue
		}
		names = append(names, path.Base(e.Path))
	}
	sort.Strings(names)
	return names, nil
}

// TableExists reports whether db.table exists and has a schema.
func (c *Catalog) TableExists(ctx context.Context, db, table string) (bool, error) {
	if !validName(db) || !validName(table) {
		return false, nil
	}
	ids, err := versionedFiles(ctx, c.fio, path.Join(tablePath(db, table), schemaDir), schemaPrefix)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// GetTable opens db.table with its latest schema.
func (c *Catalog) GetTable(ctx context.Context, db, table string) (*Table, error) {
	ok, err := c.DatabaseExists(ctx, db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newDatabaseNotExistError(db)
	}

	fullName := db + "." + table
	if !validName(table) {
		return nil, newTableNotExistError(fullName)
	}
	p := tablePath(db, table)
	ts, err := latestSchema(ctx, c.fio, p)
	if err != nil {
		return nil, err
	}
	if ts == nil {
		return nil, newTableNotExistError(fullName)
	}

	c.logger.Debugf("opened table %s at schema %d", fullName, ts.ID)
	return &Table{
		fio:      c.fio,
		logger:   c.logger,
		database: db,
		name:     table,
		path:     p,
		schema:   ts,
	}, nil
}

// Close releases the underlying storage.
func (c *Catalog) Close() error {
	return c.fio.Close()
}

func databasePath(db string) string {
	return db + databaseSuffix
}

func tablePath(db, table string) string {
	return path.Join(databasePath(db), table)
}

// validName rejects names that would escape the warehouse layout.
func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
