package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// Get returns the cached entry for a table regardless of its snapshot.
func (c *Cache) Get(warehouse, table string) (*RowCount, error) {
	key := Key(warehouse, table)
	var entry *RowCount
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRowCounts))
		if b == nil {
			return fmt.Errorf("row count bucket missing")
		}
		data := b.Get([]byte(key))
		if data == nil {
			return NewNotFoundError("get", key)
		}
		var rc RowCount
		if err := json.Unmarshal(data, &rc); err != nil {
			return NewInvalidDataError("get", key, "failed to unmarshal row count", err)
		}
		entry = &rc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Lookup returns the cached row count when it was taken at snapshotID and
// has not expired.
func (c *Cache) Lookup(warehouse, table string, snapshotID int64) (int64, bool, error) {
	entry, err := c.Get(warehouse, table)
	if IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if entry.SnapshotID != snapshotID {
		c.logger.Debugf("cached count for %s is for snapshot %d, table is at %d", table, entry.SnapshotID, snapshotID)
		return 0, false, nil
	}
	if c.config.MaxAge > 0 && c.now().Sub(time.Unix(entry.CountedAt, 0)) > c.config.MaxAge {
		c.logger.Debugf("cached count for %s expired", table)
		return 0, false, nil
	}
	return entry.Rows, true, nil
}

// Upsert inserts or updates a RowCount in the cache.
func (c *Cache) Upsert(entry RowCount) error {
	if entry.CountedAt == 0 {
		entry.CountedAt = c.now().Unix()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal row count: %w", err)
	}
	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRowCounts))
		if b == nil {
			return fmt.Errorf("row count bucket missing")
		}
		return b.Put([]byte(entry.Key()), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update row count: %w", err)
	}
	return nil
}

// List returns all cached entries ordered by warehouse and table.
func (c *Cache) List() ([]RowCount, error) {
	var entries []RowCount
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRowCounts))
		if b == nil {
			return fmt.Errorf("row count bucket missing")
		}
		return b.ForEach(func(k, v []byte) error {
			var rc RowCount
			if err := json.Unmarshal(v, &rc); err != nil {
				c.logger.Warnf("skipping unreadable cache entry %s: %v", k, err)
				return nil
			}
			entries = append(entries, rc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list row counts: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Warehouse != entries[j].Warehouse {
			return entries[i].Warehouse < entries[j].Warehouse
		}
		return entries[i].Table < entries[j].Table
	})
	return entries, nil
}

// Delete removes the entry of one table.
func (c *Cache) Delete(warehouse, table string) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRowCounts))
		if b == nil {
			return fmt.Errorf("row count bucket missing")
		}
		return b.Delete([]byte(Key(warehouse, table)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete row count: %w", err)
	}
	return nil
}

// Clean removes every entry of a warehouse, or all entries when warehouse is
// empty. It returns the number of entries removed.
func (c *Cache) Clean(warehouse string) (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRowCounts))
		if b == nil {
			return fmt.Errorf("row count bucket missing")
		}
		var keys [][]byte
		err := b.ForEach(func(k, _ []byte) error {
			if warehouse == "" || strings.HasPrefix(string(k), warehouse+"#") {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return NewDatabaseError("delete", string(k), err)
			}
		}
		removed = len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean row counts: %w", err)
	}
	return removed, nil
}

// Count returns the row count of t, served from the cache when the table has
// not changed since the last count. A nil cache always counts.
func (c *Cache) Count(ctx context.Context, warehouse string, t Counter) (rows int64, cached bool, err error) {
	if c == nil {
		rows, err = t.CountRows(ctx)
		return rows, false, err
	}

	snapshotID, err := t.SnapshotID(ctx)
	if err != nil {
		return 0, false, err
	}
	rows, ok, err := c.Lookup(warehouse, t.FullName(), snapshotID)
	if err != nil {
		c.logger.Warnf("row count cache lookup failed: %v", err)
	} else if ok {
		return rows, true, nil
	}

	rows, err = t.CountRows(ctx)
	if err != nil {
		return 0, false, err
	}
	entry := RowCount{Warehouse: warehouse, Table: t.FullName(), SnapshotID: snapshotID, Rows: rows}
	if err := c.Upsert(entry); err != nil {
		c.logger.Warnf("failed to cache row count for %s: %v", t.FullName(), err)
	}
	return rows, false, nil
}
