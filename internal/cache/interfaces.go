package cache

import "context"

// Counter is a table whose row count can be cached. *paimon.Table
// satisfies it.
type Counter interface {
	FullName() string
	SnapshotID(ctx context.Context) (int64, error)
	CountRows(ctx context.Context) (int64, error)
}
