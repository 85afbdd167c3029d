// Package storage provides read-only access to warehouse files on the local
// filesystem or in S3 compatible object stores.
//
// All paths are slash separated and relative to the warehouse root.
package storage

import (
	"context"
	"fmt"
	"time"

	"paimon-cli/internal/history"
	"paimon-cli/internal/logging"
)

// FileStatus describes an entry returned by a listing.
type FileStatus struct {
	Path    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// FileIO is the file access needed to read a warehouse.
type FileIO interface {
	// ReadFile returns the whole content of path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// Exists reports whether path is a file or a directory.
	Exists(ctx context.Context, path string) (bool, error)
	// ListDir returns the direct children of dir.
	ListDir(ctx context.Context, dir string) ([]FileStatus, error)
	// ListFiles returns every file below root.
	ListFiles(ctx context.Context, root string) ([]FileStatus, error)
	// Close releases resources held by the implementation.
	Close() error
}

// Open returns the FileIO for cfg.
func Open(ctx context.Context, cfg history.StorageConfig, logger logging.Logger) (FileIO, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	switch cfg.Type {
	case history.StorageLocal:
		local, err := NewLocal(cfg.Warehouse)
		if err != nil {
			return nil, err
		}
		logger.Debugf("opened local warehouse %s", cfg.Warehouse)
		return local, nil
	case history.StorageS3:
		remote, err := NewS3(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Debugf("opened S3 warehouse %s (bucket %s)", cfg.Warehouse, remote.bucket)
		return remote, nil
	default:
		return nil, NewConfigurationError(fmt.Sprintf("unsupported storage type: %q", cfg.Type), nil)
	}
}
