package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// LocalFileIO reads a warehouse through an afero filesystem.
type LocalFileIO struct {
	fs afero.Fs
}

// NewLocal opens the warehouse directory root on the operating system
// filesystem. The directory must exist.
func NewLocal(root string) (*LocalFileIO, error) {
	if strings.TrimSpace(root) == "" {
		return nil, NewConfigurationError("warehouse path is empty", nil)
	}
	root = strings.TrimPrefix(root, "file://")

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, NewConfigurationError("invalid warehouse path", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewNotFoundError("open", abs)
		}
		return nil, NewIOError("open", abs, err)
	}
	if !info.IsDir() {
		return nil, NewConfigurationError("warehouse path is not a directory: "+abs, nil)
	}

	return NewLocalFromFs(afero.NewBasePathFs(afero.NewOsFs(), abs)), nil
}

// NewLocalFromFs wraps an afero filesystem whose root is the warehouse.
func NewLocalFromFs(fsys afero.Fs) *LocalFileIO {
	return &LocalFileIO{fs: fsys}
}

func (l *LocalFileIO) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(l.fs, toNative(p))
	if err != nil {
		return nil, wrapLocalError("read", p, err)
	}
	return data, nil
}

func (l *LocalFileIO) Exists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(l.fs, toNative(p))
	if err != nil {
		return false, NewIOError("exists", p, err)
	}
	return ok, nil
}

func (l *LocalFileIO) ListDir(ctx context.Context, dir string) ([]FileStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infos, err := afero.ReadDir(l.fs, toNative(dir))
	if err != nil {
		return nil, wrapLocalError("list", dir, err)
	}

	statuses := make([]FileStatus, 0, len(infos))
	for _, info := range infos {
		statuses = append(statuses, FileStatus{
			Path:    joinPath(dir, info.Name()),
			Size:    info.Size(),
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		})
	}
	return statuses, nil
}

func (l *LocalFileIO) ListFiles(ctx context.Context, root string) ([]FileStatus, error) {
	var statuses []FileStatus
	err := afero.Walk(l.fs, toNative(root), func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		statuses = append(statuses, FileStatus{
			Path:    cleanPath(filepath.ToSlash(p)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, wrapLocalError("walk", root, err)
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Path < statuses[j].Path })
	return statuses, nil
}

func (l *LocalFileIO) Close() error {
	return nil
}

func wrapLocalError(op, p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return NewNotFoundError(op, p)
	}
	return NewIOError(op, p, err)
}

func toNative(p string) string {
	p = cleanPath(p)
	if p == "" {
		return "."
	}
	return filepath.FromSlash(p)
}

// cleanPath normalizes a relative warehouse path. The root is "".
func cleanPath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

func joinPath(dir, name string) string {
	return cleanPath(path.Join(dir, name))
}
