// Package core holds the small abstractions shared by every relkit component:
// filesystem access, version-control and release-host operations, and
// external command execution. Production implementations live next to the
// interfaces or in their own packages; in-memory mocks support tests.
package core

import (
	"context"
	"os"
)

// File permission constants used across the codebase.
const (
	// PermOwnerRW is used when rewriting files that must stay private.
	PermOwnerRW os.FileMode = 0o600

	// PermFileDefault is used for newly created version files.
	PermFileDefault os.FileMode = 0o644

	// PermDirDefault is used for newly created directories.
	PermDirDefault os.FileMode = 0o755
)

// MaxDiscoveryDepth bounds recursive scans below a project root.
const MaxDiscoveryDepth = 3

// FileSystem abstracts file operations so components can be tested against
// an in-memory tree. All paths are absolute or relative to the process
// working directory; components always join them against an explicit root.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]os.DirEntry, error)
	MkdirAll(ctx context.Context, path string, perm os.FileMode) error
	Rename(ctx context.Context, oldPath, newPath string) error
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production filesystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

var _ FileSystem = (*OSFileSystem)(nil)

func (OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Keep the mode of files that already exist.
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (OSFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

func (OSFileSystem) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(oldPath, newPath)
}

// Exists reports whether path exists on fs.
func Exists(ctx context.Context, fs FileSystem, path string) bool {
	_, err := fs.Stat(ctx, path)
	return err == nil
}

// IsDir reports whether path exists on fs and is a directory.
func IsDir(ctx context.Context, fs FileSystem, path string) bool {
	info, err := fs.Stat(ctx, path)
	return err == nil && info.IsDir()
}
