package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Directories are
// implied by the files stored below them and can also be created explicitly.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	modes map[string]os.FileMode
	dirs  map[string]bool

	// Injected failures, returned by the matching operation when non-nil.
	ReadErr  error
	WriteErr error
	StatErr  error
}

// NewMockFileSystem returns an empty in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
		modes: make(map[string]os.FileMode),
		dirs:  map[string]bool{"/": true, ".": true},
	}
}

var _ FileSystem = (*MockFileSystem)(nil)

// SetFile stores content at path, creating parent directories.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFileLocked(filepath.Clean(path), data, PermFileDefault)
}

// GetFile returns the stored content of path.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// Paths returns every stored file path in sorted order.
func (m *MockFileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *MockFileSystem) setFileLocked(path string, data []byte, perm os.FileMode) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.files[path] = cp
	if _, ok := m.modes[path]; !ok {
		m.modes[path] = perm
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFileLocked(filepath.Clean(path), data, perm)
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.StatErr != nil {
		return nil, m.StatErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	clean := filepath.Clean(path)
	if data, ok := m.files[clean]; ok {
		return &mockFileInfo{name: filepath.Base(clean), size: int64(len(data)), mode: m.modes[clean]}, nil
	}
	if m.dirs[clean] {
		return &mockFileInfo{name: filepath.Base(clean), mode: fs.ModeDir | PermDirDefault, dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	clean := filepath.Clean(path)
	if !m.dirs[clean] {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	seen := make(map[string]bool)
	var entries []os.DirEntry
	add := func(child string, dir bool, size int64) {
		name := filepath.Base(child)
		if seen[name] {
			return
		}
		seen[name] = true
		mode := PermFileDefault
		if dir {
			mode = fs.ModeDir | PermDirDefault
		}
		entries = append(entries, &mockDirEntry{info: &mockFileInfo{name: name, size: size, mode: mode, dir: dir}})
	}
	for p, data := range m.files {
		if filepath.Dir(p) == clean {
			add(p, false, int64(len(data)))
		}
	}
	for d := range m.dirs {
		if d != clean && filepath.Dir(d) == clean {
			add(d, true, 0)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MockFileSystem) MkdirAll(ctx context.Context, path string, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := filepath.Clean(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return nil
}

func (m *MockFileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	oldClean := filepath.Clean(oldPath)
	data, ok := m.files[oldClean]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	mode := m.modes[oldClean]
	delete(m.files, oldClean)
	delete(m.modes, oldClean)
	m.setFileLocked(filepath.Clean(newPath), data, mode)
	return nil
}

type mockFileInfo struct {
	name string
	size int64
	mode os.FileMode
	dir  bool
}

func (i *mockFileInfo) Name() string       { return i.name }
func (i *mockFileInfo) Size() int64        { return i.size }
func (i *mockFileInfo) Mode() os.FileMode  { return i.mode }
func (i *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i *mockFileInfo) IsDir() bool        { return i.dir }
func (i *mockFileInfo) Sys() any           { return nil }

type mockDirEntry struct {
	info *mockFileInfo
}

func (e *mockDirEntry) Name() string               { return e.info.name }
func (e *mockDirEntry) IsDir() bool                { return e.info.dir }
func (e *mockDirEntry) Type() os.FileMode          { return e.info.mode.Type() }
func (e *mockDirEntry) Info() (os.FileInfo, error) { return e.info, nil }
