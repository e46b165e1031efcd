package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/indaco/relkit/internal/core"
)

// resolveArtifacts expands doublestar patterns, relative to root unless
// absolute, into file paths. Patterns matching nothing are returned in
// unmatched.
func resolveArtifacts(ctx context.Context, fs core.FileSystem, root string, patterns []string) (files, unmatched []string, err error) {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, nil, fmt.Errorf("invalid artifact pattern %q", pattern)
		}
		full := pattern
		if !path.IsAbs(pattern) {
			full = path.Join(filepath.ToSlash(root), pattern)
		}

		base, _ := doublestar.SplitPattern(full)
		var matched []string
		walkFiles(ctx, fs, base, func(p string) {
			if ok, _ := doublestar.Match(full, p); ok {
				matched = append(matched, filepath.FromSlash(p))
			}
		})
		if len(matched) == 0 {
			unmatched = append(unmatched, pattern)
			continue
		}
		for _, m := range matched {
			if !slices.Contains(files, m) {
				files = append(files, m)
			}
		}
	}
	return files, unmatched, ctx.Err()
}

// walkFiles calls fn for every file below dir, skipping .git.
func walkFiles(ctx context.Context, fs core.FileSystem, dir string, fn func(p string)) {
	if ctx.Err() != nil {
		return
	}
	entries, err := fs.ReadDir(ctx, filepath.FromSlash(dir))
	if err != nil {
		return
	}
	for _, entry := range entries {
		p := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if entry.Name() == ".git" {
				continue
			}
			walkFiles(ctx, fs, p, fn)
			continue
		}
		fn(p)
	}
}
