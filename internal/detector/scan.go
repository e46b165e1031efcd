package detector

import (
	"context"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/indaco/relkit/internal/core"
)

// skipDirs are never descended into.
var skipDirs = []string{"node_modules", "vendor", "__pycache__", "target", "dist", "build", "venv", "site-packages", "bin", "obj"}

// tree is a bounded snapshot of the files below a project root. Paths are
// relative to the root and slash separated; files are kept in breadth-first
// order with entries of each directory sorted by name.
type tree struct {
	ctx   context.Context
	fs    core.FileSystem
	root  string
	files []string
	set   map[string]bool
	dirs  map[string]bool
}

// scanTree lists files up to maxDepth directories below root.
func scanTree(ctx context.Context, fs core.FileSystem, root string, maxDepth int, excludes []string) *tree {
	t := &tree{ctx: ctx, fs: fs, root: root, set: map[string]bool{}, dirs: map[string]bool{}}

	type queued struct {
		rel   string
		depth int
	}
	queue := []queued{{rel: "", depth: 0}}
	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}
		dir := queue[0]
		queue = queue[1:]

		entries, err := fs.ReadDir(ctx, filepath.Join(root, filepath.FromSlash(dir.rel)))
		if err != nil {
			// Skip directories we can't read
			continue
		}
		for _, entry := range entries {
			rel := path.Join(dir.rel, entry.Name())
			if entry.IsDir() {
				if dir.depth+1 > maxDepth || shouldSkipDir(entry.Name(), rel, excludes) {
					continue
				}
				t.dirs[rel] = true
				queue = append(queue, queued{rel: rel, depth: dir.depth + 1})
				continue
			}
			if isExcluded(entry.Name(), rel, excludes) {
				continue
			}
			t.files = append(t.files, rel)
			t.set[rel] = true
		}
	}
	return t
}

// shouldSkipDir checks if a directory should be excluded from scanning.
func shouldSkipDir(name, rel string, excludes []string) bool {
	// Skip hidden directories
	if strings.HasPrefix(name, ".") {
		return true
	}
	if slices.Contains(skipDirs, name) {
		return true
	}
	return isExcluded(name, rel, excludes)
}

func isExcluded(name, rel string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// has reports whether the root-relative file rel exists.
func (t *tree) has(rel string) bool {
	return t.set[rel]
}

// hasAny reports whether any of the files exists.
func (t *tree) hasAny(rels ...string) bool {
	return slices.ContainsFunc(rels, t.has)
}

// hasDir reports whether the root-relative directory rel was scanned.
func (t *tree) hasDir(rel string) bool {
	return t.dirs[rel]
}

// existing filters rels down to the files that exist, keeping order.
func (t *tree) existing(rels ...string) []string {
	var out []string
	for _, rel := range rels {
		if t.has(rel) {
			out = append(out, rel)
		}
	}
	return out
}

// first returns the first scanned file matching any of the patterns.
func (t *tree) first(patterns ...string) (string, bool) {
	for _, rel := range t.files {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				return rel, true
			}
		}
	}
	return "", false
}

// read returns the content of rel, or nil when it cannot be read.
func (t *tree) read(rel string) []byte {
	if !t.has(rel) {
		return nil
	}
	data, err := t.fs.ReadFile(t.ctx, filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	return data
}

// contains reports whether rel exists and includes substr.
func (t *tree) contains(rel, substr string) bool {
	return strings.Contains(string(t.read(rel)), substr)
}
