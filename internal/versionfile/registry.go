package versionfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/aymanbagabas/go-udiff"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
)

// pomMaskedBlocks hold <version> elements that belong to other artifacts.
var pomMaskedBlocks = []string{
	"parent", "dependencies", "dependencyManagement", "build", "reporting", "profiles", "plugins", "extensions",
}

// DefaultHandlers returns the handler used for every Kind.
func DefaultHandlers() map[Kind]Handler {
	pythonModule := &assignmentHandler{
		format:   FormatAssignment,
		patterns: []*regexp.Regexp{pythonDunderVersion},
		fallback: pythonFallback,
	}
	return map[Kind]Handler{
		KindPyproject: &tomlHandler{
			fields:       []string{"project.version", "tool.poetry.version"},
			honorDynamic: true,
		},
		KindSetupPy: &assignmentHandler{
			format:   FormatAssignment,
			patterns: []*regexp.Regexp{setupPyKeyword, pythonDunderVersion},
			fallback: pythonFallback,
		},
		KindSetupCfg:     &iniHandler{section: "metadata"},
		KindPythonModule: pythonModule,
		KindPlainText:    rawHandler{},
		KindPackageJSON:  &jsonHandler{field: "version"},
		KindComposer:     &jsonHandler{field: "version"},
		KindGoMod:        goModHandler{},
		KindCargo: &tomlHandler{
			fields: []string{"package.version", "workspace.package.version"},
		},
		KindPom:     newXMLHandler([]string{"version"}, pomMaskedBlocks),
		KindGradle:  &assignmentHandler{format: FormatGradle, patterns: []*regexp.Regexp{gradleAssignment}},
		KindMSBuild: newXMLHandler([]string{"Version", "VersionPrefix"}, nil),
		KindGemspec: &assignmentHandler{format: FormatAssignment, patterns: []*regexp.Regexp{gemspecVersion}},
		KindRubyConstant: &assignmentHandler{
			format:   FormatAssignment,
			patterns: []*regexp.Regexp{rubyConstant},
			fallback: rubyFallback,
		},
	}
}

// Change is the outcome of rewriting one version file.
type Change struct {
	Path    string
	Old     []byte
	New     []byte
	Created bool
}

// Changed reports whether applying the change alters the file.
func (c *Change) Changed() bool {
	return c.Created || string(c.Old) != string(c.New)
}

// Diff renders the change as a unified diff.
func (c *Change) Diff() string {
	oldLabel := "a/" + c.Path
	if c.Created {
		oldLabel = "/dev/null"
	}
	return udiff.Unified(oldLabel, "b/"+c.Path, string(c.Old), string(c.New))
}

// Registry dispatches version reads and writes to the handler of each
// target's Kind. Target paths are resolved against an explicit root.
type Registry struct {
	fs       core.FileSystem
	handlers map[Kind]Handler
}

// NewRegistry creates a Registry backed by fs with the default handlers.
func NewRegistry(fs core.FileSystem) *Registry {
	return &Registry{fs: fs, handlers: DefaultHandlers()}
}

// Handler returns the handler registered for kind.
func (r *Registry) Handler(kind Kind) (Handler, error) {
	h, ok := r.handlers[kind]
	if !ok {
		return nil, fmt.Errorf("no handler for version file kind %q", kind)
	}
	return h, nil
}

// ReadVersion reads the version declared by t. It reports false when the
// file is missing or holds no recognizable version; only unexpected
// filesystem failures are returned as errors.
func (r *Registry) ReadVersion(ctx context.Context, root string, t Target) (semver.SemVersion, bool, error) {
	h, err := r.Handler(t.Kind)
	if err != nil {
		return semver.SemVersion{}, false, err
	}
	data, err := r.fs.ReadFile(ctx, filepath.Join(root, filepath.FromSlash(t.Path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return semver.SemVersion{}, false, nil
		}
		return semver.SemVersion{}, false, fmt.Errorf("failed to read %q: %w", t.Path, err)
	}
	v, ok := h.Read(data)
	return v, ok, nil
}

// Plan computes the rewrite of t to v without touching the filesystem.
//
// The error is a *FormatError when the file cannot be parsed and a
// *ManualUpdateError when its structure is not safe to edit automatically.
func (r *Registry) Plan(ctx context.Context, root string, t Target, v semver.SemVersion) (*Change, error) {
	h, err := r.Handler(t.Kind)
	if err != nil {
		return nil, err
	}

	change := &Change{Path: t.Path}
	data, err := r.fs.ReadFile(ctx, filepath.Join(root, filepath.FromSlash(t.Path)))
	switch {
	case err == nil:
		change.Old = data
	case errors.Is(err, fs.ErrNotExist):
		content, ok := Template(t.Kind, v)
		if !ok {
			return nil, &ManualUpdateError{Path: t.Path, Reason: "file does not exist"}
		}
		change.Created = true
		change.New = content
		return change, nil
	default:
		return nil, fmt.Errorf("failed to read %q: %w", t.Path, err)
	}

	updated, err := h.Write(data, v)
	if err != nil {
		if errors.Is(err, errNoDeclaration) {
			return nil, &ManualUpdateError{Path: t.Path, Reason: err.Error()}
		}
		return nil, &FormatError{Path: t.Path, Format: h.Format(), Err: err}
	}
	change.New = updated
	return change, nil
}

// Apply writes a planned change, creating parent directories for new files.
func (r *Registry) Apply(ctx context.Context, root string, c *Change) error {
	if !c.Changed() {
		return nil
	}
	path := filepath.Join(root, filepath.FromSlash(c.Path))
	if c.Created {
		if err := r.fs.MkdirAll(ctx, filepath.Dir(path), core.PermDirDefault); err != nil {
			return fmt.Errorf("failed to create directory for %q: %w", c.Path, err)
		}
	}
	if err := r.fs.WriteFile(ctx, path, c.New, core.PermFileDefault); err != nil {
		return fmt.Errorf("failed to write %q: %w", c.Path, err)
	}
	return nil
}

// WriteVersion rewrites t to declare v.
func (r *Registry) WriteVersion(ctx context.Context, root string, t Target, v semver.SemVersion) (*Change, error) {
	change, err := r.Plan(ctx, root, t, v)
	if err != nil {
		return nil, err
	}
	if err := r.Apply(ctx, root, change); err != nil {
		return nil, err
	}
	return change, nil
}

// Template returns the content of a freshly created file of kind declaring v.
// It reports false for kinds that are project manifests and cannot be
// created from a version alone.
func Template(kind Kind, v semver.SemVersion) ([]byte, bool) {
	switch kind {
	case KindPlainText:
		return []byte(v.String() + "\n"), true
	case KindPythonModule:
		return []byte(pythonFallback(v) + "\n"), true
	case KindRubyConstant:
		return []byte(fmt.Sprintf("module Version\n  VERSION = %q\nend\n", v.String())), true
	case KindMSBuild:
		return []byte(fmt.Sprintf("<Project>\n  <PropertyGroup>\n    <Version>%s</Version>\n  </PropertyGroup>\n</Project>\n", v)), true
	default:
		return nil, false
	}
}
