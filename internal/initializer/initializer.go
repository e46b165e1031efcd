// Package initializer scaffolds version files for projects that have none.
package initializer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/detector"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/versionfile"
)

// maxBackups bounds the search for a free backup name.
const maxBackups = 100

// Detector builds the project profile.
type Detector interface {
	Detect(ctx context.Context, root string) *detector.ProjectProfile
}

// Result describes what an initialization did, or would do under dry-run.
type Result struct {
	// Files are the version files created or updated.
	Files []string

	// Backups are the copies taken of pre-existing files before editing.
	Backups []string

	// Changes hold the content of every write, for diffs.
	Changes []*versionfile.Change

	// Warnings are files that need a manual edit.
	Warnings []string
}

// Initializer creates canonical version files.
type Initializer struct {
	fs       core.FileSystem
	detector Detector
	registry *versionfile.Registry
}

// New creates an Initializer.
func New(fs core.FileSystem, det Detector) *Initializer {
	return &Initializer{fs: fs, detector: det, registry: versionfile.NewRegistry(fs)}
}

// Initialize scaffolds version files at start and returns the files it
// created or updated.
func (i *Initializer) Initialize(ctx context.Context, root string, start semver.SemVersion) ([]string, error) {
	res, err := i.Run(ctx, root, start, false)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Run gives every detected ecosystem without a readable version a
// canonical version file. Multi-language and unrecognized projects also
// get a root VERSION file. Existing files are backed up before they are
// edited. With dryRun nothing is written.
func (i *Initializer) Run(ctx context.Context, root string, start semver.SemVersion, dryRun bool) (*Result, error) {
	log := logging.G(ctx).WithField("component", "initializer")
	profile := i.detector.Detect(ctx, root)

	var targets []versionfile.Target
	add := func(t versionfile.Target) {
		if !slices.ContainsFunc(targets, func(o versionfile.Target) bool { return o.Path == t.Path }) {
			targets = append(targets, t)
		}
	}

	for _, eco := range profile.Languages {
		if i.hasVersion(ctx, root, profile.VersionFilesFor(eco)) {
			log.Debugf("%s already declares a version", eco)
			continue
		}
		if t, ok := canonicalTarget(eco, profile); ok {
			add(t)
		}
	}

	if profile.ProjectType == detector.ProjectMulti || profile.ProjectType == detector.ProjectUnknown {
		generic := versionfile.Target{Path: "VERSION", Ecosystem: versionfile.EcosystemGeneric, Kind: versionfile.KindPlainText}
		if !i.hasVersion(ctx, root, []versionfile.Target{generic}) {
			add(generic)
		}
	}

	res := &Result{}
	for _, t := range targets {
		change, err := i.registry.Plan(ctx, root, t, start)
		var manual *versionfile.ManualUpdateError
		switch {
		case errors.As(err, &manual):
			res.Warnings = append(res.Warnings, manual.Error())
			continue
		case err != nil:
			return res, err
		}
		if !change.Changed() {
			continue
		}

		if !change.Created {
			backup, err := i.backup(ctx, root, t.Path, dryRun)
			if err != nil {
				return res, err
			}
			res.Backups = append(res.Backups, backup)
		}
		if !dryRun {
			if err := i.registry.Apply(ctx, root, change); err != nil {
				return res, err
			}
		}
		log.Debugf("initialized %s at %s", t.Path, start)
		res.Files = append(res.Files, t.Path)
		res.Changes = append(res.Changes, change)
	}
	return res, nil
}

func (i *Initializer) hasVersion(ctx context.Context, root string, targets []versionfile.Target) bool {
	for _, t := range targets {
		if _, ok, err := i.registry.ReadVersion(ctx, root, t); err == nil && ok {
			return true
		}
	}
	return false
}

// backup copies rel to the first free "<rel>.bak[.N]" name.
func (i *Initializer) backup(ctx context.Context, root, rel string, dryRun bool) (string, error) {
	src := filepath.Join(root, filepath.FromSlash(rel))
	name := rel + ".bak"
	for n := 1; core.Exists(ctx, i.fs, filepath.Join(root, filepath.FromSlash(name))); n++ {
		if n > maxBackups {
			return "", fmt.Errorf("no free backup name for %q", rel)
		}
		name = fmt.Sprintf("%s.bak.%d", rel, n)
	}
	if dryRun {
		return name, nil
	}

	data, err := i.fs.ReadFile(ctx, src)
	if err != nil {
		return "", fmt.Errorf("failed to back up %q: %w", rel, err)
	}
	perm := core.PermFileDefault
	if info, err := i.fs.Stat(ctx, src); err == nil {
		perm = info.Mode().Perm()
	}
	if err := i.fs.WriteFile(ctx, filepath.Join(root, filepath.FromSlash(name)), data, perm); err != nil {
		return "", fmt.Errorf("failed to back up %q: %w", rel, err)
	}
	return name, nil
}

// canonicalTarget returns the version file an ecosystem is initialized with.
func canonicalTarget(eco versionfile.Ecosystem, profile *detector.ProjectProfile) (versionfile.Target, bool) {
	target := func(path string, kind versionfile.Kind) (versionfile.Target, bool) {
		return versionfile.Target{Path: path, Ecosystem: eco, Kind: kind}, true
	}
	switch eco {
	case versionfile.EcosystemPython, versionfile.EcosystemGo:
		return target("VERSION", versionfile.KindPlainText)
	case versionfile.EcosystemNode:
		return target("package.json", versionfile.KindPackageJSON)
	case versionfile.EcosystemRust:
		return target("Cargo.toml", versionfile.KindCargo)
	case versionfile.EcosystemPHP:
		return target("composer.json", versionfile.KindComposer)
	case versionfile.EcosystemDotNet:
		return target("Directory.Build.props", versionfile.KindMSBuild)
	case versionfile.EcosystemRuby:
		return target("lib/version.rb", versionfile.KindRubyConstant)
	case versionfile.EcosystemJava:
		if files := profile.VersionFilesFor(eco); len(files) > 0 {
			return files[0], true
		}
	}
	return versionfile.Target{}, false
}
