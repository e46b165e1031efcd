// Package detector classifies a project directory: it reports the language
// ecosystems present, the files that declare the project's version, the
// build systems, test commands and package managers, and the repository
// state. Detection is best-effort and never fails.
package detector

import (
	"context"
	"slices"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/versionfile"
	"golang.org/x/sync/errgroup"
)

// DefaultRemote is used when the current branch has no configured remote.
const DefaultRemote = "origin"

// Options tune detection.
type Options struct {
	// MaxDepth bounds the recursive scan; 0 means core.MaxDiscoveryDepth.
	MaxDepth int

	// Exclude holds doublestar patterns matched against names and
	// root-relative paths.
	Exclude []string

	// Remote overrides the remote configured for the current branch.
	Remote string
}

// Detector builds ProjectProfiles.
type Detector struct {
	fs   core.FileSystem
	git  core.GitRepository
	opts Options
}

// New creates a Detector. git must operate on the root later passed to
// Detect; it may be nil to skip repository metadata.
func New(fs core.FileSystem, git core.GitRepository, opts Options) *Detector {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = core.MaxDiscoveryDepth
	}
	return &Detector{fs: fs, git: git, opts: opts}
}

// ruleResult is the outcome of evaluating one ecosystem rule.
type ruleResult struct {
	matched bool
	files   []versionfile.Target
	tests   []string
}

// Detect inspects root. Unrecognizable directories yield ProjectUnknown
// with empty sequences.
func (d *Detector) Detect(ctx context.Context, root string) *ProjectProfile {
	log := logging.G(ctx).WithField("component", "detector")
	profile := &ProjectProfile{
		Root:            root,
		Languages:       []versionfile.Ecosystem{},
		VersionFiles:    []versionfile.Target{},
		BuildSystems:    []BuildSystem{},
		TestCommands:    []string{},
		PackageManagers: []string{},
	}

	t := scanTree(ctx, d.fs, root, d.opts.MaxDepth, d.opts.Exclude)
	log.Debugf("scanned %d files below %s", len(t.files), root)

	profile.PackageManagers = append(profile.PackageManagers, detectPackageManagers(t)...)
	profile.BuildSystems = append(profile.BuildSystems, detectBuildSystems(t)...)

	// Rules share the read-only snapshot; results are stored per index so
	// the profile keeps the table order.
	results := make([]ruleResult, len(rules))
	g, gctx := errgroup.WithContext(ctx)
	for i, rule := range rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !rule.detect(t) {
				return nil
			}
			results[i] = ruleResult{
				matched: true,
				files:   rule.versionFiles(t),
				tests:   rule.testCommands(t, profile.PackageManagers),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithError(err).Debug("detection interrupted")
		profile.ProjectType = ProjectUnknown
		return profile
	}

	seen := map[string]bool{}
	var nativeTests []string
	for i, res := range results {
		if !res.matched {
			continue
		}
		log.Debugf("ecosystem %s matched with %d version file(s)", rules[i].eco, len(res.files))
		profile.Languages = append(profile.Languages, rules[i].eco)
		for _, f := range res.files {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			profile.VersionFiles = append(profile.VersionFiles, f)
		}
		for _, cmd := range res.tests {
			if !slices.Contains(nativeTests, cmd) {
				nativeTests = append(nativeTests, cmd)
			}
		}
	}

	if t.has("VERSION") && !seen["VERSION"] {
		profile.VersionFiles = append(profile.VersionFiles, target("VERSION", versionfile.EcosystemGeneric, versionfile.KindPlainText))
	}

	profile.TestCommands = append(profile.TestCommands, selectTestCommands(profile.BuildSystems, nativeTests)...)
	profile.ProjectType = deriveProjectType(profile.Languages)
	profile.Repo = d.repoMetadata(ctx)
	return profile
}

// selectTestCommands prefers a build-system test target over native runners.
func selectTestCommands(systems []BuildSystem, native []string) []string {
	for _, bs := range systems {
		if bs.HasTest {
			return []string{bs.TestCommand()}
		}
	}
	return native
}

// repoMetadata queries git. Failures leave the corresponding fields empty.
func (d *Detector) repoMetadata(ctx context.Context) RepoMetadata {
	var meta RepoMetadata
	if d.git == nil {
		return meta
	}
	log := logging.G(ctx).WithField("component", "detector")

	ok, err := d.git.IsWorkTree(ctx)
	if err != nil || !ok {
		log.WithError(err).Debug("not a git working tree")
		return meta
	}
	meta.IsRepo = true

	if branch, err := d.git.CurrentBranch(ctx); err == nil {
		meta.Branch = branch
	}

	meta.Remote = d.opts.Remote
	if meta.Remote == "" && meta.Branch != "" {
		if remote, err := d.git.BranchRemote(ctx, meta.Branch); err == nil {
			meta.Remote = remote
		}
	}
	if meta.Remote == "" {
		meta.Remote = DefaultRemote
	}

	if url, err := d.git.RemoteURL(ctx, meta.Remote); err == nil {
		meta.RemoteURL = url
	}
	if info, ok := forge.ParseRemoteURL(meta.RemoteURL); ok {
		meta.Forge = &info
	}
	return meta
}
