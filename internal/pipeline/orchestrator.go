// Package pipeline drives a release: preflight checks, version resolution,
// version file rewrites, tests, commit, tag, push and release publication,
// strictly in that order. Dry-run performs every read-only step and records
// the mutating actions instead of executing them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/detector"
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/git"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/notes"
	"github.com/indaco/relkit/internal/resolver"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/versionfile"
)

const (
	// DefaultPushAttempts is the number of push attempts on transient failures.
	DefaultPushAttempts = 3

	defaultRetryDelay = 2 * time.Second
	maxDirtyPaths     = 5
)

// Detector builds the project profile.
type Detector interface {
	Detect(ctx context.Context, root string) *detector.ProjectProfile
}

// Initializer scaffolds version files for projects without any.
type Initializer interface {
	Initialize(ctx context.Context, root string, start semver.SemVersion) ([]string, error)
}

// Prompter asks the operator questions during interactive runs.
type Prompter interface {
	SelectBump(ctx context.Context, current semver.SemVersion) (semver.BumpKind, error)
	Confirm(ctx context.Context, title, description string) (bool, error)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	FS       core.FileSystem
	Git      core.GitRepository
	Host     core.ReleaseHost
	Runner   core.CommandRunner
	Detector Detector

	// Initializer and Prompter are optional.
	Initializer Initializer
	Prompter    Prompter

	// Stdout and Stderr receive test command output; they default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Progress is called every time a step ends.
	Progress func(StepResult)

	// Spinner wraps network operations; it defaults to calling fn.
	Spinner func(title string, fn func() error) error

	// RetryDelay is the initial delay between push attempts.
	RetryDelay time.Duration
}

// Options are the per-run settings.
type Options struct {
	Root        string
	Override    resolver.Override
	Flags       Flags
	Interactive bool

	// TestCommands replace the discovered test commands when non-empty.
	TestCommands []string

	Notes notes.Source

	// Title is the release title; "{version}" and "{tag}" are expanded.
	// It defaults to the tag.
	Title string

	// Artifacts are doublestar patterns of files attached to the release.
	Artifacts []string

	// Remote overrides the remote configured for the current branch.
	Remote string

	// PushAttempts defaults to DefaultPushAttempts.
	PushAttempts int
}

// Orchestrator runs releases.
type Orchestrator struct {
	deps     Deps
	registry *versionfile.Registry
	resolver *resolver.Resolver
	notes    *notes.Composer
}

// New creates an Orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Spinner == nil {
		deps.Spinner = func(_ string, fn func() error) error { return fn() }
	}
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = defaultRetryDelay
	}
	registry := versionfile.NewRegistry(deps.FS)
	return &Orchestrator{
		deps:     deps,
		registry: registry,
		resolver: resolver.New(registry),
		notes:    notes.NewComposer(deps.FS, deps.Git),
	}
}

// run holds the state of one release run.
type run struct {
	*Orchestrator
	opts    Options
	report  *Report
	profile *detector.ProjectProfile
	plan    *ReleasePlan
	remote  string

	// mutated is set once a mutating action has been executed.
	mutated bool
}

// Run executes a release. The returned report is never nil and describes
// every step that ran, including the failing one. Errors are *StepError.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	r := &run{Orchestrator: o, opts: opts, report: &Report{}}
	log := logging.G(ctx).WithField("component", "pipeline")

	steps := []struct {
		step Step
		fn   func(ctx context.Context) (Status, string, error)
	}{
		{StepPreflight, r.preflight},
		{StepVersionResolved, r.resolveVersion},
		{StepFilesRewritten, r.rewriteFiles},
		{StepTestsRun, r.runTests},
		{StepCommitted, r.commit},
		{StepTagged, r.tag},
		{StepPushed, r.push},
		{StepReleasePublished, r.publish},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return r.report, r.fail(s.step, err)
		}
		log.WithField("step", s.step).Debug("entering step")
		status, detail, err := s.fn(ctx)
		if err != nil {
			return r.report, r.fail(s.step, err)
		}
		r.record(StepResult{Step: s.step, Status: status, Detail: detail})
	}
	r.record(StepResult{Step: StepDone, Status: StatusDone})
	return r.report, nil
}

func (r *run) record(res StepResult) {
	r.report.Steps = append(r.report.Steps, res)
	if r.deps.Progress != nil {
		r.deps.Progress(res)
	}
}

func (r *run) fail(step Step, err error) error {
	se, ok := err.(*StepError)
	if !ok {
		se = &StepError{Step: step, Err: err, Mutated: r.mutated}
	}
	r.record(StepResult{Step: step, Status: StatusFailed, Detail: se.Err.Error()})
	return se
}

func (r *run) action(a Action) {
	r.report.Actions = append(r.report.Actions, a)
}

// execute performs a mutating action unless the run is a dry-run.
func (r *run) execute(a Action, fn func() error) error {
	if !r.opts.Flags.DryRun {
		if err := fn(); err != nil {
			return err
		}
		a.Executed = true
		if a.Step.mutating() {
			r.mutated = true
		}
	}
	r.action(a)
	return nil
}

func (r *run) testCommands() []string {
	if len(r.opts.TestCommands) > 0 {
		return r.opts.TestCommands
	}
	return r.profile.TestCommands
}

func (r *run) needsPush() bool {
	f := r.opts.Flags
	return !f.SkipPush && (!f.SkipCommit || !f.SkipTag)
}

func (r *run) preflight(ctx context.Context) (Status, string, error) {
	r.profile = r.deps.Detector.Detect(ctx, r.opts.Root)
	r.remote = r.opts.Remote
	if r.remote == "" {
		r.remote = r.profile.Repo.Remote
	}
	if r.remote == "" {
		r.remote = detector.DefaultRemote
	}

	var result *multierror.Error
	isRepo, err := r.deps.Git.IsWorkTree(ctx)
	switch {
	case err != nil:
		result = multierror.Append(result, fmt.Errorf("%w: %v", ErrNotWorkTree, err))
	case !isRepo:
		result = multierror.Append(result, ErrNotWorkTree)
	default:
		if err := r.checkClean(ctx); err != nil {
			result = multierror.Append(result, err)
		}
		if r.needsPush() {
			if err := r.checkRemote(ctx); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}

	if f := r.opts.Flags; f.SkipPush && !f.SkipTag && !f.SkipRelease {
		result = multierror.Append(result, ErrUnpushedTag)
	}
	if !r.opts.Flags.SkipRelease {
		if err := r.checkHost(ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return StatusFailed, "", err
	}

	if len(r.profile.VersionFiles) == 0 {
		if err := r.offerInitializer(ctx); err != nil {
			return StatusFailed, "", err
		}
	}
	if !r.opts.Flags.SkipTests && len(r.testCommands()) == 0 {
		r.report.warn("no test command discovered; tests skipped")
	}
	if r.opts.Flags.SkipTag && !r.opts.Flags.SkipRelease {
		r.report.warn("release requested without tagging; the tag must already exist on the remote")
	}

	return StatusDone, fmt.Sprintf("%s project, %d version file(s)", r.profile.ProjectType, len(r.profile.VersionFiles)), nil
}

func (r *run) checkClean(ctx context.Context) error {
	lines, err := r.deps.Git.StatusPorcelain(ctx)
	if err != nil {
		return fmt.Errorf("failed to read working tree status: %w", err)
	}
	if len(lines) == 0 {
		return nil
	}
	paths := make([]string, 0, maxDirtyPaths)
	for i, line := range lines {
		if i == maxDirtyPaths {
			paths = append(paths, fmt.Sprintf("and %d more", len(lines)-maxDirtyPaths))
			break
		}
		if len(line) > 3 {
			line = line[3:]
		}
		paths = append(paths, strings.TrimSpace(line))
	}
	return fmt.Errorf("%w: %s (commit or stash them first)", ErrDirtyWorkTree, strings.Join(paths, ", "))
}

func (r *run) checkRemote(ctx context.Context) error {
	if r.profile.Repo.Detached() && !r.opts.Flags.SkipCommit {
		return ErrDetachedHead
	}
	url, err := r.deps.Git.RemoteURL(ctx, r.remote)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrNoRemote, r.remote, err)
	}
	if url == "" {
		return fmt.Errorf("%w: remote %q does not exist", ErrNoRemote, r.remote)
	}
	return nil
}

func (r *run) checkHost(ctx context.Context) error {
	if r.deps.Host == nil {
		return fmt.Errorf("%w: no release host available", ErrReleaseHostAuth)
	}
	if err := r.deps.Host.AuthStatus(ctx); err != nil {
		return fmt.Errorf("%w (%s): %v", ErrReleaseHostAuth, r.deps.Host.Name(), err)
	}
	return nil
}

// offerInitializer runs when no version file was detected. Interactive
// sessions may scaffold version files at 0.0.0 so the resolved version is
// the same whether or not the offer is accepted.
func (r *run) offerInitializer(ctx context.Context) error {
	canOffer := r.opts.Interactive && !r.opts.Flags.DryRun && r.deps.Prompter != nil && r.deps.Initializer != nil
	if !canOffer {
		r.report.warn("no version file found; only the tag will carry the version (run \"relkit init\" to create one)")
		return nil
	}

	ok, err := r.deps.Prompter.Confirm(ctx, "No version file found", "Create version files for this project now?")
	if err != nil {
		return err
	}
	if !ok {
		r.report.warn("no version file found; only the tag will carry the version")
		return nil
	}
	created, err := r.deps.Initializer.Initialize(ctx, r.opts.Root, semver.SemVersion{})
	if err != nil {
		return fmt.Errorf("failed to initialize versioning: %w", err)
	}
	logging.G(ctx).WithField("files", created).Debug("initialized version files")
	r.profile = r.deps.Detector.Detect(ctx, r.opts.Root)
	return nil
}

func (r *run) resolveVersion(ctx context.Context) (Status, string, error) {
	override := r.opts.Override
	if r.opts.Interactive && r.deps.Prompter != nil && override.Version == "" && override.Bump == "" {
		current, _, _ := r.resolver.Current(ctx, r.profile)
		kind, err := r.deps.Prompter.SelectBump(ctx, current)
		if err != nil {
			return StatusFailed, "", err
		}
		override.Bump = kind
	}

	res, err := r.resolver.Resolve(ctx, r.profile, override)
	if err != nil {
		return StatusFailed, "", err
	}
	for _, path := range res.Unreadable {
		r.report.warn(fmt.Sprintf("%s: version could not be read", path))
	}

	previous, err := r.deps.Git.LatestTag(ctx)
	if err != nil {
		r.report.warn(fmt.Sprintf("previous tag unknown: %v", err))
	}

	tag := res.Next.TagName()
	plan := &ReleasePlan{
		Root:          r.opts.Root,
		Current:       res.Current,
		CurrentSource: res.Source,
		Version:       res.Next,
		Bump:          res.Bump,
		Explicit:      res.Explicit,
		Tag:           tag,
		PreviousTag:   previous,
		Title:         expandTitle(r.opts.Title, res.Next, tag),
		Files:         append([]versionfile.Target(nil), r.profile.VersionFiles...),
		TestCommands:  append([]string(nil), r.testCommands()...),
		Branch:        r.profile.Repo.Branch,
		Remote:        r.remote,
		Flags:         r.opts.Flags,
		Notes:         r.opts.Notes,
		Artifacts:     append([]string(nil), r.opts.Artifacts...),
	}
	if !plan.Flags.SkipRelease {
		body, err := r.notes.Compose(ctx, plan.Notes, notes.Request{
			Root:        plan.Root,
			Tag:         tag,
			PreviousTag: previous,
			Remote:      r.profile.Repo.Forge,
		})
		if err != nil {
			return StatusFailed, "", err
		}
		plan.NotesBody = body
	}

	if r.opts.Interactive && r.deps.Prompter != nil {
		ok, err := r.deps.Prompter.Confirm(ctx, "Release "+tag+"?", plan.Summary())
		if err != nil {
			return StatusFailed, "", err
		}
		if !ok {
			return StatusFailed, "", ErrAborted
		}
	}

	r.plan = plan
	r.report.Plan = plan
	return StatusDone, fmt.Sprintf("%s -> %s", res.Current, res.Next), nil
}

func expandTitle(title string, v semver.SemVersion, tag string) string {
	if title == "" {
		return tag
	}
	return strings.NewReplacer("{version}", v.String(), "{tag}", tag).Replace(title)
}

func (r *run) rewriteFiles(ctx context.Context) (Status, string, error) {
	if len(r.plan.Files) == 0 {
		return StatusSkipped, "no version files", nil
	}

	// Every file is planned before anything is written so a malformed
	// file leaves the tree untouched.
	var (
		changes []*versionfile.Change
		result  *multierror.Error
	)
	for _, t := range r.plan.Files {
		c, err := r.registry.Plan(ctx, r.plan.Root, t, r.plan.Version)
		var manual *versionfile.ManualUpdateError
		switch {
		case errors.As(err, &manual):
			r.report.warn(manual.Error())
			continue
		case err != nil:
			result = multierror.Append(result, err)
			continue
		}
		if c.Changed() {
			changes = append(changes, c)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return StatusFailed, "", err
	}

	for _, c := range changes {
		verb := "update"
		if c.Created {
			verb = "create"
		}
		a := Action{
			Step:        StepFilesRewritten,
			Kind:        ActionWrite,
			Description: fmt.Sprintf("%s %s", verb, c.Path),
			Diff:        c.Diff(),
		}
		if err := r.execute(a, func() error { return r.registry.Apply(ctx, r.plan.Root, c) }); err != nil {
			return StatusFailed, "", err
		}
		r.report.Rewritten = append(r.report.Rewritten, c.Path)
	}

	if len(changes) == 0 {
		return StatusDone, "version files already up to date", nil
	}
	return StatusDone, fmt.Sprintf("%d file(s) set to %s", len(changes), r.plan.Version), nil
}

func (r *run) runTests(ctx context.Context) (Status, string, error) {
	if r.plan.Flags.SkipTests {
		return StatusSkipped, "skipped by request", nil
	}
	if len(r.plan.TestCommands) == 0 {
		return StatusSkipped, "no test command", nil
	}

	for _, cmd := range r.plan.TestCommands {
		a := Action{Step: StepTestsRun, Kind: ActionCommand, Description: "run tests", Command: cmd}
		err := r.execute(a, func() error {
			logging.G(ctx).WithField("command", cmd).Debug("running tests")
			return r.deps.Runner.Run(ctx, r.plan.Root, cmd, r.deps.Stdout, r.deps.Stderr)
		})
		if err != nil {
			return StatusFailed, "", fmt.Errorf("%w: %v", ErrTestsFailed, err)
		}
	}
	return StatusDone, strings.Join(r.plan.TestCommands, "; "), nil
}

func (r *run) commit(ctx context.Context) (Status, string, error) {
	if r.plan.Flags.SkipCommit {
		return StatusSkipped, "skipped by request", nil
	}
	paths := r.report.Rewritten
	if len(paths) == 0 {
		return StatusDone, "nothing to commit", nil
	}

	msg := r.plan.CommitMessage()
	stage := Action{
		Step:        StepCommitted,
		Kind:        ActionCommand,
		Description: "stage version files",
		Command:     "git add -- " + strings.Join(paths, " "),
	}
	if err := r.execute(stage, func() error { return r.deps.Git.StageFiles(ctx, paths...) }); err != nil {
		return StatusFailed, "", err
	}

	if !r.plan.Flags.DryRun {
		staged, err := r.deps.Git.HasStagedChanges(ctx)
		if err != nil {
			return StatusFailed, "", err
		}
		if !staged {
			return StatusDone, "nothing to commit", nil
		}
	}

	commit := Action{
		Step:        StepCommitted,
		Kind:        ActionCommand,
		Description: "commit release",
		Command:     fmt.Sprintf("git commit -m %q", msg),
	}
	if err := r.execute(commit, func() error { return r.deps.Git.Commit(ctx, msg) }); err != nil {
		return StatusFailed, "", err
	}
	r.report.Committed = !r.plan.Flags.DryRun
	return StatusDone, msg, nil
}

func (r *run) tag(ctx context.Context) (Status, string, error) {
	if r.plan.Flags.SkipTag {
		return StatusSkipped, "skipped by request", nil
	}
	tag := r.plan.Tag
	exists, err := r.deps.Git.TagExists(ctx, tag)
	if err != nil {
		return StatusFailed, "", err
	}
	if exists {
		return StatusFailed, "", fmt.Errorf("%w: %s", ErrTagExists, tag)
	}

	a := Action{
		Step:        StepTagged,
		Kind:        ActionCommand,
		Description: "create annotated tag",
		Command:     fmt.Sprintf("git tag -a %s -m %q", tag, r.plan.TagMessage()),
	}
	if err := r.execute(a, func() error { return r.deps.Git.CreateAnnotatedTag(ctx, tag, r.plan.TagMessage()) }); err != nil {
		return StatusFailed, "", err
	}
	r.report.Tagged = !r.plan.Flags.DryRun
	return StatusDone, tag, nil
}

func (r *run) push(ctx context.Context) (Status, string, error) {
	if r.plan.Flags.SkipPush {
		return StatusSkipped, "skipped by request", nil
	}
	var refs []string
	if !r.plan.Flags.SkipCommit && r.plan.Branch != "" {
		refs = append(refs, r.plan.Branch)
	}
	if !r.plan.Flags.SkipTag {
		refs = append(refs, r.plan.Tag)
	}
	if len(refs) == 0 {
		return StatusSkipped, "nothing to push", nil
	}

	cmd := fmt.Sprintf("git push %s %s", r.plan.Remote, strings.Join(refs, " "))
	a := Action{Step: StepPushed, Kind: ActionCommand, Description: "push release", Command: cmd}
	err := r.execute(a, func() error {
		return r.deps.Spinner("Pushing to "+r.plan.Remote, func() error {
			return r.pushWithRetry(ctx, refs)
		})
	})
	if err != nil {
		se := &StepError{Step: StepPushed, Err: err, Mutated: r.mutated}
		if r.mutated {
			se.Hint = "the release commit and tag exist locally; retry only the push: " + cmd
		}
		return StatusFailed, "", se
	}
	r.report.Pushed = !r.plan.Flags.DryRun
	return StatusDone, strings.Join(refs, ", ") + " to " + r.plan.Remote, nil
}

func (r *run) pushWithRetry(ctx context.Context, refs []string) error {
	attempts := r.opts.PushAttempts
	if attempts <= 0 {
		attempts = DefaultPushAttempts
	}
	log := logging.G(ctx).WithField("component", "pipeline")
	return retry.Do(
		func() error {
			return r.deps.Git.Push(ctx, r.plan.Remote, refs...)
		},
		retry.RetryIf(git.IsTransient),
		retry.Attempts(uint(attempts)),
		retry.Delay(r.deps.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).WithField("max_attempts", attempts).Warn("retrying push")
		}),
	)
}

func (r *run) publish(ctx context.Context) (Status, string, error) {
	if r.plan.Flags.SkipRelease {
		return StatusSkipped, "skipped by request", nil
	}

	assets, unmatched, err := resolveArtifacts(ctx, r.deps.FS, r.plan.Root, r.plan.Artifacts)
	if err != nil {
		return StatusFailed, "", err
	}
	for _, pattern := range unmatched {
		r.report.warn(fmt.Sprintf("artifact pattern %q matched no files", pattern))
	}

	req := core.ReleaseRequest{
		Tag:        r.plan.Tag,
		Title:      r.plan.Title,
		Notes:      r.plan.NotesBody,
		Draft:      r.plan.Flags.Draft,
		Prerelease: r.plan.Prerelease(),
		Assets:     assets,
	}
	cmd := r.deps.Host.CommandLine(req)

	var url string
	a := Action{
		Step:        StepReleasePublished,
		Kind:        ActionRelease,
		Description: fmt.Sprintf("create release %s on %s (notes %s)", r.plan.Tag, r.deps.Host.Name(), r.plan.Notes.Kind()),
		Command:     cmd,
	}
	err = r.execute(a, func() error {
		return r.deps.Spinner("Publishing release "+r.plan.Tag, func() error {
			var err error
			url, err = r.deps.Host.CreateRelease(ctx, req)
			return err
		})
	})
	if err != nil {
		return StatusFailed, "", &StepError{
			Step:    StepReleasePublished,
			Err:     err,
			Mutated: r.mutated,
			Hint:    "the tag is published; create the release manually: " + cmd,
		}
	}

	if url == "" && r.profile.Repo.Forge != nil {
		url = forge.ReleaseURL(*r.profile.Repo.Forge, r.plan.Tag)
	}
	if !r.plan.Flags.DryRun {
		r.report.ReleaseURL = url
	}
	return StatusDone, url, nil
}
