package core

import (
	"context"
	"io"
)

// GitRepository is the version-control surface used by the detector and the
// release pipeline. Every call operates on the repository rooted at the
// directory the implementation was created for.
type GitRepository interface {
	// IsWorkTree reports whether the root is inside a git working tree.
	IsWorkTree(ctx context.Context) (bool, error)

	// StatusPorcelain returns the porcelain status lines, one per changed path.
	StatusPorcelain(ctx context.Context) ([]string, error)

	// CurrentBranch returns the checked-out branch, or "" when HEAD is detached.
	CurrentBranch(ctx context.Context) (string, error)

	// BranchRemote returns the remote configured for branch, or "" if none.
	BranchRemote(ctx context.Context, branch string) (string, error)

	// RemoteURL returns the fetch URL of remote, or "" if the remote does not exist.
	RemoteURL(ctx context.Context, remote string) (string, error)

	TagExists(ctx context.Context, name string) (bool, error)

	// LatestTag returns the most recent reachable tag, or "" when there is none.
	LatestTag(ctx context.Context) (string, error)

	// CommitSubjects lists commit subjects in since..HEAD (all history when since is "").
	CommitSubjects(ctx context.Context, since string) ([]string, error)

	StageFiles(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	CreateAnnotatedTag(ctx context.Context, name, message string) error
	Push(ctx context.Context, remote string, refs ...string) error
}

// ReleaseRequest describes a release to create on the forge.
type ReleaseRequest struct {
	Tag        string
	Title      string
	Notes      string
	Draft      bool
	Prerelease bool
	Assets     []string
}

// ReleaseHost is the release-hosting surface (a forge CLI or API).
type ReleaseHost interface {
	// Name identifies the host for messages, e.g. "gh".
	Name() string

	// AuthStatus returns nil when the host is authenticated.
	AuthStatus(ctx context.Context) error

	// CreateRelease publishes a release and returns its URL when known.
	CreateRelease(ctx context.Context, req ReleaseRequest) (string, error)

	// CommandLine renders the command CreateRelease would run.
	CommandLine(req ReleaseRequest) string
}

// CommandRunner executes opaque shell command strings.
type CommandRunner interface {
	// Run executes command in dir, streaming output to stdout and stderr.
	// A non-zero exit status is returned as an error.
	Run(ctx context.Context, dir, command string, stdout, stderr io.Writer) error
}
