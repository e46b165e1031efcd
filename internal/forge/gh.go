package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/indaco/relkit/internal/core"
)

// ErrCLINotFound is returned when the gh executable is not installed.
var ErrCLINotFound = errors.New("gh CLI not found in PATH")

// GHReleaseHost publishes releases with the GitHub CLI ("gh").
type GHReleaseHost struct {
	root        string
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewGHReleaseHost creates a release host operating on the repository at root.
func NewGHReleaseHost(root string) *GHReleaseHost {
	return &GHReleaseHost{root: root, execCommand: exec.CommandContext}
}

var _ core.ReleaseHost = (*GHReleaseHost)(nil)

func (g *GHReleaseHost) Name() string { return "gh" }

// AuthStatus runs "gh auth status".
func (g *GHReleaseHost) AuthStatus(ctx context.Context) error {
	_, err := g.run(ctx, nil, "auth", "status")
	return err
}

// CreateRelease runs "gh release create". Notes are passed on stdin so
// their size and content are not limited by the command line.
func (g *GHReleaseHost) CreateRelease(ctx context.Context, req core.ReleaseRequest) (string, error) {
	args := []string{"release", "create", req.Tag, "--verify-tag", "--notes-file", "-"}
	if req.Title != "" {
		args = append(args, "--title", req.Title)
	}
	if req.Draft {
		args = append(args, "--draft")
	}
	if req.Prerelease {
		args = append(args, "--prerelease")
	}
	args = append(args, req.Assets...)

	out, err := g.run(ctx, strings.NewReader(req.Notes), args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommandLine renders the release command for dry-run output.
func (g *GHReleaseHost) CommandLine(req core.ReleaseRequest) string {
	parts := []string{"gh", "release", "create", req.Tag, "--verify-tag", "--notes-file", "-"}
	if req.Title != "" {
		parts = append(parts, "--title", fmt.Sprintf("%q", req.Title))
	}
	if req.Draft {
		parts = append(parts, "--draft")
	}
	if req.Prerelease {
		parts = append(parts, "--prerelease")
	}
	parts = append(parts, req.Assets...)
	return strings.Join(parts, " ")
}

func (g *GHReleaseHost) run(ctx context.Context, stdin *strings.Reader, args ...string) (string, error) {
	cmd := g.execCommand(ctx, "gh", args...)
	cmd.Dir = g.root
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrCLINotFound
		}
		stderrMsg := strings.TrimSpace(stderr.String())
		if stderrMsg != "" {
			return "", fmt.Errorf("%s: %w", stderrMsg, err)
		}
		return "", fmt.Errorf("gh %s failed: %w", args[0], err)
	}
	return stdout.String(), nil
}
