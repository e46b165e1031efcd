// Package git implements core.GitRepository on top of the git command line.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/logging"
)

// OSGitRepository runs git commands against the repository at root. Every
// invocation passes "-C root" so no ambient working directory is used.
type OSGitRepository struct {
	root        string
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewOSGitRepository creates a repository bound to root.
func NewOSGitRepository(root string) *OSGitRepository {
	return &OSGitRepository{root: root, execCommand: exec.CommandContext}
}

// Verify OSGitRepository implements core.GitRepository.
var _ core.GitRepository = (*OSGitRepository)(nil)

// run executes git with args and returns trimmed stdout.
func (g *OSGitRepository) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", g.root}, args...)
	cmd := g.execCommand(ctx, "git", full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.G(ctx).WithField("args", strings.Join(args, " ")).Debug("git")
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		stderrMsg := strings.TrimSpace(stderr.String())
		return "", &CommandError{Args: args, Stderr: stderrMsg, Info: ClassifyError(stderrMsg), Err: err}
	}
	return strings.TrimRight(stdout.String(), "\r\n"), nil
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (g *OSGitRepository) IsWorkTree(ctx context.Context) (bool, error) {
	out, err := g.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.Info != nil && cmdErr.Info.Category == "not_a_repository" {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

func (g *OSGitRepository) StatusPorcelain(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

func (g *OSGitRepository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		// symbolic-ref exits 1 when HEAD is detached.
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *OSGitRepository) BranchRemote(ctx context.Context, branch string) (string, error) {
	if branch == "" {
		return "", nil
	}
	out, err := g.run(ctx, "config", "--get", "branch."+branch+".remote")
	if err != nil {
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *OSGitRepository) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := g.run(ctx, "remote", "get-url", remote)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(strings.ToLower(cmdErr.Stderr), "no such remote") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *OSGitRepository) TagExists(ctx context.Context, name string) (bool, error) {
	out, err := g.run(ctx, "tag", "-l", name)
	if err != nil {
		return false, err
	}
	// If the tag exists, git tag -l will output the tag name
	return strings.TrimSpace(out) == name, nil
}

func (g *OSGitRepository) LatestTag(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		// No tags or no commits yet.
		if exitCode(err) > 0 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *OSGitRepository) CommitSubjects(ctx context.Context, since string) ([]string, error) {
	args := []string{"log", "--pretty=format:%s"}
	if since != "" {
		args = append(args, since+"..HEAD")
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "does not have any commits") {
			return nil, nil
		}
		return nil, err
	}
	return splitNonEmpty(out), nil
}

func (g *OSGitRepository) StageFiles(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

func (g *OSGitRepository) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := g.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if exitCode(err) == 1 {
		return true, nil
	}
	return false, err
}

func (g *OSGitRepository) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

func (g *OSGitRepository) CreateAnnotatedTag(ctx context.Context, name, message string) error {
	_, err := g.run(ctx, "tag", "-a", name, "-m", message)
	return err
}

func (g *OSGitRepository) Push(ctx context.Context, remote string, refs ...string) error {
	_, err := g.run(ctx, append([]string{"push", remote}, refs...)...)
	return err
}

func splitNonEmpty(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
