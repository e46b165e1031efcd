package core

import (
	"context"
	"io"
)

// MockGitRepository is a function-field mock of GitRepository. Unset fields
// behave like a clean repository on branch "main" with an "origin" remote.
type MockGitRepository struct {
	IsWorkTreeFn         func(ctx context.Context) (bool, error)
	StatusPorcelainFn    func(ctx context.Context) ([]string, error)
	CurrentBranchFn      func(ctx context.Context) (string, error)
	BranchRemoteFn       func(ctx context.Context, branch string) (string, error)
	RemoteURLFn          func(ctx context.Context, remote string) (string, error)
	TagExistsFn          func(ctx context.Context, name string) (bool, error)
	LatestTagFn          func(ctx context.Context) (string, error)
	CommitSubjectsFn     func(ctx context.Context, since string) ([]string, error)
	StageFilesFn         func(ctx context.Context, paths ...string) error
	HasStagedChangesFn   func(ctx context.Context) (bool, error)
	CommitFn             func(ctx context.Context, message string) error
	CreateAnnotatedTagFn func(ctx context.Context, name, message string) error
	PushFn               func(ctx context.Context, remote string, refs ...string) error
}

var _ GitRepository = (*MockGitRepository)(nil)

func (m *MockGitRepository) IsWorkTree(ctx context.Context) (bool, error) {
	if m.IsWorkTreeFn != nil {
		return m.IsWorkTreeFn(ctx)
	}
	return true, nil
}

func (m *MockGitRepository) StatusPorcelain(ctx context.Context) ([]string, error) {
	if m.StatusPorcelainFn != nil {
		return m.StatusPorcelainFn(ctx)
	}
	return nil, nil
}

func (m *MockGitRepository) CurrentBranch(ctx context.Context) (string, error) {
	if m.CurrentBranchFn != nil {
		return m.CurrentBranchFn(ctx)
	}
	return "main", nil
}

func (m *MockGitRepository) BranchRemote(ctx context.Context, branch string) (string, error) {
	if m.BranchRemoteFn != nil {
		return m.BranchRemoteFn(ctx, branch)
	}
	return "origin", nil
}

func (m *MockGitRepository) RemoteURL(ctx context.Context, remote string) (string, error) {
	if m.RemoteURLFn != nil {
		return m.RemoteURLFn(ctx, remote)
	}
	return "git@github.com:acme/widget.git", nil
}

func (m *MockGitRepository) TagExists(ctx context.Context, name string) (bool, error) {
	if m.TagExistsFn != nil {
		return m.TagExistsFn(ctx, name)
	}
	return false, nil
}

func (m *MockGitRepository) LatestTag(ctx context.Context) (string, error) {
	if m.LatestTagFn != nil {
		return m.LatestTagFn(ctx)
	}
	return "", nil
}

func (m *MockGitRepository) CommitSubjects(ctx context.Context, since string) ([]string, error) {
	if m.CommitSubjectsFn != nil {
		return m.CommitSubjectsFn(ctx, since)
	}
	return nil, nil
}

func (m *MockGitRepository) StageFiles(ctx context.Context, paths ...string) error {
	if m.StageFilesFn != nil {
		return m.StageFilesFn(ctx, paths...)
	}
	return nil
}

func (m *MockGitRepository) HasStagedChanges(ctx context.Context) (bool, error) {
	if m.HasStagedChangesFn != nil {
		return m.HasStagedChangesFn(ctx)
	}
	return true, nil
}

func (m *MockGitRepository) Commit(ctx context.Context, message string) error {
	if m.CommitFn != nil {
		return m.CommitFn(ctx, message)
	}
	return nil
}

func (m *MockGitRepository) CreateAnnotatedTag(ctx context.Context, name, message string) error {
	if m.CreateAnnotatedTagFn != nil {
		return m.CreateAnnotatedTagFn(ctx, name, message)
	}
	return nil
}

func (m *MockGitRepository) Push(ctx context.Context, remote string, refs ...string) error {
	if m.PushFn != nil {
		return m.PushFn(ctx, remote, refs...)
	}
	return nil
}

// MockReleaseHost is a function-field mock of ReleaseHost.
type MockReleaseHost struct {
	AuthStatusFn    func(ctx context.Context) error
	CreateReleaseFn func(ctx context.Context, req ReleaseRequest) (string, error)
}

var _ ReleaseHost = (*MockReleaseHost)(nil)

func (m *MockReleaseHost) Name() string { return "mock" }

func (m *MockReleaseHost) CommandLine(req ReleaseRequest) string {
	return "mock release create " + req.Tag
}

func (m *MockReleaseHost) AuthStatus(ctx context.Context) error {
	if m.AuthStatusFn != nil {
		return m.AuthStatusFn(ctx)
	}
	return nil
}

func (m *MockReleaseHost) CreateRelease(ctx context.Context, req ReleaseRequest) (string, error) {
	if m.CreateReleaseFn != nil {
		return m.CreateReleaseFn(ctx, req)
	}
	return "", nil
}

// MockCommandRunner is a function-field mock of CommandRunner.
type MockCommandRunner struct {
	RunFn func(ctx context.Context, dir, command string, stdout, stderr io.Writer) error
}

var _ CommandRunner = (*MockCommandRunner)(nil)

func (m *MockCommandRunner) Run(ctx context.Context, dir, command string, stdout, stderr io.Writer) error {
	if m.RunFn != nil {
		return m.RunFn(ctx, dir, command, stdout, stderr)
	}
	return nil
}
