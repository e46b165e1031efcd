// Package project assembles the collaborators shared by the relkit
// commands for one project root.
package project

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/detector"
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/git"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/runner"
	"github.com/urfave/cli/v3"
)

// Project bundles everything a command needs to act on one root.
type Project struct {
	Root     string
	Config   *config.Config
	FS       core.FileSystem
	Git      core.GitRepository
	Host     core.ReleaseHost
	Runner   core.CommandRunner
	Detector *detector.Detector
}

// Load resolves the --path flag and loads the project configuration.
func Load(ctx context.Context, cmd *cli.Command) (*Project, error) {
	root, err := filepath.Abs(cmd.String("path"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project path: %w", err)
	}

	fsys := core.NewOSFileSystem()
	if !core.IsDir(ctx, fsys, root) {
		return nil, fmt.Errorf("project path %q is not a directory", root)
	}

	cfg, err := config.Load(ctx, fsys, root)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logging.G(ctx).WithField("component", "project").Debugf("loaded config from %s", cfg.Source)
	}

	return New(root, cfg, fsys, git.NewOSGitRepository(root), forge.NewGHReleaseHost(root), runner.NewShellRunner()), nil
}

// New wires a Project from explicit collaborators.
func New(root string, cfg *config.Config, fsys core.FileSystem, repo core.GitRepository, host core.ReleaseHost, run core.CommandRunner) *Project {
	if cfg == nil {
		cfg = config.Default()
	}
	det := detector.New(fsys, repo, detector.Options{
		MaxDepth: cfg.Discovery.MaxDepth,
		Exclude:  cfg.Discovery.Exclude,
		Remote:   cfg.Remote,
	})
	return &Project{
		Root:     root,
		Config:   cfg,
		FS:       fsys,
		Git:      repo,
		Host:     host,
		Runner:   run,
		Detector: det,
	}
}
