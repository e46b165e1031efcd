// Package initialize implements the "init" command.
package initialize

import (
	"context"
	"fmt"

	"github.com/indaco/relkit/internal/commands/project"
	"github.com/indaco/relkit/internal/initializer"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/semver"
	"github.com/urfave/cli/v3"
)

// DefaultStartVersion is written when --version is not given.
const DefaultStartVersion = "0.1.0"

var loadProject = project.Load

// Run returns the "init" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Create version files for every detected ecosystem",
		UsageText: "relkit init [--version X.Y.Z] [--dry-run]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "version",
				Usage: "Starting version",
				Value: DefaultStartVersion,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the files that would be written",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(ctx context.Context, cmd *cli.Command) error {
	start, err := semver.ParseVersion(cmd.String("version"))
	if err != nil {
		return fmt.Errorf("invalid --version: %w", err)
	}
	dryRun := cmd.Bool("dry-run")

	p, err := loadProject(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := initializer.New(p.FS, p.Detector).Run(ctx, p.Root, start, dryRun)
	if err != nil {
		return err
	}

	out := printer.New(cmd.Root().Writer)
	if len(res.Files) == 0 && len(res.Warnings) == 0 {
		out.Info("Every detected ecosystem already declares a version.")
		return nil
	}

	verb := "Wrote"
	if dryRun {
		verb = "Would write"
	}
	for _, c := range res.Changes {
		if !c.Changed() {
			continue
		}
		label := c.Path
		if c.Created {
			label += " (new)"
		}
		out.Success(fmt.Sprintf("%s %s", verb, label))
		if dryRun {
			out.Diff(c.Diff())
		}
	}
	for _, b := range res.Backups {
		out.Faint("  backup: " + b)
	}
	out.Warnings(res.Warnings)
	return nil
}
