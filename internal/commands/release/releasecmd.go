// Package release implements the "release" command.
package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/indaco/relkit/internal/commands/project"
	"github.com/indaco/relkit/internal/git"
	"github.com/indaco/relkit/internal/initializer"
	"github.com/indaco/relkit/internal/notes"
	"github.com/indaco/relkit/internal/pipeline"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/resolver"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/tui"
	"github.com/urfave/cli/v3"
)

var _ pipeline.Prompter = (*tui.Prompter)(nil)

// Seams replaced in tests.
var (
	loadProject   = project.Load
	isInteractive = tui.IsInteractive
	newPrompter   = func() pipeline.Prompter { return tui.NewPrompter() }
	runSpinner    = tui.RunWithSpinner
)

// Run returns the "release" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "release",
		Usage:     "Bump, commit, tag, push and publish a release",
		UsageText: "relkit release [--major|--minor|--patch|--version X.Y.Z] [options]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "version", Usage: "Release this exact version"},
			&cli.BoolFlag{Name: "major", Usage: "Bump the major version"},
			&cli.BoolFlag{Name: "minor", Usage: "Bump the minor version"},
			&cli.BoolFlag{Name: "patch", Usage: "Bump the patch version (default)"},
			&cli.StringFlag{Name: "pre-release", Usage: "Pre-release identifier, e.g. rc.1"},
			&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Choose the bump and confirm the plan"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Show what would happen without changing anything"},
			&cli.BoolFlag{Name: "skip-tests", Usage: "Do not run tests"},
			&cli.StringSliceFlag{Name: "test-command", Usage: "Test command to run (repeatable)"},
			&cli.BoolFlag{Name: "no-commit", Usage: "Do not create the release commit"},
			&cli.BoolFlag{Name: "no-tag", Usage: "Do not create the release tag"},
			&cli.BoolFlag{Name: "no-push", Usage: "Do not push"},
			&cli.BoolFlag{Name: "no-release", Usage: "Do not create a hosted release"},
			&cli.BoolFlag{Name: "draft", Usage: "Create the hosted release as a draft"},
			&cli.StringFlag{Name: "notes", Usage: "Read release notes from `FILE`"},
			&cli.StringFlag{Name: "notes-text", Usage: "Release notes text"},
			&cli.StringFlag{Name: "title", Usage: "Release title; {version} and {tag} are expanded"},
			&cli.StringSliceFlag{Name: "artifact", Usage: "Glob of files to attach (repeatable)"},
		},
		Action: runReleaseCmd,
	}
}

func runReleaseCmd(ctx context.Context, cmd *cli.Command) error {
	p, err := loadProject(ctx, cmd)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd, p)
	if err != nil {
		return err
	}
	if cmd.Bool("interactive") && !isInteractive() {
		return errors.New("--interactive requires a terminal outside CI")
	}

	out := printer.New(cmd.Root().Writer)
	deps := pipeline.Deps{
		FS:          p.FS,
		Git:         p.Git,
		Host:        p.Host,
		Runner:      p.Runner,
		Detector:    p.Detector,
		Initializer: initializer.New(p.FS, p.Detector),
		Stdout:      cmd.Root().Writer,
		Stderr:      cmd.Root().ErrWriter,
		Progress:    progressPrinter(out),
	}
	if opts.Interactive {
		deps.Prompter = newPrompter()
		deps.Spinner = runSpinner
	}

	if opts.Flags.DryRun {
		out.Info("Dry run: nothing will be changed.")
	}
	report, runErr := pipeline.New(deps).Run(ctx, opts)
	printReport(out, report)
	if runErr != nil {
		printHints(printer.New(cmd.Root().ErrWriter), runErr)
		return runErr
	}
	return nil
}

// buildOptions merges flags over the project configuration.
func buildOptions(cmd *cli.Command, p *project.Project) (pipeline.Options, error) {
	override, err := overrideFromFlags(cmd)
	if err != nil {
		return pipeline.Options{}, err
	}

	source := notes.Source{File: cmd.String("notes"), Text: cmd.String("notes-text")}
	if source.File != "" && source.Text != "" {
		return pipeline.Options{}, errors.New("--notes and --notes-text are mutually exclusive")
	}

	cfg := p.Config
	opts := pipeline.Options{
		Root:     p.Root,
		Override: override,
		Flags: pipeline.Flags{
			DryRun:      cmd.Bool("dry-run"),
			SkipTests:   cmd.Bool("skip-tests"),
			SkipCommit:  cmd.Bool("no-commit"),
			SkipTag:     cmd.Bool("no-tag"),
			SkipPush:    cmd.Bool("no-push"),
			SkipRelease: cmd.Bool("no-release"),
			Draft:       cmd.Bool("draft") || cfg.Release.Draft,
		},
		Interactive:  cmd.Bool("interactive"),
		TestCommands: cfg.TestCommands,
		Notes:        source,
		Title:        cfg.Release.Title,
		Artifacts:    cfg.Release.Artifacts,
		Remote:       cfg.Remote,
		PushAttempts: cfg.Push.Retries,
	}
	if cmds := cmd.StringSlice("test-command"); len(cmds) > 0 {
		opts.TestCommands = cmds
	}
	if cmd.IsSet("title") {
		opts.Title = cmd.String("title")
	}
	if globs := cmd.StringSlice("artifact"); len(globs) > 0 {
		opts.Artifacts = globs
	}
	return opts, nil
}

func overrideFromFlags(cmd *cli.Command) (resolver.Override, error) {
	o := resolver.Override{
		Version:    cmd.String("version"),
		PreRelease: cmd.String("pre-release"),
	}

	var kinds []semver.BumpKind
	for _, k := range []semver.BumpKind{semver.BumpMajor, semver.BumpMinor, semver.BumpPatch} {
		if cmd.Bool(string(k)) {
			kinds = append(kinds, k)
		}
	}
	switch {
	case len(kinds) > 1:
		return o, errors.New("only one of --major, --minor and --patch may be given")
	case len(kinds) == 1 && o.Version != "":
		return o, fmt.Errorf("--version cannot be combined with --%s", kinds[0])
	case len(kinds) == 1:
		o.Bump = kinds[0]
	}
	return o, nil
}

func progressPrinter(out *printer.Printer) func(pipeline.StepResult) {
	return func(r pipeline.StepResult) {
		switch r.Status {
		case pipeline.StatusDone:
			out.StepDone(r.Step.String(), r.Detail)
		case pipeline.StatusSkipped:
			out.StepSkipped(r.Step.String(), r.Detail)
		case pipeline.StatusFailed:
			out.StepFailed(r.Step.String(), r.Detail)
		}
	}
}

func printReport(out *printer.Printer, report *pipeline.Report) {
	if report == nil {
		return
	}
	if report.Plan != nil && report.Plan.Flags.DryRun && len(report.Actions) > 0 {
		out.Println("")
		out.Bold("Would perform:")
		for _, a := range report.Actions {
			line := "  " + a.Description
			if a.Command != "" {
				line += "  " + printer.Faint("$ "+a.Command)
			}
			out.Println(line)
			if a.Diff != "" {
				out.Diff(a.Diff)
			}
		}
	}
	if report.ReleaseURL != "" {
		out.Success("Released: " + report.ReleaseURL)
	} else if report.Plan != nil && !report.Plan.Flags.DryRun && report.Tagged {
		out.Success("Tagged " + report.Plan.Tag)
	}
	if len(report.Warnings) > 0 {
		out.Println("")
		out.Warnings(report.Warnings)
	}
}

// printHints explains how to recover from a failed release.
func printHints(out *printer.Printer, err error) {
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) && stepErr.Hint != "" {
		out.Info("hint: " + stepErr.Hint)
	}
	for _, s := range git.Suggestions(err) {
		out.Faint("  - " + s)
	}
}
