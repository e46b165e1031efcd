// Package detect implements the "detect" command.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/indaco/relkit/internal/commands/project"
	"github.com/indaco/relkit/internal/detector"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/resolver"
	"github.com/indaco/relkit/internal/versionfile"
	"github.com/urfave/cli/v3"
)

var loadProject = project.Load

// Run returns the "detect" command.
func Run() *cli.Command {
	return &cli.Command{
		Name:      "detect",
		Usage:     "Show the detected languages, version files and test commands",
		UsageText: "relkit detect [--format text|json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Value:   "text",
			},
		},
		Action: runDetectCmd,
	}
}

func runDetectCmd(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (use text or json)", format)
	}

	p, err := loadProject(ctx, cmd)
	if err != nil {
		return err
	}
	profile := p.Detector.Detect(ctx, p.Root)
	w := cmd.Root().Writer

	if format == "json" {
		return writeJSON(w, profile)
	}

	current, source, unreadable := resolver.New(versionfile.NewRegistry(p.FS)).Current(ctx, profile)
	out := printer.New(w)
	writeText(out, profile)
	if source != "" {
		out.Println(fmt.Sprintf("%-17s %s (%s)", "Current version:", current, source))
	} else if len(profile.VersionFiles) > 0 {
		out.Println(fmt.Sprintf("%-17s none readable", "Current version:"))
	}
	for _, path := range unreadable {
		out.Warning("  ! cannot read " + path)
	}
	return nil
}

func writeJSON(w io.Writer, profile *detector.ProjectProfile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(out *printer.Printer, p *detector.ProjectProfile) {
	row := func(label, value string) {
		if value == "" {
			value = printer.Faint("none")
		}
		out.Println(fmt.Sprintf("%-17s %s", label+":", value))
	}

	langs := make([]string, 0, len(p.Languages))
	for _, l := range p.Languages {
		langs = append(langs, string(l))
	}
	row("Project type", string(p.ProjectType))
	row("Languages", strings.Join(langs, ", "))

	out.Println(printer.Bold("Version files:"))
	if len(p.VersionFiles) == 0 {
		out.Faint("  none")
	}
	for _, f := range p.VersionFiles {
		out.Println(fmt.Sprintf("  %s %s", f.Path, printer.Faint("("+string(f.Kind)+")")))
	}

	builds := make([]string, 0, len(p.BuildSystems))
	for _, b := range p.BuildSystems {
		builds = append(builds, b.Name)
	}
	row("Build systems", strings.Join(builds, ", "))
	row("Package managers", strings.Join(p.PackageManagers, ", "))
	row("Test commands", strings.Join(p.TestCommands, " && "))

	if !p.Repo.IsRepo {
		row("Repository", "not a git work tree")
		return
	}
	branch := p.Repo.Branch
	if p.Repo.Detached() {
		branch = "detached HEAD"
	}
	row("Branch", branch)
	row("Remote", strings.TrimSpace(p.Repo.Remote+" "+p.Repo.RemoteURL))
}
