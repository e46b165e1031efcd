package cli

import (
	"context"
	"fmt"

	"github.com/indaco/relkit/internal/commands/detect"
	"github.com/indaco/relkit/internal/commands/initialize"
	"github.com/indaco/relkit/internal/commands/release"
	"github.com/indaco/relkit/internal/logging"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/tui"
	"github.com/indaco/relkit/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

// New builds and returns the root CLI command,
// configuring all subcommands and flags for the relkit cli.
func New() *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "relkit",
		Version:               fmt.Sprintf("v%s", version.GetVersion()),
		Usage:                 "Release any project: bump, test, commit, tag, push and publish",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Project root",
				Value:   ".",
			},
			&urfavecli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&urfavecli.BoolFlag{
				Name:  "verbose",
				Usage: "Print debug logs to stderr",
			},
			&urfavecli.StringFlag{
				Name:  "theme",
				Usage: "Prompt theme: relkit, base, base16, catppuccin, charm, dracula",
				Value: tui.DefaultTheme,
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(cmd.Bool("no-color"))
			logging.Configure(cmd.Bool("verbose"))
			return ctx, tui.SetTheme(cmd.String("theme"))
		},
		Commands: []*urfavecli.Command{
			release.Run(),
			detect.Run(),
			initialize.Run(),
		},
	}
}
