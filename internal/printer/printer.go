// Package printer renders user-facing console output. Debug traces go
// through the logging package instead.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Style definitions for consistent console output across the application.
var (
	faintStyle   = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // Cyan
)

// SetNoColor disables styling when noColor is set and restores the
// profile detected from the environment otherwise.
func SetNoColor(noColor bool) {
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// Faint returns text with faint styling.
func Faint(text string) string {
	return faintStyle.Render(text)
}

// Bold returns text with bold styling.
func Bold(text string) string {
	return boldStyle.Render(text)
}

// Success returns text with success (green) styling.
func Success(text string) string {
	return successStyle.Render(text)
}

// Error returns text with error (red) styling.
func Error(text string) string {
	return errorStyle.Render(text)
}

// Warning returns text with warning (yellow) styling.
func Warning(text string) string {
	return warningStyle.Render(text)
}

// Info returns text with info (cyan) styling.
func Info(text string) string {
	return infoStyle.Render(text)
}

// Printer writes styled lines to a single writer.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w, or to stdout when w is nil.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w}
}

func (p *Printer) Println(text string) {
	fmt.Fprintln(p.w, text)
}

func (p *Printer) Success(text string) { p.Println(Success(text)) }
func (p *Printer) Error(text string)   { p.Println(Error(text)) }
func (p *Printer) Warning(text string) { p.Println(Warning(text)) }
func (p *Printer) Info(text string)    { p.Println(Info(text)) }
func (p *Printer) Faint(text string)   { p.Println(Faint(text)) }
func (p *Printer) Bold(text string)    { p.Println(Bold(text)) }

// StepDone prints a completed pipeline step.
func (p *Printer) StepDone(name, detail string) {
	p.step(Success("✓"), name, detail)
}

// StepSkipped prints a skipped pipeline step.
func (p *Printer) StepSkipped(name, detail string) {
	p.step(Faint("-"), Faint(name), detail)
}

// StepFailed prints the step a release stopped at.
func (p *Printer) StepFailed(name, detail string) {
	p.step(Error("✗"), Error(name), detail)
}

func (p *Printer) step(mark, name, detail string) {
	if detail == "" {
		fmt.Fprintf(p.w, "%s %s\n", mark, name)
		return
	}
	fmt.Fprintf(p.w, "%s %s %s\n", mark, name, Faint("("+detail+")"))
}

// Warnings prints the collected warnings as one block.
func (p *Printer) Warnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	p.Warning(fmt.Sprintf("%d warning(s):", len(warnings)))
	for _, w := range warnings {
		p.Warning("  ! " + w)
	}
}

// Diff prints a unified diff with added and removed lines colored.
func (p *Printer) Diff(diff string) {
	for line := range strings.SplitSeq(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			p.Println(Bold(line))
		case strings.HasPrefix(line, "+"):
			p.Println(Success(line))
		case strings.HasPrefix(line, "-"):
			p.Println(Error(line))
		case strings.HasPrefix(line, "@@"):
			p.Println(Info(line))
		default:
			p.Println(line)
		}
	}
}
