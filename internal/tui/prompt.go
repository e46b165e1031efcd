package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/indaco/relkit/internal/semver"
)

// ErrCanceled is returned when the operator aborts a prompt.
var ErrCanceled = errors.New("prompt canceled")

func runForm(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).WithTheme(currentThemeOrDefault())
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCanceled
		}
		return err
	}
	return nil
}

// Confirm asks a yes/no question.
func Confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := runForm(ctx, field); err != nil {
		return false, err
	}
	return ok, nil
}

// Select asks the operator to pick one of options.
func Select[T comparable](ctx context.Context, title string, options []huh.Option[T]) (T, error) {
	var choice T
	field := huh.NewSelect[T]().
		Title(title).
		Options(options...).
		Value(&choice)
	if err := runForm(ctx, field); err != nil {
		var zero T
		return zero, err
	}
	return choice, nil
}

// RunWithSpinner runs fn while a spinner shows title.
func RunWithSpinner(title string, fn func() error) error {
	var fnErr error
	err := spinner.New().
		Title(" " + title).
		Action(func() { fnErr = fn() }).
		Run()
	if err != nil {
		return err
	}
	return fnErr
}

var bumpChoices = []semver.BumpKind{
	semver.BumpPatch,
	semver.BumpMinor,
	semver.BumpMajor,
	semver.BumpPrerelease,
}

// Prompter asks the release questions through huh forms.
type Prompter struct {
	confirm    func(ctx context.Context, title, description string) (bool, error)
	selectBump func(ctx context.Context, title string, options []huh.Option[semver.BumpKind]) (semver.BumpKind, error)
}

// NewPrompter returns a Prompter backed by terminal forms.
func NewPrompter() *Prompter {
	return &Prompter{
		confirm:    Confirm,
		selectBump: Select[semver.BumpKind],
	}
}

// Confirm asks a yes/no question. Aborting the prompt counts as a no.
func (p *Prompter) Confirm(ctx context.Context, title, description string) (bool, error) {
	ok, err := p.confirm(ctx, title, description)
	if errors.Is(err, ErrCanceled) {
		return false, nil
	}
	return ok, err
}

// SelectBump offers every bump kind with the version it would produce.
func (p *Prompter) SelectBump(ctx context.Context, current semver.SemVersion) (semver.BumpKind, error) {
	options := BumpOptions(current)
	if len(options) == 0 {
		return "", fmt.Errorf("no bump applies to %s", current)
	}
	return p.selectBump(ctx, fmt.Sprintf("Current version %s, select the bump", current), options)
}

// BumpOptions labels each bump kind with its resulting version.
func BumpOptions(current semver.SemVersion) []huh.Option[semver.BumpKind] {
	options := make([]huh.Option[semver.BumpKind], 0, len(bumpChoices))
	for _, kind := range bumpChoices {
		next, err := semver.Bump(current, kind, "")
		if err != nil {
			continue
		}
		label := fmt.Sprintf("%-10s %s -> %s", kind, current, next)
		options = append(options, huh.NewOption(label, kind))
	}
	return options
}
