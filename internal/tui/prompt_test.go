package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/indaco/relkit/internal/semver"
)

func TestBumpOptions(t *testing.T) {
	options := BumpOptions(semver.MustParse("1.2.3"))

	want := map[semver.BumpKind]string{
		semver.BumpPatch:      "1.2.3 -> 1.2.4",
		semver.BumpMinor:      "1.2.3 -> 1.3.0",
		semver.BumpMajor:      "1.2.3 -> 2.0.0",
		semver.BumpPrerelease: "1.2.3 -> 1.2.4-rc.1",
	}
	if len(options) != len(want) {
		t.Fatalf("got %d options, want %d", len(options), len(want))
	}
	for _, opt := range options {
		if !strings.HasSuffix(opt.Key, want[opt.Value]) {
			t.Errorf("option %q for %s, want suffix %q", opt.Key, opt.Value, want[opt.Value])
		}
	}
	if options[0].Value != semver.BumpPatch {
		t.Errorf("first option = %s, want patch", options[0].Value)
	}
}

func TestPrompter_SelectBump(t *testing.T) {
	p := &Prompter{
		selectBump: func(_ context.Context, title string, options []huh.Option[semver.BumpKind]) (semver.BumpKind, error) {
			if !strings.Contains(title, "2.0.0-beta.1") {
				t.Errorf("title %q does not show the current version", title)
			}
			return options[3].Value, nil
		},
	}

	kind, err := p.SelectBump(context.Background(), semver.MustParse("2.0.0-beta.1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != semver.BumpPrerelease {
		t.Errorf("kind = %s, want prerelease", kind)
	}
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		answer  bool
		err     error
		want    bool
		wantErr bool
	}{
		{"yes", true, nil, true, false},
		{"no", false, nil, false, false},
		{"aborted counts as no", false, ErrCanceled, false, false},
		{"other errors propagate", false, errors.New("no tty"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Prompter{confirm: func(context.Context, string, string) (bool, error) {
				return tt.answer, tt.err
			}}
			got, err := p.Confirm(context.Background(), "Release v1.0.0?", "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPrompter(t *testing.T) {
	p := NewPrompter()
	if p.confirm == nil || p.selectBump == nil {
		t.Fatal("NewPrompter() left prompts unset")
	}
}
