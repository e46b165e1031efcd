package notes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/forge"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    Commit
	}{
		{"feat: add caching", Commit{Type: "feat", Description: "Add caching"}},
		{"fix(parser): memory leak", Commit{Type: "fix", Scope: "parser", Description: "Memory leak"}},
		{"feat(api)!: drop v1 endpoints", Commit{Type: "feat", Scope: "api", Description: "Drop v1 endpoints", Breaking: true}},
		{"refactor!: rename config", Commit{Type: "refactor", Description: "Rename config", Breaking: true}},
		{"Feat: mixed case type", Commit{Type: "feat", Description: "Mixed case type"}},
		{"Update README", Commit{Description: "Update README"}},
		{"wip no colon", Commit{Description: "wip no colon"}},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got := ParseSubject(tt.subject)
			tt.want.Subject = tt.subject
			if got != tt.want {
				t.Errorf("ParseSubject(%q) = %+v, want %+v", tt.subject, got, tt.want)
			}
		})
	}
}

func TestIsReleaseCommit(t *testing.T) {
	if !IsReleaseCommit("chore: release v1.2.3") {
		t.Error("release commit not recognized")
	}
	if IsReleaseCommit("chore: release notes cleanup") {
		t.Error("unrelated chore recognized as release commit")
	}
}

func TestFormat(t *testing.T) {
	commits := []Commit{
		ParseSubject("fix: memory leak"),
		ParseSubject("docs: typo"),
		ParseSubject("feat: add caching"),
		ParseSubject("feat!: drop python 3.8"),
		ParseSubject("Merge branch 'x'"),
	}

	got := Format("v1.2.0", "v1.1.0", commits, "")
	want := "## v1.2.0\n\n" +
		"- [Breaking] Drop python 3.8\n" +
		"- [Feat] Add caching\n" +
		"- [Fix] Memory leak\n" +
		"- [Docs] Typo\n" +
		"- [Other] Merge branch 'x'\n"
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormat_Empty(t *testing.T) {
	if got := Format("v1.0.1", "v1.0.0", nil, ""); !strings.Contains(got, "No changes since v1.0.0.") {
		t.Errorf("Format() = %q", got)
	}
	if got := Format("v0.1.0", "", nil, ""); !strings.Contains(got, "Initial release.") {
		t.Errorf("Format() = %q", got)
	}
}

func TestComposer_ComposeSources(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/project/NOTES.md", []byte("Hand written notes\n"))
	fs.SetFile("/abs/notes.md", []byte("Absolute notes\n"))
	fs.SetFile("/project/empty.md", []byte("  \n"))
	git := &core.MockGitRepository{
		CommitSubjectsFn: func(context.Context, string) ([]string, error) {
			t.Error("git must not be queried for explicit notes")
			return nil, nil
		},
	}
	c := NewComposer(fs, git)
	req := Request{Root: "/project", Tag: "v1.0.0"}

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr bool
	}{
		{"relative file", Source{File: "NOTES.md"}, "Hand written notes\n", false},
		{"absolute file", Source{File: "/abs/notes.md"}, "Absolute notes\n", false},
		{"file wins over text", Source{File: "NOTES.md", Text: "ignored"}, "Hand written notes\n", false},
		{"text", Source{Text: "Inline notes"}, "Inline notes", false},
		{"missing file", Source{File: "missing.md"}, "", true},
		{"empty file", Source{File: "empty.md"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compose(context.Background(), tt.src, req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compose() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Compose() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposer_EmptyFileError(t *testing.T) {
	fs := core.NewMockFileSystem()
	fs.SetFile("/project/empty.md", nil)
	_, err := NewComposer(fs, &core.MockGitRepository{}).Compose(context.Background(), Source{File: "empty.md"}, Request{Root: "/project"})
	if !errors.Is(err, ErrEmptyNotes) {
		t.Errorf("expected ErrEmptyNotes, got %v", err)
	}
}

func TestComposer_Generate(t *testing.T) {
	var since string
	git := &core.MockGitRepository{
		CommitSubjectsFn: func(_ context.Context, s string) ([]string, error) {
			since = s
			return []string{"chore: release v1.1.0", "fix: handle empty input", "", "feat: add export"}, nil
		},
	}
	remote := &forge.RemoteInfo{Provider: "github", Host: "github.com", Owner: "acme", Name: "widget"}
	c := NewComposer(core.NewMockFileSystem(), git)

	got, err := c.Compose(context.Background(), Source{}, Request{Tag: "v1.1.0", PreviousTag: "v1.0.0", Remote: remote})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if since != "v1.0.0" {
		t.Errorf("CommitSubjects since = %q, want v1.0.0", since)
	}
	want := "## v1.1.0\n\n" +
		"- [Feat] Add export\n" +
		"- [Fix] Handle empty input\n" +
		"\n**Full Changelog**: https://github.com/acme/widget/compare/v1.0.0...v1.1.0\n"
	if got != want {
		t.Errorf("Generate() =\n%s\nwant\n%s", got, want)
	}
}

func TestComposer_GenerateGitError(t *testing.T) {
	git := &core.MockGitRepository{
		CommitSubjectsFn: func(context.Context, string) ([]string, error) {
			return nil, errors.New("fatal: bad revision")
		},
	}
	_, err := NewComposer(core.NewMockFileSystem(), git).Generate(context.Background(), Request{Tag: "v1.0.0"})
	if err == nil || !strings.Contains(err.Error(), "bad revision") {
		t.Errorf("expected wrapped git error, got %v", err)
	}
}

func TestSource_Kind(t *testing.T) {
	if got := (Source{}).Kind(); got != "generated from commits" {
		t.Errorf("Kind() = %q", got)
	}
	if got := (Source{File: "N.md"}).Kind(); got != "file N.md" {
		t.Errorf("Kind() = %q", got)
	}
}
