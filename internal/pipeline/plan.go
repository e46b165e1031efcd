package pipeline

import (
	"fmt"
	"strings"

	"github.com/indaco/relkit/internal/notes"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/versionfile"
)

// Flags are the step switches of a release.
type Flags struct {
	DryRun      bool
	SkipTests   bool
	SkipCommit  bool
	SkipTag     bool
	SkipPush    bool
	SkipRelease bool
	Draft       bool
}

// ReleasePlan is the resolved configuration of a release. It is built once
// when the version is resolved and is not modified afterwards.
type ReleasePlan struct {
	Root string

	Current       semver.SemVersion
	CurrentSource string
	Version       semver.SemVersion
	Bump          semver.BumpKind
	Explicit      bool

	Tag         string
	PreviousTag string
	Title       string

	Files        []versionfile.Target
	TestCommands []string

	Branch string
	Remote string

	Flags     Flags
	Notes     notes.Source
	Artifacts []string

	// NotesBody is composed with the plan so a bad notes source fails
	// before anything is written.
	NotesBody string
}

// CommitMessage is the message of the release commit.
func (p *ReleasePlan) CommitMessage() string {
	return notes.ReleaseCommitPrefix + p.Version.String()
}

// TagMessage is the annotation of the release tag.
func (p *ReleasePlan) TagMessage() string {
	return "Release " + p.Tag
}

// Prerelease reports whether the release is published as a pre-release.
func (p *ReleasePlan) Prerelease() bool {
	return p.Version.IsPreRelease()
}

// Summary renders the plan for confirmation prompts.
func (p *ReleasePlan) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Version: %s -> %s", p.Current, p.Version)
	if !p.Explicit {
		fmt.Fprintf(&sb, " (%s)", p.Bump)
	}
	sb.WriteString("\n")

	files := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, f.Path)
	}
	if len(files) == 0 {
		files = append(files, "none")
	}
	fmt.Fprintf(&sb, "Files:   %s\n", strings.Join(files, ", "))

	steps := []struct {
		name string
		skip bool
	}{
		{"tests", p.Flags.SkipTests || len(p.TestCommands) == 0},
		{"commit", p.Flags.SkipCommit},
		{"tag " + p.Tag, p.Flags.SkipTag},
		{"push to " + p.Remote, p.Flags.SkipPush},
		{"release", p.Flags.SkipRelease},
	}
	var enabled []string
	for _, s := range steps {
		if !s.skip {
			enabled = append(enabled, s.name)
		}
	}
	if len(enabled) == 0 {
		enabled = append(enabled, "none")
	}
	fmt.Fprintf(&sb, "Steps:   %s\n", strings.Join(enabled, ", "))
	if p.Flags.DryRun {
		sb.WriteString("Mode:    dry-run\n")
	}
	return sb.String()
}
