// Package notes composes release notes from an explicit file, an explicit
// text, or the commit subjects since the previous tag.
package notes

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/logging"
)

// Source selects where notes come from. File wins over Text; when both
// are empty the notes are generated.
type Source struct {
	File string
	Text string
}

// Kind describes the source for reporting.
func (s Source) Kind() string {
	switch {
	case s.File != "":
		return "file " + s.File
	case s.Text != "":
		return "text"
	default:
		return "generated from commits"
	}
}

// ErrEmptyNotes is returned when an explicit notes file is empty.
var ErrEmptyNotes = errors.New("release notes are empty")

// Request describes the release the notes are for.
type Request struct {
	Root        string
	Tag         string
	PreviousTag string

	// Remote is used to link the full comparison when known.
	Remote *forge.RemoteInfo
}

// Composer builds release notes.
type Composer struct {
	fs  core.FileSystem
	git core.GitRepository
}

// NewComposer creates a Composer.
func NewComposer(fs core.FileSystem, git core.GitRepository) *Composer {
	return &Composer{fs: fs, git: git}
}

// Compose returns the notes for req according to src.
func (c *Composer) Compose(ctx context.Context, src Source, req Request) (string, error) {
	switch {
	case src.File != "":
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(req.Root, path)
		}
		data, err := c.fs.ReadFile(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to read notes file %q: %w", src.File, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return "", fmt.Errorf("%s: %w", src.File, ErrEmptyNotes)
		}
		if IsChangelogFile(src.File) {
			section, ok := ChangelogSection(string(data), req.Tag)
			if !ok {
				return "", fmt.Errorf("%s: %w %s", src.File, ErrNoChangelogSection, req.Tag)
			}
			return section, nil
		}
		return string(data), nil
	case src.Text != "":
		return src.Text, nil
	default:
		return c.Generate(ctx, req)
	}
}

// Generate lists the commits since req.PreviousTag, skipping release
// commits, in the minimal changelog format.
func (c *Composer) Generate(ctx context.Context, req Request) (string, error) {
	subjects, err := c.git.CommitSubjects(ctx, req.PreviousTag)
	if err != nil {
		return "", fmt.Errorf("failed to list commits: %w", err)
	}
	logging.G(ctx).WithField("component", "notes").Debugf("%d commit(s) since %q", len(subjects), req.PreviousTag)

	commits := make([]Commit, 0, len(subjects))
	for _, s := range subjects {
		if strings.TrimSpace(s) == "" || IsReleaseCommit(s) {
			continue
		}
		commits = append(commits, ParseSubject(s))
	}

	compare := ""
	if req.Remote != nil && req.PreviousTag != "" {
		compare = forge.CompareURL(*req.Remote, req.PreviousTag, req.Tag)
	}
	return Format(req.Tag, req.PreviousTag, commits, compare), nil
}
