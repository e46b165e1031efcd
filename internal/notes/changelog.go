package notes

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoChangelogSection is returned when a changelog notes file has no
// section for the release and no Unreleased entries.
var ErrNoChangelogSection = errors.New("changelog has no section for this release")

// sectionHeading matches "## [1.2.0] - 2024-01-01", "## v1.2.0" and "## [Unreleased]".
var sectionHeading = regexp.MustCompile(`^##\s+\[?v?([^\]\s]+)\]?`)

// IsChangelogFile reports whether path names a changelog document, whose
// notes are the section of the released version only.
func IsChangelogFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasPrefix(base, "changelog") && strings.HasSuffix(base, ".md")
}

// ChangelogSection returns the body of the Keep a Changelog section for
// version. Without one it falls back to a non-empty Unreleased section.
func ChangelogSection(doc, version string) (string, bool) {
	sections := make(map[string]string)
	var (
		current string
		body    strings.Builder
		inside  bool
	)
	flush := func() {
		if inside {
			sections[current] = strings.TrimSpace(body.String())
		}
		body.Reset()
	}

	for line := range strings.SplitSeq(doc, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			inside = false
			if m := sectionHeading.FindStringSubmatch(line); m != nil {
				current = strings.ToLower(m[1])
				inside = true
			}
			continue
		}
		if inside {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	flush()

	if s, ok := sections[strings.ToLower(strings.TrimPrefix(version, "v"))]; ok && s != "" {
		return s, true
	}
	if s := sections["unreleased"]; s != "" {
		return s, true
	}
	return "", false
}
