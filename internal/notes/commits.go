package notes

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReleaseCommitPrefix starts the subject of every release commit.
const ReleaseCommitPrefix = "chore: release v"

// conventionalSubject matches "type(scope)!: description".
var conventionalSubject = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?(!)?:\s*(.+)$`)

// Commit is a parsed commit subject.
type Commit struct {
	Subject     string
	Type        string
	Scope       string
	Description string
	Breaking    bool
}

// ParseSubject parses a conventional commit subject. Subjects that do not
// follow the convention keep an empty Type and use the whole subject as
// description.
func ParseSubject(subject string) Commit {
	subject = strings.TrimSpace(subject)
	c := Commit{Subject: subject, Description: subject}
	m := conventionalSubject.FindStringSubmatch(subject)
	if m == nil {
		return c
	}
	c.Type = strings.ToLower(m[1])
	c.Scope = m[2]
	c.Breaking = m[3] == "!"
	c.Description = capitalize(strings.TrimSpace(m[4]))
	return c
}

// IsReleaseCommit reports whether subject was produced by a release.
func IsReleaseCommit(subject string) bool {
	return strings.HasPrefix(strings.TrimSpace(subject), ReleaseCommitPrefix)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
