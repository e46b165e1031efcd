package versionfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/indaco/relkit/internal/semver"
)

// rawHandler treats the whole file as the version string.
type rawHandler struct{}

func (rawHandler) Format() Format { return FormatText }

func (rawHandler) Read(data []byte) (semver.SemVersion, bool) {
	v, err := semver.ParseVersion(strings.TrimSpace(string(data)))
	if err != nil {
		return semver.SemVersion{}, false
	}
	return v, true
}

func (rawHandler) Write(_ []byte, v semver.SemVersion) ([]byte, error) {
	return []byte(v.String() + "\n"), nil
}

// assignmentHandler rewrites the right-hand side of the first matching
// assignment. patterns are tried in order; each exposes the value as the
// named group "v". When nothing matches, fallback (if set) is appended.
type assignmentHandler struct {
	format   Format
	patterns []*regexp.Regexp
	fallback func(v semver.SemVersion) string
}

func (h *assignmentHandler) Format() Format { return h.format }

func (h *assignmentHandler) locate(data []byte) (span, bool) {
	for _, re := range h.patterns {
		if loc, ok := findGroup(data, re); ok {
			return loc, true
		}
	}
	return span{}, false
}

func (h *assignmentHandler) Read(data []byte) (semver.SemVersion, bool) {
	loc, ok := h.locate(data)
	if !ok {
		return semver.SemVersion{}, false
	}
	v, err := semver.ParseVersion(string(data[loc.start:loc.end]))
	if err != nil {
		return semver.SemVersion{}, false
	}
	return v, true
}

func (h *assignmentHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	loc, ok := h.locate(data)
	if !ok {
		if h.fallback == nil {
			return nil, fmt.Errorf("%w: no literal version assignment", errNoDeclaration)
		}
		return appendLine(data, h.fallback(v)), nil
	}
	if current := string(data[loc.start:loc.end]); isPlaceholder(current) {
		return nil, fmt.Errorf("%w: version is defined by %q", errNoDeclaration, current)
	}
	return replaceSpan(data, loc, v.String()), nil
}

// quoted matches NAME = "value" or NAME = 'value' where prefix matches NAME.
func quoted(prefix string) *regexp.Regexp {
	return regexp.MustCompile(prefix + `\s*=\s*["'](?P<v>[^"'\n]*)["']`)
}

var (
	pythonDunderVersion = regexp.MustCompile(`(?m)^[ \t]*__version__\s*(?::\s*\w+\s*)?=\s*(?:\w+\s*=\s*)*["'](?P<v>[^"'\n]*)["']`)
	setupPyKeyword      = quoted(`\bversion`)
	rubyConstant        = quoted(`(?m)^[ \t]*VERSION`)
	gemspecVersion      = quoted(`(?m)^[ \t]*\w+\.version`)
	gradleAssignment    = regexp.MustCompile(`(?m)^[ \t]*version\s*=?\s*["'](?P<v>[^"'\n]*)["']`)
	goModComment        = regexp.MustCompile(`(?m)^//[ \t]*version:[ \t]*(?P<v>\S+)[ \t]*\r?$`)
	goModModuleLine     = regexp.MustCompile(`(?m)^module[ \t]+\S+.*$`)
)

func pythonFallback(v semver.SemVersion) string {
	return fmt.Sprintf("__version__ = %q", v.String())
}

func rubyFallback(v semver.SemVersion) string {
	return fmt.Sprintf("VERSION = %q", v.String())
}

// goModHandler keeps a "// version: X" comment in go.mod. A missing comment
// is placed right below the module directive.
type goModHandler struct{}

func (goModHandler) Format() Format { return FormatGoMod }

func (goModHandler) Read(data []byte) (semver.SemVersion, bool) {
	loc, ok := findGroup(data, goModComment)
	if !ok {
		return semver.SemVersion{}, false
	}
	v, err := semver.ParseVersion(string(data[loc.start:loc.end]))
	if err != nil {
		return semver.SemVersion{}, false
	}
	return v, true
}

func (goModHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	if loc, ok := findGroup(data, goModComment); ok {
		return replaceSpan(data, loc, v.String()), nil
	}
	mod := goModModuleLine.FindIndex(data)
	if mod == nil {
		return nil, fmt.Errorf("missing module directive")
	}
	comment := "\n// version: " + v.String()
	return replaceSpan(data, span{start: mod[1], end: mod[1]}, comment), nil
}

// HasVersionComment reports whether a go.mod carries a version comment.
func HasVersionComment(data []byte) bool {
	return goModComment.Match(data)
}
