package notes

import (
	"fmt"
	"sort"
	"strings"
)

// typeAbbreviations maps conventional commit types to their display form.
var typeAbbreviations = map[string]string{
	"feat":     "Feat",
	"fix":      "Fix",
	"docs":     "Docs",
	"perf":     "Perf",
	"refactor": "Refactor",
	"style":    "Style",
	"test":     "Test",
	"chore":    "Chore",
	"ci":       "CI",
	"build":    "Build",
	"revert":   "Revert",
}

// rank orders entries: breaking changes, features, fixes, then the rest.
func rank(c Commit) int {
	switch {
	case c.Breaking:
		return 0
	case c.Type == "feat":
		return 1
	case c.Type == "fix":
		return 2
	default:
		return 3
	}
}

// abbreviation returns the bracketed prefix for c.
// Breaking changes always return "Breaking" regardless of the original type.
func abbreviation(c Commit) string {
	if c.Breaking {
		return "Breaking"
	}
	if abbr, ok := typeAbbreviations[c.Type]; ok {
		return abbr
	}
	return "Other"
}

// Format renders commits as a flat minimal changelog:
//
//	## v1.2.0
//
//	- [Feat] Add caching
//	- [Fix] Memory leak in parser
//
// compareURL, when set, is appended as a "Full Changelog" link.
func Format(tag, previousTag string, commits []Commit, compareURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", tag)

	sorted := make([]Commit, len(commits))
	copy(sorted, commits)
	sort.SliceStable(sorted, func(i, j int) bool { return rank(sorted[i]) < rank(sorted[j]) })

	if len(sorted) == 0 {
		if previousTag != "" {
			fmt.Fprintf(&sb, "No changes since %s.\n", previousTag)
		} else {
			sb.WriteString("Initial release.\n")
		}
	}
	for _, c := range sorted {
		fmt.Fprintf(&sb, "- [%s] %s\n", abbreviation(c), c.Description)
	}

	if compareURL != "" {
		fmt.Fprintf(&sb, "\n**Full Changelog**: %s\n", compareURL)
	}
	return sb.String()
}
