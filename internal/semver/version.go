package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SemVersion represents a semantic version (major.minor.patch-preRelease+build).
type SemVersion struct {
	Major      int
	Minor      int
	Patch      int
	PreRelease string
	Build      string
}

// BumpKind selects which field of a version is incremented.
type BumpKind string

const (
	BumpMajor      BumpKind = "major"
	BumpMinor      BumpKind = "minor"
	BumpPatch      BumpKind = "patch"
	BumpPrerelease BumpKind = "prerelease"
)

// IsValid reports whether k is a known bump kind.
func (k BumpKind) IsValid() bool {
	switch k {
	case BumpMajor, BumpMinor, BumpPatch, BumpPrerelease:
		return true
	default:
		return false
	}
}

var (
	// versionRegex matches semantic version strings with optional "v" prefix.
	// It captures:
	//   1. Major version
	//   2. Minor version
	//   3. Patch version
	//   4. (optional) Pre-release identifiers
	//   5. (optional) Build metadata
	versionRegex = regexp.MustCompile(
		`^v?(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)` + // major.minor.patch
			`(?:-([0-9A-Za-z\-]+(?:\.[0-9A-Za-z\-]+)*))?` + // optional pre-release
			`(?:\+([0-9A-Za-z\-]+(?:\.[0-9A-Za-z\-]+)*))?$`, // optional build metadata
	)

	// ErrInvalidVersion is returned when a version string does not conform
	// to the SemVer 2.0.0 grammar.
	ErrInvalidVersion = errors.New("invalid version format")
)

// String returns the string representation of the semantic version.
func (v SemVersion) String() string {
	var sb strings.Builder
	sb.Grow(20)
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	if v.PreRelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.PreRelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// TagName returns the release tag for v ("v" + version).
func (v SemVersion) TagName() string {
	return "v" + v.String()
}

// IsPreRelease reports whether v carries pre-release identifiers.
func (v SemVersion) IsPreRelease() bool {
	return v.PreRelease != ""
}

// maxVersionLength is the maximum allowed length for a version string.
// This prevents potential ReDoS attacks on the regex parser.
const maxVersionLength = 128

// ParseVersion parses a semantic version string and returns a SemVersion.
//
// Supported formats:
//   - "1.2.3" (basic version)
//   - "v1.2.3" (with optional v prefix)
//   - "1.2.3-alpha.1" (with pre-release identifier)
//   - "1.2.3+build.123" (with build metadata)
//   - "1.2.3-rc.1+build.456" (with both)
//
// Numeric fields and numeric pre-release identifiers must not carry leading
// zeros. Failures wrap ErrInvalidVersion.
func ParseVersion(s string) (SemVersion, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > maxVersionLength {
		return SemVersion{}, fmt.Errorf("%w: version string exceeds maximum length of %d", ErrInvalidVersion, maxVersionLength)
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return SemVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, trimmed)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid major version: %s", ErrInvalidVersion, err.Error())
	}
	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid minor version: %s", ErrInvalidVersion, err.Error())
	}
	patch, err := strconv.Atoi(matches[3])
	if err != nil {
		return SemVersion{}, fmt.Errorf("%w: invalid patch version: %s", ErrInvalidVersion, err.Error())
	}

	pre := matches[4]
	if err := ValidatePreRelease(pre); err != nil {
		return SemVersion{}, err
	}

	return SemVersion{Major: major, Minor: minor, Patch: patch, PreRelease: pre, Build: matches[5]}, nil
}

// MustParse is like ParseVersion but panics on error. Intended for tests and constants.
func MustParse(s string) SemVersion {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidatePreRelease checks a dot-separated pre-release string. An empty
// string is valid and means "no pre-release".
func ValidatePreRelease(pre string) error {
	if pre == "" {
		return nil
	}
	for _, id := range strings.Split(pre, ".") {
		if id == "" {
			return fmt.Errorf("%w: empty pre-release identifier in %q", ErrInvalidVersion, pre)
		}
		for i := 0; i < len(id); i++ {
			c := id[i]
			if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && c != '-' {
				return fmt.Errorf("%w: invalid character %q in pre-release %q", ErrInvalidVersion, c, pre)
			}
		}
		if isAllDigits(id) && len(id) > 1 && id[0] == '0' {
			return fmt.Errorf("%w: numeric pre-release identifier %q has a leading zero", ErrInvalidVersion, id)
		}
	}
	return nil
}

// Compare compares two semantic versions.
// It returns -1 if v < other, 0 if v == other, and +1 if v > other.
// Pre-release versions have lower precedence than the associated normal version
// (e.g., 1.0.0-alpha < 1.0.0). Build metadata is ignored for comparison purposes.
func (v SemVersion) Compare(other SemVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.PreRelease == "" && other.PreRelease == "":
		return 0
	case v.PreRelease == "":
		return 1
	case other.PreRelease == "":
		return -1
	default:
		return comparePreRelease(v.PreRelease, other.PreRelease)
	}
}

// Equal reports whether v and other have the same precedence.
func (v SemVersion) Equal(other SemVersion) bool {
	return v.Compare(other) == 0
}

// Max returns the highest of the given versions and false when none are given.
func Max(versions ...SemVersion) (SemVersion, bool) {
	if len(versions) == 0 {
		return SemVersion{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best, true
}

// Bump returns v incremented according to kind. Lower-order fields are zeroed
// and pre-release/build are dropped. For BumpPrerelease, label names the
// pre-release channel (default "rc"): an existing pre-release on the same
// channel is incremented, otherwise the patch is bumped and "label.1" set.
func Bump(v SemVersion, kind BumpKind, label string) (SemVersion, error) {
	switch kind {
	case BumpPatch, BumpMinor, BumpMajor:
		return BumpByLabel(v, string(kind))
	case BumpPrerelease:
		if label == "" {
			label = extractPreReleaseBase(v.PreRelease)
		}
		if label == "" {
			label = "rc"
		}
		next := SemVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
		if v.PreRelease == "" {
			next.Patch++
		}
		next.PreRelease = IncrementPreRelease(v.PreRelease, label)
		return next, nil
	default:
		return SemVersion{}, fmt.Errorf("invalid bump kind: %q", kind)
	}
}

// BumpByLabel bumps the version using an explicit label.
//
// Supported labels:
//   - "patch": increments patch (1.2.3 -> 1.2.4)
//   - "minor": increments minor, resets patch (1.2.3 -> 1.3.0)
//   - "major": increments major, resets minor and patch (1.2.3 -> 2.0.0)
//
// Returns an error if label is not one of: patch, minor, major.
func BumpByLabel(v SemVersion, label string) (SemVersion, error) {
	switch label {
	case "patch":
		return SemVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	case "minor":
		return SemVersion{Major: v.Major, Minor: v.Minor + 1, Patch: 0}, nil
	case "major":
		return SemVersion{Major: v.Major + 1, Minor: 0, Patch: 0}, nil
	default:
		return SemVersion{}, fmt.Errorf("invalid bump label: %s", label)
	}
}

// IncrementPreRelease increments the numeric suffix of a pre-release label.
// Preserves the original separator style:
// - "rc.1" -> "rc.2" (dot separator)
// - "rc-1" -> "rc-2" (dash separator)
// - "rc1" -> "rc2" (no separator)
// - "rc" -> "rc.1" (no number, defaults to dot)
// If current doesn't match base, returns base.1.
func IncrementPreRelease(current, base string) string {
	if current == base || !strings.HasPrefix(current, base) {
		return formatPreReleaseWithSep(base, 1, ".")
	}

	suffix := current[len(base):]
	var sep, numStr string
	switch suffix[0] {
	case '.':
		sep = "."
		numStr = suffix[1:]
	case '-':
		sep = "-"
		numStr = suffix[1:]
	default:
		sep = ""
		numStr = suffix
	}

	if numStr == "" || !isAllDigits(numStr) {
		return formatPreReleaseWithSep(base, 1, ".")
	}

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return formatPreReleaseWithSep(base, 1, ".")
	}

	return formatPreReleaseWithSep(base, n+1, sep)
}

// extractPreReleaseBase extracts the channel from a pre-release string.
// e.g., "rc.1" -> "rc", "beta.2" -> "beta", "alpha" -> "alpha", "rc1" -> "rc"
func extractPreReleaseBase(pre string) string {
	if i := strings.LastIndexByte(pre, '.'); i >= 0 && i < len(pre)-1 && isAllDigits(pre[i+1:]) {
		return pre[:i]
	}
	end := len(pre)
	for end > 0 && pre[end-1] >= '0' && pre[end-1] <= '9' {
		end--
	}
	if end > 0 && end < len(pre) {
		return pre[:end]
	}
	return pre
}

// isAllDigits returns true if s consists entirely of ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func formatPreReleaseWithSep(base string, num int, sep string) string {
	return fmt.Sprintf("%s%s%d", base, sep, num)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func comparePreRelease(a, b string) int {
	aIDs := strings.Split(a, ".")
	bIDs := strings.Split(b, ".")

	n := min(len(aIDs), len(bIDs))
	for i := range n {
		if c := compareIdentifier(aIDs[i], bIDs[i]); c != 0 {
			return c
		}
	}

	// If equal so far, shorter list has lower precedence.
	return compareInt(len(aIDs), len(bIDs))
}

func compareIdentifier(a, b string) int {
	aIsNum := isNumericIdentifier(a)
	bIsNum := isNumericIdentifier(b)

	switch {
	case aIsNum && bIsNum:
		// Without leading zeros a longer digit string is a larger number,
		// whatever its size.
		if c := compareInt(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case aIsNum && !bIsNum:
		return -1 // numeric < non-numeric
	case !aIsNum && bIsNum:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SemVer numeric identifiers: only digits, no leading zeros unless exactly "0".
func isNumericIdentifier(s string) bool {
	return isAllDigits(s) && (len(s) == 1 || s[0] != '0')
}
