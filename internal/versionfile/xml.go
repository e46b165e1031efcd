package versionfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/indaco/relkit/internal/semver"
)

// xmlComment is masked in every XML document.
var xmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)

// xmlHandler replaces the text of the first matching element. Comments and
// elements nested inside masked blocks (a pom's <parent> or <dependencies>)
// are ignored so only the project's own version is considered.
type xmlHandler struct {
	tags   []*regexp.Regexp
	masked []*regexp.Regexp
}

func newXMLHandler(tags, masked []string) *xmlHandler {
	h := &xmlHandler{masked: []*regexp.Regexp{xmlComment}}
	for _, tag := range tags {
		h.tags = append(h.tags, regexp.MustCompile(`<`+tag+`>\s*(?P<v>[^<]*?)\s*</`+tag+`>`))
	}
	for _, block := range masked {
		h.masked = append(h.masked, regexp.MustCompile(`(?s)<`+block+`(?:\s[^>]*)?>.*?</`+block+`>`))
	}
	return h
}

func (h *xmlHandler) Format() Format { return FormatXML }

// locate returns the value span of the first unmasked tag.
func (h *xmlHandler) locate(data []byte) (span, bool) {
	view := make([]byte, len(data))
	copy(view, data)
	for _, re := range h.masked {
		for _, loc := range re.FindAllIndex(view, -1) {
			for i := loc[0]; i < loc[1]; i++ {
				if view[i] != '\n' {
					view[i] = ' '
				}
			}
		}
	}
	for _, re := range h.tags {
		if loc, ok := findGroup(view, re); ok {
			return loc, true
		}
	}
	return span{}, false
}

func (h *xmlHandler) Read(data []byte) (semver.SemVersion, bool) {
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

func (h *xmlHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	if !strings.Contains(string(data), "<") {
		return nil, fmt.Errorf("no XML elements found")
	}
	loc, ok := h.locate(data)
	if !ok {
		return nil, fmt.Errorf("%w: no project version element", errNoDeclaration)
	}
	if current := string(data[loc.start:loc.end]); isPlaceholder(current) {
		return nil, fmt.Errorf("%w: version is defined by %q", errNoDeclaration, current)
	}
	return replaceSpan(data, loc, v.String()), nil
}
