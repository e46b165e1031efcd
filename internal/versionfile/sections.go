package versionfile

import (
	"bytes"
	"regexp"
	"strings"
)

// headerRegex matches "[section]" headers of TOML and INI files. Array
// tables ("[[bin]]") are matched by arrayHeaderRegex and never selected.
var (
	headerRegex      = regexp.MustCompile(`^\s*\[\s*([^\[\]]+?)\s*\]\s*(?:[#;].*)?$`)
	arrayHeaderRegex = regexp.MustCompile(`^\s*\[\[`)
)

// span is a half-open byte range inside a file.
type span struct {
	start, end int
}

// line is one line of a file with its byte offset.
type line struct {
	text   string
	offset int
}

func splitLines(data []byte) []line {
	var lines []line
	offset := 0
	for offset < len(data) {
		end := bytes.IndexByte(data[offset:], '\n')
		if end < 0 {
			lines = append(lines, line{text: string(data[offset:]), offset: offset})
			break
		}
		lines = append(lines, line{text: strings.TrimSuffix(string(data[offset:offset+end]), "\r"), offset: offset})
		offset += end + 1
	}
	return lines
}

// sectionOf returns the section name a header line opens. ok is false for
// lines that are not headers. Array tables yield a name that never matches.
func sectionOf(text string) (name string, ok bool) {
	if arrayHeaderRegex.MatchString(text) {
		return "\x00array", true
	}
	m := headerRegex.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ReplaceAll(m[1], " ", ""), true
}

// findInSection locates the value group "v" of keyRe inside [section].
func findInSection(data []byte, section string, keyRe *regexp.Regexp) (span, bool) {
	current := ""
	group := keyRe.SubexpIndex("v")
	for _, ln := range splitLines(data) {
		if name, ok := sectionOf(ln.text); ok {
			current = name
			continue
		}
		if current != section {
			continue
		}
		loc := keyRe.FindStringSubmatchIndex(ln.text)
		if loc == nil || loc[2*group] < 0 {
			continue
		}
		return span{start: ln.offset + loc[2*group], end: ln.offset + loc[2*group+1]}, true
	}
	return span{}, false
}

// insertInSection adds entry as the first line of [section], appending the
// section at the end of the file when it does not exist.
func insertInSection(data []byte, section, entry string) []byte {
	for _, ln := range splitLines(data) {
		if name, ok := sectionOf(ln.text); ok && name == section {
			return insertLineAt(data, ln.offset+len(ln.text), entry)
		}
	}

	var out bytes.Buffer
	out.Write(data)
	if len(data) > 0 {
		if data[len(data)-1] != '\n' {
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}
	out.WriteString("[" + section + "]\n")
	out.WriteString(entry)
	out.WriteString("\n")
	return out.Bytes()
}

// insertLineAt adds entry on its own line after the line containing at,
// keeping the file's line endings.
func insertLineAt(data []byte, at int, entry string) []byte {
	for at < len(data) && data[at] != '\n' {
		at++
	}
	eol := "\n"
	if at > 0 && data[at-1] == '\r' {
		eol = "\r\n"
	}

	var out bytes.Buffer
	if at < len(data) {
		out.Write(data[:at+1])
	} else {
		out.Write(data)
		out.WriteString(eol)
	}
	out.WriteString(entry)
	out.WriteString(eol)
	if at < len(data) {
		out.Write(data[at+1:])
	}
	return out.Bytes()
}

// replaceSpan returns data with s replaced by value.
func replaceSpan(data []byte, s span, value string) []byte {
	out := make([]byte, 0, len(data)-(s.end-s.start)+len(value))
	out = append(out, data[:s.start]...)
	out = append(out, value...)
	out = append(out, data[s.end:]...)
	return out
}

// findGroup locates the named group "v" of the first re match in data.
func findGroup(data []byte, re *regexp.Regexp) (span, bool) {
	loc := re.FindSubmatchIndex(data)
	if loc == nil {
		return span{}, false
	}
	g := re.SubexpIndex("v")
	if loc[2*g] < 0 {
		return span{}, false
	}
	return span{start: loc[2*g], end: loc[2*g+1]}, true
}

// appendLine appends entry on its own line at the end of data.
func appendLine(data []byte, entry string) []byte {
	out := make([]byte, 0, len(data)+len(entry)+2)
	out = append(out, data...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, entry...)
	return append(out, '\n')
}

// isPlaceholder reports values that reference a property or build variable.
func isPlaceholder(value string) bool {
	return strings.ContainsAny(value, "$@{")
}
