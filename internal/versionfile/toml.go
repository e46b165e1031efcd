package versionfile

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/indaco/relkit/internal/semver"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// tomlHandler edits a "version" key located at one of several dotted paths,
// tried in priority order.
type tomlHandler struct {
	// fields are dotted key paths such as "project.version".
	fields []string

	// honorDynamic refuses to inject a version when the project table lists
	// "version" as dynamic (PEP 621).
	honorDynamic bool
}

func (h *tomlHandler) Format() Format { return FormatTOML }

func (h *tomlHandler) Read(data []byte) (semver.SemVersion, bool) {
	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return semver.SemVersion{}, false
	}
	for _, field := range h.fields {
		value, err := getNestedValue(obj, field)
		if err != nil {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		v, err := semver.ParseVersion(s)
		if err != nil {
			continue
		}
		return v, true
	}
	return semver.SemVersion{}, false
}

// Write replaces the first declared version in place. A missing key is
// added to a table the document already has; tables are never created.
func (h *tomlHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	layout, err := scanTOML(data)
	if err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}

	for _, field := range h.fields {
		value, err := getNestedValue(obj, field)
		if err != nil {
			continue
		}
		if _, ok := value.(string); !ok {
			return nil, fmt.Errorf("%w: %s is not a string", errNoDeclaration, field)
		}
		loc, ok := layout.values[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a single-line string", errNoDeclaration, field)
		}
		return replaceSpan(data, loc, v.String()), nil
	}

	if h.honorDynamic && isDynamicVersion(obj) {
		return nil, fmt.Errorf("%w: version is declared dynamic", errNoDeclaration)
	}

	entry := fmt.Sprintf("version = %q", v.String())
	tables := make([]string, 0, len(h.fields))
	for _, field := range h.fields {
		table := field[:strings.LastIndexByte(field, '.')]
		if at, ok := layout.tables[table]; ok {
			return insertLineAt(data, at, entry), nil
		}
		tables = append(tables, "["+table+"]")
	}
	return nil, fmt.Errorf("%w: no %s table to hold the version", errNoDeclaration, strings.Join(tables, " or "))
}

// tomlLayout records where string values and table headers sit in a TOML
// document.
type tomlLayout struct {
	// values holds the contents span of every single-line string, by
	// dotted key path.
	values map[string]span

	// tables holds an offset inside each [table] header line.
	tables map[string]int
}

func scanTOML(data []byte) (*tomlLayout, error) {
	layout := &tomlLayout{values: map[string]span{}, tables: map[string]int{}}

	var p unstable.Parser
	p.Reset(data)
	var table []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			var last *unstable.Node
			table, last = keyPath(e.Key())
			if _, seen := layout.tables[strings.Join(table, ".")]; !seen && last != nil {
				layout.tables[strings.Join(table, ".")] = int(last.Raw.Offset + last.Raw.Length)
			}
		case unstable.ArrayTable:
			// Keys of array tables never match a version path.
			path, _ := keyPath(e.Key())
			table = append([]string{"[]"}, path...)
		case unstable.KeyValue:
			layout.collect(data, table, e)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return layout, nil
}

func (l *tomlLayout) collect(data []byte, prefix []string, kv *unstable.Node) {
	key, _ := keyPath(kv.Key())
	path := append(slices.Clone(prefix), key...)

	value := kv.Value()
	switch value.Kind {
	case unstable.String:
		start := int(value.Raw.Offset)
		end := start + int(value.Raw.Length)
		raw := data[start:end]
		if len(raw) < 2 || bytes.HasPrefix(raw, []byte(`"""`)) || bytes.HasPrefix(raw, []byte("'''")) {
			return
		}
		l.values[strings.Join(path, ".")] = span{start: start + 1, end: end - 1}
	case unstable.InlineTable:
		it := value.Children()
		for it.Next() {
			l.collect(data, path, it.Node())
		}
	}
}

// keyPath returns the parts of a dotted key and its last node.
func keyPath(it unstable.Iterator) ([]string, *unstable.Node) {
	var (
		parts []string
		last  *unstable.Node
	)
	for it.Next() {
		last = it.Node()
		parts = append(parts, string(last.Data))
	}
	return parts, last
}

// PyprojectHasMetadata reports whether a pyproject.toml has a [project] or
// [tool.poetry] table. Documents that do not parse report true so the
// format error surfaces when the file is read.
func PyprojectHasMetadata(data []byte) bool {
	var obj map[string]any
	if err := toml.Unmarshal(data, &obj); err != nil {
		return true
	}
	for _, table := range []string{"project", "tool.poetry"} {
		value, err := getNestedValue(obj, table)
		if err != nil {
			continue
		}
		if _, ok := value.(map[string]any); ok {
			return true
		}
	}
	return false
}

func isDynamicVersion(obj map[string]any) bool {
	dynamic, err := getNestedValue(obj, "project.dynamic")
	if err != nil {
		return false
	}
	list, ok := dynamic.([]any)
	if !ok {
		return false
	}
	return slices.Contains(list, any("version"))
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "tool.poetry.version" accesses obj["tool"]["poetry"]["version"]
func getNestedValue(obj map[string]any, field string) (any, error) {
	if field == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("field %q not found", field)
		}

		current = value
	}

	return current, nil
}

// iniHandler edits an unquoted "version" key of an INI section (setup.cfg).
type iniHandler struct {
	section string
}

var iniVersionKey = regexp.MustCompile(`^\s*version\s*[=:][ \t]*(?P<v>[^\s#;][^#;]*?)\s*$`)

func (h *iniHandler) Format() Format { return FormatINI }

func (h *iniHandler) Read(data []byte) (semver.SemVersion, bool) {
	loc, ok := findInSection(data, h.section, iniVersionKey)
	if !ok {
		return semver.SemVersion{}, false
	}
	v, err := semver.ParseVersion(string(data[loc.start:loc.end]))
	if err != nil {
		return semver.SemVersion{}, false
	}
	return v, true
}

func (h *iniHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	loc, ok := findInSection(data, h.section, iniVersionKey)
	if !ok {
		return insertInSection(data, h.section, "version = "+v.String()), nil
	}
	current := string(data[loc.start:loc.end])
	if strings.HasPrefix(current, "attr:") || strings.HasPrefix(current, "file:") {
		return nil, fmt.Errorf("%w: version is read from %q", errNoDeclaration, current)
	}
	return replaceSpan(data, loc, v.String()), nil
}
