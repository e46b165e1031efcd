package versionfile

import (
	"errors"
	"fmt"

	"github.com/indaco/relkit/internal/semver"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// jsonHandler edits a top-level string field with sjson so key order and
// indentation survive the rewrite.
type jsonHandler struct {
	field string
}

func (h *jsonHandler) Format() Format { return FormatJSON }

func (h *jsonHandler) Read(data []byte) (semver.SemVersion, bool) {
	if !gjson.ValidBytes(data) {
		return semver.SemVersion{}, false
	}
	res := gjson.GetBytes(data, h.field)
	if res.Type != gjson.String {
		return semver.SemVersion{}, false
	}
	v, err := semver.ParseVersion(res.Str)
	if err != nil {
		return semver.SemVersion{}, false
	}
	return v, true
}

func (h *jsonHandler) Write(data []byte, v semver.SemVersion) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("malformed JSON")
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New("top-level value is not an object")
	}
	res := gjson.GetBytes(data, h.field)
	if res.Exists() && res.Type != gjson.String {
		return nil, fmt.Errorf("%w: %q is not a string", errNoDeclaration, h.field)
	}

	updated, err := sjson.SetBytes(data, h.field, v.String())
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", h.field, err)
	}

	// Ensure trailing newline
	if len(updated) > 0 && updated[len(updated)-1] != '\n' {
		updated = append(updated, '\n')
	}
	return updated, nil
}
