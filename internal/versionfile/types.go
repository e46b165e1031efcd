package versionfile

import (
	"errors"
	"fmt"

	"github.com/indaco/relkit/internal/semver"
)

// Ecosystem is a language/tooling convention bundle that determines where
// version strings live and how tests are run.
type Ecosystem string

const (
	EcosystemPython Ecosystem = "python"
	EcosystemNode   Ecosystem = "node"
	EcosystemGo     Ecosystem = "go"
	EcosystemRust   Ecosystem = "rust"
	EcosystemJava   Ecosystem = "java"
	EcosystemDotNet Ecosystem = "dotnet"
	EcosystemRuby   Ecosystem = "ruby"
	EcosystemPHP    Ecosystem = "php"

	// EcosystemGeneric owns a top-level VERSION file no language claimed.
	EcosystemGeneric Ecosystem = "generic"
)

// Ecosystems lists the language ecosystems in detection order.
var Ecosystems = []Ecosystem{
	EcosystemPython,
	EcosystemNode,
	EcosystemGo,
	EcosystemRust,
	EcosystemJava,
	EcosystemDotNet,
	EcosystemRuby,
	EcosystemPHP,
}

// Format names the syntax family a handler understands.
type Format string

const (
	FormatTOML       Format = "toml"
	FormatJSON       Format = "json"
	FormatXML        Format = "xml"
	FormatText       Format = "text"
	FormatAssignment Format = "assignment"
	FormatGradle     Format = "gradle"
	FormatGoMod      Format = "gomod-comment"
	FormatINI        Format = "ini"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// Kind identifies one (file pattern, format) pairing. It is resolved once at
// detection time and selects the handler used for every later read or write.
type Kind string

const (
	KindPyproject    Kind = "pyproject.toml"
	KindSetupPy      Kind = "setup.py"
	KindSetupCfg     Kind = "setup.cfg"
	KindPythonModule Kind = "python-version-module"
	KindPlainText    Kind = "VERSION"
	KindPackageJSON  Kind = "package.json"
	KindGoMod        Kind = "go.mod"
	KindCargo        Kind = "Cargo.toml"
	KindPom          Kind = "pom.xml"
	KindGradle       Kind = "build.gradle"
	KindMSBuild      Kind = "msbuild"
	KindGemspec      Kind = "gemspec"
	KindRubyConstant Kind = "ruby-version-constant"
	KindComposer     Kind = "composer.json"
)

// Target is a version file discovered in a project.
type Target struct {
	// Path is relative to the project root, slash separated.
	Path      string    `json:"path"`
	Ecosystem Ecosystem `json:"ecosystem"`
	Kind      Kind      `json:"kind"`
}

// Handler reads and rewrites the version declaration of one file format.
//
// Read reports false when the content holds no recognizable declaration or
// the declared value is not a valid version. Write must be idempotent and
// must leave unrelated content untouched.
type Handler interface {
	Format() Format
	Read(data []byte) (semver.SemVersion, bool)
	Write(data []byte, v semver.SemVersion) ([]byte, error)
}

// errNoDeclaration is returned by handlers that refuse to inject a
// declaration into a file whose structure they do not recognize.
var errNoDeclaration = errors.New("no recognizable version declaration")

// FormatError reports a file that cannot be parsed in its expected format.
type FormatError struct {
	Path   string
	Format Format
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: invalid %s content: %v", e.Path, e.Format, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ManualUpdateError is a non-fatal outcome: the file exists but its version
// must be updated by hand.
type ManualUpdateError struct {
	Path   string
	Reason string
}

func (e *ManualUpdateError) Error() string {
	return fmt.Sprintf("%s: manual update required: %s", e.Path, e.Reason)
}
