package detector

import (
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/versionfile"
)

// ProjectType is derived from the number of detected languages.
type ProjectType string

const (
	ProjectUnknown ProjectType = "unknown"
	ProjectMulti   ProjectType = "multi"
)

// ProjectProfile is the result of detecting one project root. It is built
// once per invocation and treated as read-only afterwards.
type ProjectProfile struct {
	Root            string                  `json:"root"`
	Languages       []versionfile.Ecosystem `json:"languages"`
	ProjectType     ProjectType             `json:"projectType"`
	VersionFiles    []versionfile.Target    `json:"versionFiles"`
	BuildSystems    []BuildSystem           `json:"buildSystems"`
	TestCommands    []string                `json:"testCommands"`
	PackageManagers []string                `json:"packageManagers"`
	Repo            RepoMetadata            `json:"repo"`
}

// BuildSystem is a task runner found at the project root.
type BuildSystem struct {
	Name string `json:"name"`
	File string `json:"file"`

	// HasTest is set when the build file defines a "test" target.
	HasTest bool `json:"hasTest"`
}

// TestCommand returns the command running the build system's test target.
func (b BuildSystem) TestCommand() string {
	return b.Name + " test"
}

// RepoMetadata describes the version-control state of the project.
type RepoMetadata struct {
	IsRepo bool `json:"isRepo"`

	// Branch is empty when HEAD is detached.
	Branch    string `json:"branch"`
	Remote    string `json:"remote"`
	RemoteURL string `json:"remoteUrl"`

	// Forge is set when RemoteURL points at a recognized host.
	Forge *forge.RemoteInfo `json:"forge,omitempty"`
}

// Detached reports whether HEAD is detached.
func (r RepoMetadata) Detached() bool {
	return r.IsRepo && r.Branch == ""
}

// HasLanguage reports whether eco was detected.
func (p *ProjectProfile) HasLanguage(eco versionfile.Ecosystem) bool {
	for _, l := range p.Languages {
		if l == eco {
			return true
		}
	}
	return false
}

// VersionFilesFor returns the version files owned by eco, in priority order.
func (p *ProjectProfile) VersionFilesFor(eco versionfile.Ecosystem) []versionfile.Target {
	var out []versionfile.Target
	for _, t := range p.VersionFiles {
		if t.Ecosystem == eco {
			out = append(out, t)
		}
	}
	return out
}

func deriveProjectType(languages []versionfile.Ecosystem) ProjectType {
	switch len(languages) {
	case 0:
		return ProjectUnknown
	case 1:
		return ProjectType(languages[0])
	default:
		return ProjectMulti
	}
}
