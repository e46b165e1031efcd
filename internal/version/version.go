// Package version reports the relkit build version.
package version

import (
	"runtime/debug"
	"strings"
)

// version is set at build time:
//
//	go build -ldflags "-X github.com/indaco/relkit/internal/version.version=1.2.3"
var version = ""

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the ldflags version, then the module version recorded
// by the Go toolchain, then "dev".
func GetVersion() string {
	if version != "" {
		return strings.TrimPrefix(version, "v")
	}
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return strings.TrimPrefix(v, "v")
	}
	return "dev"
}
