// Package versionfile reads and rewrites version declarations inside the
// files that carry them across language ecosystems: TOML and JSON manifests,
// XML project files, plain VERSION files, source-embedded constants, Gradle
// build scripts, setup.cfg and go.mod comments.
//
// Every handler works on bytes only. The Registry wraps the handlers with
// filesystem access, explicit project roots and error classification so the
// release pipeline can preview a rewrite (Plan) before applying it.
package versionfile
