// Package tui holds the interactive terminal pieces of relkit: environment
// detection, huh prompts and themes, and the spinner shown around network
// operations.
package tui

import (
	"os"

	"golang.org/x/term"
)

// ciEnvVars are set by common CI/CD providers.
var ciEnvVars = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"GITLAB_CI",              // GitLab CI
	"CIRCLECI",               // CircleCI
	"TRAVIS",                 // Travis CI
	"JENKINS_HOME",           // Jenkins
	"BUILDKITE",              // Buildkite
	"BITBUCKET_BUILD_NUMBER", // Bitbucket Pipelines
	"DRONE",                  // Drone CI
	"TF_BUILD",               // Azure Pipelines
}

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
}

// IsInteractive reports whether prompts can be shown: stdout is a terminal
// and no CI environment is detected. Releases fall back to the
// non-interactive path otherwise.
func IsInteractive() bool {
	return isTerminal() && !IsCI()
}

// IsCI reports whether a CI provider environment variable is set.
func IsCI() bool {
	for _, env := range ciEnvVars {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}
