package git

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorInfo contains user-friendly error information
type ErrorInfo struct {
	Category    string
	Message     string
	Suggestions []string

	// Transient marks failures worth retrying (network hiccups).
	Transient bool
}

// errorPattern represents a pattern to match in git error output
type errorPattern struct {
	pattern *regexp.Regexp
	info    ErrorInfo
}

// errorPatterns contains common git error patterns with helpful suggestions.
// Order matters: more specific patterns should come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: regexp.MustCompile(`(?i)not a git repository`),
		info: ErrorInfo{
			Category: "not_a_repository",
			Message:  "Not inside a git working tree",
			Suggestions: []string{
				"Run relkit from the project root or pass --path",
				"Initialize a repository with: git init",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)fatal: repository .* not found`),
		info: ErrorInfo{
			Category: "repository_not_found",
			Message:  "Repository not found",
			Suggestions: []string{
				"Verify the remote URL is correct: git remote -v",
				"Check if the repository is private and requires authentication",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\[rejected\].*\(already exists\)|tag .* already exists`),
		info: ErrorInfo{
			Category: "tag_exists",
			Message:  "Tag already exists",
			Suggestions: []string{
				"Choose a different version with --version",
				"Inspect existing tags with: git tag -l",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\[rejected\]|non-fast-forward|fetch first|updates were rejected`),
		info: ErrorInfo{
			Category: "push_rejected",
			Message:  "Push rejected by the remote",
			Suggestions: []string{
				"Pull and rebase the remote changes, then push again",
				"Push the branch and tag manually once the history is reconciled",
			},
		},
	},
	// SSL/Certificate errors (must come before generic "unable to access")
	{
		pattern: regexp.MustCompile(`(?i)SSL certificate problem|certificate verify failed`),
		info: ErrorInfo{
			Category: "ssl_error",
			Message:  "SSL certificate verification failed",
			Suggestions: []string{
				"Check your system's SSL certificates are up to date",
				"Check if a proxy is interfering with SSL connections",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Authentication failed|fatal: could not read (Username|Password)`),
		info: ErrorInfo{
			Category: "auth_required",
			Message:  "Authentication required",
			Suggestions: []string{
				"Configure git credentials for this remote",
				"Use an SSH remote URL if you have keys configured",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Permission denied|permission to .* denied`),
		info: ErrorInfo{
			Category: "permission_denied",
			Message:  "Permission denied",
			Suggestions: []string{
				"Verify you have write access to this repository",
				"Check your git credentials or SSH keys",
			},
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Connection timed out|fatal: unable to connect|Operation timed out`),
		info: ErrorInfo{
			Category: "network_timeout",
			Message:  "Connection timed out",
			Suggestions: []string{
				"Check your network connection",
				"Try again in a few moments",
			},
			Transient: true,
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)Could not resolve host|Temporary failure in name resolution`),
		info: ErrorInfo{
			Category: "dns_error",
			Message:  "Could not resolve hostname",
			Suggestions: []string{
				"Check your network connection",
				"Check your DNS settings",
			},
			Transient: true,
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)The remote end hung up unexpectedly|Connection reset|early EOF|fatal: unable to access|HTTP 5\d\d`),
		info: ErrorInfo{
			Category: "network_error",
			Message:  "Unable to reach the remote",
			Suggestions: []string{
				"Check your network connection",
				"Check if a proxy or firewall is blocking access",
			},
			Transient: true,
		},
	},
}

// ClassifyError matches git output against known error patterns. It
// returns nil when no pattern matches.
func ClassifyError(output string) *ErrorInfo {
	for _, p := range errorPatterns {
		if p.pattern.MatchString(output) {
			info := p.info
			return &info
		}
	}
	return nil
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Info   *ErrorInfo
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v", e.Stderr, e.Err)
	}
	return fmt.Sprintf("git %s failed: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Suggestions returns the remediation hints for the failure, if known.
func (e *CommandError) Suggestions() []string {
	if e.Info == nil {
		return nil
	}
	return e.Info.Suggestions
}

// IsTransient reports whether err is a git failure worth retrying.
func IsTransient(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Info != nil && cmdErr.Info.Transient
}

// Suggestions extracts remediation hints from err, if it is a git failure.
func Suggestions(err error) []string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Suggestions()
	}
	return nil
}
