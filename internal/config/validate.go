package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/indaco/relkit/internal/core"
)

const maxPushRetries = 10

var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if strings.ContainsAny(c.Remote, " \t\n") {
		result = multierror.Append(result, fmt.Errorf("remote %q must not contain whitespace", c.Remote))
	}
	for i, cmd := range c.TestCommands {
		if strings.TrimSpace(cmd) == "" {
			result = multierror.Append(result, fmt.Errorf("test-commands[%d] is empty", i))
		}
	}

	if c.Discovery.MaxDepth < 0 || c.Discovery.MaxDepth > core.MaxDiscoveryDepth {
		result = multierror.Append(result, fmt.Errorf("discovery.max-depth must be between 0 and %d, got %d", core.MaxDiscoveryDepth, c.Discovery.MaxDepth))
	}
	for i, ex := range c.Discovery.Exclude {
		if strings.TrimSpace(ex) == "" {
			result = multierror.Append(result, fmt.Errorf("discovery.exclude[%d] is empty", i))
		}
	}

	for _, ph := range placeholderRe.FindAllString(c.Release.Title, -1) {
		if ph != "{version}" && ph != "{tag}" {
			result = multierror.Append(result, fmt.Errorf("release.title: unknown placeholder %s (use {version} or {tag})", ph))
		}
	}
	for _, pattern := range c.Release.Artifacts {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, fmt.Errorf("release.artifacts: invalid glob %q", pattern))
		}
	}

	if c.Push.Retries < 0 || c.Push.Retries > maxPushRetries {
		result = multierror.Append(result, fmt.Errorf("push.retries must be between 0 and %d, got %d", maxPushRetries, c.Push.Retries))
	}

	return result.ErrorOrNil()
}
