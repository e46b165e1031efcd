// Package config loads the optional .relkit.yaml project configuration.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/relkit/internal/core"
)

const (
	// FileName is the configuration file looked up in the project root.
	FileName = ".relkit.yaml"

	// EnvVar overrides the configuration file path.
	EnvVar = "RELKIT_CONFIG"

	// DefaultPushRetries is the number of push attempts when unset.
	DefaultPushRetries = 3
)

// DiscoveryConfig bounds the project scan.
type DiscoveryConfig struct {
	MaxDepth int      `yaml:"max-depth,omitempty"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

// ReleaseConfig holds defaults for the hosted release.
type ReleaseConfig struct {
	Title     string   `yaml:"title,omitempty"`
	Draft     bool     `yaml:"draft,omitempty"`
	Artifacts []string `yaml:"artifacts,omitempty"`
}

// PushConfig tunes the push step.
type PushConfig struct {
	Retries int `yaml:"retries,omitempty"`
}

// Config is the main configuration structure for relkit.
type Config struct {
	Remote       string          `yaml:"remote,omitempty"`
	TestCommands []string        `yaml:"test-commands,omitempty"`
	Discovery    DiscoveryConfig `yaml:"discovery,omitempty"`
	Release      ReleaseConfig   `yaml:"release,omitempty"`
	Push         PushConfig      `yaml:"push,omitempty"`

	// Source is the file the configuration was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Discovery.MaxDepth == 0 {
		c.Discovery.MaxDepth = core.MaxDiscoveryDepth
	}
	if c.Push.Retries == 0 {
		c.Push.Retries = DefaultPushRetries
	}
}

// Path returns the configuration file path for root, honoring RELKIT_CONFIG.
func Path(root string) (string, bool, error) {
	// Highest priority: ENV variable
	if envPath := os.Getenv(EnvVar); envPath != "" {
		cleanPath := filepath.Clean(envPath)
		// Reject relative paths with traversal (use absolute paths instead)
		if strings.Contains(cleanPath, "..") {
			return "", false, fmt.Errorf("invalid %s: path traversal not allowed, use absolute path instead", EnvVar)
		}
		return cleanPath, true, nil
	}
	return filepath.Join(root, FileName), false, nil
}

// Load reads the configuration for the project at root. A missing
// .relkit.yaml yields the defaults; a missing file named by RELKIT_CONFIG is
// an error.
func Load(ctx context.Context, fsys core.FileSystem, root string) (*Config, error) {
	path, explicit, err := Path(root)
	if err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Parse decodes data strictly: unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
