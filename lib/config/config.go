// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/cartvault/cartvault/lib/archive"
	"github.com/cartvault/cartvault/lib/digest"
	"github.com/cartvault/cartvault/lib/sidestore"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "CARTVAULT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is a workstation with a checkout of the tool.
	Development Environment = "development"
	// Production is the machine that owns the backup library.
	Production Environment = "production"
)

// Config is the master configuration for cartvault.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	// Memory configures the storage engine.
	Memory MemoryConfig `yaml:"memory"`

	// Archive configures backup archives of the storage root.
	Archive ArchiveConfig `yaml:"archive"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Memory  *MemoryConfig  `yaml:"memory,omitempty"`
	Archive *ArchiveConfig `yaml:"archive,omitempty"`
	Log     *LogConfig     `yaml:"log,omitempty"`
}

// MemoryConfig configures the storage engine.
type MemoryConfig struct {
	// Root is the storage root.
	// Default: ${HOME}/.local/share/cartvault
	Root string `yaml:"root"`

	// Digest is the side-store key algorithm: "blake3" or "md5".
	// Roots created by the legacy tool use md5.
	// Default: blake3
	Digest string `yaml:"digest"`

	// SideStore is the side-store backend: "json" or "sqlite".
	// Default: json (development), sqlite (production)
	SideStore string `yaml:"sidestore"`

	// Disabled turns the engine into a no-op: nothing is stored and
	// nothing is found.
	Disabled bool `yaml:"disabled"`
}

// ArchiveConfig configures backup archives.
type ArchiveConfig struct {
	// Compression is "zstd", "lz4" or "none".
	// Default: zstd
	Compression string `yaml:"compression"`

	// Recipient is an age public key archives are encrypted to.
	// Empty disables encryption.
	Recipient string `yaml:"recipient"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration, used as the base before a
// config file is applied.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		Memory: MemoryConfig{
			Root:      filepath.Join(homeDir, ".local", "share", "cartvault"),
			Digest:    string(digest.Default),
			SideStore: string(sidestore.BackendJSON),
		},
		Archive: ArchiveConfig{
			Compression: string(archive.CompressionZstd),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the CARTVAULT_CONFIG environment
// variable. It fails when the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your cartvault.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path on top of
// [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Memory: &MemoryConfig{SideStore: string(sidestore.BackendSQLite)},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Memory != nil {
		if overrides.Memory.Root != "" {
			c.Memory.Root = overrides.Memory.Root
		}
		if overrides.Memory.Digest != "" {
			c.Memory.Digest = overrides.Memory.Digest
		}
		if overrides.Memory.SideStore != "" {
			c.Memory.SideStore = overrides.Memory.SideStore
		}
		// Disabled is a bool, so it always applies from overrides.
		c.Memory.Disabled = overrides.Memory.Disabled
	}

	if overrides.Archive != nil {
		if overrides.Archive.Compression != "" {
			c.Archive.Compression = overrides.Archive.Compression
		}
		if overrides.Archive.Recipient != "" {
			c.Archive.Recipient = overrides.Archive.Recipient
		}
	}

	if overrides.Log != nil && overrides.Log.Level != "" {
		c.Log.Level = overrides.Log.Level
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Memory.Root = expandVars(c.Memory.Root, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Memory.Root == "" {
		errs = append(errs, fmt.Errorf("memory.root is required"))
	}
	if _, err := digest.Parse(c.Memory.Digest); err != nil {
		errs = append(errs, fmt.Errorf("memory.digest: %w", err))
	}
	if _, err := sidestore.ParseBackend(c.Memory.SideStore); err != nil {
		errs = append(errs, fmt.Errorf("memory.sidestore: %w", err))
	}
	if _, err := archive.ParseCompression(c.Archive.Compression); err != nil {
		errs = append(errs, fmt.Errorf("archive.compression: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
