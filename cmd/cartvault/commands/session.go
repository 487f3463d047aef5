// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/cartvault/cartvault/cmd/cartvault/cli"
	"github.com/cartvault/cartvault/lib/config"
	"github.com/cartvault/cartvault/lib/digest"
	"github.com/cartvault/cartvault/lib/memory"
	"github.com/cartvault/cartvault/lib/sidestore"
)

// globalFlags are accepted by every command that touches storage.
type globalFlags struct {
	configPath string
	root       string
	logLevel   string
}

func (g *globalFlags) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&g.configPath, "config", "", "config file (default: $"+config.EnvironmentVariable+", then built-in defaults)")
	flagSet.StringVar(&g.root, "root", "", "storage root (overrides memory.root)")
	flagSet.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides log.level)")
}

// loadConfig resolves the configuration in precedence order: --config,
// CARTVAULT_CONFIG, built-in defaults. Flag overrides are applied last.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case g.configPath != "":
		cfg, err = config.LoadFile(g.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if g.root != "" {
		cfg.Memory.Root = g.root
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, &cli.UsageError{Message: err.Error()}
	}
	return cfg, nil
}

// session is an opened configuration: a logger and a storage engine.
type session struct {
	config *config.Config
	logger *slog.Logger
	memory memory.Memory

	// local is nil when the engine is disabled in configuration.
	local *memory.LocalMemory
}

func (g *globalFlags) open(streams *IO, command string) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, &cli.UsageError{Message: err.Error()}
	}
	logger := cli.NewCommandLogger(streams.Stderr, level).With("command", command)

	if cfg.Memory.Disabled {
		logger.Debug("memory disabled in configuration")
		return &session{config: cfg, logger: logger, memory: memory.Nop{}}, nil
	}

	algorithm, err := digest.Parse(cfg.Memory.Digest)
	if err != nil {
		return nil, err
	}
	backend, err := sidestore.ParseBackend(cfg.Memory.SideStore)
	if err != nil {
		return nil, err
	}
	local, err := memory.New(memory.Configuration{
		Root:      cfg.Memory.Root,
		Digest:    algorithm,
		SideStore: backend,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &session{config: cfg, logger: logger, memory: local, local: local}, nil
}

// requireLocal returns the filesystem engine, or a usage error when
// configuration disabled it.
func (s *session) requireLocal(command string) (*memory.LocalMemory, error) {
	if s.local == nil {
		return nil, cli.Usagef("%s needs the storage engine, which is disabled in configuration (memory.disabled)", command)
	}
	return s.local, nil
}

func (s *session) Close() error {
	if s.local == nil {
		return nil
	}
	return s.local.Close()
}

// run opens a session, calls body, and closes the session, joining any
// close error into the result.
func (g *globalFlags) run(ctx context.Context, streams *IO, command string, body func(context.Context, *session) error) (err error) {
	s, err := g.open(streams, command)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("closing storage: %w", closeErr))
		}
	}()
	return body(ctx, s)
}
