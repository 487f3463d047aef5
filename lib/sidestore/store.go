// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sidestore

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/cartvault/cartvault/lib/clock"
)

// Store maps content digests to attribute sets.
type Store interface {
	// Get returns the attributes stored for digest, or false when the
	// digest has no entry. The returned map is a copy.
	Get(ctx context.Context, digest string) (map[string]string, bool, error)

	// Put replaces the attributes stored for digest.
	Put(ctx context.Context, digest string, attributes map[string]string) error

	// All returns a copy of the entire table.
	All(ctx context.Context) (map[string]map[string]string, error)

	// Close releases backend resources. The store must not be used
	// afterwards.
	Close() error
}

// Backend names a Store implementation in configuration.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend converts a configuration value to a Backend. The empty
// string selects BackendJSON.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case "", BackendJSON:
		return BackendJSON, nil
	case BackendSQLite:
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("unknown side-store backend %q (want %q or %q)", name, BackendJSON, BackendSQLite)
	}
}

// Config selects and parameterizes a backend for Open.
type Config struct {
	Backend Backend

	// Root is the storage root; the backend file lives directly in it.
	Root string

	// Clock stamps SQLite rows. Nil uses the real clock.
	Clock clock.Clock

	// Logger is optional.
	Logger *slog.Logger
}

// Open returns the configured backend rooted at cfg.Root.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendJSON:
		return NewFileStore(cfg.Root, cfg.Logger), nil
	case BackendSQLite:
		return OpenSQLiteStore(cfg.Root, cfg.Clock, cfg.Logger)
	default:
		return nil, fmt.Errorf("unknown side-store backend %q", cfg.Backend)
	}
}

// Migrate copies every entry of from into to and returns the number of
// entries copied. Entries already present in to are overwritten.
func Migrate(ctx context.Context, from, to Store) (int, error) {
	entries, err := from.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading source side-store: %w", err)
	}

	copied := 0
	for digest, attributes := range entries {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		if err := to.Put(ctx, digest, attributes); err != nil {
			return copied, fmt.Errorf("copying entry %s: %w", digest, err)
		}
		copied++
	}
	return copied, nil
}

func cloneAttributes(attributes map[string]string) map[string]string {
	if attributes == nil {
		return map[string]string{}
	}
	return maps.Clone(attributes)
}
