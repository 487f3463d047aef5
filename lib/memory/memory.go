// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cartvault/cartvault/lib/atomicfile"
	"github.com/cartvault/cartvault/lib/cart"
	"github.com/cartvault/cartvault/lib/clock"
	"github.com/cartvault/cartvault/lib/digest"
	"github.com/cartvault/cartvault/lib/sidestore"
)

// Memory is the storage boundary used by the rest of the tool.
type Memory interface {
	// Configure creates the directory skeleton. Idempotent.
	Configure(ctx context.Context) error

	// Save stores content as the identity's artifact of kind and records
	// metadata, if any, against the content digest.
	Save(ctx context.Context, identity cart.Identity, content []byte, kind Kind, metadata map[string]string) (SaveResult, error)

	// GetByName returns the first artifact of kind whose file name is
	// name, or nil when there is none.
	GetByName(ctx context.Context, name string, kind Kind, withContent bool) (*GameData, error)

	// GetAll returns the identity's artifacts of kind, or of every
	// identity-scoped kind when kind is nil.
	GetAll(ctx context.Context, identity cart.Identity, kind *Kind, withContent bool) ([]GameData, error)

	// UpdateConfiguration points the engine at a new configuration.
	// Existing files are not moved.
	UpdateConfiguration(ctx context.Context, configuration Configuration) error
}

// Configuration selects the storage root and the side-store layout.
type Configuration struct {
	Root string

	// Digest keys the side-store. Zero selects digest.Default.
	Digest digest.Algorithm

	// SideStore selects the side-store backend. Zero selects the
	// data.json backend.
	SideStore sidestore.Backend

	// Clock stamps side-store rows. Nil uses the real clock.
	Clock clock.Clock
}

func (configuration Configuration) validate() error {
	if configuration.Root == "" {
		return fmt.Errorf("memory root is required")
	}
	if _, err := digest.Parse(string(configuration.Digest)); err != nil {
		return err
	}
	if _, err := sidestore.ParseBackend(string(configuration.SideStore)); err != nil {
		return err
	}
	return nil
}

// GameData is one stored artifact as returned by the query operations.
type GameData struct {
	// Name is the file name, including any historization suffix.
	Name string

	ModTime time.Time
	Kind    Kind

	// Content is the artifact in transport form; nil unless requested.
	Content []byte

	// Extension is the final dotted suffix of Name (".sav", ".1", ...).
	Extension string

	// Metadata holds the side-store attributes for the content digest,
	// or nil when none were recorded.
	Metadata map[string]string

	Path string

	// Version is 0 for the current file and n for a file historized
	// with suffix ".n".
	Version int
}

// SaveResult describes what Save did.
type SaveResult struct {
	Path string

	// Skipped is true when the current file already held the same
	// encoded bytes and nothing was written.
	Skipped bool

	// HistorizedAs is the path the previous current save was renamed
	// to, or empty.
	HistorizedAs string

	// Digest is the side-store key of the content.
	Digest string
}

// LocalMemory is the filesystem-backed Memory.
type LocalMemory struct {
	logger *slog.Logger
	locks  identityLocks

	// writeFile replaces file contents. Tests swap it to inject
	// failures.
	writeFile func(path string, data []byte) error

	mu            sync.RWMutex
	configuration Configuration
	resolver      Resolver
	algorithm     digest.Algorithm
	store         sidestore.Store
}

// New returns a LocalMemory for configuration. The root is not created
// until Configure or the first Save.
func New(configuration Configuration, logger *slog.Logger) (*LocalMemory, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	memory := &LocalMemory{
		logger: logger,
		writeFile: func(path string, data []byte) error {
			return atomicfile.Write(path, data, 0o644)
		},
	}
	if err := memory.apply(configuration); err != nil {
		return nil, err
	}
	return memory, nil
}

// apply validates configuration, opens its side-store, and swaps it in.
// The previous side-store, if any, is closed.
func (m *LocalMemory) apply(configuration Configuration) error {
	if err := configuration.validate(); err != nil {
		return fmt.Errorf("invalid memory configuration: %w", err)
	}
	algorithm, _ := digest.Parse(string(configuration.Digest))
	backend, _ := sidestore.ParseBackend(string(configuration.SideStore))

	store, err := sidestore.Open(sidestore.Config{
		Backend: backend,
		Root:    configuration.Root,
		Clock:   configuration.Clock,
		Logger:  m.logger,
	})
	if err != nil {
		return fmt.Errorf("opening side-store under %s: %w", configuration.Root, err)
	}

	m.mu.Lock()
	previous := m.store
	m.configuration = configuration
	m.resolver = NewResolver(configuration.Root)
	m.algorithm = algorithm
	m.store = store
	m.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			m.logger.Warn("closing previous side-store failed", "error", err)
		}
	}
	return nil
}

// snapshot returns the state a single operation works against, so an
// UpdateConfiguration in the middle of it cannot mix two roots.
func (m *LocalMemory) snapshot() (Resolver, digest.Algorithm, sidestore.Store) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolver, m.algorithm, m.store
}

// Root returns the current storage root.
func (m *LocalMemory) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolver.Root()
}

// Resolver returns the resolver for the current root.
func (m *LocalMemory) Resolver() Resolver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolver
}

// SideStore returns the current side-store.
func (m *LocalMemory) SideStore() sidestore.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store
}

func (m *LocalMemory) Configure(ctx context.Context) error {
	resolver, _, _ := m.snapshot()
	for _, directory := range resolver.Directories() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(directory, 0o755); err != nil {
			return &StorageError{Op: "configure", Path: directory, Err: err}
		}
	}
	m.logger.Info("memory configured", "root", resolver.Root())
	return nil
}

func (m *LocalMemory) UpdateConfiguration(ctx context.Context, configuration Configuration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.apply(configuration); err != nil {
		return err
	}
	m.logger.Info("memory configuration updated",
		"root", configuration.Root,
		"digest", configuration.Digest,
		"sidestore", configuration.SideStore,
	)
	return nil
}

// Reset deletes the whole storage root, including the side-store, and
// recreates the empty directory skeleton.
func (m *LocalMemory) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	configuration := m.configuration
	store := m.store
	m.mu.RUnlock()

	// The side-store may hold open handles inside the root.
	if err := store.Close(); err != nil {
		m.logger.Warn("closing side-store before reset failed", "error", err)
	}
	if err := os.RemoveAll(configuration.Root); err != nil {
		return &StorageError{Op: "reset", Path: configuration.Root, Err: err}
	}

	m.mu.Lock()
	m.store = nil
	m.mu.Unlock()
	if err := m.apply(configuration); err != nil {
		return err
	}

	m.logger.Info("memory reset", "root", configuration.Root)
	return m.Configure(ctx)
}

// Close releases the side-store.
func (m *LocalMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	err := m.store.Close()
	m.store = nil
	return err
}

func (m *LocalMemory) Save(ctx context.Context, identity cart.Identity, content []byte, kind Kind, metadata map[string]string) (SaveResult, error) {
	if kind == KindDeviceImage && metadata[ChecksumKey] == "" {
		return SaveResult{}, &ValidationError{
			Kind:     kind,
			Identity: identity.ID(),
			Field:    ChecksumKey,
			Reason:   "device images require a checksum in metadata",
		}
	}
	if err := validateRequest(identity, kind); err != nil {
		return SaveResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return SaveResult{}, err
	}

	resolver, algorithm, store := m.snapshot()
	id := identity.ID()

	path, err := resolver.Path(identity, kind, metadata)
	if err != nil {
		return SaveResult{}, err
	}

	encoded, err := Encode(kind, content)
	if err != nil {
		return SaveResult{}, &StorageError{Op: "encode", Identity: id, Path: path, Err: err}
	}
	canonical, err := Canonical(kind, content)
	if err != nil {
		return SaveResult{}, &StorageError{Op: "encode", Identity: id, Path: path, Err: err}
	}
	result := SaveResult{Path: path, Digest: algorithm.Hex(canonical)}

	unlock := m.locks.lock(id)
	defer unlock()

	existing, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, &StorageError{Op: "read", Identity: id, Path: path, Err: err}
	}
	if existed && bytes.Equal(existing, encoded) {
		m.logger.Info("content unchanged, nothing written",
			"id", id, "kind", kind.String(), "path", path)
		result.Skipped = true
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return result, &StorageError{Op: "mkdir", Identity: id, Path: filepath.Dir(path), Err: err}
	}

	if kind == KindSave && existed {
		historized, suffix, err := historize(path)
		if err != nil {
			return result, &StorageError{Op: "historize", Identity: id, Path: path, Err: err}
		}
		result.HistorizedAs = historized
		m.logger.Info("save historized", "id", id, "path", historized, "suffix", suffix)
	}

	if err := m.writeFile(path, encoded); err != nil {
		cause := err
		switch {
		case result.HistorizedAs != "":
			if restoreErr := restore(result.HistorizedAs, path); restoreErr != nil {
				cause = errors.Join(err, restoreErr)
				m.logger.Error("restoring historized save failed",
					"id", id, "path", result.HistorizedAs, "error", restoreErr)
			}
			result.HistorizedAs = ""
		case !existed:
			if removeErr := os.Remove(path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				cause = errors.Join(err, removeErr)
			}
		}
		return result, &StorageError{Op: "write", Identity: id, Path: path, Err: cause}
	}

	m.logger.Info("artifact saved",
		"id", id, "kind", kind.String(), "path", path, "digest", result.Digest)

	if len(metadata) > 0 {
		if err := store.Put(ctx, result.Digest, metadata); err != nil {
			return result, &StorageError{Op: "sidestore", Identity: id, Path: path, Err: err}
		}
	}
	return result, nil
}
