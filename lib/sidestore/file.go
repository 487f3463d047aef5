// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sidestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cartvault/cartvault/lib/atomicfile"
)

// FileName is the side-store file inside the storage root.
const FileName = "data.json"

// FileStore is the data.json backend. The mutex serializes
// read-modify-write cycles inside one process; it does nothing for
// other processes sharing the root.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore returns a FileStore for <root>/data.json. The file is
// created lazily on first access.
func NewFileStore(root string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{
		path:   filepath.Join(root, FileName),
		logger: logger,
	}
}

// Path returns the location of data.json.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, digest string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return nil, false, err
	}
	attributes, exists := table[digest]
	if !exists {
		return nil, false, nil
	}
	return cloneAttributes(attributes), true, nil
}

func (s *FileStore) Put(ctx context.Context, digest string, attributes map[string]string) error {
	if digest == "" {
		return fmt.Errorf("side-store put: digest is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.load()
	if err != nil {
		return err
	}
	table[digest] = cloneAttributes(attributes)

	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	if err := atomicfile.Write(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	s.logger.Debug("side-store entry written", "digest", digest, "entries", len(table))
	return nil
}

func (s *FileStore) All(ctx context.Context) (map[string]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// load reads the whole table, creating "{}" when the file is missing.
// Must be called with s.mu held.
func (s *FileStore) load() (map[string]map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := s.create(); err != nil {
			return nil, err
		}
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]map[string]string{}, nil
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}

	table := make(map[string]map[string]string, len(raw))
	for digest, rawAttributes := range raw {
		attributes := make(map[string]string, len(rawAttributes))
		for key, value := range rawAttributes {
			attributes[key] = attributeValue(value)
		}
		table[digest] = attributes
	}
	return table, nil
}

func (s *FileStore) create() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating side-store directory: %w", err)
	}
	if err := atomicfile.Write(s.path, []byte("{}"), 0o644); err != nil {
		return fmt.Errorf("creating %s: %w", s.path, err)
	}
	s.logger.Info("side-store created", "path", s.path)
	return nil
}

// attributeValue flattens one JSON attribute value to a string. Older
// files occasionally hold numbers or booleans; those keep their JSON
// text form.
func attributeValue(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return strings.TrimSpace(string(raw))
}
