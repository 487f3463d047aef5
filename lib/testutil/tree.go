// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// SnapshotTree returns the contents of every regular file under root,
// keyed by slash-separated path relative to root. A missing root is an
// empty snapshot.
func SnapshotTree(t testing.TB, root string) map[string][]byte {
	t.Helper()
	snapshot := make(map[string][]byte)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return snapshot
	}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		snapshot[filepath.ToSlash(relative)] = data
		return nil
	})
	if err != nil {
		t.Fatalf("snapshotting %s: %v", root, err)
	}
	return snapshot
}

// RequireSameTree fails the test if two snapshots differ in file set
// or in any file's bytes.
func RequireSameTree(t testing.TB, want, got map[string][]byte) {
	t.Helper()
	for _, path := range sortedKeys(want) {
		data, exists := got[path]
		if !exists {
			t.Fatalf("file %s disappeared", path)
		}
		if !bytes.Equal(data, want[path]) {
			t.Fatalf("file %s changed: got %q, want %q", path, data, want[path])
		}
	}
	for _, path := range sortedKeys(got) {
		if _, exists := want[path]; !exists {
			t.Fatalf("unexpected file %s", path)
		}
	}
}

// WriteTree creates every file in files (slash-separated paths relative
// to root), creating parent directories as needed.
func WriteTree(t testing.TB, root string, files map[string][]byte) {
	t.Helper()
	for relative, data := range files {
		path := filepath.Join(root, filepath.FromSlash(relative))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating directory for %s: %v", relative, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("writing %s: %v", relative, err)
		}
	}
}

func sortedKeys(files map[string][]byte) []string {
	keys := make([]string, 0, len(files))
	for key := range files {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
