// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile writes whole files so that readers observe either
// the previous content or the new content, never a prefix of it.
//
// The data goes to a temporary file in the destination directory, is
// synced, and is then renamed over the destination. Rename within one
// directory is atomic on every filesystem cartvault supports. If any
// step fails the temporary file is removed and the destination is left
// untouched.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempPattern is recognizable so that directory walks can skip
// leftovers from a crash between create and rename.
const tempPattern = ".cartvault-*.tmp"

// IsTemp reports whether a base name was produced by Write's temporary
// file naming.
func IsTemp(name string) bool {
	matched, _ := filepath.Match(tempPattern, name)
	return matched
}

// Write atomically replaces path with data. The parent directory must
// exist.
func Write(path string, data []byte, perm os.FileMode) error {
	directory := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(directory, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", directory, err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}

	success = true
	syncDirectory(directory)
	return nil
}

// syncDirectory flushes the directory entry created by the rename.
// Some filesystems refuse fsync on directories; the rename has already
// happened, so failures are ignored.
func syncDirectory(directory string) {
	handle, err := os.Open(directory)
	if err != nil {
		return
	}
	handle.Sync()
	handle.Close()
}
