// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// savePattern splits a save-chain file name into the current name and
// an optional historization suffix.
var savePattern = regexp.MustCompile(`^(.+\.sav)(?:\.([1-9][0-9]*))?$`)

// saveVersion returns the historization suffix of a save-chain file
// name (0 for the current file) and whether name belongs to a chain at
// all.
func saveVersion(name string) (int, bool) {
	match := savePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	if match[2] == "" {
		return 0, true
	}
	version, err := strconv.Atoi(match[2])
	if err != nil {
		// Suffix overflowed int; not something this package wrote.
		return 0, false
	}
	return version, true
}

// nextSuffix returns the lowest positive n for which current+".n" does
// not exist. Suffixes are dense in a chain this package maintains, so
// the lowest free suffix is also one past the highest.
func nextSuffix(current string) (int, error) {
	for suffix := 1; ; suffix++ {
		_, err := os.Lstat(historizedPath(current, suffix))
		if errors.Is(err, os.ErrNotExist) {
			return suffix, nil
		}
		if err != nil {
			return 0, fmt.Errorf("probing suffix %d: %w", suffix, err)
		}
	}
}

// historize renames the current file to its next free suffix and
// returns the new path and suffix.
func historize(current string) (string, int, error) {
	suffix, err := nextSuffix(current)
	if err != nil {
		return "", 0, err
	}
	target := historizedPath(current, suffix)
	if err := os.Rename(current, target); err != nil {
		return "", 0, fmt.Errorf("renaming %s to %s: %w", current, target, err)
	}
	return target, suffix, nil
}

// restore undoes historize after a failed write. Anything left at the
// current path is removed first so the rename cannot be blocked by a
// partial file.
func restore(historized, current string) error {
	if err := os.Remove(current); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing partial file %s: %w", current, err)
	}
	if err := os.Rename(historized, current); err != nil {
		return fmt.Errorf("renaming %s back to %s: %w", historized, current, err)
	}
	return nil
}

func historizedPath(current string, suffix int) string {
	return current + "." + strconv.Itoa(suffix)
}
