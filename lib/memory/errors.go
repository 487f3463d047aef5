// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import "fmt"

// ValidationError reports a request the engine refuses before touching
// the filesystem. Retrying the same request fails the same way.
type ValidationError struct {
	Kind     Kind
	Identity string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Identity == "" {
		return fmt.Sprintf("invalid %s request: %s: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s request for %q: %s: %s", e.Kind, e.Identity, e.Field, e.Reason)
}

// StorageError reports a failed filesystem, codec, or side-store step.
// Op names the step ("encode", "mkdir", "historize", "write",
// "sidestore", ...).
type StorageError struct {
	Op       string
	Identity string
	Path     string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed (id=%q, path=%s): %v", e.Op, e.Identity, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
