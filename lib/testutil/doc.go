// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for cartvault packages.
//
// [SnapshotTree] captures every regular file under a directory as a
// path → bytes map, and [RequireSameTree] compares two captures. Tests
// of the storage engine use them to prove that a failed operation left
// the tree byte-identical to what it was before.
//
// [WriteTree] lays out a directory from a path → content map, for tests
// that start from an existing installation.
//
// [RequireReceive] and [RequireBlocked] wrap the select-with-timeout
// pattern so that concurrency tests fail instead of hanging.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no cartvault-internal dependencies.
package testutil
