// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts the wall clock so that timestamps written by
// the storage layer (side-store update times, archive entry times) are
// deterministic under test.
//
// Production code injects [Real]; tests inject [Fake] and move time
// explicitly with [FakeClock.Advance] or [FakeClock.Set]. Nothing in
// cartvault sleeps or schedules timers, so the interface only exposes
// Now.
package clock
