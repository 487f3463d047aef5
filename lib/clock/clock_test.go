// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := Fake(start)

	if !fake.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), start)
	}

	fake.Advance(90 * time.Second)
	if want := start.Add(90 * time.Second); !fake.Now().Equal(want) {
		t.Errorf("after Advance: Now() = %v, want %v", fake.Now(), want)
	}

	later := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	fake.Set(later)
	if !fake.Now().Equal(later) {
		t.Errorf("after Set: Now() = %v, want %v", fake.Now(), later)
	}
}

func TestRealClockMoves(t *testing.T) {
	real := Real()
	first := real.Now()
	if first.IsZero() {
		t.Fatal("Real().Now() returned the zero time")
	}
	if real.Now().Before(first) {
		t.Error("Real clock went backwards")
	}
}
