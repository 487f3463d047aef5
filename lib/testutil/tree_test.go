// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"
)

func TestWriteThenSnapshot(t *testing.T) {
	root := t.TempDir()
	files := map[string][]byte{
		"game/Nintendo - Game Boy/ZLA_01$9F.sav":   {0x01, 0x02},
		"game/Nintendo - Game Boy/ZLA_01$9F.sav.1": {0x03},
		"data.json":                                []byte("{}"),
	}
	WriteTree(t, root, files)

	snapshot := SnapshotTree(t, root)
	RequireSameTree(t, files, snapshot)
}

func TestSnapshotMissingRoot(t *testing.T) {
	snapshot := SnapshotTree(t, t.TempDir()+"/absent")
	if len(snapshot) != 0 {
		t.Errorf("snapshot of missing root = %v, want empty", snapshot)
	}
}
