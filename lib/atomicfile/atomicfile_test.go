// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesAndReplaces(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "Game.sav")

	if err := Write(path, []byte{0x01, 0x02}, 0o644); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := Write(path, []byte{0x03}, 0o644); err != nil {
		t.Fatalf("second Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "\x03" {
		t.Errorf("content = %x, want 03", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1 (temp file left behind?)", len(entries))
	}
}

func TestWriteMissingDirectoryLeavesNothing(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "missing", "Game.sav")

	if err := Write(path, []byte("data"), 0o644); err == nil {
		t.Fatal("Write into a missing directory succeeded")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("destination exists after failed write: %v", err)
	}
}

func TestWriteOntoDirectoryKeepsDirectory(t *testing.T) {
	directory := t.TempDir()
	target := filepath.Join(directory, "occupied")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "child"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Write(target, []byte("data"), 0o644); err == nil {
		t.Fatal("Write over a non-empty directory succeeded")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if IsTemp(entry.Name()) {
			t.Errorf("temp file %s left behind", entry.Name())
		}
	}
}

func TestIsTemp(t *testing.T) {
	if !IsTemp(".cartvault-123456.tmp") {
		t.Error("IsTemp rejected a temp name")
	}
	if IsTemp("Game.sav") || IsTemp("Game.sav.1") {
		t.Error("IsTemp accepted an artifact name")
	}
}
