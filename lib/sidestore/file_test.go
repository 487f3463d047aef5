// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sidestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreCreatesEmptyTable(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root, nil)

	attributes, found, err := store.Get(context.Background(), "00112233445566778899aabbccddeeff")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found || attributes != nil {
		t.Errorf("Get on empty store = (%v, %v), want (nil, false)", attributes, found)
	}

	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		t.Fatalf("data.json not created: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("data.json = %q, want %q", data, "{}")
	}
}

func TestFileStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir(), nil)

	if err := store.Put(ctx, "aa", map[string]string{"tag": "CARTRIDGE"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "bb", map[string]string{"crc": "1A2B3C4D"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Put replaces, it does not merge.
	if err := store.Put(ctx, "aa", map[string]string{"tag": "EMULATOR"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	attributes, found, err := store.Get(ctx, "aa")
	if err != nil || !found {
		t.Fatalf("Get(aa) = (%v, %v, %v)", attributes, found, err)
	}
	if len(attributes) != 1 || attributes["tag"] != "EMULATOR" {
		t.Errorf("Get(aa) = %v, want {tag: EMULATOR}", attributes)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 || all["bb"]["crc"] != "1A2B3C4D" {
		t.Errorf("All = %v", all)
	}
}

func TestFileStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir(), nil)
	if err := store.Put(ctx, "aa", map[string]string{"tag": "CARTRIDGE"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	attributes, _, _ := store.Get(ctx, "aa")
	attributes["tag"] = "mutated"

	again, _, _ := store.Get(ctx, "aa")
	if again["tag"] != "CARTRIDGE" {
		t.Errorf("mutating a Get result changed the store: %v", again)
	}
}

func TestFileStoreReadsLegacyValues(t *testing.T) {
	root := t.TempDir()
	legacy := `{"d41d8cd98f00b204e9800998ecf8427e": {"tag": "CARTRIDGE", "size": 32768, "ok": true}}`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(root, nil)
	attributes, found, err := store.Get(context.Background(), "d41d8cd98f00b204e9800998ecf8427e")
	if err != nil || !found {
		t.Fatalf("Get = (%v, %v, %v)", attributes, found, err)
	}
	want := map[string]string{"tag": "CARTRIDGE", "size": "32768", "ok": "true"}
	for key, value := range want {
		if attributes[key] != value {
			t.Errorf("attribute %s = %q, want %q", key, attributes[key], value)
		}
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("[1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(root, nil)
	if _, _, err := store.Get(context.Background(), "aa"); err == nil {
		t.Error("Get succeeded on a corrupt data.json")
	}
}

func TestFileStoreRequiresDigest(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)
	if err := store.Put(context.Background(), "", map[string]string{"a": "b"}); err == nil {
		t.Error("Put accepted an empty digest")
	}
}
