// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sidestore

import (
	"context"
	"testing"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"", BackendJSON, false},
		{"json", BackendJSON, false},
		{"sqlite", BackendSQLite, false},
		{"postgres", "", true},
	}
	for _, test := range tests {
		got, err := ParseBackend(test.input)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseBackend(%q) error = %v, wantErr %v", test.input, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseBackend(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	jsonStore, err := Open(Config{Backend: BackendJSON, Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(json): %v", err)
	}
	defer jsonStore.Close()
	if _, ok := jsonStore.(*FileStore); !ok {
		t.Errorf("Open(json) returned %T", jsonStore)
	}

	sqliteStore, err := Open(Config{Backend: BackendSQLite, Root: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	defer sqliteStore.Close()
	if _, ok := sqliteStore.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) returned %T", sqliteStore)
	}

	if _, err := Open(Config{Backend: "redis", Root: t.TempDir()}); err == nil {
		t.Error("Open accepted an unknown backend")
	}
}

func TestMigrateFileToSQLite(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	source := NewFileStore(root, nil)
	entries := map[string]map[string]string{
		"aa": {"tag": "CARTRIDGE"},
		"bb": {"tag": "EMULATOR"},
		"cc": {"crc": "DEADBEEF"},
	}
	for digest, attributes := range entries {
		if err := source.Put(ctx, digest, attributes); err != nil {
			t.Fatalf("Put(%s): %v", digest, err)
		}
	}

	destination, err := OpenSQLiteStore(root, nil, nil)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer destination.Close()

	copied, err := Migrate(ctx, source, destination)
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if copied != len(entries) {
		t.Errorf("Migrate copied %d entries, want %d", copied, len(entries))
	}

	for digest, want := range entries {
		got, found, err := destination.Get(ctx, digest)
		if err != nil || !found {
			t.Fatalf("Get(%s) after migrate = (%v, %v, %v)", digest, got, found, err)
		}
		for key, value := range want {
			if got[key] != value {
				t.Errorf("%s[%s] = %q, want %q", digest, key, got[key], value)
			}
		}
	}
}
