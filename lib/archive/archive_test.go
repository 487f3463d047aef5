// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cartvault/cartvault/lib/testutil"
)

func sampleRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string][]byte{
		"data.json": []byte(`{"aa":{"tag":"CARTRIDGE"}}`),
		"game/Nintendo - Game Boy/ZLA_01$9F.sav":   bytes.Repeat([]byte{0x00}, 8192),
		"game/Nintendo - Game Boy/ZLA_01$9F.sav.1": bytes.Repeat([]byte{0xff}, 8192),
		"metadata/Nintendo - Game Boy/ZLA_01$9F.json": []byte("{\n  \"title\": \"Zelda\"\n}\n"),
	})
	if err := os.MkdirAll(filepath.Join(root, "image", "Nintendo - Game Boy Advance"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRoundTrip(t *testing.T) {
	for _, compression := range []Compression{CompressionZstd, CompressionLZ4, CompressionNone} {
		t.Run(string(compression), func(t *testing.T) {
			ctx := context.Background()
			source := sampleRoot(t)
			modified := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			savePath := filepath.Join(source, "game", "Nintendo - Game Boy", "ZLA_01$9F.sav.1")
			if err := os.Chtimes(savePath, modified, modified); err != nil {
				t.Fatal(err)
			}

			var buffer bytes.Buffer
			created, err := Create(ctx, source, &buffer, Options{Compression: compression})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if created.Files != 4 {
				t.Errorf("Create archived %d files, want 4", created.Files)
			}

			destination := t.TempDir()
			extracted, err := Extract(ctx, &buffer, destination, Options{Compression: compression})
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if extracted != created {
				t.Errorf("Extract stats %+v, Create stats %+v", extracted, created)
			}
			testutil.RequireSameTree(t, testutil.SnapshotTree(t, source), testutil.SnapshotTree(t, destination))

			info, err := os.Stat(filepath.Join(destination, "game", "Nintendo - Game Boy", "ZLA_01$9F.sav.1"))
			if err != nil {
				t.Fatalf("stat restored save: %v", err)
			}
			if !info.ModTime().Equal(modified) {
				t.Errorf("restored mtime = %v, want %v", info.ModTime(), modified)
			}
		})
	}
}

func TestCompressionShrinksSaveRAM(t *testing.T) {
	source := sampleRoot(t)
	var plain, compressed bytes.Buffer
	if _, err := Create(context.Background(), source, &plain, Options{Compression: CompressionNone}); err != nil {
		t.Fatalf("Create(none): %v", err)
	}
	if _, err := Create(context.Background(), source, &compressed, Options{Compression: CompressionZstd}); err != nil {
		t.Fatalf("Create(zstd): %v", err)
	}
	if compressed.Len() >= plain.Len() {
		t.Errorf("zstd archive is %d bytes, plain tar is %d", compressed.Len(), plain.Len())
	}
}

func TestEncryptedRoundTrip(t *testing.T) {
	ctx := context.Background()
	secretKey, recipient, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	source := sampleRoot(t)

	var buffer bytes.Buffer
	if _, err := Create(ctx, source, &buffer, Options{Compression: CompressionZstd, Recipient: recipient}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !bytes.HasPrefix(buffer.Bytes(), []byte("age-encryption.org/v1")) {
		t.Error("encrypted archive does not start with the age header")
	}
	ciphertext := buffer.Bytes()

	otherSecret, _, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if _, err := Extract(ctx, bytes.NewReader(ciphertext), t.TempDir(), Options{Identity: otherSecret}); err == nil {
		t.Error("Extract succeeded with the wrong identity")
	}

	destination := t.TempDir()
	if _, err := Extract(ctx, bytes.NewReader(ciphertext), destination, Options{Identity: secretKey}); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	testutil.RequireSameTree(t, testutil.SnapshotTree(t, source), testutil.SnapshotTree(t, destination))
}

func TestCreateRejectsBadRecipient(t *testing.T) {
	var buffer bytes.Buffer
	if _, err := Create(context.Background(), t.TempDir(), &buffer, Options{Recipient: "not-a-key"}); err == nil {
		t.Error("Create accepted an invalid recipient")
	}
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../outside.sav", "/etc/passwd", "game/../../outside"} {
		var buffer bytes.Buffer
		writer := tar.NewWriter(&buffer)
		content := []byte("payload")
		if err := writer.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatal(err)
		}
		writer.Write(content)
		writer.Close()

		parent := t.TempDir()
		root := filepath.Join(parent, "root")
		if _, err := Extract(context.Background(), &buffer, root, Options{Compression: CompressionNone}); err == nil {
			t.Errorf("Extract accepted entry %q", name)
		}
		if snapshot := testutil.SnapshotTree(t, parent); len(snapshot) != 0 {
			t.Errorf("entry %q wrote files: %v", name, snapshot)
		}
	}
}

func TestCreateHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buffer bytes.Buffer
	if _, err := Create(ctx, sampleRoot(t), &buffer, Options{}); err == nil {
		t.Error("Create succeeded with a cancelled context")
	}
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		input   string
		want    Compression
		wantErr bool
	}{
		{"", CompressionZstd, false},
		{"zstd", CompressionZstd, false},
		{"lz4", CompressionLZ4, false},
		{"none", CompressionNone, false},
		{"gzip", "", true},
	}
	for _, test := range tests {
		got, err := ParseCompression(test.input)
		if (err != nil) != test.wantErr || got != test.want {
			t.Errorf("ParseCompression(%q) = (%q, %v), want (%q, wantErr=%v)", test.input, got, err, test.want, test.wantErr)
		}
	}
}
